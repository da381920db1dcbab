// Package todoui is the interaction engine for the todo application's
// server-rendered pages.
//
// Load attaches the engine to a parsed page: field validation and busy
// feedback on every form, deferred submission of completion toggles,
// confirmation before deletes, auto-expiring notifications, and the
// load-time entrance effects.
//
// Usage:
//
//	doc, _ := dom.Parse(resp.Body, resp.Request.URL.String(), dom.WithNavigator(nav))
//	loop := sched.NewManual(time.Now())
//	page := todoui.Load(doc, loop, todoui.DefaultConfig())
//	page.Notify("Saved", toast.TypeSuccess)
//
// Every timer the engine starts runs on loop and is dropped when the page
// unloads.
package todoui

// Version is the engine version reported by the CLI and the live server.
var Version = "0.1.0"

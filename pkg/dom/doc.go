// Package dom holds the live page a todoui engine works on.
//
// A Document wraps a golang.org/x/net/html node tree parsed from the
// server-rendered page. The engine mutates that tree the way a browser
// script would (classes, attributes, styles, inserted and removed nodes) and
// the tree can be rendered back to HTML at any point.
//
// # Queries
//
// Queries are XPath expressions evaluated with htmlquery. HasClass builds the
// usual class-token predicate:
//
//	cards := dom.Find(doc.Root(), "//*["+dom.HasClass("card")+"]")
//
// # Events
//
// Listeners are attached per node with AddEventListener and run in
// registration order. Submit and click events bubble to ancestors. A
// listener may call Event.PreventDefault to suppress the default action, and
// may register default-action hooks with Event.OnDefault that run only if no
// listener suppressed it:
//
//	doc.AddEventListener(form, dom.EventSubmit, func(e *dom.Event) {
//	    if !valid {
//	        e.PreventDefault()
//	        return
//	    }
//	    e.OnDefault(markBusy)
//	})
//
// # Native submission
//
// RequestSubmit is a user-initiated submit: the submit event is dispatched
// and, unless suppressed, the form is handed to the Navigator. SubmitForm is
// the programmatic form.submit(): no event, straight to the Navigator. A
// successful navigation unloads the document, running every unload hook.
package dom

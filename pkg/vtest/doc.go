// Package vtest provides helpers for testing pages driven by the todoui
// engine.
//
// A Harness loads a page from HTML on a manual loop, records native
// submissions instead of navigating, and answers delete confirmations from
// a script.
//
// # Quick Start
//
//	func TestAddTodo_EmptyTitle(t *testing.T) {
//	    h := vtest.NewPage(todosHTML).At("http://localhost/user/todos").MustBuild(t)
//	    h.MustClick(t, "//form[@id='add']//button")
//	    vtest.ExpectSubmissions(t, h, 0)
//	    vtest.ExpectAnnotation(t, h, "//input[@name='title']", "이 필드는 필수입니다.")
//	}
//
// # Fluent Page Builder
//
//	h, err := vtest.NewPage(markup).
//	    At("http://localhost/user/todos").
//	    WithConfig(cfg).
//	    Confirm(true, false).
//	    Build()
//
// # Time
//
// The harness loop only moves when told to:
//
//	h.Advance(500 * time.Millisecond)
//	vtest.ExpectSubmissions(t, h, 1)
package vtest

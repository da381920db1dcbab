// Package scenario runs scripted interactions against a page fixture.
//
// A scenario is a YAML file naming a server-rendered page and a list of
// steps. Each step performs one user action or clock advance, or checks
// the page:
//
//	name: empty title is blocked
//	page: todos.html
//	location: http://localhost/user/todos
//	steps:
//	  - click: "//form[@id='add']//button"
//	  - expect:
//	      submissions: 0
//	      annotations:
//	        "//input[@name='title']": 이 필드는 필수입니다.
//	  - fill: {target: "//input[@name='title']", value: Buy milk}
//	  - submit: "//form[@id='add']"
//	  - expect:
//	      submissions: 1
//
// Scenarios run on a manual clock, so "advance: 500ms" is exact and
// instantaneous. The first failing step stops the run and is reported with
// its file position.
package scenario

// Package errors provides structured, actionable error messages for the
// todoui command line.
//
// An Error carries a stable code, a category, and optionally the file
// location it came from (a scenario step, a config key) with the
// surrounding lines, plus a hint on how to fix it.
//
// # Error Codes
//
// Each code maps to a registered template:
//
//	T001-T019  scenario files and steps
//	T020-T029  configuration
//	T030-T039  live server
//
// # Usage
//
//	err := errors.New("T004").
//	    WithLocation("scenarios/add.yaml", 12, 5).
//	    WithSuggestion("advance the clock past the toggle delay first")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR T004: Expectation failed
//	//
//	//   scenarios/add.yaml:12:5
//	//
//	//     10 │   - submit: "//form[@id='toggle']"
//	//     11 │   - expect:
//	//   → 12 │       submissions: 1
//	//        │     ^
//	//
//	//   Hint: advance the clock past the toggle delay first
package errors

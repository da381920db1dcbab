package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Scenario Errors (T001-T019)
	// ============================================

	"T001": {
		Category: CategoryScenario,
		Message:  "Scenario file unreadable",
		Detail:   "The scenario file could not be opened.",
	},
	"T002": {
		Category:   CategoryScenario,
		Message:    "Invalid scenario YAML",
		Detail:     "The scenario file is not valid YAML or has unknown keys.",
		Suggestion: "Top-level keys are name, page, html, location, confirm, fail_navigation and steps.",
	},
	"T003": {
		Category:   CategoryScenario,
		Message:    "Invalid step",
		Detail:     "Each step must name exactly one action.",
		Suggestion: "Use one of fill, click, submit, hover, leave, advance or expect.",
	},
	"T004": {
		Category: CategoryScenario,
		Message:  "Expectation failed",
		Detail:   "The page did not match what the step expected.",
	},
	"T005": {
		Category:   CategoryScenario,
		Message:    "Element not found",
		Detail:     "A step's XPath expression matched nothing in the page.",
		Suggestion: "Check the expression against the current page; removed elements cannot be targeted.",
	},
	"T006": {
		Category: CategoryScenario,
		Message:  "Page fixture missing",
		Detail:   "The page named by the scenario could not be read.",
	},
	"T007": {
		Category: CategoryScenario,
		Message:  "Scenario cancelled",
	},

	// ============================================
	// Config Errors (T020-T029)
	// ============================================

	"T020": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Suggestion: "Run 'todoui config' to print the effective configuration.",
	},
	"T021": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
	},

	// ============================================
	// Server Errors (T030-T039)
	// ============================================

	"T030": {
		Category: CategoryServer,
		Message:  "Server failed",
		Detail:   "The live server stopped with an error.",
	},
	"T031": {
		Category:   CategoryServer,
		Message:    "Pages directory missing",
		Suggestion: "Set server.pages_dir or TODOUI_SERVER_PAGES_DIR.",
	},
}

// Codes returns all registered error codes in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template Template) {
	registry[code] = template
}

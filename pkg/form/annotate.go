package form

import (
	"github.com/vango-dev/todoui/pkg/dom"
	"golang.org/x/net/html"
)

const (
	// InvalidClass marks a field that failed validation.
	InvalidClass = "is-invalid"

	// FeedbackClass marks the error message node placed after a field.
	FeedbackClass = "invalid-feedback"
)

// Annotate marks field invalid and places msg in a feedback node directly
// after it. Any previous annotation on the field is cleared first, so a
// field never carries more than one.
func Annotate(field *html.Node, msg string) *html.Node {
	ClearAnnotation(field)
	dom.AddClass(field, InvalidClass)

	feedback := dom.Div(dom.Class(FeedbackClass), msg)
	if field.Parent != nil {
		dom.InsertAfter(field, feedback)
	}
	return feedback
}

// ClearAnnotation removes the invalid marker and feedback node from field.
// It reports whether there was anything to clear.
func ClearAnnotation(field *html.Node) bool {
	cleared := false
	if dom.ContainsClass(field, InvalidClass) {
		dom.RemoveClass(field, InvalidClass)
		cleared = true
	}
	for fb := feedbackNode(field); fb != nil; fb = feedbackNode(field) {
		dom.Detach(fb)
		cleared = true
	}
	return cleared
}

// Annotation returns the message currently shown for field.
func Annotation(field *html.Node) (string, bool) {
	fb := feedbackNode(field)
	if fb == nil {
		return "", false
	}
	return dom.TextContent(fb), true
}

// AnnotationCount returns the number of feedback nodes attached to field.
func AnnotationCount(field *html.Node) int {
	count := 0
	for s := dom.NextElementSibling(field); s != nil && dom.ContainsClass(s, FeedbackClass); s = dom.NextElementSibling(s) {
		count++
	}
	return count
}

func feedbackNode(field *html.Node) *html.Node {
	next := dom.NextElementSibling(field)
	if next != nil && dom.ContainsClass(next, FeedbackClass) {
		return next
	}
	return nil
}

package vtest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/form"
	"github.com/vango-dev/todoui/pkg/toast"
)

// ErrMismatch is wrapped by every failed check.
var ErrMismatch = errors.New("vtest: expectation not met")

func mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMismatch, fmt.Sprintf(format, args...))
}

// HTML returns the page serialized, or the serialization error text.
func (h *Harness) HTML() string {
	s, err := h.Doc.HTML()
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

// CheckContains fails if the serialized page lacks substr.
func CheckContains(h *Harness, substr string) error {
	s := h.HTML()
	if !strings.Contains(s, substr) {
		return mismatch("page does not contain %q, got:\n%s", substr, truncate(s, 500))
	}
	return nil
}

// CheckNotContains fails if the serialized page has substr.
func CheckNotContains(h *Harness, substr string) error {
	s := h.HTML()
	if strings.Contains(s, substr) {
		return mismatch("page contains %q, got:\n%s", substr, truncate(s, 500))
	}
	return nil
}

// CheckCount fails unless expr matches exactly n elements.
func CheckCount(h *Harness, expr string, n int) error {
	if got := len(h.Find(expr)); got != n {
		return mismatch("%s matches %d elements, want %d", expr, got, n)
	}
	return nil
}

// CheckSubmissions fails unless exactly n native submissions happened.
func CheckSubmissions(h *Harness, n int) error {
	if got := h.Navigator.Count(); got != n {
		return mismatch("%d native submissions, want %d", got, n)
	}
	return nil
}

// CheckAnnotation fails unless the field matching expr carries exactly one
// validation message equal to msg. An empty msg expects no annotation.
func CheckAnnotation(h *Harness, expr, msg string) error {
	field := h.FindOne(expr)
	if field == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, expr)
	}
	count := form.AnnotationCount(field)
	got, _ := form.Annotation(field)
	switch {
	case msg == "" && count != 0:
		return mismatch("%s annotated with %q, want none", expr, got)
	case msg == "":
		return nil
	case count != 1:
		return mismatch("%s has %d annotations, want 1", expr, count)
	case got != msg:
		return mismatch("%s annotated with %q, want %q", expr, got, msg)
	}
	return nil
}

// CheckNotification fails unless an active notification of kind whose text
// contains msg is on the page.
func CheckNotification(h *Harness, kind toast.Type, msg string) error {
	for _, n := range h.Page.Notifications.Active() {
		if n.Kind == kind && strings.Contains(dom.TextContent(n.Node), msg) && h.Doc.Contains(n.Node) {
			return nil
		}
	}
	return mismatch("no %s notification containing %q", kind, msg)
}

// CheckNotifications fails unless exactly n notifications are active.
func CheckNotifications(h *Harness, n int) error {
	if got := len(h.Page.Notifications.Active()); got != n {
		return mismatch("%d active notifications, want %d", got, n)
	}
	return nil
}

// CheckBusy fails unless the form matching expr is (or is not) in busy
// state.
func CheckBusy(h *Harness, expr string, busy bool) error {
	f := h.FindOne(expr)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, expr)
	}
	if got := h.Page.Gates.Submission.Busy(f); got != busy {
		return mismatch("%s busy=%t, want %t", expr, got, busy)
	}
	return nil
}

// CheckStyle fails unless the element matching expr has the inline style
// property set to value.
func CheckStyle(h *Harness, expr, property, value string) error {
	n := h.FindOne(expr)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, expr)
	}
	if got := dom.Style(n, property); got != value {
		return mismatch("%s style %s=%q, want %q", expr, property, got, value)
	}
	return nil
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

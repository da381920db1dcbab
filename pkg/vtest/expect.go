package vtest

import (
	"testing"
	"time"

	"github.com/vango-dev/todoui/pkg/toast"
)

// MustBuild builds the harness or fails the test.
func (b *PageBuilder) MustBuild(t testing.TB) *Harness {
	t.Helper()
	h, err := b.Build()
	if err != nil {
		t.Fatalf("build page: %v", err)
	}
	return h
}

// MustFill fills the control matching expr or fails the test.
func (h *Harness) MustFill(t testing.TB, expr, value string) {
	t.Helper()
	if err := h.Fill(expr, value); err != nil {
		t.Fatal(err)
	}
}

// MustClick clicks the element matching expr or fails the test.
func (h *Harness) MustClick(t testing.TB, expr string) {
	t.Helper()
	if err := h.Click(expr); err != nil {
		t.Fatal(err)
	}
}

// MustSubmit requests submission of the form matching expr or fails the
// test. Navigation errors are not failures; they are returned.
func (h *Harness) MustSubmit(t testing.TB, expr string) (bool, error) {
	t.Helper()
	if h.FindOne(expr) == nil {
		t.Fatalf("no element matches %s", expr)
	}
	return h.Submit(expr)
}

func expect(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Error(err)
	}
}

// ExpectContains asserts that the page HTML contains substr.
//
// Example:
//
//	vtest.ExpectContains(t, h, "Todo가 성공적으로 추가되었습니다.")
func ExpectContains(t testing.TB, h *Harness, substr string) {
	t.Helper()
	expect(t, CheckContains(h, substr))
}

// ExpectNotContains asserts that the page HTML does not contain substr.
func ExpectNotContains(t testing.TB, h *Harness, substr string) {
	t.Helper()
	expect(t, CheckNotContains(h, substr))
}

// ExpectCount asserts that expr matches exactly n elements.
func ExpectCount(t testing.TB, h *Harness, expr string, n int) {
	t.Helper()
	expect(t, CheckCount(h, expr, n))
}

// ExpectSubmissions asserts the number of native submissions so far.
//
// Example:
//
//	vtest.ExpectSubmissions(t, h, 1)
func ExpectSubmissions(t testing.TB, h *Harness, n int) {
	t.Helper()
	expect(t, CheckSubmissions(h, n))
}

// ExpectAnnotation asserts that a field carries exactly one validation
// message equal to msg.
func ExpectAnnotation(t testing.TB, h *Harness, expr, msg string) {
	t.Helper()
	expect(t, CheckAnnotation(h, expr, msg))
}

// ExpectNotification asserts that a notification of kind containing msg is
// showing.
func ExpectNotification(t testing.TB, h *Harness, kind toast.Type, msg string) {
	t.Helper()
	expect(t, CheckNotification(h, kind, msg))
}

// ExpectBusy asserts a form's busy state.
func ExpectBusy(t testing.TB, h *Harness, expr string, busy bool) {
	t.Helper()
	expect(t, CheckBusy(h, expr, busy))
}

// ExpectElapsed asserts how far the harness clock has moved.
func ExpectElapsed(t testing.TB, h *Harness, d time.Duration) {
	t.Helper()
	if got := h.Elapsed(); got != d {
		t.Errorf("elapsed %v, want %v", got, d)
	}
}

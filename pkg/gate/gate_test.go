package gate_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/todoui/pkg/confirm"
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/form"
	"github.com/vango-dev/todoui/pkg/gate"
	"github.com/vango-dev/todoui/pkg/sched"
	"github.com/vango-dev/todoui/pkg/toast"
	"golang.org/x/net/html"
)

const todos = `<html><body>
<div class="container">
  <form id="add" action="/user/todos" method="post">
    <input name="title" required value="">
    <textarea name="description"></textarea>
    <button type="submit" class="btn btn-primary"><i class="fas fa-plus"></i> 추가</button>
  </form>
  <form id="toggle" action="/user/todos/7/toggle" method="post">
    <button type="submit" class="btn btn-sm"><i class="fas fa-check"></i></button>
  </form>
  <form id="delete" action="/user/todos/7/delete" method="post">
    <button type="submit" class="btn btn-sm btn-danger"><i class="fas fa-trash"></i> 삭제</button>
  </form>
</div>
</body></html>`

type fixture struct {
	doc    *dom.Document
	loop   *sched.Loop
	toasts *toast.Manager
	set    *gate.Set
	subs   []dom.Submission
	navErr error
}

func newFixture(t *testing.T, confirmer confirm.Confirmer) *fixture {
	t.Helper()
	f := &fixture{}
	nav := dom.NavigatorFunc(func(s dom.Submission) error {
		f.subs = append(f.subs, s)
		return f.navErr
	})
	doc, err := dom.ParseString(todos, "http://localhost/user/todos", dom.WithNavigator(nav))
	require.NoError(t, err)
	f.doc = doc
	f.loop = sched.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	doc.OnUnload(func() { f.loop.CancelAll() })
	f.toasts = toast.NewManager(doc, f.loop)
	f.set = gate.NewSet(doc, f.loop, gate.Config{
		Validator: form.NewFieldValidator(form.DefaultMessages()),
		Notifier:  f.toasts,
		Confirmer: confirmer,
	})
	f.set.Scan()
	return f
}

func (f *fixture) form(id string) *html.Node {
	return dom.FindOne(f.doc.Root(), "//form[@id='"+id+"']")
}

func (f *fixture) button(id string) *html.Node {
	return dom.FindOne(f.form(id), ".//button")
}

func TestKindMatching(t *testing.T) {
	assert.True(t, gate.KindGeneric.Matches("/anything"))
	assert.True(t, gate.KindToggle.Matches("/user/todos/1/toggle"))
	assert.False(t, gate.KindToggle.Matches("/user/todos/1/delete"))
	assert.True(t, gate.KindConfirm.Matches("/user/todos/1/delete"))
	assert.Equal(t, "toggle", gate.KindToggle.String())
	assert.Equal(t, "unknown", gate.Kind(42).String())
}

func TestScanBindsEachFormOncePerKind(t *testing.T) {
	f := newFixture(t, confirm.Always(false))

	assert.Equal(t, []gate.Kind{gate.KindGeneric}, f.set.BindingsFor(f.form("add")))
	assert.Equal(t, []gate.Kind{gate.KindGeneric, gate.KindToggle}, f.set.BindingsFor(f.form("toggle")))
	assert.Equal(t, []gate.Kind{gate.KindGeneric, gate.KindConfirm}, f.set.BindingsFor(f.form("delete")))
	assert.Len(t, f.set.Bindings(), 5)

	assert.Empty(t, f.set.Scan(), "rescan adds nothing")
	assert.Equal(t, 2, f.doc.ListenerCount(f.form("toggle"), dom.EventSubmit))
}

func TestRescanBindsNewForms(t *testing.T) {
	f := newFixture(t, confirm.Always(false))
	container := dom.FindOne(f.doc.Root(), "//div")
	late := dom.Elem("form", dom.A("action", "/user/todos/9/toggle"),
		dom.Button(dom.Type("submit"), dom.I(dom.Class("fas", "fa-check"))))
	container.AppendChild(late)

	added := f.set.Scan()
	require.Len(t, added, 2)
	assert.Equal(t, gate.Binding{Form: late, Kind: gate.KindToggle}, added[1])

	assert.Equal(t, 2, f.set.Unbind(late))
	assert.Equal(t, 0, f.doc.ListenerCount(late, dom.EventSubmit))
}

func TestInvalidSubmitIsSuppressed(t *testing.T) {
	f := newFixture(t, confirm.Always(false))
	add := f.form("add")

	require.NoError(t, f.doc.Click(f.button("add")))

	assert.Empty(t, f.subs)
	title := dom.FindOne(add, ".//input[@name='title']")
	msg, ok := form.Annotation(title)
	require.True(t, ok)
	assert.Equal(t, "이 필드는 필수입니다.", msg)
	assert.Equal(t, 1, form.AnnotationCount(title))

	active := f.toasts.Active()
	require.Len(t, active, 1)
	assert.Equal(t, toast.TypeDanger, active[0].Kind)
	assert.Equal(t, "입력 정보를 확인해주세요.", active[0].Message)

	assert.False(t, f.set.Submission.Busy(add), "no busy state on invalid submit")
	assert.False(t, dom.Disabled(f.button("add")))
}

func TestValidSubmitEntersBusyAndSubmits(t *testing.T) {
	f := newFixture(t, confirm.Always(false))
	f.navErr = errors.New("network down")
	add := f.form("add")
	btn := f.button("add")
	before := dom.InnerHTML(btn)

	dom.SetValue(dom.FindOne(add, ".//input[@name='title']"), "Buy milk")
	submitted, err := f.doc.RequestSubmit(add)
	require.Error(t, err)
	assert.False(t, submitted)
	require.Len(t, f.subs, 1)
	assert.Equal(t, "Buy milk", f.subs[0].Values.Get("title"))
	assert.Equal(t, "POST", f.subs[0].Method)

	assert.True(t, dom.Disabled(btn))
	assert.NotNil(t, dom.FindOne(btn, ".//span[@class='loading-spinner']"))
	assert.Contains(t, dom.TextContent(btn), "처리 중...")

	f.loop.Advance(4999 * time.Millisecond)
	assert.True(t, dom.Disabled(btn))

	f.loop.Advance(time.Millisecond)
	assert.False(t, dom.Disabled(btn))
	assert.Equal(t, before, dom.InnerHTML(btn), "original label restored exactly")
}

func TestBusyButtonIsNotRearmed(t *testing.T) {
	f := newFixture(t, confirm.Always(false))
	add := f.form("add")
	btn := f.button("add")
	before := dom.InnerHTML(btn)

	assert.True(t, f.set.Submission.Arm(add))
	assert.False(t, f.set.Submission.Arm(add))

	assert.True(t, f.set.Settle(add))
	assert.False(t, f.set.Settle(add))
	assert.Equal(t, before, dom.InnerHTML(btn))
	assert.Equal(t, 0, f.loop.Pending())
}

func TestSuccessfulSubmitUnloadsAndCancelsRestore(t *testing.T) {
	f := newFixture(t, confirm.Always(false))
	add := f.form("add")
	dom.SetValue(dom.FindOne(add, ".//input[@name='title']"), "Buy milk")

	submitted, err := f.doc.RequestSubmit(add)
	require.NoError(t, err)
	assert.True(t, submitted)
	assert.True(t, f.doc.Unloaded())
	assert.Equal(t, 0, f.loop.Pending())
}

func TestToggleDefersSubmissionOnce(t *testing.T) {
	f := newFixture(t, confirm.Always(false))
	tog := f.form("toggle")
	btn := f.button("toggle")

	submitted, err := f.doc.RequestSubmit(tog)
	require.NoError(t, err)
	assert.False(t, submitted, "first dispatch is suppressed")
	assert.Empty(t, f.subs)
	assert.Equal(t, gate.SpinnerIconClass, dom.Attr(dom.FindOne(btn, ".//i"), "class"))
	assert.True(t, dom.Disabled(btn))
	assert.False(t, f.set.Submission.Busy(tog), "toggle forms get the spinner, not the busy label")

	// A repeat submit while pending is swallowed.
	submitted, err = f.doc.RequestSubmit(tog)
	require.NoError(t, err)
	assert.False(t, submitted)

	f.loop.Advance(499 * time.Millisecond)
	assert.Empty(t, f.subs)

	f.loop.Advance(time.Millisecond)
	require.Len(t, f.subs, 1)
	assert.Equal(t, "http://localhost/user/todos/7/toggle", f.subs[0].Action)

	f.loop.Advance(10 * time.Second)
	assert.Len(t, f.subs, 1)
}

func TestToggleRestoresControlWhenNavigationFails(t *testing.T) {
	f := newFixture(t, confirm.Always(false))
	f.navErr = errors.New("offline")
	tog := f.form("toggle")
	btn := f.button("toggle")

	_, err := f.doc.RequestSubmit(tog)
	require.NoError(t, err)
	f.loop.Advance(500 * time.Millisecond)

	assert.Len(t, f.subs, 1)
	assert.False(t, f.set.Toggle.Pending(tog))
	assert.False(t, dom.Disabled(btn))
	assert.Equal(t, "fas fa-check", dom.Attr(dom.FindOne(btn, ".//i"), "class"))
}

func TestToggleDroppedWhenFormRemoved(t *testing.T) {
	f := newFixture(t, confirm.Always(false))
	tog := f.form("toggle")

	_, err := f.doc.RequestSubmit(tog)
	require.NoError(t, err)
	dom.Detach(tog)
	f.loop.Advance(time.Second)

	assert.Empty(t, f.subs)
}

func TestDeclinedConfirmLeavesPageUntouched(t *testing.T) {
	var prompts []confirm.Prompt
	f := newFixture(t, confirm.Blocking(func(p confirm.Prompt) bool {
		prompts = append(prompts, p)
		return false
	}))
	before, err := f.doc.HTML()
	require.NoError(t, err)

	submitted, err := f.doc.RequestSubmit(f.form("delete"))
	require.NoError(t, err)

	assert.False(t, submitted)
	assert.Empty(t, f.subs)
	require.Len(t, prompts, 1)
	assert.Equal(t, "정말 삭제하시겠습니까?", prompts[0].Title)
	assert.Equal(t, "이 작업은 되돌릴 수 없습니다.", prompts[0].Message)

	after, err := f.doc.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 0, f.loop.Pending())
}

func TestAcceptedConfirmSubmitsOnce(t *testing.T) {
	f := newFixture(t, confirm.Always(true))

	submitted, err := f.doc.RequestSubmit(f.form("delete"))
	require.NoError(t, err)

	assert.False(t, submitted, "the gate submits, not the event")
	require.Len(t, f.subs, 1)
	assert.Equal(t, "http://localhost/user/todos/7/delete", f.subs[0].Action)
	assert.True(t, f.doc.Unloaded())
}

func TestModalConfirmResolvesLater(t *testing.T) {
	var modal *confirm.Modal
	f := newFixture(t, confirmerFunc(func(p confirm.Prompt, resolve func(bool)) {
		modal.Request(p, resolve)
	}))
	modal = confirm.NewModal(f.doc)
	del := f.form("delete")

	_, err := f.doc.RequestSubmit(del)
	require.NoError(t, err)
	assert.Empty(t, f.subs)
	require.Equal(t, 1, modal.Pending())

	// A second submit while the dialog is open does not stack prompts.
	_, err = f.doc.RequestSubmit(del)
	require.NoError(t, err)
	assert.Equal(t, 1, modal.Pending())

	accept := dom.FindOne(modal.Dialogs()[0], ".//button[@data-confirm='accept']")
	require.NoError(t, f.doc.Click(accept))
	assert.Len(t, f.subs, 1)
}

type confirmerFunc func(confirm.Prompt, func(bool))

func (c confirmerFunc) Request(p confirm.Prompt, resolve func(bool)) { c(p, resolve) }

// requireNote adds an empty required input to the form with the given id.
func (f *fixture) requireNote(id string) *html.Node {
	input := dom.Elem("input", dom.A("name", "note"), dom.A("required", ""), dom.A("value", ""))
	target := f.form(id)
	target.InsertBefore(input, target.FirstChild)
	return input
}

func TestInvalidToggleFormStillSubmitsAfterDelay(t *testing.T) {
	f := newFixture(t, confirm.Always(false))
	note := f.requireNote("toggle")

	submitted, err := f.doc.RequestSubmit(f.form("toggle"))
	require.NoError(t, err)
	assert.False(t, submitted)
	assert.Equal(t, 1, form.AnnotationCount(note))
	require.Len(t, f.toasts.Active(), 1)
	assert.Equal(t, toast.TypeDanger, f.toasts.Active()[0].Kind)
	assert.True(t, f.set.Toggle.Pending(f.form("toggle")))

	f.loop.Advance(gate.DefaultToggleDelay)
	require.Len(t, f.subs, 1)
	assert.Equal(t, "http://localhost/user/todos/7/toggle", f.subs[0].Action)
	assert.True(t, f.doc.Unloaded())

	f.loop.Advance(time.Minute)
	assert.Len(t, f.subs, 1)
}

func TestInvalidDeleteFormStillPromptsAndSubmits(t *testing.T) {
	var prompts int
	f := newFixture(t, confirmerFunc(func(_ confirm.Prompt, resolve func(bool)) {
		prompts++
		resolve(true)
	}))
	f.requireNote("delete")

	_, err := f.doc.RequestSubmit(f.form("delete"))
	require.NoError(t, err)

	assert.Equal(t, 1, prompts)
	require.Len(t, f.subs, 1)
	assert.Equal(t, "http://localhost/user/todos/7/delete", f.subs[0].Action)
	assert.True(t, f.doc.Unloaded())
}

// restoreObserver records the reasons passed to BusyRestored.
type restoreObserver struct {
	entered  int
	restored []string
}

func (o *restoreObserver) SubmissionBlocked(*html.Node, int) {}
func (o *restoreObserver) BusyEntered(*html.Node) { o.entered++ }
func (o *restoreObserver) BusyRestored(_ *html.Node, reason string) {
	o.restored = append(o.restored, reason)
}
func (o *restoreObserver) ToggleDeferred(*html.Node) {}
func (o *restoreObserver) ConfirmResolved(*html.Node, bool) {}
func (o *restoreObserver) NativeSubmitted(*html.Node, gate.Kind, error) {}

func TestUnloadReportsBusyStates(t *testing.T) {
	obs := &restoreObserver{}
	nav := dom.NavigatorFunc(func(dom.Submission) error { return nil })
	doc, err := dom.ParseString(todos, "http://localhost/user/todos", dom.WithNavigator(nav))
	require.NoError(t, err)
	loop := sched.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	sub := gate.NewSubmission(doc, loop, gate.Config{Observer: obs})
	doc.OnUnload(func() { loop.CancelAll() })

	add := dom.FindOne(doc.Root(), "//form[@id='add']")
	require.True(t, sub.Arm(add))
	require.True(t, sub.Busy(add))

	doc.Unload()
	assert.Equal(t, 1, obs.entered)
	assert.Equal(t, []string{gate.RestoreUnloaded}, obs.restored)
	assert.False(t, sub.Busy(add))
	assert.Equal(t, 0, loop.Pending())

	loop.Advance(time.Minute)
	assert.Len(t, obs.restored, 1)
}

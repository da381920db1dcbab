package todoui_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/todoui"
	"github.com/vango-dev/todoui/pkg/confirm"
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/form"
	"github.com/vango-dev/todoui/pkg/gate"
	"github.com/vango-dev/todoui/pkg/sched"
	"github.com/vango-dev/todoui/pkg/toast"
	"golang.org/x/net/html"
)

const todosPage = `<!DOCTYPE html>
<html><body>
<nav class="navbar"><a class="navbar-brand" href="/">Todo App</a></nav>
<div class="container">
  <div class="alert alert-success alert-dismissible fade show" role="alert">
    Todo가 성공적으로 추가되었습니다.
    <button type="button" class="btn-close" data-bs-dismiss="alert"></button>
  </div>
  <div class="card"><div class="card-body">
    <form id="add" action="/user/todos" method="post">
      <div class="mb-3"><input name="title" class="form-control" required></div>
      <button type="submit" class="btn btn-primary">추가</button>
    </form>
  </div></div>
  <div class="card"><div class="card-body">
    <form id="toggle" action="/user/todos/3/toggle" method="post">
      <button type="submit" class="btn btn-sm btn-outline-success" data-bs-toggle="tooltip" title="완료"><i class="fas fa-check"></i></button>
    </form>
    <form id="delete" action="/user/todos/3/delete" method="post">
      <button type="submit" class="btn btn-sm btn-outline-danger"><i class="fas fa-trash"></i></button>
    </form>
  </div></div>
</div>
</body></html>`

type countingObserver struct {
	shown    int
	removed  int
	blocked  int
	busy     int
	deferred int
	confirms []bool
}

func (c *countingObserver) NotificationShown(*toast.Notification) { c.shown++ }
func (c *countingObserver) NotificationRemoved(*toast.Notification) { c.removed++ }
func (c *countingObserver) SubmissionBlocked(*html.Node, int) { c.blocked++ }
func (c *countingObserver) BusyEntered(*html.Node) { c.busy++ }
func (c *countingObserver) BusyRestored(*html.Node, string) {}
func (c *countingObserver) ToggleDeferred(*html.Node) { c.deferred++ }
func (c *countingObserver) ConfirmResolved(_ *html.Node, ok bool) {
	c.confirms = append(c.confirms, ok)
}
func (c *countingObserver) NativeSubmitted(*html.Node, gate.Kind, error) {}

type harness struct {
	doc  *dom.Document
	loop *sched.Loop
	page *todoui.Page
	subs []dom.Submission
}

func load(t *testing.T, cfg todoui.Config) *harness {
	t.Helper()
	h := &harness{}
	nav := dom.NavigatorFunc(func(s dom.Submission) error {
		h.subs = append(h.subs, s)
		return nil
	})
	doc, err := dom.ParseString(todosPage, "http://localhost/user/todos", dom.WithNavigator(nav))
	require.NoError(t, err)
	h.doc = doc
	h.loop = sched.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	h.page = todoui.Load(doc, h.loop, cfg)
	return h
}

func (h *harness) form(id string) *html.Node {
	return dom.FindOne(h.doc.Root(), "//form[@id='"+id+"']")
}

func TestLoadBindsEverything(t *testing.T) {
	var tips int
	cfg := todoui.DefaultConfig()
	cfg.Widgets = animateFunc(func(*html.Node) { tips++ })
	h := load(t, cfg)

	assert.Len(t, h.page.Gates.Bindings(), 5)
	assert.Len(t, h.page.Notifications.Active(), 1)
	assert.Equal(t, 1, tips)
	require.NotNil(t, h.page.SetupTask())
	assert.Equal(t, 100*time.Millisecond, h.page.SetupTask().Due().Sub(h.loop.Now()))
}

func TestEmptyRequiredTitleScenario(t *testing.T) {
	obs := &countingObserver{}
	cfg := todoui.DefaultConfig()
	cfg.Observer = obs
	h := load(t, cfg)
	add := h.form("add")

	require.NoError(t, h.doc.Click(dom.FindOne(add, ".//button")))

	assert.Empty(t, h.subs)
	title := dom.FindOne(add, ".//input[@name='title']")
	assert.Equal(t, 1, form.AnnotationCount(title))
	msg, _ := form.Annotation(title)
	assert.Equal(t, "이 필드는 필수입니다.", msg)

	var dangers []*toast.Notification
	for _, n := range h.page.Notifications.Active() {
		if n.Kind == toast.TypeDanger {
			dangers = append(dangers, n)
		}
	}
	require.Len(t, dangers, 1)
	assert.Equal(t, "입력 정보를 확인해주세요.", dangers[0].Message)
	assert.Equal(t, 1, obs.blocked)
	assert.Equal(t, 0, obs.busy)
}

func TestShowSavedScenario(t *testing.T) {
	h := load(t, todoui.DefaultConfig())
	container := dom.FindOne(h.doc.Root(), "//div[@class='container']")

	n := h.page.Notify("Saved", toast.TypeSuccess)

	assert.Equal(t, n.Node, dom.FirstElementChild(container))
	assert.True(t, dom.ContainsClass(n.Node, "alert-success"))
	assert.NotNil(t, dom.FindOne(n.Node, ".//i[@class='fas fa-check-circle']"))

	h.loop.Advance(4 * time.Second)
	assert.True(t, h.doc.Contains(n.Node))
	h.loop.Advance(300 * time.Millisecond)
	assert.False(t, h.doc.Contains(n.Node))
}

func TestServerAlertExpires(t *testing.T) {
	h := load(t, todoui.DefaultConfig())
	alert := dom.FindOne(h.doc.Root(), "//div[@role='alert']")

	h.loop.Advance(5 * time.Second)
	assert.True(t, h.doc.Contains(alert))
	h.loop.Advance(500 * time.Millisecond)
	assert.False(t, h.doc.Contains(alert))
}

func TestToggleAndConfirmThroughPage(t *testing.T) {
	obs := &countingObserver{}
	cfg := todoui.DefaultConfig()
	cfg.Observer = obs
	cfg.Confirmer = confirm.Always(false)
	h := load(t, cfg)

	_, err := h.doc.RequestSubmit(h.form("delete"))
	require.NoError(t, err)
	assert.Empty(t, h.subs)
	assert.Equal(t, []bool{false}, obs.confirms)

	_, err = h.doc.RequestSubmit(h.form("toggle"))
	require.NoError(t, err)
	assert.Equal(t, 1, obs.deferred)
	h.loop.Advance(500 * time.Millisecond)
	require.Len(t, h.subs, 1)
	assert.Equal(t, "http://localhost/user/todos/3/toggle", h.subs[0].Action)

	assert.True(t, h.doc.Unloaded())
	assert.Equal(t, 0, h.loop.Pending(), "navigation cancels every timer")
}

func TestDefaultConfirmerIsModal(t *testing.T) {
	h := load(t, todoui.DefaultConfig())
	modal, ok := h.page.Confirmer.(*confirm.Modal)
	require.True(t, ok)

	_, err := h.doc.RequestSubmit(h.form("delete"))
	require.NoError(t, err)
	require.Equal(t, 1, modal.Pending())

	cancel := dom.FindOne(modal.Dialogs()[0], ".//button[@data-confirm='cancel']")
	require.NoError(t, h.doc.Click(cancel))
	assert.Empty(t, h.subs)
	assert.Equal(t, 0, modal.Pending())
}

func TestRescanGatesLateForms(t *testing.T) {
	cfg := todoui.DefaultConfig()
	cfg.Confirmer = confirm.Always(true)
	h := load(t, cfg)

	container := dom.FindOne(h.doc.Root(), "//div[@class='container']")
	late := dom.Elem("form", dom.A("action", "/user/todos/8/delete"), dom.A("method", "post"),
		dom.Button(dom.Type("submit"), dom.I(dom.Class("fas", "fa-trash"))))
	container.AppendChild(late)

	added := h.page.Rescan()
	require.Len(t, added, 2)
	assert.Empty(t, h.page.Rescan())

	_, err := h.doc.RequestSubmit(late)
	require.NoError(t, err)
	require.Len(t, h.subs, 1)
	assert.Equal(t, "http://localhost/user/todos/8/delete", h.subs[0].Action)
}

func TestUnloadCancelsTimers(t *testing.T) {
	obs := &countingObserver{}
	cfg := todoui.DefaultConfig()
	cfg.Observer = obs
	h := load(t, cfg)
	h.page.Notify("bye", toast.TypeInfo)
	require.Positive(t, h.loop.Pending())

	h.page.Unload()
	assert.Equal(t, 0, h.loop.Pending())
	assert.Equal(t, 2, obs.removed, "the server alert and the transient one")
	assert.Empty(t, h.page.Notifications.Active())
}

func TestDisableAnimations(t *testing.T) {
	cfg := todoui.DefaultConfig()
	cfg.DisableAnimations = true
	h := load(t, cfg)

	assert.Nil(t, h.page.SetupTask())
	card := dom.FindOne(h.doc.Root(), "//div[@class='card']")
	assert.Empty(t, dom.Style(card, "opacity"))
}

func TestObserversFanOut(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	cfg := todoui.DefaultConfig()
	cfg.Observer = todoui.Observers{a, b}
	h := load(t, cfg)

	h.page.Notify("x", toast.TypeInfo)
	assert.Equal(t, 2, a.shown, "server alert plus runtime notification")
	assert.Equal(t, a.shown, b.shown)
}

type animateFunc func(*html.Node)

func (f animateFunc) Tooltip(el *html.Node) { f(el) }

package animate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/todoui/pkg/animate"
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/sched"
	"golang.org/x/net/html"
)

const dashboard = `<html><body><div class="container">
<div class="card" id="c0"><div class="card-body">
  <div class="progress"><div class="progress-bar" style="width: 75%"></div></div>
  <div class="progress"><div class="progress-bar" style="width: 0%"></div></div>
</div></div>
<div class="card" id="c1"></div>
<div class="card" id="c2"></div>
<a class="btn btn-primary" href="/user/todos" data-bs-toggle="tooltip" title="Todos">Todos</a>
<span data-bs-toggle="tooltip" title="hint">?</span>
</div></body></html>`

const todoList = `<html><body><div class="container">
<div class="btn-group">
  <a class="btn btn-outline-primary" href="/user/todos">전체</a>
  <a class="btn btn-outline-primary" href="/user/todos?filter=completed">완료</a>
  <a class="btn btn-outline-primary" href="?filter=pending">진행 중</a>
</div>
</div></body></html>`

func setup(t *testing.T, markup, location string, opts ...animate.Option) (*dom.Document, *sched.Loop, *animate.Animator) {
	t.Helper()
	doc, err := dom.ParseString(markup, location)
	require.NoError(t, err)
	loop := sched.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	return doc, loop, animate.New(doc, loop, opts...)
}

func byID(doc *dom.Document, id string) *html.Node {
	return dom.FindOne(doc.Root(), "//*[@id='"+id+"']")
}

func TestCardsStaggerIn(t *testing.T) {
	doc, loop, a := setup(t, dashboard, "http://localhost/user/dashboard")

	require.Equal(t, 3, a.Cards())
	for _, id := range []string{"c0", "c1", "c2"} {
		card := byID(doc, id)
		assert.Equal(t, "0", dom.Style(card, "opacity"), id)
		assert.Equal(t, "translateY(20px)", dom.Style(card, "transform"), id)
	}

	loop.Advance(0)
	assert.Equal(t, "1", dom.Style(byID(doc, "c0"), "opacity"))
	assert.Equal(t, "all 0.5s ease", dom.Style(byID(doc, "c0"), "transition"))
	assert.Equal(t, "0", dom.Style(byID(doc, "c1"), "opacity"))

	loop.Advance(100 * time.Millisecond)
	assert.Equal(t, "1", dom.Style(byID(doc, "c1"), "opacity"))
	assert.Equal(t, "0", dom.Style(byID(doc, "c2"), "opacity"))

	loop.Advance(100 * time.Millisecond)
	assert.Equal(t, "translateY(0)", dom.Style(byID(doc, "c2"), "transform"))
}

func TestButtonHover(t *testing.T) {
	doc, _, a := setup(t, dashboard, "http://localhost/user/dashboard")
	require.Equal(t, 1, a.Buttons())
	btn := dom.FindOne(doc.Root(), "//a")

	doc.Hover(btn, true)
	assert.Equal(t, "translateY(-2px)", dom.Style(btn, "transform"))
	doc.Hover(btn, false)
	assert.Equal(t, "translateY(0)", dom.Style(btn, "transform"))
}

func TestTooltipsInitializedOncePerElement(t *testing.T) {
	var seen []string
	widgets := animate.WidgetFunc(func(el *html.Node) {
		seen = append(seen, dom.Attr(el, "title"))
	})
	_, _, a := setup(t, dashboard, "http://localhost/user/dashboard", animate.WithWidgets(widgets))

	assert.Equal(t, 2, a.Tooltips())
	assert.Equal(t, []string{"Todos", "hint"}, seen)
}

func TestTooltipsWithoutLibrary(t *testing.T) {
	_, _, a := setup(t, dashboard, "http://localhost/user/dashboard")
	assert.Equal(t, 0, a.Tooltips())
}

func TestDashboardProgressBarsFill(t *testing.T) {
	doc, loop, a := setup(t, dashboard, "http://localhost/user/dashboard")
	bars := dom.Find(doc.Root(), "//div[@class='progress-bar']")
	require.Len(t, bars, 2)

	task := a.Ready()
	assert.Equal(t, "animate.page-setup", task.Name())

	loop.Advance(100 * time.Millisecond)
	assert.Equal(t, "0%", dom.Style(bars[0], "width"))
	assert.Equal(t, "0%", dom.Style(bars[1], "width"), "zero-width bars are left alone")

	loop.Advance(500 * time.Millisecond)
	assert.Equal(t, "1.5%", dom.Style(bars[0], "width"))

	loop.Advance(16 * time.Millisecond)
	assert.Equal(t, "3%", dom.Style(bars[0], "width"))

	loop.Advance(time.Second)
	assert.Equal(t, "75%", dom.Style(bars[0], "width"))
	assert.Equal(t, 0, loop.Pending())
}

func TestProgressStopsWhenBarRemoved(t *testing.T) {
	doc, loop, a := setup(t, dashboard, "http://localhost/user/dashboard")
	bar := dom.FindOne(doc.Root(), "//div[@class='progress-bar']")

	require.Equal(t, 1, a.ProgressBars())
	loop.Advance(520 * time.Millisecond)
	dom.Detach(bar)

	assert.NotPanics(t, func() { loop.Drain(time.Minute) })
	assert.Equal(t, 0, loop.Pending())
}

func TestTodosFilterHighlight(t *testing.T) {
	doc, loop, a := setup(t, todoList, "http://localhost/user/todos?filter=pending")
	a.Ready()
	loop.Advance(100 * time.Millisecond)

	links := dom.Find(doc.Root(), "//a")
	require.Len(t, links, 3)
	assert.False(t, dom.ContainsClass(links[0], "active"))
	assert.False(t, dom.ContainsClass(links[1], "active"))
	assert.True(t, dom.ContainsClass(links[2], "active"))
}

func TestPageSetupIgnoresOtherPaths(t *testing.T) {
	doc, loop, a := setup(t, dashboard, "http://localhost/login")
	a.Ready()
	loop.Advance(time.Second)

	bar := dom.FindOne(doc.Root(), "//div[@class='progress-bar']")
	assert.Equal(t, "75%", dom.Style(bar, "width"))
}

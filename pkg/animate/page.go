package animate

import (
	"strconv"
	"strings"

	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/sched"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Path markers that select page setup.
const (
	DashboardPath = "/dashboard"
	TodosPath     = "/todos"
)

// FilterActiveClass marks the filter button for the current view.
const FilterActiveClass = "active"

// PageSetup applies the setup for the current location's path.
func (a *Animator) PageSetup() {
	path := a.doc.Location().Path
	if strings.Contains(path, DashboardPath) {
		n := a.ProgressBars()
		a.logger.Debug("dashboard setup", zap.Int("progress_bars", n))
	}
	if strings.Contains(path, TodosPath) {
		n := a.HighlightFilters()
		a.logger.Debug("todos setup", zap.Int("active_filters", n))
	}
}

// ProgressBars resets every progress bar with a positive width to 0% and
// fills it back to its target in equal frame steps.
func (a *Animator) ProgressBars() int {
	count := 0
	for _, bar := range dom.Find(a.doc.Root(), progressExpr) {
		target, ok := percent(dom.Style(bar, "width"))
		if !ok || target <= 0 {
			continue
		}
		count++
		bar := bar
		dom.SetStyle(bar, "width", "0%")
		a.loop.After(a.timing.ProgressDelay, func() {
			a.fill(bar, target, 1)
		}, sched.Bind(a.doc.Lifetime(bar)), sched.Named("animate.progress"))
	}
	return count
}

func (a *Animator) fill(bar *html.Node, target float64, step int) {
	steps := a.timing.ProgressSteps
	if step >= steps {
		dom.SetStyle(bar, "width", formatPercent(target))
		return
	}
	dom.SetStyle(bar, "width", formatPercent(target*float64(step)/float64(steps)))
	a.loop.After(a.timing.FrameInterval, func() {
		a.fill(bar, target, step+1)
	}, sched.Bind(a.doc.Lifetime(bar)), sched.Named("animate.frame"))
}

// HighlightFilters marks the filter buttons linking to the current page.
func (a *Animator) HighlightFilters() int {
	here := a.doc.Location().String()
	count := 0
	for _, btn := range dom.Find(a.doc.Root(), filterExpr) {
		href, ok := dom.GetAttr(btn, "href")
		if !ok {
			continue
		}
		if a.doc.ResolveURL(href) == here {
			dom.AddClass(btn, FilterActiveClass)
			count++
		}
	}
	return count
}

func percent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// Package animate runs the one-shot presentational work done when a page
// loads: staggered card entrance, button hover lift, tooltip setup, and the
// path-specific page setup (dashboard progress bars, todo filter buttons).
//
// Nothing here affects submission or validation. All of it is scheduled on
// the page's loop and bound to the nodes it touches.
package animate

import (
	"time"

	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/sched"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// WidgetLibrary is the client widget toolkit (Bootstrap in the browser).
type WidgetLibrary interface {
	// Tooltip initializes a tooltip on el. No handle is kept.
	Tooltip(el *html.Node)
}

// WidgetFunc adapts a function to WidgetLibrary.
type WidgetFunc func(el *html.Node)

// Tooltip implements WidgetLibrary.
func (f WidgetFunc) Tooltip(el *html.Node) { f(el) }

// Timing holds the animation durations.
type Timing struct {
	CardStagger    time.Duration
	PageSetupDelay time.Duration
	ProgressDelay  time.Duration
	ProgressSteps  int
	FrameInterval  time.Duration
}

// DefaultTiming returns the stock durations.
func DefaultTiming() Timing {
	return Timing{
		CardStagger:    100 * time.Millisecond,
		PageSetupDelay: 100 * time.Millisecond,
		ProgressDelay:  500 * time.Millisecond,
		ProgressSteps:  50,
		FrameInterval:  16 * time.Millisecond,
	}
}

// Selectors for the markup the animator drives.
var (
	cardExpr     = "//*[" + dom.HasClass("card") + "]"
	buttonExpr   = "//*[" + dom.HasClass("btn") + "]"
	tooltipExpr  = "//*[@data-bs-toggle='tooltip']"
	progressExpr = "//*[" + dom.HasClass("progress-bar") + "]"
	filterExpr   = "//*[" + dom.HasClass("btn-group") + "]//*[" + dom.HasClass("btn") + "]"
)

// Animator applies entrance effects to one page.
type Animator struct {
	doc     *dom.Document
	loop    *sched.Loop
	timing  Timing
	widgets WidgetLibrary
	logger  *zap.Logger
}

// Option configures an Animator.
type Option func(*Animator)

// WithTiming overrides the durations. Zero fields keep defaults.
func WithTiming(t Timing) Option {
	return func(a *Animator) {
		d := DefaultTiming()
		if t.CardStagger > 0 {
			d.CardStagger = t.CardStagger
		}
		if t.PageSetupDelay > 0 {
			d.PageSetupDelay = t.PageSetupDelay
		}
		if t.ProgressDelay > 0 {
			d.ProgressDelay = t.ProgressDelay
		}
		if t.ProgressSteps > 0 {
			d.ProgressSteps = t.ProgressSteps
		}
		if t.FrameInterval > 0 {
			d.FrameInterval = t.FrameInterval
		}
		a.timing = d
	}
}

// WithWidgets sets the widget library used for tooltips.
func WithWidgets(w WidgetLibrary) Option {
	return func(a *Animator) {
		a.widgets = w
	}
}

// WithLogger sets the animator logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Animator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an animator for doc.
func New(doc *dom.Document, loop *sched.Loop, opts ...Option) *Animator {
	a := &Animator{
		doc:    doc,
		loop:   loop,
		timing: DefaultTiming(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named("animate")
	return a
}

// Timing returns the animator's durations.
func (a *Animator) Timing() Timing { return a.timing }

// Cards hides every card and fades it in, one after another.
func (a *Animator) Cards() int {
	cards := dom.Find(a.doc.Root(), cardExpr)
	for i, card := range cards {
		card := card
		dom.SetStyles(card, "opacity", "0", "transform", "translateY(20px)")
		a.loop.After(time.Duration(i)*a.timing.CardStagger, func() {
			dom.SetStyles(card,
				"transition", "all 0.5s ease",
				"opacity", "1",
				"transform", "translateY(0)",
			)
		}, sched.Bind(a.doc.Lifetime(card)), sched.Named("animate.card"))
	}
	return len(cards)
}

// Buttons lifts every button slightly while hovered.
func (a *Animator) Buttons() int {
	buttons := dom.Find(a.doc.Root(), buttonExpr)
	for _, btn := range buttons {
		a.doc.AddEventListener(btn, dom.EventMouseEnter, func(e *dom.Event) {
			dom.SetStyle(e.CurrentTarget, "transform", "translateY(-2px)")
		})
		a.doc.AddEventListener(btn, dom.EventMouseLeave, func(e *dom.Event) {
			dom.SetStyle(e.CurrentTarget, "transform", "translateY(0)")
		})
	}
	return len(buttons)
}

// Tooltips initializes one tooltip per element that asks for one.
func (a *Animator) Tooltips() int {
	if a.widgets == nil {
		return 0
	}
	els := dom.Find(a.doc.Root(), tooltipExpr)
	for _, el := range els {
		a.widgets.Tooltip(el)
	}
	return len(els)
}

// Ready runs the load-time effects and schedules the page setup.
func (a *Animator) Ready() *sched.Task {
	cards := a.Cards()
	buttons := a.Buttons()
	tips := a.Tooltips()
	a.logger.Debug("page animated",
		zap.Int("cards", cards),
		zap.Int("buttons", buttons),
		zap.Int("tooltips", tips),
	)
	return a.loop.After(a.timing.PageSetupDelay, a.PageSetup, sched.Named("animate.page-setup"))
}

package gate

import (
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/sched"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// SpinnerIconClass replaces the toggle button's icon while the deferred
// submission is pending.
const SpinnerIconClass = "fas fa-spinner fa-spin"

type pendingToggle struct {
	button   *html.Node
	icon     *html.Node
	iconWas  string
	disabled bool
	task     *sched.Task
}

// Toggle defers native submission of completion-toggle forms so the spinner
// is visible for a moment.
type Toggle struct {
	doc  *dom.Document
	loop *sched.Loop
	cfg  Config
	log  *zap.Logger

	pending map[*html.Node]*pendingToggle
}

// NewToggle creates the toggle gate.
func NewToggle(doc *dom.Document, loop *sched.Loop, cfg Config) *Toggle {
	cfg = cfg.withDefaults()
	return &Toggle{
		doc:     doc,
		loop:    loop,
		cfg:     cfg,
		log:     cfg.Logger.Named("gate.toggle"),
		pending: make(map[*html.Node]*pendingToggle),
	}
}

// Listener returns the submit listener for a toggle form. It defers the
// submission whether or not an earlier listener cancelled the event.
func (g *Toggle) Listener() dom.Listener {
	return func(e *dom.Event) {
		f := e.CurrentTarget
		e.PreventDefault()
		if _, ok := g.pending[f]; ok {
			g.log.Debug("toggle already pending, ignoring submit")
			return
		}

		p := &pendingToggle{}
		if btn := dom.FindOne(f, ".//button"); btn != nil {
			p.button = btn
			p.disabled = dom.Disabled(btn)
			if icon := dom.FindOne(btn, ".//i"); icon != nil {
				p.icon = icon
				p.iconWas = dom.Attr(icon, "class")
				dom.SetClass(icon, SpinnerIconClass)
			} else {
				g.log.Warn("toggle button has no icon", zap.String("action", dom.Attr(f, "action")))
			}
			dom.SetDisabled(btn, true)
		} else {
			g.log.Warn("toggle form has no button", zap.String("action", dom.Attr(f, "action")))
		}

		p.task = g.loop.After(g.cfg.ToggleDelay, func() {
			g.submit(f, p)
		}, sched.Bind(g.doc.Lifetime(f)), sched.Named("gate.toggle-submit"))
		g.pending[f] = p
		g.cfg.Observer.ToggleDeferred(f)
	}
}

// Pending reports whether a deferred submission is waiting for f.
func (g *Toggle) Pending(f *html.Node) bool {
	_, ok := g.pending[f]
	return ok
}

func (g *Toggle) submit(f *html.Node, p *pendingToggle) {
	err := g.doc.SubmitForm(f)
	g.cfg.Observer.NativeSubmitted(f, KindToggle, err)
	if err == nil {
		return
	}
	// The page stayed: give the control back.
	g.log.Warn("toggle submission failed", zap.Error(err))
	delete(g.pending, f)
	if p.icon != nil {
		dom.SetClass(p.icon, p.iconWas)
	}
	if p.button != nil {
		dom.SetDisabled(p.button, p.disabled)
	}
}

package gate

import (
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/sched"
	"github.com/vango-dev/todoui/pkg/toast"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// submitButtonExpr selects a form's submit button.
const submitButtonExpr = ".//button[@type='submit']"

// SpinnerClass is the class of the busy-state spinner.
const SpinnerClass = "loading-spinner"

// busyState remembers what a busy submit button looked like before.
type busyState struct {
	form     *html.Node
	button   *html.Node
	children []*html.Node
	disabled bool
	restore  *sched.Task
}

// Submission is the generic gate: validation, then busy feedback.
type Submission struct {
	doc  *dom.Document
	loop *sched.Loop
	cfg  Config
	log  *zap.Logger

	busy map[*html.Node]*busyState
}

// NewSubmission creates the generic gate.
func NewSubmission(doc *dom.Document, loop *sched.Loop, cfg Config) *Submission {
	cfg = cfg.withDefaults()
	g := &Submission{
		doc:  doc,
		loop: loop,
		cfg:  cfg,
		log:  cfg.Logger.Named("gate.submission"),
		busy: make(map[*html.Node]*busyState),
	}
	doc.OnUnload(g.release)
	return g
}

// Listener returns the submit listener for a form.
func (g *Submission) Listener() dom.Listener {
	return func(e *dom.Event) {
		f := e.CurrentTarget
		res := g.cfg.Validator.Validate(f)
		if !res.Valid {
			e.PreventDefault()
			if g.cfg.Notifier != nil {
				g.cfg.Notifier.Show(g.cfg.Messages.Invalid, toast.TypeDanger)
			}
			g.cfg.Observer.SubmissionBlocked(f, len(res.Errors))
			return
		}
		e.OnDefault(func() { g.Arm(f) })
	}
}

// Arm puts the form's submit button in the busy state and schedules the
// safety restore. It reports false when the form has no submit button or the
// button is already busy.
func (g *Submission) Arm(f *html.Node) bool {
	btn := dom.FindOne(f, submitButtonExpr)
	if btn == nil {
		return false
	}
	if _, ok := g.busy[btn]; ok {
		return false
	}
	st := &busyState{
		form:     f,
		button:   btn,
		children: dom.TakeChildren(btn),
		disabled: dom.Disabled(btn),
	}
	btn.AppendChild(dom.Span(dom.Class(SpinnerClass)))
	btn.AppendChild(dom.Text(" " + g.cfg.Messages.Busy))
	dom.SetDisabled(btn, true)

	st.restore = g.loop.After(g.cfg.BusyTimeout, func() {
		g.restore(st, RestoreTimeout)
	}, sched.Bind(g.doc.Lifetime(btn)), sched.Named("gate.busy-restore"))
	g.busy[btn] = st

	g.log.Debug("busy", zap.String("action", dom.Attr(f, "action")))
	g.cfg.Observer.BusyEntered(f)
	return true
}

// Busy reports whether the form's submit button is in the busy state.
func (g *Submission) Busy(f *html.Node) bool {
	btn := dom.FindOne(f, submitButtonExpr)
	if btn == nil {
		return false
	}
	_, ok := g.busy[btn]
	return ok
}

// Settle restores the form's submit button at once. Hosts call it when the
// submission produced a response that kept the same page.
func (g *Submission) Settle(f *html.Node) bool {
	for _, st := range g.busy {
		if st.form == f {
			st.restore.Cancel()
			g.restore(st, RestoreSettled)
			return true
		}
	}
	return false
}

// release ends every busy state when the page unloads. The buttons stay
// as they are; only the observer is told.
func (g *Submission) release() {
	for btn, st := range g.busy {
		st.restore.Cancel()
		delete(g.busy, btn)
		g.cfg.Observer.BusyRestored(st.form, RestoreUnloaded)
	}
}

func (g *Submission) restore(st *busyState, reason string) {
	if g.busy[st.button] != st {
		return
	}
	delete(g.busy, st.button)
	dom.ReplaceChildren(st.button, st.children...)
	dom.SetDisabled(st.button, st.disabled)
	g.log.Debug("busy restored", zap.String("reason", reason))
	g.cfg.Observer.BusyRestored(st.form, reason)
}

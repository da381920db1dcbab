package gate

import (
	"github.com/vango-dev/todoui/pkg/confirm"
	"github.com/vango-dev/todoui/pkg/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Confirm asks for confirmation before a delete form is submitted.
type Confirm struct {
	doc  *dom.Document
	cfg  Config
	log  *zap.Logger
	busy *Submission

	asking map[*html.Node]bool
}

// NewConfirm creates the confirmation gate. When busy is non-nil an
// accepted submission shows the busy state before it goes out.
func NewConfirm(doc *dom.Document, busy *Submission, cfg Config) *Confirm {
	cfg = cfg.withDefaults()
	return &Confirm{
		doc:    doc,
		cfg:    cfg,
		log:    cfg.Logger.Named("gate.confirm"),
		busy:   busy,
		asking: make(map[*html.Node]bool),
	}
}

// Prompt returns the question asked before deleting.
func (g *Confirm) Prompt() confirm.Prompt {
	return confirm.Prompt{
		Title:   g.cfg.Messages.ConfirmTitle,
		Message: g.cfg.Messages.ConfirmMessage,
	}
}

// Listener returns the submit listener for a delete form. It asks even
// when an earlier listener cancelled the event.
func (g *Confirm) Listener() dom.Listener {
	return func(e *dom.Event) {
		f := e.CurrentTarget
		e.PreventDefault()
		if g.asking[f] {
			return
		}
		g.asking[f] = true
		g.cfg.Confirmer.Request(g.Prompt(), func(accepted bool) {
			g.resolve(f, accepted)
		})
	}
}

func (g *Confirm) resolve(f *html.Node, accepted bool) {
	if !g.asking[f] {
		return
	}
	delete(g.asking, f)
	g.cfg.Observer.ConfirmResolved(f, accepted)
	if !accepted {
		g.log.Debug("delete declined", zap.String("action", dom.Attr(f, "action")))
		return
	}
	if g.doc.Unloaded() || !g.doc.Contains(f) {
		g.log.Debug("delete accepted after form went away")
		return
	}
	if g.busy != nil {
		g.busy.Arm(f)
	}
	err := g.doc.SubmitForm(f)
	g.cfg.Observer.NativeSubmitted(f, KindConfirm, err)
	if err != nil {
		g.log.Warn("delete submission failed", zap.Error(err))
	}
}

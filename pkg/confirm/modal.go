package confirm

import (
	"github.com/google/uuid"
	"github.com/vango-dev/todoui/pkg/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Values of the data-confirm attribute on the dialog buttons.
const (
	ActionAccept = "accept"
	ActionCancel = "cancel"
)

// Labels are the dialog button captions.
type Labels struct {
	Accept string `mapstructure:"accept" yaml:"accept"`
	Cancel string `mapstructure:"cancel" yaml:"cancel"`
}

// DefaultLabels returns the stock Korean captions.
func DefaultLabels() Labels {
	return Labels{Accept: "삭제", Cancel: "취소"}
}

// Modal is a Confirmer that renders a Bootstrap-style dialog into the page
// and resolves when one of its buttons is clicked. The dialog is removed
// either way.
type Modal struct {
	doc    *dom.Document
	labels Labels
	logger *zap.Logger

	open map[string]*html.Node
}

// ModalOption configures a Modal.
type ModalOption func(*Modal)

// WithLabels overrides the button captions. Empty fields keep defaults.
func WithLabels(l Labels) ModalOption {
	return func(m *Modal) {
		if l.Accept != "" {
			m.labels.Accept = l.Accept
		}
		if l.Cancel != "" {
			m.labels.Cancel = l.Cancel
		}
	}
}

// WithLogger sets the modal logger.
func WithLogger(logger *zap.Logger) ModalOption {
	return func(m *Modal) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewModal creates a dialog confirmer for doc.
func NewModal(doc *dom.Document, opts ...ModalOption) *Modal {
	m := &Modal{
		doc:    doc,
		labels: DefaultLabels(),
		logger: zap.NewNop(),
		open:   make(map[string]*html.Node),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("confirm")
	return m
}

// Request implements Confirmer. It returns as soon as the dialog is in the
// page.
func (m *Modal) Request(p Prompt, resolve func(bool)) {
	id := uuid.NewString()
	dialog := dom.Div(
		dom.Class("modal", "fade", "show", "d-block"),
		dom.Role("dialog"),
		dom.A("tabindex", "-1"),
		dom.A("aria-modal", "true"),
		dom.Data("confirm-id", id),
		dom.Div(dom.Class("modal-dialog"),
			dom.Div(dom.Class("modal-content"),
				dom.Div(dom.Class("modal-header"), dom.H5(dom.Class("modal-title"), p.Title)),
				dom.Div(dom.Class("modal-body"), dom.P(p.Message)),
				dom.Div(dom.Class("modal-footer"),
					dom.Button(dom.Type("button"), dom.Class("btn", "btn-secondary"),
						dom.Data("confirm", ActionCancel), m.labels.Cancel),
					dom.Button(dom.Type("button"), dom.Class("btn", "btn-danger"),
						dom.Data("confirm", ActionAccept), m.labels.Accept),
				),
			),
		),
	)

	var reg dom.Registration
	reg = m.doc.AddEventListener(dialog, dom.EventClick, func(e *dom.Event) {
		action := ""
		for n := e.Target; n != nil && n != dialog; n = n.Parent {
			if v, ok := dom.GetAttr(n, "data-confirm"); ok {
				action = v
				break
			}
		}
		if action != ActionAccept && action != ActionCancel {
			return
		}
		reg.Remove()
		delete(m.open, id)
		dom.Detach(dialog)
		m.logger.Debug("confirm resolved", zap.String("id", id), zap.String("action", action))
		resolve(action == ActionAccept)
	})

	body := m.doc.Body()
	if body == nil {
		body = m.doc.Root()
	}
	body.AppendChild(dialog)
	m.open[id] = dialog
	m.logger.Debug("confirm opened", zap.String("id", id), zap.String("title", p.Title))
}

// Pending returns the number of dialogs awaiting an answer.
func (m *Modal) Pending() int { return len(m.open) }

// Dialogs returns the open dialog nodes.
func (m *Modal) Dialogs() []*html.Node {
	out := make([]*html.Node, 0, len(m.open))
	for _, n := range m.open {
		out = append(out, n)
	}
	return out
}

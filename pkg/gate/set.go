package gate

import (
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/sched"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

type bindingKey struct {
	form *html.Node
	kind Kind
}

// Set binds the three gates to a page's forms.
type Set struct {
	doc *dom.Document
	log *zap.Logger

	Submission *Submission
	Toggle     *Toggle
	Confirm    *Confirm

	bound map[bindingKey]dom.Registration
	order []Binding
}

// NewSet creates the gates for doc. Nothing is bound until Scan or Bind.
func NewSet(doc *dom.Document, loop *sched.Loop, cfg Config) *Set {
	cfg = cfg.withDefaults()
	sub := NewSubmission(doc, loop, cfg)
	return &Set{
		doc:        doc,
		log:        cfg.Logger.Named("gate"),
		Submission: sub,
		Toggle:     NewToggle(doc, loop, cfg),
		Confirm:    NewConfirm(doc, sub, cfg),
		bound:      make(map[bindingKey]dom.Registration),
	}
}

// Scan binds every form currently in the page. Forms already bound are
// skipped, so Scan can be repeated after the page changes. It returns the
// new bindings.
func (s *Set) Scan() []Binding {
	var added []Binding
	for _, f := range dom.Find(s.doc.Root(), "//form") {
		added = append(added, s.Bind(f)...)
	}
	if len(added) > 0 {
		s.log.Debug("bound forms", zap.Int("bindings", len(added)))
	}
	return added
}

// Bind attaches every matching gate to f, in Kinds order, and returns the
// bindings it added.
func (s *Set) Bind(f *html.Node) []Binding {
	action := dom.Attr(f, "action")
	var added []Binding
	for _, kind := range Kinds {
		if !kind.Matches(action) {
			continue
		}
		key := bindingKey{form: f, kind: kind}
		if _, ok := s.bound[key]; ok {
			continue
		}
		s.bound[key] = s.doc.AddEventListener(f, dom.EventSubmit, s.listener(kind))
		b := Binding{Form: f, Kind: kind}
		s.order = append(s.order, b)
		added = append(added, b)
	}
	return added
}

// Unbind removes every gate from f.
func (s *Set) Unbind(f *html.Node) int {
	n := 0
	for _, kind := range Kinds {
		key := bindingKey{form: f, kind: kind}
		if reg, ok := s.bound[key]; ok {
			reg.Remove()
			delete(s.bound, key)
			n++
		}
	}
	if n > 0 {
		kept := s.order[:0]
		for _, b := range s.order {
			if b.Form != f {
				kept = append(kept, b)
			}
		}
		s.order = kept
	}
	return n
}

// Bindings returns the current bindings in the order they were made.
func (s *Set) Bindings() []Binding {
	out := make([]Binding, len(s.order))
	copy(out, s.order)
	return out
}

// BindingsFor returns the gates bound to f.
func (s *Set) BindingsFor(f *html.Node) []Kind {
	var kinds []Kind
	for _, kind := range Kinds {
		if _, ok := s.bound[bindingKey{form: f, kind: kind}]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Settle restores the busy state of f immediately.
func (s *Set) Settle(f *html.Node) bool {
	return s.Submission.Settle(f)
}

func (s *Set) listener(kind Kind) dom.Listener {
	switch kind {
	case KindToggle:
		return s.Toggle.Listener()
	case KindConfirm:
		return s.Confirm.Listener()
	default:
		return s.Submission.Listener()
	}
}

package vtest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vango-dev/todoui"
	"github.com/vango-dev/todoui/pkg/confirm"
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/sched"
	"golang.org/x/net/html"
)

// DefaultLocation is the page URL used when none is given.
const DefaultLocation = "http://localhost/"

// Epoch is the harness loop's starting time.
var Epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// ErrNotFound is returned when an XPath expression matches nothing.
var ErrNotFound = errors.New("vtest: no element matches")

// RecordingNavigator records native submissions instead of navigating.
type RecordingNavigator struct {
	mu   sync.Mutex
	subs []dom.Submission
	err  error
}

// Submit implements dom.Navigator.
func (n *RecordingNavigator) Submit(s dom.Submission) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, s)
	return n.err
}

// Fail makes every later submission fail with err, keeping the page. A nil
// err restores success.
func (n *RecordingNavigator) Fail(err error) {
	n.mu.Lock()
	n.err = err
	n.mu.Unlock()
}

// Submissions returns the recorded submissions in order.
func (n *RecordingNavigator) Submissions() []dom.Submission {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]dom.Submission, len(n.subs))
	copy(out, n.subs)
	return out
}

// Count returns the number of recorded submissions.
func (n *RecordingNavigator) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// ScriptedConfirmer answers confirmations from a fixed list, then with
// Default once the list is used up.
type ScriptedConfirmer struct {
	Default bool

	answers []bool
	prompts []confirm.Prompt
}

// Request implements confirm.Confirmer. The answer is given immediately.
func (c *ScriptedConfirmer) Request(p confirm.Prompt, resolve func(bool)) {
	c.prompts = append(c.prompts, p)
	answer := c.Default
	if len(c.answers) > 0 {
		answer, c.answers = c.answers[0], c.answers[1:]
	}
	resolve(answer)
}

// Queue appends answers to the script.
func (c *ScriptedConfirmer) Queue(answers ...bool) {
	c.answers = append(c.answers, answers...)
}

// Prompts returns every prompt asked so far.
func (c *ScriptedConfirmer) Prompts() []confirm.Prompt { return c.prompts }

// PageBuilder allows fluent construction of a Harness.
type PageBuilder struct {
	markup   string
	location string
	cfg      todoui.Config
	answers  []bool
	modal    bool
}

// NewPage starts a builder for a page with the given HTML.
func NewPage(markup string) *PageBuilder {
	return &PageBuilder{
		markup:   markup,
		location: DefaultLocation,
		cfg:      todoui.DefaultConfig(),
	}
}

// At sets the page URL.
func (b *PageBuilder) At(location string) *PageBuilder {
	b.location = location
	return b
}

// WithConfig sets the engine configuration. Its Confirmer is replaced by
// the harness's scripted confirmer unless WithModal is used.
func (b *PageBuilder) WithConfig(cfg todoui.Config) *PageBuilder {
	b.cfg = cfg
	return b
}

// Confirm queues confirmation answers.
func (b *PageBuilder) Confirm(answers ...bool) *PageBuilder {
	b.answers = append(b.answers, answers...)
	return b
}

// WithModal keeps the engine's in-page modal confirmer instead of the
// scripted one.
func (b *PageBuilder) WithModal() *PageBuilder {
	b.modal = true
	return b
}

// Build parses the page and loads the engine.
func (b *PageBuilder) Build() (*Harness, error) {
	h := &Harness{
		Navigator: &RecordingNavigator{},
		Confirmer: &ScriptedConfirmer{},
		Loop:      sched.NewManual(Epoch),
	}
	h.Confirmer.Queue(b.answers...)

	doc, err := dom.ParseString(b.markup, b.location,
		dom.WithNavigator(h.Navigator),
		dom.WithLogger(b.cfg.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("vtest: parse page: %w", err)
	}
	h.Doc = doc

	cfg := b.cfg
	if !b.modal {
		cfg.Confirmer = h.Confirmer
	}
	h.Page = todoui.Load(doc, h.Loop, cfg)
	return h, nil
}

// Harness is a loaded page under test.
type Harness struct {
	Doc       *dom.Document
	Loop      *sched.Loop
	Page      *todoui.Page
	Navigator *RecordingNavigator
	Confirmer *ScriptedConfirmer
}

// Find returns every element matching expr.
func (h *Harness) Find(expr string) []*html.Node {
	return dom.Find(h.Doc.Root(), expr)
}

// FindOne returns the first element matching expr, or nil.
func (h *Harness) FindOne(expr string) *html.Node {
	return dom.FindOne(h.Doc.Root(), expr)
}

func (h *Harness) one(expr string) (*html.Node, error) {
	n, err := dom.Query(h.Doc.Root(), expr)
	if err != nil {
		return nil, fmt.Errorf("vtest: %s: %w", expr, err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, expr)
	}
	return n, nil
}

// Fill sets the value of the control matching expr and dispatches input.
func (h *Harness) Fill(expr, value string) error {
	n, err := h.one(expr)
	if err != nil {
		return err
	}
	h.Doc.Input(n, value)
	return nil
}

// Click clicks the element matching expr.
func (h *Harness) Click(expr string) error {
	n, err := h.one(expr)
	if err != nil {
		return err
	}
	return h.Doc.Click(n)
}

// Hover moves the pointer onto (enter) or off the element matching expr.
func (h *Harness) Hover(expr string, enter bool) error {
	n, err := h.one(expr)
	if err != nil {
		return err
	}
	h.Doc.Hover(n, enter)
	return nil
}

// Submit requests submission of the form matching expr, as pressing Enter
// would. It reports whether the submission went out immediately.
func (h *Harness) Submit(expr string) (bool, error) {
	n, err := h.one(expr)
	if err != nil {
		return false, err
	}
	return h.Doc.RequestSubmit(n)
}

// Advance moves the loop's clock forward by d.
func (h *Harness) Advance(d time.Duration) int {
	return h.Loop.Advance(d)
}

// Elapsed returns how far the loop's clock has moved.
func (h *Harness) Elapsed() time.Duration {
	return h.Loop.Now().Sub(Epoch)
}

package scenario

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/vango-dev/todoui"
	"github.com/vango-dev/todoui/internal/errors"
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/toast"
	"github.com/vango-dev/todoui/pkg/vtest"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Index  int
	Action string
	Line   int

	// At is the virtual time the step ran at, relative to page load.
	At time.Duration

	// NavigationErr is a failed native submission. It does not fail the
	// step.
	NavigationErr error

	Err error
}

// Report is the outcome of one scenario run.
type Report struct {
	Name        string
	File        string
	Steps       []StepResult
	Submissions []dom.Submission
	Elapsed     time.Duration
	Err         error
}

// Passed reports whether every step succeeded.
func (r *Report) Passed() bool { return r.Err == nil }

// Runner executes scenarios.
type Runner struct {
	cfg      todoui.Config
	logger   *zap.Logger
	parallel int
}

// Option configures a Runner.
type Option func(*Runner)

// WithConfig sets the engine configuration pages load with.
func WithConfig(cfg todoui.Config) Option {
	return func(r *Runner) {
		r.cfg = cfg
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithParallelism bounds how many scenarios RunAll runs at once.
func WithParallelism(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.parallel = n
		}
	}
}

// NewRunner creates a scenario runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		cfg:      todoui.DefaultConfig(),
		logger:   zap.NewNop(),
		parallel: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("scenario")
	return r
}

// Run executes s. The returned error is the first failing step, or a
// setup or cancellation error; the report is returned either way once the
// page has loaded.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Report, error) {
	markup, err := s.Markup()
	if err != nil {
		return nil, err
	}
	b := vtest.NewPage(markup).WithConfig(r.cfg).Confirm(s.Confirm...)
	if s.Location != "" {
		b = b.At(s.Location)
	}
	h, err := b.Build()
	if err != nil {
		return nil, errors.New("T006").Wrap(err)
	}
	if s.FailNavigation != "" {
		h.Navigator.Fail(stderrors.New(s.FailNavigation))
	}

	rep := &Report{Name: s.Name, File: s.file}
	log := r.logger.With(zap.String("scenario", s.Name))
	log.Debug("scenario started", zap.Int("steps", len(s.Steps)))

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			rep.Err = errors.New("T007").Wrap(err)
			break
		}
		res := StepResult{Index: i, Action: step.Action(), Line: step.Line, At: h.Elapsed()}
		res.NavigationErr, res.Err = r.step(h, step)
		rep.Steps = append(rep.Steps, res)

		if res.NavigationErr != nil {
			log.Debug("navigation failed", zap.Int("step", i+1), zap.Error(res.NavigationErr))
		}
		if res.Err != nil {
			code := "T004"
			if stderrors.Is(res.Err, vtest.ErrNotFound) {
				code = "T005"
			}
			rep.Err = locate(errors.New(code), s, step).Wrap(res.Err)
			log.Info("step failed", zap.Int("step", i+1), zap.String("action", res.Action), zap.Error(res.Err))
			break
		}
	}

	rep.Submissions = h.Navigator.Submissions()
	rep.Elapsed = h.Elapsed()
	log.Debug("scenario finished",
		zap.Bool("passed", rep.Passed()),
		zap.Int("submissions", len(rep.Submissions)),
		zap.Duration("elapsed", rep.Elapsed),
	)
	return rep, rep.Err
}

func (r *Runner) step(h *vtest.Harness, step Step) (navErr, err error) {
	switch step.Action() {
	case ActionFill:
		return nil, h.Fill(step.Fill.Target, step.Fill.Value)
	case ActionClick:
		return splitNav(h.Click(step.Click))
	case ActionSubmit:
		_, err := h.Submit(step.Submit)
		return splitNav(err)
	case ActionHover:
		return nil, h.Hover(step.Hover, true)
	case ActionLeave:
		return nil, h.Hover(step.Leave, false)
	case ActionAdvance:
		h.Advance(time.Duration(*step.Advance))
		return nil, nil
	case ActionExpect:
		return nil, check(h, step.Expect)
	}
	return nil, fmt.Errorf("unknown action %q", step.Action())
}

// splitNav separates navigation failures, which are part of the scenario,
// from lookup errors.
func splitNav(err error) (navErr, stepErr error) {
	if err == nil || stderrors.Is(err, vtest.ErrNotFound) {
		return nil, err
	}
	if stderrors.Is(err, dom.ErrUnloaded) {
		return nil, err
	}
	return err, nil
}

func check(h *vtest.Harness, e *Expect) error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if e.Submissions != nil {
		add(vtest.CheckSubmissions(h, *e.Submissions))
	}
	if e.Notifications != nil {
		add(vtest.CheckNotifications(h, *e.Notifications))
	}
	if e.Unloaded != nil && h.Doc.Unloaded() != *e.Unloaded {
		add(fmt.Errorf("%w: unloaded=%t, want %t", vtest.ErrMismatch, h.Doc.Unloaded(), *e.Unloaded))
	}
	if e.Elapsed != nil && h.Elapsed() != time.Duration(*e.Elapsed) {
		add(fmt.Errorf("%w: elapsed %v, want %v", vtest.ErrMismatch, h.Elapsed(), time.Duration(*e.Elapsed)))
	}
	for _, s := range e.Contains {
		add(vtest.CheckContains(h, s))
	}
	for _, s := range e.NotContains {
		add(vtest.CheckNotContains(h, s))
	}
	for _, expr := range sortedKeys(e.Count) {
		add(vtest.CheckCount(h, expr, e.Count[expr]))
	}
	for _, expr := range sortedKeys(e.Annotations) {
		add(vtest.CheckAnnotation(h, expr, e.Annotations[expr]))
	}
	for _, expr := range sortedKeys(e.Busy) {
		add(vtest.CheckBusy(h, expr, e.Busy[expr]))
	}
	for _, n := range e.Notification {
		add(vtest.CheckNotification(h, toast.ParseType(n.Kind), n.Message))
	}
	for _, st := range e.Styles {
		add(vtest.CheckStyle(h, st.Target, st.Property, st.Value))
	}
	return stderrors.Join(errs...)
}

// RunAll runs every scenario, at most WithParallelism at a time. Each
// scenario has its own page and clock. Reports are returned in input
// order; the error joins every failure.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario) ([]*Report, error) {
	reports := make([]*Report, len(scenarios))
	failures := make([]error, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, s := range scenarios {
		g.Go(func() error {
			rep, err := r.Run(ctx, s)
			if rep == nil {
				rep = &Report{Name: s.Name, File: s.file, Err: err}
			}
			reports[i] = rep
			failures[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, stderrors.Join(failures...)
}

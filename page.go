package todoui

import (
	"github.com/vango-dev/todoui/pkg/animate"
	"github.com/vango-dev/todoui/pkg/confirm"
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/form"
	"github.com/vango-dev/todoui/pkg/gate"
	"github.com/vango-dev/todoui/pkg/sched"
	"github.com/vango-dev/todoui/pkg/toast"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Page is the engine attached to one loaded document.
type Page struct {
	doc    *dom.Document
	loop   *sched.Loop
	cfg    Config
	logger *zap.Logger

	Validator     *form.FieldValidator
	Notifications *toast.Manager
	Gates         *gate.Set
	Animator      *animate.Animator
	Confirmer     confirm.Confirmer

	setup *sched.Task
}

// Load attaches the engine to doc. Call it once per document, when the page
// is ready. Path-specific setup is scheduled separately and runs after
// Timing.PageSetupDelay.
func Load(doc *dom.Document, loop *sched.Loop, cfg Config) *Page {
	logger := cfg.logger().Named("todoui")
	p := &Page{
		doc:    doc,
		loop:   loop,
		cfg:    cfg,
		logger: logger,
	}

	p.Confirmer = cfg.Confirmer
	if p.Confirmer == nil {
		p.Confirmer = confirm.NewModal(doc,
			confirm.WithLabels(cfg.Messages.Confirm),
			confirm.WithLogger(cfg.Logger),
		)
	}

	p.Validator = form.NewFieldValidator(cfg.Messages.Form, form.WithLogger(cfg.Logger))

	toastOpts := []toast.Option{
		toast.WithTiming(buildToastTiming(cfg.Timing)),
		toast.WithLogger(cfg.Logger),
	}
	if cfg.Observer != nil {
		toastOpts = append(toastOpts, toast.WithObserver(cfg.Observer))
	}
	p.Notifications = toast.NewManager(doc, loop, toastOpts...)

	p.Gates = gate.NewSet(doc, loop, buildGateConfig(cfg, p.Validator, p.Notifications, p.Confirmer))

	p.Animator = animate.New(doc, loop,
		animate.WithTiming(buildAnimateTiming(cfg.Timing)),
		animate.WithWidgets(cfg.Widgets),
		animate.WithLogger(cfg.Logger),
	)

	doc.OnUnload(func() {
		n := loop.CancelAll()
		logger.Debug("page unloaded", zap.Int("cancelled_tasks", n))
	})

	if cfg.DisableAnimations {
		p.Animator.Tooltips()
	} else {
		p.setup = p.Animator.Ready()
	}
	bindings := p.Gates.Scan()
	alerts := p.Notifications.AutoExpire()
	p.Notifications.BindDismiss()

	logger.Debug("page loaded",
		zap.String("location", doc.Location().String()),
		zap.Int("bindings", len(bindings)),
		zap.Int("alerts", alerts),
	)
	return p
}

// Document returns the page's document.
func (p *Page) Document() *dom.Document { return p.doc }

// Loop returns the loop the page schedules on.
func (p *Page) Loop() *sched.Loop { return p.loop }

// Config returns the configuration the page was loaded with.
func (p *Page) Config() Config { return p.cfg }

// SetupTask returns the scheduled page-path setup, or nil when animations
// are disabled.
func (p *Page) SetupTask() *sched.Task { return p.setup }

// Notify shows a transient notification.
func (p *Page) Notify(message string, kind toast.Type) *toast.Notification {
	return p.Notifications.Show(message, kind)
}

// Rescan binds the gates to forms added since load and schedules expiry
// for newly inserted server alerts. It returns the new bindings.
func (p *Page) Rescan() []gate.Binding {
	bindings := p.Gates.Scan()
	alerts := p.Notifications.AutoExpire()
	p.logger.Debug("rescanned", zap.Int("bindings", len(bindings)), zap.Int("alerts", alerts))
	return bindings
}

// Settle restores the busy submit button of f at once. Hosts call it when a
// submission came back without leaving the page.
func (p *Page) Settle(f *html.Node) bool {
	return p.Gates.Settle(f)
}

// Unload tears the page down: the document unloads and every pending task
// is cancelled.
func (p *Page) Unload() {
	p.doc.Unload()
}

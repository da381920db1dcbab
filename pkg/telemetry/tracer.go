package telemetry

import (
	"context"
	"sync"

	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/gate"
	"github.com/vango-dev/todoui/pkg/toast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

// Default tracer name for the engine.
const defaultTracerName = "todoui"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "todoui").
	TracerName string

	// Provider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	Provider trace.TracerProvider

	// Context is the parent of every span (default: context.Background()).
	Context context.Context
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// WithParentContext sets the parent context for spans, typically the
// request or session context of the page.
func WithParentContext(ctx context.Context) TracerOption {
	return func(c *TracerConfig) {
		c.Context = ctx
	}
}

// Tracer records engine activity as spans. Notifications and busy states
// get a span covering their lifetime; one-shot gate decisions get a short
// span each.
type Tracer struct {
	tracer trace.Tracer
	ctx    context.Context

	mu            sync.Mutex
	notifications map[*toast.Notification]trace.Span
	busy          map[*html.Node]trace.Span
}

// NewTracer creates a span-recording observer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
	return &Tracer{
		tracer:        config.Provider.Tracer(config.TracerName),
		ctx:           config.Context,
		notifications: make(map[*toast.Notification]trace.Span),
		busy:          make(map[*html.Node]trace.Span),
	}
}

func formAttrs(f *html.Node) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("form.action", dom.Attr(f, "action")),
		attribute.String("form.method", dom.Attr(f, "method")),
	}
}

func (t *Tracer) instant(name string, attrs ...attribute.KeyValue) trace.Span {
	_, span := t.tracer.Start(t.ctx, name, trace.WithAttributes(attrs...))
	return span
}

func (t *Tracer) NotificationShown(n *toast.Notification) {
	_, span := t.tracer.Start(t.ctx, "todoui.notification",
		trace.WithTimestamp(n.CreatedAt),
		trace.WithAttributes(
			attribute.String("notification.id", n.ID),
			attribute.String("notification.kind", string(n.Kind)),
			attribute.Bool("notification.static", n.Static),
		),
	)
	t.mu.Lock()
	t.notifications[n] = span
	t.mu.Unlock()
}

func (t *Tracer) NotificationRemoved(n *toast.Notification) {
	t.mu.Lock()
	span, ok := t.notifications[n]
	delete(t.notifications, n)
	t.mu.Unlock()
	if ok {
		span.End()
	}
}

func (t *Tracer) SubmissionBlocked(f *html.Node, errors int) {
	span := t.instant("todoui.submission_blocked",
		append(formAttrs(f), attribute.Int("validation.errors", errors))...)
	span.SetStatus(codes.Error, "validation failed")
	span.End()
}

func (t *Tracer) BusyEntered(f *html.Node) {
	span := t.instant("todoui.busy", formAttrs(f)...)
	t.mu.Lock()
	if old, ok := t.busy[f]; ok {
		old.End()
	}
	t.busy[f] = span
	t.mu.Unlock()
}

func (t *Tracer) BusyRestored(f *html.Node, reason string) {
	t.mu.Lock()
	span, ok := t.busy[f]
	delete(t.busy, f)
	t.mu.Unlock()
	if ok {
		span.SetAttributes(attribute.String("busy.restore_reason", reason))
		span.End()
	}
}

func (t *Tracer) ToggleDeferred(f *html.Node) {
	t.instant("todoui.toggle_deferred", formAttrs(f)...).End()
}

func (t *Tracer) ConfirmResolved(f *html.Node, accepted bool) {
	t.instant("todoui.confirm",
		append(formAttrs(f), attribute.Bool("confirm.accepted", accepted))...).End()
}

func (t *Tracer) NativeSubmitted(f *html.Node, kind gate.Kind, err error) {
	span := t.instant("todoui.native_submit",
		append(formAttrs(f), attribute.String("gate.kind", kind.String()))...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Open returns the number of notification and busy spans not yet ended.
func (t *Tracer) Open() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.notifications) + len(t.busy)
}

// Close ends every span still open, for example at shutdown. It returns
// the number of spans ended.
func (t *Tracer) Close() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for k, span := range t.notifications {
		span.SetAttributes(attribute.Bool("page.unloaded", true))
		span.End()
		delete(t.notifications, k)
		n++
	}
	for k, span := range t.busy {
		span.SetAttributes(attribute.Bool("page.unloaded", true))
		span.End()
		delete(t.busy, k)
		n++
	}
	return n
}

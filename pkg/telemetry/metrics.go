package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/todoui/pkg/gate"
	"github.com/vango-dev/todoui/pkg/toast"
	"golang.org/x/net/html"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "todoui").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notification visibility.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Now reports the current time. Pages on a manual loop pass loop.Now so
	// durations follow virtual time.
	Now func() time.Time
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) MetricsOption {
	return func(c *MetricsConfig) {
		c.Now = now
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "todoui",
		Buckets:   []float64{0.5, 1, 2, 4, 4.5, 5, 5.5, 10, 30},
		Registry:  prometheus.DefaultRegisterer,
		Now:       time.Now,
	}
}

// Metrics records engine events as Prometheus metrics.
type Metrics struct {
	now func() time.Time

	notificationsShown   *prometheus.CounterVec
	notificationsRemoved *prometheus.CounterVec
	notificationsActive  prometheus.Gauge
	notificationVisible  prometheus.Histogram
	submissionsBlocked   prometheus.Counter
	validationErrors     prometheus.Counter
	busyEntered          prometheus.Counter
	busyRestored         *prometheus.CounterVec
	togglesDeferred      prometheus.Counter
	confirmations        *prometheus.CounterVec
	nativeSubmissions    *prometheus.CounterVec
	liveSessions         prometheus.Gauge
	wsErrors             *prometheus.CounterVec
}

// NewMetrics registers the engine metrics and returns an observer that
// updates them.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		now:                  config.Now,
		notificationsShown:   counterVec("notifications_shown_total", "Notifications shown, by kind and source", "kind", "source"),
		notificationsRemoved: counterVec("notifications_removed_total", "Notifications removed, by kind", "kind"),
		notificationsActive:  gauge("notifications_active", "Notifications currently in pages"),
		notificationVisible: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notification_visible_seconds",
			Help:        "Time from showing a notification to removing it",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		submissionsBlocked: counter("submissions_blocked_total", "Submits suppressed by validation"),
		validationErrors:   counter("validation_errors_total", "Failing fields across blocked submits"),
		busyEntered:        counter("busy_entered_total", "Submit buttons put in the busy state"),
		busyRestored:       counterVec("busy_restored_total", "Busy submit buttons restored, by reason", "reason"),
		togglesDeferred:    counter("toggles_deferred_total", "Deferred toggle submissions"),
		confirmations:      counterVec("confirmations_total", "Delete confirmations, by result", "result"),
		nativeSubmissions:  counterVec("native_submissions_total", "Submissions performed by gates, by gate and status", "gate", "status"),
		liveSessions:       gauge("live_sessions", "Open live-page sessions"),
		wsErrors:           counterVec("websocket_errors_total", "Live-page WebSocket errors, by type", "type"),
	}
}

func source(n *toast.Notification) string {
	if n.Static {
		return "server"
	}
	return "runtime"
}

func (m *Metrics) NotificationShown(n *toast.Notification) {
	m.notificationsShown.WithLabelValues(string(n.Kind), source(n)).Inc()
	m.notificationsActive.Inc()
}

func (m *Metrics) NotificationRemoved(n *toast.Notification) {
	m.notificationsRemoved.WithLabelValues(string(n.Kind)).Inc()
	m.notificationsActive.Dec()
	if !n.CreatedAt.IsZero() {
		m.notificationVisible.Observe(m.now().Sub(n.CreatedAt).Seconds())
	}
}

func (m *Metrics) SubmissionBlocked(_ *html.Node, errors int) {
	m.submissionsBlocked.Inc()
	m.validationErrors.Add(float64(errors))
}

func (m *Metrics) BusyEntered(*html.Node) { m.busyEntered.Inc() }

func (m *Metrics) BusyRestored(_ *html.Node, reason string) {
	m.busyRestored.WithLabelValues(reason).Inc()
}

func (m *Metrics) ToggleDeferred(*html.Node) { m.togglesDeferred.Inc() }

func (m *Metrics) ConfirmResolved(_ *html.Node, accepted bool) {
	result := "declined"
	if accepted {
		result = "accepted"
	}
	m.confirmations.WithLabelValues(result).Inc()
}

func (m *Metrics) NativeSubmitted(_ *html.Node, kind gate.Kind, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.nativeSubmissions.WithLabelValues(kind.String(), status).Inc()
}

// SessionOpened records a live-page session starting.
func (m *Metrics) SessionOpened() { m.liveSessions.Inc() }

// SessionClosed records a live-page session ending.
func (m *Metrics) SessionClosed() { m.liveSessions.Dec() }

// WebSocketError records a live-page socket error.
func (m *Metrics) WebSocketError(kind string) {
	m.wsErrors.WithLabelValues(kind).Inc()
}

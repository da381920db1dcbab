package todoui

import (
	"time"

	"github.com/vango-dev/todoui/pkg/animate"
	"github.com/vango-dev/todoui/pkg/confirm"
	"github.com/vango-dev/todoui/pkg/form"
	"github.com/vango-dev/todoui/pkg/gate"
	"github.com/vango-dev/todoui/pkg/toast"
	"go.uber.org/zap"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config is the engine configuration for one page.
type Config struct {
	// Timing holds every delay the engine schedules.
	Timing TimingConfig

	// Messages holds the user-facing strings.
	Messages MessagesConfig

	// Confirmer answers delete confirmations.
	// If nil, an in-page modal dialog is used.
	Confirmer confirm.Confirmer

	// Widgets is the client widget library used for tooltips.
	// If nil, tooltips are not initialized.
	Widgets animate.WidgetLibrary

	// Observer receives notification and gate events (metrics, tracing).
	Observer Observer

	// DisableAnimations skips card entrance, hover lift and page setup.
	DisableAnimations bool

	// Logger is the structured logger for the engine.
	// If nil, logging is disabled.
	Logger *zap.Logger
}

// TimingConfig holds the engine's durations. Zero fields use defaults.
type TimingConfig struct {
	// ToastDisplay is how long a runtime notification is fully visible.
	// Default: 4s.
	ToastDisplay time.Duration `mapstructure:"toast_display" yaml:"toast_display"`

	// ToastRemoveDelay is the gap between fade and removal.
	// Default: 300ms.
	ToastRemoveDelay time.Duration `mapstructure:"toast_remove_delay" yaml:"toast_remove_delay"`

	// AlertDisplay is how long a server-rendered alert is visible.
	// Default: 5s.
	AlertDisplay time.Duration `mapstructure:"alert_display" yaml:"alert_display"`

	// AlertFade is the fade length of server-rendered alerts.
	// Default: 500ms.
	AlertFade time.Duration `mapstructure:"alert_fade" yaml:"alert_fade"`

	// BusyTimeout restores a busy submit button if the page did not
	// navigate away. Default: 5s.
	BusyTimeout time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout"`

	// ToggleDelay defers toggle submissions. Default: 500ms.
	ToggleDelay time.Duration `mapstructure:"toggle_delay" yaml:"toggle_delay"`

	// CardStagger is the delay between card entrances. Default: 100ms.
	CardStagger time.Duration `mapstructure:"card_stagger" yaml:"card_stagger"`

	// PageSetupDelay is when path-specific setup runs after load.
	// Default: 100ms.
	PageSetupDelay time.Duration `mapstructure:"page_setup_delay" yaml:"page_setup_delay"`

	// ProgressDelay is when dashboard progress bars start filling.
	// Default: 500ms.
	ProgressDelay time.Duration `mapstructure:"progress_delay" yaml:"progress_delay"`
}

// MessagesConfig holds the user-facing strings, grouped by component.
type MessagesConfig struct {
	Form    form.Messages  `mapstructure:"form" yaml:"form"`
	Gate    gate.Messages  `mapstructure:"gate" yaml:"gate"`
	Confirm confirm.Labels `mapstructure:"confirm" yaml:"confirm"`
}

// =============================================================================
// Default Configurations
// =============================================================================

// DefaultConfig returns a Config with the stock timings and Korean messages.
func DefaultConfig() Config {
	return Config{
		Timing:   DefaultTimingConfig(),
		Messages: DefaultMessagesConfig(),
	}
}

// DefaultTimingConfig returns the stock durations.
func DefaultTimingConfig() TimingConfig {
	t := toast.DefaultTiming()
	a := animate.DefaultTiming()
	return TimingConfig{
		ToastDisplay:     t.Display,
		ToastRemoveDelay: t.RemoveDelay,
		AlertDisplay:     t.AlertDisplay,
		AlertFade:        t.AlertFade,
		BusyTimeout:      gate.DefaultBusyTimeout,
		ToggleDelay:      gate.DefaultToggleDelay,
		CardStagger:      a.CardStagger,
		PageSetupDelay:   a.PageSetupDelay,
		ProgressDelay:    a.ProgressDelay,
	}
}

// DefaultMessagesConfig returns the stock messages.
func DefaultMessagesConfig() MessagesConfig {
	return MessagesConfig{
		Form:    form.DefaultMessages(),
		Gate:    gate.DefaultMessages(),
		Confirm: confirm.DefaultLabels(),
	}
}

// =============================================================================
// Config to component option translation
// =============================================================================

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func buildToastTiming(t TimingConfig) toast.Timing {
	return toast.Timing{
		Display:      t.ToastDisplay,
		RemoveDelay:  t.ToastRemoveDelay,
		AlertDisplay: t.AlertDisplay,
		AlertFade:    t.AlertFade,
	}
}

func buildAnimateTiming(t TimingConfig) animate.Timing {
	return animate.Timing{
		CardStagger:    t.CardStagger,
		PageSetupDelay: t.PageSetupDelay,
		ProgressDelay:  t.ProgressDelay,
	}
}

func buildGateConfig(cfg Config, v *form.FieldValidator, n gate.Notifier, c confirm.Confirmer) gate.Config {
	gc := gate.Config{
		Validator:   v,
		Notifier:    n,
		Confirmer:   c,
		Messages:    cfg.Messages.Gate,
		BusyTimeout: cfg.Timing.BusyTimeout,
		ToggleDelay: cfg.Timing.ToggleDelay,
		Logger:      cfg.logger(),
	}
	if cfg.Observer != nil {
		gc.Observer = cfg.Observer
	}
	return gc
}

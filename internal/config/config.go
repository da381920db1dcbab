package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/vango-dev/todoui"
	"github.com/vango-dev/todoui/pkg/pages"
	"go.uber.org/zap"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "todoui"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TODOUI"

	// DefaultAddr is the default live server listen address.
	DefaultAddr = ":8080"

	// DefaultPagesDir is the default directory of page fixtures.
	DefaultPagesDir = "pages"

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"
)

// ErrInvalid is returned (wrapped) when the configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete todoui configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`

	// file is the configuration file actually read, if any.
	file string
}

// ServerConfig configures the live-page server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr" yaml:"addr"`

	// PagesDir holds the server-rendered page fixtures served to clients.
	// An s3://bucket/prefix value reads them from S3 instead.
	PagesDir string `mapstructure:"pages_dir" yaml:"pages_dir"`

	// S3 configures the client used for s3:// page sources.
	S3 S3Config `mapstructure:"s3" yaml:"s3"`

	// Origin is the public base URL pages are resolved against.
	Origin string `mapstructure:"origin" yaml:"origin"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// S3Config configures the S3 page source.
type S3Config struct {
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	PathStyle bool   `mapstructure:"path_style" yaml:"path_style"`
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is console or json.
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig configures the Prometheus observer and endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Path      string `mapstructure:"path" yaml:"path"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	TracerName string `mapstructure:"tracer_name" yaml:"tracer_name"`
}

// EngineConfig is the file form of todoui.Config.
type EngineConfig struct {
	DisableAnimations bool                  `mapstructure:"disable_animations" yaml:"disable_animations"`
	Timing            todoui.TimingConfig   `mapstructure:"timing" yaml:"timing"`
	Messages          todoui.MessagesConfig `mapstructure:"messages" yaml:"messages"`
}

// Todoui converts the engine section to a todoui.Config.
func (e EngineConfig) Todoui(logger *zap.Logger) todoui.Config {
	cfg := todoui.DefaultConfig()
	cfg.Timing = e.Timing
	cfg.Messages = e.Messages
	cfg.DisableAnimations = e.DisableAnimations
	cfg.Logger = logger
	return cfg
}

// SetDefaults registers every default on v. Keys must be known to viper for
// environment overrides to apply.
func SetDefaults(v *viper.Viper) {
	// -- Server --
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.pages_dir", DefaultPagesDir)
	v.SetDefault("server.origin", "http://localhost:8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.s3.region", "us-east-1")
	v.SetDefault("server.s3.endpoint", "")
	v.SetDefault("server.s3.path_style", false)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	// -- Metrics --
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", DefaultMetricsPath)
	v.SetDefault("metrics.namespace", "todoui")

	// -- Tracing --
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.tracer_name", "todoui")

	// -- Engine --
	def := todoui.DefaultConfig()
	v.SetDefault("engine.disable_animations", false)
	v.SetDefault("engine.timing.toast_display", def.Timing.ToastDisplay)
	v.SetDefault("engine.timing.toast_remove_delay", def.Timing.ToastRemoveDelay)
	v.SetDefault("engine.timing.alert_display", def.Timing.AlertDisplay)
	v.SetDefault("engine.timing.alert_fade", def.Timing.AlertFade)
	v.SetDefault("engine.timing.busy_timeout", def.Timing.BusyTimeout)
	v.SetDefault("engine.timing.toggle_delay", def.Timing.ToggleDelay)
	v.SetDefault("engine.timing.card_stagger", def.Timing.CardStagger)
	v.SetDefault("engine.timing.page_setup_delay", def.Timing.PageSetupDelay)
	v.SetDefault("engine.timing.progress_delay", def.Timing.ProgressDelay)

	v.SetDefault("engine.messages.form.required", def.Messages.Form.Required)
	v.SetDefault("engine.messages.form.username_length", def.Messages.Form.UsernameLength)
	v.SetDefault("engine.messages.form.password_length", def.Messages.Form.PasswordLength)
	v.SetDefault("engine.messages.gate.invalid", def.Messages.Gate.Invalid)
	v.SetDefault("engine.messages.gate.busy", def.Messages.Gate.Busy)
	v.SetDefault("engine.messages.gate.confirm_title", def.Messages.Gate.ConfirmTitle)
	v.SetDefault("engine.messages.gate.confirm_message", def.Messages.Gate.ConfirmMessage)
	v.SetDefault("engine.messages.confirm.accept", def.Messages.Confirm.Accept)
	v.SetDefault("engine.messages.confirm.cancel", def.Messages.Confirm.Cancel)
}

// New returns a viper instance with defaults and environment overrides
// set, reading path if non-empty or todoui.yaml from the working directory
// otherwise.
func New(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads and validates the configuration. A missing default file is
// not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := New(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.file = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// File returns the configuration file that was read, or "".
func (c *Config) File() string { return c.file }

// Validate checks the configuration.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is empty")
	}
	if pages.IsS3URL(c.Server.PagesDir) {
		if _, _, err := pages.ParseURL(c.Server.PagesDir); err != nil {
			problems = append(problems, "server.pages_dir: "+err.Error())
		}
		if c.Server.S3.Region == "" {
			problems = append(problems, "server.s3.region is empty")
		}
	}
	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logger.level %q is not one of debug, info, warn, error", c.Logger.Level))
	}
	switch strings.ToLower(c.Logger.Format) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logger.format %q is not console or json", c.Logger.Format))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problems = append(problems, "metrics.path must start with /")
	}
	t := c.Engine.Timing
	for name, d := range map[string]time.Duration{
		"toast_display":      t.ToastDisplay,
		"toast_remove_delay": t.ToastRemoveDelay,
		"alert_display":      t.AlertDisplay,
		"alert_fade":         t.AlertFade,
		"busy_timeout":       t.BusyTimeout,
		"toggle_delay":       t.ToggleDelay,
		"card_stagger":       t.CardStagger,
		"page_setup_delay":   t.PageSetupDelay,
		"progress_delay":     t.ProgressDelay,
	} {
		if d < 0 {
			problems = append(problems, "engine.timing."+name+" is negative")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

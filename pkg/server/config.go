package server

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/todoui"
	"go.uber.org/zap"
)

// SessionConfig holds configuration for individual sessions.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message or pong from
	// the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// FlushInterval is how often timer-driven page changes are pushed.
	// Default: 50 milliseconds.
	FlushInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming message.
	// Default: 64KB.
	MaxMessageSize int64

	// SendQueue is the number of outgoing messages buffered per session. A
	// session whose queue overflows is closed.
	// Default: 64.
	SendQueue int
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		FlushInterval:     50 * time.Millisecond,
		MaxMessageSize:    64 * 1024,
		SendQueue:         64,
	}
}

func (c SessionConfig) withDefaults() SessionConfig {
	d := DefaultSessionConfig()
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = d.FlushInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.SendQueue <= 0 {
		c.SendQueue = d.SendQueue
	}
	return c
}

// SessionObserver is told about session lifecycle and transport errors.
// *telemetry.Metrics implements it.
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
	WebSocketError(kind string)
}

// WebSocket error kinds reported to the SessionObserver.
const (
	ErrKindUpgrade  = "upgrade"
	ErrKindRead     = "read"
	ErrKindWrite    = "write"
	ErrKindDecode   = "decode"
	ErrKindOverflow = "overflow"
	ErrKindTarget   = "target"
)

// Config configures the live server.
type Config struct {
	// Address is the listen address.
	// Default: ":8080".
	Address string

	// Pages holds the page fixtures, one HTML file per page.
	Pages fs.FS

	// Origin is the scheme and host page URLs are built on.
	// Default: "http://localhost".
	Origin string

	// Engine is the engine configuration every session loads with. Its
	// Confirmer is replaced by the session's remote confirmer.
	Engine todoui.Config

	Session SessionConfig

	// Gatherer, when set, is served at MetricsPath.
	Gatherer prometheus.Gatherer

	// MetricsPath defaults to "/metrics".
	MetricsPath string

	// Sessions receives session lifecycle events.
	Sessions SessionObserver

	// CheckOrigin validates WebSocket origins. Nil accepts same-origin
	// requests only.
	CheckOrigin func(r *http.Request) bool

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	Logger *zap.Logger
}

// DefaultConfig returns a Config with sensible defaults and no pages.
func DefaultConfig() Config {
	return Config{
		Address:         ":8080",
		Origin:          "http://localhost",
		Engine:          todoui.DefaultConfig(),
		Session:         DefaultSessionConfig(),
		MetricsPath:     "/metrics",
		ShutdownTimeout: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.Origin == "" {
		c.Origin = d.Origin
	}
	if c.MetricsPath == "" {
		c.MetricsPath = d.MetricsPath
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Sessions == nil {
		c.Sessions = nopSessions{}
	}
	c.Session = c.Session.withDefaults()
	return c
}

type nopSessions struct{}

func (nopSessions) SessionOpened() {}
func (nopSessions) SessionClosed() {}
func (nopSessions) WebSocketError(string) {}

package gate

import (
	"strings"
	"time"

	"github.com/vango-dev/todoui/pkg/confirm"
	"github.com/vango-dev/todoui/pkg/form"
	"github.com/vango-dev/todoui/pkg/toast"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Kind identifies a gate.
type Kind int

const (
	KindGeneric Kind = iota
	KindToggle
	KindConfirm
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindToggle:
		return "toggle"
	case KindConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// Action substrings that select the toggle and confirm gates.
const (
	ToggleAction = "/toggle"
	DeleteAction = "/delete"
)

// Binding is a gate attached to a form.
type Binding struct {
	Form *html.Node
	Kind Kind
}

// Matches reports whether a form with the given action attribute is bound
// by kind.
func (k Kind) Matches(action string) bool {
	switch k {
	case KindGeneric:
		return true
	case KindToggle:
		return strings.Contains(action, ToggleAction)
	case KindConfirm:
		return strings.Contains(action, DeleteAction)
	default:
		return false
	}
}

// Kinds lists the gates in binding order.
var Kinds = []Kind{KindGeneric, KindToggle, KindConfirm}

// Notifier shows user-facing notifications. *toast.Manager implements it.
type Notifier interface {
	Show(message string, kind toast.Type) *toast.Notification
}

// Observer is told about gate decisions. NativeSubmitted covers the
// submissions a gate performs itself (toggle and confirm); the generic path
// submits through the document's own default action.
type Observer interface {
	SubmissionBlocked(form *html.Node, errors int)
	BusyEntered(form *html.Node)
	BusyRestored(form *html.Node, reason string)
	ToggleDeferred(form *html.Node)
	ConfirmResolved(form *html.Node, accepted bool)
	NativeSubmitted(form *html.Node, kind Kind, err error)
}

// Reasons passed to Observer.BusyRestored.
const (
	RestoreTimeout  = "timeout"
	RestoreSettled  = "settled"
	RestoreUnloaded = "unloaded"
)

// Messages holds the user-facing gate strings.
type Messages struct {
	Invalid        string `mapstructure:"invalid" yaml:"invalid"`
	Busy           string `mapstructure:"busy" yaml:"busy"`
	ConfirmTitle   string `mapstructure:"confirm_title" yaml:"confirm_title"`
	ConfirmMessage string `mapstructure:"confirm_message" yaml:"confirm_message"`
}

// DefaultMessages returns the stock Korean strings.
func DefaultMessages() Messages {
	return Messages{
		Invalid:        "입력 정보를 확인해주세요.",
		Busy:           "처리 중...",
		ConfirmTitle:   "정말 삭제하시겠습니까?",
		ConfirmMessage: "이 작업은 되돌릴 수 없습니다.",
	}
}

func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	if m.Invalid == "" {
		m.Invalid = d.Invalid
	}
	if m.Busy == "" {
		m.Busy = d.Busy
	}
	if m.ConfirmTitle == "" {
		m.ConfirmTitle = d.ConfirmTitle
	}
	if m.ConfirmMessage == "" {
		m.ConfirmMessage = d.ConfirmMessage
	}
	return m
}

// Default timings.
const (
	DefaultBusyTimeout = 5 * time.Second
	DefaultToggleDelay = 500 * time.Millisecond
)

// Config holds the dependencies shared by the gates. Zero values get
// defaults; a nil Confirmer declines every request.
type Config struct {
	Validator *form.FieldValidator
	Notifier  Notifier
	Confirmer confirm.Confirmer
	Messages  Messages

	BusyTimeout time.Duration
	ToggleDelay time.Duration

	Logger   *zap.Logger
	Observer Observer
}

func (c Config) withDefaults() Config {
	if c.Validator == nil {
		c.Validator = form.NewFieldValidator(form.DefaultMessages())
	}
	if c.Confirmer == nil {
		c.Confirmer = confirm.Always(false)
	}
	c.Messages = c.Messages.withDefaults()
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = DefaultBusyTimeout
	}
	if c.ToggleDelay <= 0 {
		c.ToggleDelay = DefaultToggleDelay
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	return c
}

type nopObserver struct{}

func (nopObserver) SubmissionBlocked(*html.Node, int) {}
func (nopObserver) BusyEntered(*html.Node) {}
func (nopObserver) BusyRestored(*html.Node, string) {}
func (nopObserver) ToggleDeferred(*html.Node) {}
func (nopObserver) ConfirmResolved(*html.Node, bool) {}
func (nopObserver) NativeSubmitted(*html.Node, Kind, error) {}

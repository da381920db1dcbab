package toast

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vango-dev/todoui/pkg/dom"
	"github.com/vango-dev/todoui/pkg/sched"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Type is the notification kind.
type Type string

const (
	TypeSuccess Type = "success"
	TypeDanger  Type = "danger"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// ParseType maps a kind name to a Type. Unknown names become TypeInfo.
func ParseType(kind string) Type {
	switch t := Type(kind); t {
	case TypeSuccess, TypeDanger, TypeWarning, TypeInfo:
		return t
	default:
		return TypeInfo
	}
}

// Icon returns the Font Awesome icon name for the kind.
func (t Type) Icon() string {
	switch t {
	case TypeSuccess:
		return "check-circle"
	case TypeDanger:
		return "exclamation-circle"
	case TypeWarning:
		return "exclamation-triangle"
	default:
		return "info-circle"
	}
}

// Notification is an alert on the page.
type Notification struct {
	ID        string
	Kind      Type
	Message   string
	CreatedAt time.Time
	Node      *html.Node

	// Static is true for alerts rendered by the server.
	Static bool
}

// Timing holds the notification lifecycle durations.
type Timing struct {
	// Display is how long a runtime notification stays fully visible.
	Display time.Duration

	// RemoveDelay is the gap between fading a runtime notification and
	// detaching it.
	RemoveDelay time.Duration

	// AlertDisplay is how long a server-rendered alert stays visible.
	AlertDisplay time.Duration

	// AlertFade is the fade transition length for server-rendered alerts,
	// after which they are detached.
	AlertFade time.Duration
}

// DefaultTiming returns the stock durations.
func DefaultTiming() Timing {
	return Timing{
		Display:      4 * time.Second,
		RemoveDelay:  300 * time.Millisecond,
		AlertDisplay: 5 * time.Second,
		AlertFade:    500 * time.Millisecond,
	}
}

// Observer is told about notification lifecycle events.
type Observer interface {
	NotificationShown(n *Notification)
	NotificationRemoved(n *Notification)
}

// XPath expressions for the page structure the manager relies on.
var (
	containerExpr = "//*[" + dom.HasClass("container") + "]"
	alertExpr     = "//*[" + dom.HasClass("alert") + "]"
)

// Manager creates and expires notifications on one page.
type Manager struct {
	doc      *dom.Document
	loop     *sched.Loop
	timing   Timing
	logger   *zap.Logger
	observer Observer

	active map[*html.Node]*Notification
	order  []*Notification
}

// Option configures a Manager.
type Option func(*Manager)

// WithTiming overrides the lifecycle durations. Zero fields keep defaults.
func WithTiming(t Timing) Option {
	return func(m *Manager) {
		d := DefaultTiming()
		if t.Display > 0 {
			d.Display = t.Display
		}
		if t.RemoveDelay > 0 {
			d.RemoveDelay = t.RemoveDelay
		}
		if t.AlertDisplay > 0 {
			d.AlertDisplay = t.AlertDisplay
		}
		if t.AlertFade > 0 {
			d.AlertFade = t.AlertFade
		}
		m.timing = d
	}
}

// WithLogger sets the manager logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// NewManager creates a notification manager for doc.
func NewManager(doc *dom.Document, loop *sched.Loop, opts ...Option) *Manager {
	m := &Manager{
		doc:    doc,
		loop:   loop,
		timing: DefaultTiming(),
		logger: zap.NewNop(),
		active: make(map[*html.Node]*Notification),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("toast")
	doc.OnUnload(m.release)
	return m
}

// Timing returns the manager's lifecycle durations.
func (m *Manager) Timing() Timing { return m.timing }

// Show inserts a notification at the top of the content container and
// schedules its removal.
//
//	m.Show("Saved", toast.TypeSuccess)
func (m *Manager) Show(message string, kind Type) *Notification {
	kind = ParseType(string(kind))
	n := &Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: m.loop.Now(),
	}
	n.Node = dom.Div(
		dom.Class("alert", "alert-"+string(kind), "alert-dismissible", "fade", "show"),
		dom.Role("alert"),
		dom.Data("notification-id", n.ID),
		dom.I(dom.Class("fas", "fa-"+kind.Icon())),
		" "+message,
		dom.Button(dom.Type("button"), dom.Class("btn-close"), dom.Data("bs-dismiss", "alert")),
	)

	dom.Prepend(m.container(), n.Node)
	m.track(n)
	m.logger.Debug("notification shown", zap.String("kind", string(kind)), zap.String("id", n.ID))

	life := sched.Bind(m.doc.Lifetime(n.Node))
	m.loop.After(m.timing.Display, func() {
		dom.SetStyle(n.Node, "opacity", "0")
		m.loop.After(m.timing.RemoveDelay, func() {
			m.remove(n.Node)
		}, sched.Named("toast.remove"))
	}, life, sched.Named("toast.fade"))

	return n
}

// Success shows a success notification.
func (m *Manager) Success(message string) *Notification { return m.Show(message, TypeSuccess) }

// Danger shows a danger notification.
func (m *Manager) Danger(message string) *Notification { return m.Show(message, TypeDanger) }

// Warning shows a warning notification.
func (m *Manager) Warning(message string) *Notification { return m.Show(message, TypeWarning) }

// Info shows an info notification.
func (m *Manager) Info(message string) *Notification { return m.Show(message, TypeInfo) }

// AutoExpire schedules every alert in the page that is not yet tracked for
// fade and removal. It returns the number of alerts scheduled.
func (m *Manager) AutoExpire() int {
	scheduled := 0
	for _, node := range dom.Find(m.doc.Root(), alertExpr) {
		node := node
		if _, ok := m.active[node]; ok {
			continue
		}
		scheduled++
		n := &Notification{
			ID:        dom.Attr(node, "data-notification-id"),
			Kind:      kindOf(node),
			Message:   dom.TextContent(node),
			CreatedAt: m.loop.Now(),
			Node:      node,
			Static:    true,
		}
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		m.track(n)

		m.loop.After(m.timing.AlertDisplay, func() {
			dom.SetStyles(node,
				"transition", "opacity "+seconds(m.timing.AlertFade)+" ease",
				"opacity", "0",
			)
			m.loop.After(m.timing.AlertFade, func() {
				m.remove(node)
			}, sched.Named("alert.remove"))
		}, sched.Bind(m.doc.Lifetime(node)), sched.Named("alert.fade"))
	}
	if scheduled > 0 {
		m.logger.Debug("scheduled server alerts", zap.Int("count", scheduled))
	}
	return scheduled
}

// BindDismiss wires alert close buttons: a click on an element carrying
// data-bs-dismiss="alert" removes the enclosing alert at once.
func (m *Manager) BindDismiss() {
	m.doc.AddEventListener(m.doc.Root(), dom.EventClick, func(e *dom.Event) {
		for p := e.Target; p != nil; p = p.Parent {
			if p.Type == html.ElementNode && dom.Attr(p, "data-bs-dismiss") == "alert" {
				if alert := dom.ClosestClass(p, "alert"); alert != nil {
					m.remove(alert)
				}
				return
			}
		}
	})
}

// Dismiss removes a notification immediately.
func (m *Manager) Dismiss(n *Notification) bool {
	if n == nil {
		return false
	}
	return m.remove(n.Node)
}

// Active returns the notifications still on the page, newest first.
func (m *Manager) Active() []*Notification {
	out := make([]*Notification, 0, len(m.active))
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.order[i]
		if _, ok := m.active[n.Node]; ok {
			out = append(out, n)
		}
	}
	return out
}

// remove detaches node if it is still attached. Safe to call repeatedly.
func (m *Manager) remove(node *html.Node) bool {
	detached := dom.Detach(node)
	n, tracked := m.active[node]
	if tracked {
		delete(m.active, node)
		m.compact()
		if m.observer != nil {
			m.observer.NotificationRemoved(n)
		}
	}
	return detached
}

// release reports every notification still on the page as removed. The
// page is gone, so the nodes are left as they are.
func (m *Manager) release() {
	active := m.Active()
	m.active = make(map[*html.Node]*Notification)
	m.order = nil
	if m.observer != nil {
		for _, n := range active {
			m.observer.NotificationRemoved(n)
		}
	}
	if len(active) > 0 {
		m.logger.Debug("released notifications on unload", zap.Int("count", len(active)))
	}
}

func (m *Manager) track(n *Notification) {
	m.active[n.Node] = n
	m.order = append(m.order, n)
	if m.observer != nil {
		m.observer.NotificationShown(n)
	}
}

func (m *Manager) compact() {
	out := m.order[:0]
	for _, n := range m.order {
		if _, ok := m.active[n.Node]; ok {
			out = append(out, n)
		}
	}
	m.order = out
}

// container returns the page's content container, falling back to body.
func (m *Manager) container() *html.Node {
	if c := dom.FindOne(m.doc.Root(), containerExpr); c != nil {
		return c
	}
	return m.doc.Body()
}

func kindOf(node *html.Node) Type {
	for _, c := range dom.Classes(node) {
		if name, ok := strings.CutPrefix(c, "alert-"); ok {
			switch t := Type(name); t {
			case TypeSuccess, TypeDanger, TypeWarning, TypeInfo:
				return t
			}
		}
	}
	return TypeInfo
}

// seconds formats d as a CSS time value, e.g. "0.5s".
func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}

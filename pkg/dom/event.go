package dom

import "golang.org/x/net/html"

// Event types dispatched by the engine.
const (
	EventSubmit     = "submit"
	EventClick      = "click"
	EventInput      = "input"
	EventMouseEnter = "mouseenter"
	EventMouseLeave = "mouseleave"
)

// bubbling lists the event types that propagate to ancestors.
var bubbling = map[string]bool{
	EventSubmit: true,
	EventClick:  true,
	EventInput:  true,
}

// Event is a DOM event in flight.
type Event struct {
	Type   string
	Target *html.Node

	// CurrentTarget is the node whose listener is running.
	CurrentTarget *html.Node

	prevented bool
	stopped   bool
	defaults  []func()
}

// NewEvent creates an event of the given type aimed at target.
func NewEvent(typ string, target *html.Node) *Event {
	return &Event{Type: typ, Target: target}
}

// PreventDefault suppresses the event's default action.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether a listener suppressed the default action.
func (e *Event) DefaultPrevented() bool { return e.prevented }

// StopPropagation keeps the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// OnDefault registers fn to run just before the default action, only if no
// listener suppresses it.
func (e *Event) OnDefault(fn func()) {
	e.defaults = append(e.defaults, fn)
}

// runDefaults runs the default-action hooks in registration order.
func (e *Event) runDefaults() {
	hooks := e.defaults
	e.defaults = nil
	for _, fn := range hooks {
		fn()
	}
}

// Listener handles an event.
type Listener func(*Event)

type listener struct {
	id  uint64
	typ string
	fn  Listener
}

// Registration identifies an attached listener.
type Registration struct {
	doc  *Document
	node *html.Node
	id   uint64
}

// Remove detaches the listener. It is safe to call more than once.
func (r Registration) Remove() {
	if r.doc == nil {
		return
	}
	list := r.doc.listeners[r.node]
	for i, l := range list {
		if l.id == r.id {
			r.doc.listeners[r.node] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrUnloaded is returned when acting on a document that has navigated away.
var ErrUnloaded = errors.New("dom: document unloaded")

// Submission is a form handed to native navigation.
type Submission struct {
	Form   *html.Node
	Action string
	Method string
	Values url.Values
}

// Navigator performs native form submission. A nil error means the browser
// navigated away and the current page is gone; an error means the page
// stayed (for example on a network failure).
type Navigator interface {
	Submit(Submission) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Submission) error

// Submit implements Navigator.
func (f NavigatorFunc) Submit(s Submission) error { return f(s) }

// Document is a live page.
type Document struct {
	root      *html.Node
	location  *url.URL
	navigator Navigator
	logger    *zap.Logger

	listeners map[*html.Node][]listener
	nextID    uint64

	unloadHooks []func()
	unloaded    bool
}

// Option configures a Document.
type Option func(*Document)

// WithNavigator sets the navigator used for native submission.
// Without one, submissions are accepted and discarded.
func WithNavigator(nav Navigator) Option {
	return func(d *Document) {
		d.navigator = nav
	}
}

// WithLogger sets the document logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Parse reads a server-rendered page. location is the page URL; it is used
// to resolve form actions and links and for path-based page setup.
func Parse(r io.Reader, location string, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse page: %w", err)
	}
	loc, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("dom: parse location %q: %w", location, err)
	}
	return NewDocument(root, loc, opts...), nil
}

// ParseString is Parse for an in-memory page.
func ParseString(markup, location string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(markup), location, opts...)
}

// NewDocument wraps an already parsed tree.
func NewDocument(root *html.Node, location *url.URL, opts ...Option) *Document {
	if location == nil {
		location = &url.URL{Path: "/"}
	}
	d := &Document{
		root:      root,
		location:  location,
		navigator: NavigatorFunc(func(Submission) error { return nil }),
		logger:    zap.NewNop(),
		listeners: make(map[*html.Node][]listener),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("dom")
	return d
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Body returns the body element, or the root if the page has none.
func (d *Document) Body() *html.Node {
	if body := FindOne(d.root, "//body"); body != nil {
		return body
	}
	return d.root
}

// Location returns the page URL.
func (d *Document) Location() *url.URL { return d.location }

// ResolveURL resolves ref against the page URL.
func (d *Document) ResolveURL(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return d.location.ResolveReference(u).String()
}

// Contains reports whether n is attached to this document.
func (d *Document) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// NodeLifetime reports whether a node is still part of a loaded page.
type NodeLifetime struct {
	doc  *Document
	node *html.Node
}

// Alive implements sched.Lifetime.
func (l NodeLifetime) Alive() bool {
	return !l.doc.unloaded && l.doc.Contains(l.node)
}

// Lifetime returns the lifetime of n within this page.
func (d *Document) Lifetime(n *html.Node) NodeLifetime {
	return NodeLifetime{doc: d, node: n}
}

// AddEventListener attaches fn to n for events of type typ.
func (d *Document) AddEventListener(n *html.Node, typ string, fn Listener) Registration {
	d.nextID++
	d.listeners[n] = append(d.listeners[n], listener{id: d.nextID, typ: typ, fn: fn})
	return Registration{doc: d, node: n, id: d.nextID}
}

// ListenerCount returns the number of listeners of type typ attached to n.
func (d *Document) ListenerCount(n *html.Node, typ string) int {
	count := 0
	for _, l := range d.listeners[n] {
		if l.typ == typ {
			count++
		}
	}
	return count
}

// Dispatch delivers e to its target and, for bubbling types, to each
// ancestor. It returns false if a listener suppressed the default action.
// Events on an unloaded document are dropped.
func (d *Document) Dispatch(e *Event) bool {
	if d.unloaded {
		return false
	}
	for n := e.Target; n != nil; n = n.Parent {
		list := d.listeners[n]
		if len(list) > 0 {
			snapshot := make([]listener, len(list))
			copy(snapshot, list)
			e.CurrentTarget = n
			for _, l := range snapshot {
				if l.typ == e.Type {
					l.fn(e)
				}
			}
		}
		if e.stopped || !bubbling[e.Type] {
			break
		}
	}
	e.CurrentTarget = nil
	return !e.prevented
}

// Click simulates a user click on n. Clicks on disabled controls are
// ignored. Clicking a submit button requests submission of its form.
func (d *Document) Click(n *html.Node) error {
	if d.unloaded {
		return ErrUnloaded
	}
	if Disabled(n) {
		return nil
	}
	if !d.Dispatch(NewEvent(EventClick, n)) {
		return nil
	}
	if isSubmitControl(n) {
		if form := Closest(n, "form"); form != nil {
			_, err := d.RequestSubmit(form)
			return err
		}
	}
	return nil
}

// Hover dispatches mouseenter then mouseleave on n.
func (d *Document) Hover(n *html.Node, enter bool) {
	typ := EventMouseLeave
	if enter {
		typ = EventMouseEnter
	}
	d.Dispatch(NewEvent(typ, n))
}

// Input sets a control's value and dispatches an input event.
func (d *Document) Input(n *html.Node, value string) {
	if d.unloaded {
		return
	}
	SetValue(n, value)
	d.Dispatch(NewEvent(EventInput, n))
}

// RequestSubmit performs a user-initiated submit: the submit event is
// dispatched and, unless a listener suppressed it, the default-action hooks
// run and the form goes to the navigator. It reports whether native
// submission happened.
func (d *Document) RequestSubmit(form *html.Node) (bool, error) {
	if d.unloaded {
		return false, ErrUnloaded
	}
	e := NewEvent(EventSubmit, form)
	if !d.Dispatch(e) {
		return false, nil
	}
	e.runDefaults()
	if err := d.SubmitForm(form); err != nil {
		return false, err
	}
	return true, nil
}

// SubmitForm hands form to the navigator without dispatching a submit
// event. On success the document unloads.
func (d *Document) SubmitForm(form *html.Node) error {
	if d.unloaded {
		return ErrUnloaded
	}
	sub := d.submission(form)
	d.logger.Debug("native submission",
		zap.String("method", sub.Method),
		zap.String("action", sub.Action),
	)
	if err := d.navigator.Submit(sub); err != nil {
		return fmt.Errorf("dom: submit %s %s: %w", sub.Method, sub.Action, err)
	}
	d.Unload()
	return nil
}

// OnUnload registers fn to run when the document unloads.
func (d *Document) OnUnload(fn func()) {
	d.unloadHooks = append(d.unloadHooks, fn)
}

// Unload marks the page as navigated away and runs unload hooks once.
func (d *Document) Unload() {
	if d.unloaded {
		return
	}
	d.unloaded = true
	hooks := d.unloadHooks
	d.unloadHooks = nil
	for _, fn := range hooks {
		fn()
	}
}

// Unloaded reports whether the page has navigated away.
func (d *Document) Unloaded() bool { return d.unloaded }

// HTML renders the whole page.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("dom: render: %w", err)
	}
	return buf.String(), nil
}

func (d *Document) submission(form *html.Node) Submission {
	action := Attr(form, "action")
	if action == "" {
		action = d.location.String()
	} else {
		action = d.ResolveURL(action)
	}
	method := strings.ToUpper(strings.TrimSpace(Attr(form, "method")))
	if method == "" {
		method = "GET"
	}
	return Submission{
		Form:   form,
		Action: action,
		Method: method,
		Values: formValues(form),
	}
}

func isSubmitControl(n *html.Node) bool {
	switch {
	case IsElement(n, "button"):
		t := strings.ToLower(Attr(n, "type"))
		return t == "" || t == "submit"
	case IsElement(n, "input"):
		return strings.ToLower(Attr(n, "type")) == "submit"
	}
	return false
}

// formValues collects the successful controls of form.
func formValues(form *html.Node) url.Values {
	values := url.Values{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			name := Attr(n, "name")
			if name != "" && !Disabled(n) {
				switch n.Data {
				case "input":
					switch strings.ToLower(Attr(n, "type")) {
					case "submit", "button", "reset", "file", "image":
					case "checkbox", "radio":
						if HasAttr(n, "checked") {
							v, ok := GetAttr(n, "value")
							if !ok {
								v = "on"
							}
							values.Add(name, v)
						}
					default:
						values.Add(name, Value(n))
					}
				case "select", "textarea":
					values.Add(name, Value(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(form)
	return values
}

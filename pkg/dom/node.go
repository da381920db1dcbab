package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// GetAttr returns the value of the named attribute and whether it is set.
func GetAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attr returns the value of the named attribute, or "" if unset.
func Attr(n *html.Node, key string) string {
	v, _ := GetAttr(n, key)
	return v
}

// HasAttr reports whether the named attribute is set.
func HasAttr(n *html.Node, key string) bool {
	_, ok := GetAttr(n, key)
	return ok
}

// SetAttr sets an attribute, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Classes returns the node's class tokens.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// ContainsClass reports whether the node carries the class token.
func ContainsClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds class tokens that are not already present.
func AddClass(n *html.Node, classes ...string) {
	if n == nil {
		return
	}
	current := Classes(n)
	for _, c := range classes {
		if c == "" || containsString(current, c) {
			continue
		}
		current = append(current, c)
	}
	SetAttr(n, "class", strings.Join(current, " "))
}

// RemoveClass removes class tokens.
func RemoveClass(n *html.Node, classes ...string) {
	if n == nil || !HasAttr(n, "class") {
		return
	}
	current := Classes(n)
	out := current[:0]
	for _, c := range current {
		if containsString(classes, c) {
			continue
		}
		out = append(out, c)
	}
	SetAttr(n, "class", strings.Join(out, " "))
}

// SetClass replaces the class attribute.
func SetClass(n *html.Node, class string) {
	SetAttr(n, "class", class)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// IsElement reports whether n is an element with the given tag.
// An empty tag matches any element.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && (tag == "" || n.Data == tag)
}

// Children returns the element children of n.
func Children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FirstElementChild returns the first element child of n.
func FirstElementChild(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// NextElementSibling returns the next element sibling of n.
func NextElementSibling(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// Closest returns n or its nearest ancestor element with the given tag.
func Closest(n *html.Node, tag string) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if IsElement(p, tag) {
			return p
		}
	}
	return nil
}

// ClosestClass returns n or its nearest ancestor carrying the class token.
func ClosestClass(n *html.Node, class string) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && ContainsClass(p, class) {
			return p
		}
	}
	return nil
}

// Detach removes n from its parent. Detaching a node that has no parent is
// a no-op; the return value reports whether anything was removed.
func Detach(n *html.Node) bool {
	if n == nil || n.Parent == nil {
		return false
	}
	n.Parent.RemoveChild(n)
	return true
}

// Prepend inserts child as the first child of parent.
func Prepend(parent, child *html.Node) {
	if parent == nil || child == nil {
		return
	}
	Detach(child)
	if parent.FirstChild == nil {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, parent.FirstChild)
}

// InsertAfter inserts child directly after ref in ref's parent.
func InsertAfter(ref, child *html.Node) {
	if ref == nil || ref.Parent == nil || child == nil {
		return
	}
	Detach(child)
	if ref.NextSibling == nil {
		ref.Parent.AppendChild(child)
		return
	}
	ref.Parent.InsertBefore(child, ref.NextSibling)
}

// TakeChildren detaches and returns all children of n, in order.
func TakeChildren(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		out = append(out, c)
		c = next
	}
	return out
}

// ReplaceChildren detaches the current children of n and appends nodes.
func ReplaceChildren(n *html.Node, nodes ...*html.Node) {
	if n == nil {
		return
	}
	TakeChildren(n)
	for _, c := range nodes {
		if c == nil {
			continue
		}
		Detach(c)
		n.AppendChild(c)
	}
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	walk(n)
	return b.String()
}

// SetTextContent replaces the children of n with a single text node.
func SetTextContent(n *html.Node, text string) {
	ReplaceChildren(n, &html.Node{Type: html.TextNode, Data: text})
}

// OuterHTML renders n including itself.
func OuterHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// SetInnerHTML parses markup in the context of n and replaces its children.
func SetInnerHTML(n *html.Node, markup string) error {
	if n == nil {
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     n.Data,
		DataAtom: n.DataAtom,
	})
	if err != nil {
		return err
	}
	ReplaceChildren(n, nodes...)
	return nil
}

// Disabled reports whether the control carries the disabled attribute.
func Disabled(n *html.Node) bool {
	return HasAttr(n, "disabled")
}

// SetDisabled sets or clears the disabled attribute.
func SetDisabled(n *html.Node, disabled bool) {
	if disabled {
		SetAttr(n, "disabled", "")
		return
	}
	RemoveAttr(n, "disabled")
}

// Value returns the current value of a form control.
func Value(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	switch n.Data {
	case "textarea":
		return TextContent(n)
	case "select":
		var first *html.Node
		var selected *html.Node
		var walk func(*html.Node)
		walk = func(c *html.Node) {
			if IsElement(c, "option") {
				if first == nil {
					first = c
				}
				if selected == nil && HasAttr(c, "selected") {
					selected = c
				}
			}
			for k := c.FirstChild; k != nil; k = k.NextSibling {
				walk(k)
			}
		}
		walk(n)
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return ""
		}
		if v, ok := GetAttr(selected, "value"); ok {
			return v
		}
		return strings.TrimSpace(TextContent(selected))
	case "input":
		v, ok := GetAttr(n, "value")
		if !ok {
			switch strings.ToLower(Attr(n, "type")) {
			case "checkbox", "radio":
				return "on"
			}
		}
		return v
	default:
		return Attr(n, "value")
	}
}

// SetValue sets the current value of a form control.
func SetValue(n *html.Node, value string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	switch n.Data {
	case "textarea":
		SetTextContent(n, value)
	case "select":
		var walk func(*html.Node)
		walk = func(c *html.Node) {
			if IsElement(c, "option") {
				v, ok := GetAttr(c, "value")
				if !ok {
					v = strings.TrimSpace(TextContent(c))
				}
				if v == value {
					SetAttr(c, "selected", "")
				} else {
					RemoveAttr(c, "selected")
				}
			}
			for k := c.FirstChild; k != nil; k = k.NextSibling {
				walk(k)
			}
		}
		walk(n)
	default:
		SetAttr(n, "value", value)
	}
}

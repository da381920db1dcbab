package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attribute is a single attribute passed to Elem.
type Attribute struct {
	Key   string
	Value string
}

// A sets an arbitrary attribute.
func A(key, value string) Attribute { return Attribute{Key: key, Value: value} }

// ID sets the id attribute.
func ID(id string) Attribute { return A("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attribute { return A("class", strings.Join(classes, " ")) }

// Type sets the type attribute.
func Type(t string) Attribute { return A("type", t) }

// Role sets the role attribute.
func Role(role string) Attribute { return A("role", role) }

// Data sets a data-* attribute.
func Data(key, value string) Attribute { return A("data-"+key, value) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attribute { return A("style", style) }

// Text creates a text node.
func Text(content string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *html.Node {
	return Text(fmt.Sprintf(format, args...))
}

// Elem creates a detached element. Arguments can be nil, Attribute,
// []Attribute, *html.Node, []*html.Node or string (text content).
func Elem(tag string, args ...any) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attribute:
			if v.Key != "" {
				SetAttr(n, v.Key, v.Value)
			}
		case []Attribute:
			for _, a := range v {
				if a.Key != "" {
					SetAttr(n, a.Key, a.Value)
				}
			}
		case *html.Node:
			if v != nil {
				Detach(v)
				n.AppendChild(v)
			}
		case []*html.Node:
			for _, c := range v {
				if c != nil {
					Detach(c)
					n.AppendChild(c)
				}
			}
		case string:
			n.AppendChild(Text(v))
		default:
			panic(fmt.Sprintf("dom: unsupported Elem argument %T", arg))
		}
	}
	return n
}

// Div creates a div element.
func Div(args ...any) *html.Node { return Elem("div", args...) }

// Span creates a span element.
func Span(args ...any) *html.Node { return Elem("span", args...) }

// Button creates a button element.
func Button(args ...any) *html.Node { return Elem("button", args...) }

// I creates an i element, used for icon glyphs.
func I(args ...any) *html.Node { return Elem("i", args...) }

// H5 creates an h5 element.
func H5(args ...any) *html.Node { return Elem("h5", args...) }

// P creates a p element.
func P(args ...any) *html.Node { return Elem("p", args...) }

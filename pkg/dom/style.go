package dom

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// styleDecls parses the inline style attribute of n. A malformed attribute
// yields no declarations rather than an error; browsers drop what they
// cannot parse too.
func styleDecls(n *html.Node) []*css.Declaration {
	raw := strings.TrimSpace(Attr(n, "style"))
	if raw == "" {
		return nil
	}
	decls, err := parser.ParseDeclarations(raw)
	if err != nil {
		return nil
	}
	return decls
}

func writeDecls(n *html.Node, decls []*css.Declaration) {
	if len(decls) == 0 {
		RemoveAttr(n, "style")
		return
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		v := d.Value
		if d.Important {
			v += " !important"
		}
		parts = append(parts, d.Property+": "+v+";")
	}
	SetAttr(n, "style", strings.Join(parts, " "))
}

// Style returns the inline value of a CSS property, or "".
func Style(n *html.Node, property string) string {
	property = strings.ToLower(property)
	var out string
	for _, d := range styleDecls(n) {
		if strings.ToLower(d.Property) == property {
			out = d.Value
		}
	}
	return out
}

// SetStyle sets an inline CSS property, keeping declaration order stable.
// An empty value removes the property.
func SetStyle(n *html.Node, property, value string) {
	if n == nil {
		return
	}
	property = strings.ToLower(property)
	decls := styleDecls(n)
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if strings.ToLower(d.Property) != property {
			out = append(out, d)
			continue
		}
		if value == "" || replaced {
			continue
		}
		d.Value = value
		d.Important = false
		out = append(out, d)
		replaced = true
	}
	if !replaced && value != "" {
		out = append(out, &css.Declaration{Property: property, Value: value})
	}
	writeDecls(n, out)
}

// SetStyles sets several inline properties in order.
func SetStyles(n *html.Node, pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		SetStyle(n, pairs[i], pairs[i+1])
	}
}

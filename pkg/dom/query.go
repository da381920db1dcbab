package dom

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// HasClass returns an XPath predicate matching elements that carry class as
// one of their class tokens.
func HasClass(class string) string {
	return fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", class)
}

// QueryAll evaluates an XPath expression below top.
func QueryAll(top *html.Node, expr string) ([]*html.Node, error) {
	if top == nil {
		return nil, nil
	}
	nodes, err := htmlquery.QueryAll(top, expr)
	if err != nil {
		return nil, fmt.Errorf("dom: query %q: %w", expr, err)
	}
	return nodes, nil
}

// Query returns the first node matching an XPath expression below top.
func Query(top *html.Node, expr string) (*html.Node, error) {
	if top == nil {
		return nil, nil
	}
	n, err := htmlquery.Query(top, expr)
	if err != nil {
		return nil, fmt.Errorf("dom: query %q: %w", expr, err)
	}
	return n, nil
}

// Find is QueryAll for expressions known to be valid. An invalid expression
// matches nothing.
func Find(top *html.Node, expr string) []*html.Node {
	nodes, _ := QueryAll(top, expr)
	return nodes
}

// FindOne is Query for expressions known to be valid.
func FindOne(top *html.Node, expr string) *html.Node {
	n, _ := Query(top, expr)
	return n
}

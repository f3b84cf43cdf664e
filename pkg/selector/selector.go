// Package selector finds the elements of a document whose direct text
// content is eligible for measurement scanning.
package selector

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/BunLabs/MeasurementConverter/pkg/render"
)

// Tags whose subtrees are never scanned: non-visual or structural content,
// plus form controls whose text the page owner may round-trip.
var skipTags = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"iframe":   {},
	"svg":      {},
	"input":    {},
	"textarea": {},
}

// Eligible walks root in document order and returns every element that
// directly contains non-whitespace text. Excluded subtrees are never
// descended into: structural tags, user-editable regions, and elements
// already carrying the converted-measurement marker. When root itself sits
// inside an excluded region nothing is returned.
func Eligible(root *html.Node) []*html.Node {
	if root == nil || !ancestryScannable(root) {
		return nil
	}

	var out []*html.Node
	walk(root, &out)
	return out
}

// Scannable reports whether a single element may be processed: its tag is
// not excluded, it is not editable, and it is not rendered output.
func Scannable(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if _, skip := skipTags[n.Data]; skip {
		return false
	}
	return !editable(n) && !marked(n)
}

func walk(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode {
		if !Scannable(n) {
			return
		}
		if hasDirectText(n) {
			*out = append(*out, n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, out)
	}
}

func ancestryScannable(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && !Scannable(p) {
			return false
		}
	}
	return true
}

func hasDirectText(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return true
		}
	}
	return false
}

func editable(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "contenteditable" {
			return !strings.EqualFold(a.Val, "false")
		}
	}
	return false
}

func marked(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == render.MarkerClass {
				return true
			}
		}
	}
	return false
}

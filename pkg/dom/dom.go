// Package dom wraps a goquery document with a change-notification layer.
// Hosts mutate the document through this facade; every successful write is
// delivered synchronously, as a batch, to connected observers. There is no
// locking: the document is single-writer and all observation is strictly
// serialized with the mutations that trigger it.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// MutationType distinguishes structural changes from text changes.
type MutationType int

const (
	// ChildList reports nodes inserted under a target element.
	ChildList MutationType = iota
	// CharacterData reports a change to a target element's text content.
	CharacterData
)

// Mutation describes one observed change.
type Mutation struct {
	Type   MutationType
	Target *html.Node   // parent of the change
	Added  []*html.Node // newly inserted subtree roots, ChildList only
}

// Observer receives mutation batches while connected.
type Observer struct {
	fn        func([]Mutation)
	connected bool
}

// Disconnect stops delivery. Mutations occurring while disconnected are
// dropped, not queued; observers that care must rescan on reconnect.
func (o *Observer) Disconnect() { o.connected = false }

// Connect resumes delivery.
func (o *Observer) Connect() { o.connected = true }

// Document is the live document tree.
type Document struct {
	doc       *goquery.Document
	observers []*Observer
}

// New wraps an already parsed goquery document.
func New(doc *goquery.Document) *Document {
	return &Document{doc: doc}
}

// Parse reads an HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return New(doc), nil
}

// Find exposes goquery selection over the live tree.
func (d *Document) Find(sel string) *goquery.Selection {
	return d.doc.Find(sel)
}

// Body returns the document body element, or nil for a degenerate tree.
func (d *Document) Body() *html.Node {
	body := d.doc.Find("body")
	if len(body.Nodes) == 0 {
		return nil
	}
	return body.Nodes[0]
}

// Observe registers fn for mutation batches. The returned observer starts
// connected.
func (d *Document) Observe(fn func([]Mutation)) *Observer {
	o := &Observer{fn: fn, connected: true}
	d.observers = append(d.observers, o)
	return o
}

// AppendHTML parses fragment and appends its nodes to the first element
// matching sel, then notifies observers of the added subtree roots.
func (d *Document) AppendHTML(sel, fragment string) error {
	target, err := d.first(sel)
	if err != nil {
		return err
	}

	nodes, err := parseFragment(target, fragment)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		target.AppendChild(n)
	}

	d.notify([]Mutation{{Type: ChildList, Target: target, Added: nodes}})
	return nil
}

// SetText replaces the text content of the first element matching sel and
// notifies observers of the character-data change.
func (d *Document) SetText(sel, text string) error {
	target, err := d.first(sel)
	if err != nil {
		return err
	}

	for c := target.FirstChild; c != nil; {
		next := c.NextSibling
		target.RemoveChild(c)
		c = next
	}
	target.AppendChild(&html.Node{Type: html.TextNode, Data: text})

	d.notify([]Mutation{{Type: CharacterData, Target: target}})
	return nil
}

// ReplaceTextNode splices the nodes parsed from markup into the tree in
// place of text node n and returns them. Observers see the insertion as a
// child-list mutation, so a processor rewriting text must disconnect its
// observer first or it will be fed its own writes.
func (d *Document) ReplaceTextNode(n *html.Node, markup string) ([]*html.Node, error) {
	parent := n.Parent
	if n.Type != html.TextNode || parent == nil {
		return nil, fmt.Errorf("not an attached text node")
	}

	nodes, err := parseFragment(parent, markup)
	if err != nil {
		return nil, err
	}
	for _, nn := range nodes {
		parent.InsertBefore(nn, n)
	}
	parent.RemoveChild(n)

	d.notify([]Mutation{{Type: ChildList, Target: parent, Added: nodes}})
	return nodes, nil
}

// Html serializes the whole document.
func (d *Document) Html() (string, error) {
	var sb strings.Builder
	for _, root := range d.doc.Nodes {
		if err := html.Render(&sb, root); err != nil {
			return "", fmt.Errorf("failed to render document: %w", err)
		}
	}
	return sb.String(), nil
}

func (d *Document) first(sel string) (*html.Node, error) {
	s := d.doc.Find(sel)
	if len(s.Nodes) == 0 {
		return nil, fmt.Errorf("no element matches %q", sel)
	}
	return s.Nodes[0], nil
}

func (d *Document) notify(batch []Mutation) {
	for _, o := range d.observers {
		if o.connected {
			o.fn(batch)
		}
	}
}

// parseFragment parses markup in the context of parent's tag, detached
// from the live tree.
func parseFragment(parent *html.Node, markup string) ([]*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     parent.Data,
		DataAtom: parent.DataAtom,
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	return nodes, nil
}

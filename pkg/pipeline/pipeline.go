// Package pipeline drives measurement scanning over a document: a full
// pass at startup and incremental passes over mutation-added subtrees,
// with a disconnect/reconnect discipline so the scheduler never reacts to
// its own writes.
package pipeline

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/BunLabs/MeasurementConverter/pkg/convert"
	"github.com/BunLabs/MeasurementConverter/pkg/dom"
	"github.com/BunLabs/MeasurementConverter/pkg/render"
	"github.com/BunLabs/MeasurementConverter/pkg/scan"
	"github.com/BunLabs/MeasurementConverter/pkg/selector"
)

// Counters accumulates what a pass (or a scheduler lifetime) did.
type Counters struct {
	Elements  int            // eligible elements scanned
	Matches   int            // tokens matched by either pattern
	Converted int            // tokens rewritten
	Ambiguous int            // tokens rewritten with multiple readings
	Units     map[string]int // canonical source unit -> rewrite count
}

func (c *Counters) add(other Counters) {
	c.Elements += other.Elements
	c.Matches += other.Matches
	c.Converted += other.Converted
	c.Ambiguous += other.Ambiguous
	for u, n := range other.Units {
		if c.Units == nil {
			c.Units = make(map[string]int)
		}
		c.Units[u] += n
	}
}

// Process runs one full pass over the document body and returns what it
// did. Running it again over its own output is a no-op: rendered spans
// carry the marker class and are never re-matched.
func Process(d *dom.Document) Counters {
	var c Counters
	processSubtree(d, d.Body(), &c)
	return c
}

// Scheduler keeps a document converted as it mutates.
type Scheduler struct {
	doc *dom.Document
	obs *dom.Observer
	log *slog.Logger

	// Totals accumulates across the initial pass and every incremental one.
	Totals Counters
}

// Attach runs a full initial pass over the document body, then subscribes
// to mutations so newly added content is converted incrementally. Only the
// added subtrees are rescanned, keeping repeated cost proportional to new
// content rather than document size.
func Attach(d *dom.Document, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{doc: d, log: logger}
	s.Totals = Process(d)
	s.obs = d.Observe(s.handle)
	return s
}

// Detach stops observing. The document keeps its conversions.
func (s *Scheduler) Detach() {
	s.obs.Disconnect()
}

// handle processes one mutation batch. The observer is disconnected for
// the duration of the pass and reconnected by defer, so the scheduler's
// own rewrites cannot re-trigger it even if processing panics.
func (s *Scheduler) handle(batch []dom.Mutation) {
	s.obs.Disconnect()
	defer s.obs.Connect()

	var c Counters
	for _, m := range batch {
		switch m.Type {
		case dom.ChildList:
			for _, root := range m.Added {
				s.incremental(root, &c)
			}
		case dom.CharacterData:
			processSubtree(s.doc, m.Target, &c)
		}
	}
	s.Totals.add(c)

	s.log.Debug("processed mutation batch",
		"mutations", len(batch), "elements", c.Elements, "converted", c.Converted)
}

// incremental scans one added subtree root. Added text nodes belong to
// their parent element, which is rescanned as a whole; already converted
// siblings are excluded by the marker class.
func (s *Scheduler) incremental(root *html.Node, c *Counters) {
	if root.Type == html.TextNode {
		root = root.Parent
	}
	processSubtree(s.doc, root, c)
}

func processSubtree(d *dom.Document, root *html.Node, c *Counters) {
	for _, el := range selector.Eligible(root) {
		c.Elements++
		processElement(d, el, c)
	}
}

// processElement rewrites the direct text children of one eligible
// element. The child list is snapshotted first because rewriting splices
// new nodes in place of the text node being processed.
func processElement(d *dom.Document, el *html.Node, c *Counters) {
	var texts []*html.Node
	for n := el.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			texts = append(texts, n)
		}
	}
	for _, n := range texts {
		rewriteText(d, n, c)
	}
}

// rewriteText replaces every convertible token of one text node with
// rendered markup. Tokens that convert to nothing are left as plain text,
// so a failed conversion never corrupts the node.
func rewriteText(d *dom.Document, n *html.Node, c *Counters) {
	tokens := tokenize(n.Data)
	if len(tokens) == 0 {
		return
	}
	c.Matches += len(tokens)

	var sb strings.Builder
	pos := 0
	var done Counters
	for _, tok := range tokens {
		measurements := convert.Convert(tok.Value, tok.UnitText)
		if len(measurements) == 0 {
			continue
		}

		sb.WriteString(html.EscapeString(n.Data[pos:tok.Start]))
		sb.WriteString(render.Render(tok.Match))
		pos = tok.End

		done.Converted++
		if len(measurements) > 1 {
			done.Ambiguous++
		}
		if done.Units == nil {
			done.Units = make(map[string]int)
		}
		done.Units[unitKey(tok.UnitText)]++
	}
	if done.Converted == 0 {
		return
	}
	sb.WriteString(html.EscapeString(n.Data[pos:]))

	if _, err := d.ReplaceTextNode(n, sb.String()); err != nil {
		// Leave the original text in place; a failure to convert never
		// blocks the scan.
		return
	}
	c.add(done)
}

// tokenize runs both patterns over the text and merges the results in
// order of appearance, dropping any later token that overlaps an earlier
// one.
func tokenize(text string) []scan.Token {
	temps := scan.Temperatures(text)
	vols := scan.Volumes(text)
	if len(vols) == 0 {
		return temps
	}
	if len(temps) == 0 {
		return vols
	}

	merged := make([]scan.Token, 0, len(temps)+len(vols))
	i, j := 0, 0
	for i < len(temps) || j < len(vols) {
		switch {
		case j >= len(vols) || (i < len(temps) && temps[i].Start <= vols[j].Start):
			merged = append(merged, temps[i])
			i++
		default:
			merged = append(merged, vols[j])
			j++
		}
	}

	out := merged[:0]
	end := 0
	for _, tok := range merged {
		if tok.Start < end {
			continue
		}
		out = append(out, tok)
		end = tok.End
	}
	return out
}

func unitKey(unit string) string {
	switch k := convert.Canonical(unit); k {
	case "cup":
		return "cups"
	default:
		return k
	}
}

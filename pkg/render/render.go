// Package render builds the inline replacement markup for matched
// measurement tokens. Every rendered span carries the reserved marker
// class so converted output is never scanned again, and the original text
// is always recoverable from the title attribute.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/BunLabs/MeasurementConverter/models"
	"github.com/BunLabs/MeasurementConverter/pkg/convert"
)

// MarkerClass tags rendered output so the selector and scheduler skip it.
const MarkerClass = "converted-measurement"

// Render returns the replacement markup for a matched token. When no
// conversion applies the original text comes back unchanged and the caller
// performs a no-op substitution. Page text is escaped before it is placed
// in markup, both as visible content and inside the title attribute.
func Render(m models.Match) string {
	measurements := convert.Convert(m.Value, m.UnitText)
	if len(measurements) == 0 {
		return m.Original
	}

	if len(measurements) == 1 {
		return span(display(measurements[0]), tooltip(m, measurements[0]))
	}

	// Ambiguous token: keep the original text visible and surface every
	// reading on hover, one per line.
	lines := make([]string, len(measurements))
	for i, ms := range measurements {
		lines[i] = fmt.Sprintf("%s %s = %s", m.ValueText, ms.Interpretation, display(ms))
	}
	return span(m.Original, strings.Join(lines, "\n"))
}

func span(visible, title string) string {
	return fmt.Sprintf(`<span class="%s" title="%s">%s</span>`,
		MarkerClass, html.EscapeString(title), html.EscapeString(visible))
}

// tooltip preserves the original text verbatim. Volume conversions carry
// the source-unit display form, so their tooltip spells out the reading.
func tooltip(m models.Match, ms models.Measurement) string {
	if ms.Interpretation == "" {
		return m.Original
	}
	return fmt.Sprintf("%s = %s", m.Original, display(ms))
}

func display(ms models.Measurement) string {
	return strconv.FormatFloat(ms.Value, 'f', -1, 64) + " " + ms.Unit
}

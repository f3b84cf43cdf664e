// Package models defines data structures shared across the conversion pipeline.
package models

// Measurement is one converted reading of a matched token.
// Interpretation is set when the reading depends on an assumption about the
// source unit: for an ambiguous degree token it names the unit the value was
// assumed to be, and for volume units it carries the display form of the
// source unit. Empty means the source unit was unambiguous.
type Measurement struct {
	Value          float64
	Unit           string
	Interpretation string
}

// Match is a substring of page text identified as a measurement.
// Original is the exact matched substring, kept verbatim so it can be
// restored in the tooltip. ValueText and UnitText are the raw captured
// pieces; Value is the parsed numeric quantity.
type Match struct {
	Original  string
	ValueText string
	UnitText  string
	Value     float64
}

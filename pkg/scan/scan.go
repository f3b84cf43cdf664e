// Package scan extracts measurement tokens from text. Matching is
// stateless: every call walks the whole input and returns the
// non-overlapping matches in order of appearance, with byte offsets, so
// nothing persists between calls.
package scan

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/BunLabs/MeasurementConverter/models"
)

// A unit must be followed by a non-word character or the end of the string
// so we never match inside an unrelated token. RE2 has no lookahead, so the
// boundary is consumed by a trailing group and the token end is taken from
// the unit submatch instead of the match end.
const boundary = `(?:[^0-9A-Za-z_]|$)`

// Alternatives are ordered longest-first within a shared prefix because Go
// regexp alternation is leftmost-first: "350°F" must bind to °F, not °.
var (
	tempPattern = regexp.MustCompile(
		`(?P<value>[-+]?\d+(?:\.\d+)?)\s*(?P<unit>degrees\s+F|degrees\s+C|degrees|°F|℉|°C|℃|°|F|C)` + boundary)

	volumePattern = regexp.MustCompile(
		`(?P<value>\d+\s*[½⅓¼¾⅛⅜⅝⅞]|\d+\s*/\s*\d+|\d+(?:\.\d+)?|[½⅓¼¾⅛⅜⅝⅞])\s*(?P<unit>cups|cup|tbsp|tsp)` + boundary)
)

// Vulgar glyphs map to fixed decimals, matching how the conversions are
// displayed; thirds are deliberately approximate.
var vulgarFractions = map[rune]float64{
	'½': 0.5,
	'⅓': 0.333,
	'¼': 0.25,
	'¾': 0.75,
	'⅛': 0.125,
	'⅜': 0.375,
	'⅝': 0.625,
	'⅞': 0.875,
}

// Token is one measurement match located in the scanned string.
type Token struct {
	models.Match
	Start int // byte offset of the first value character
	End   int // byte offset just past the unit text
}

// Temperatures returns the temperature tokens found in s.
func Temperatures(s string) []Token {
	return scanWith(tempPattern, s, parseDecimal)
}

// Volumes returns the volume tokens found in s. Quantities may be decimal,
// slash-fraction, or vulgar-fraction glyphs with an optional integer part.
func Volumes(s string) []Token {
	return scanWith(volumePattern, s, ParseQuantity)
}

func scanWith(re *regexp.Regexp, s string, parse func(string) float64) []Token {
	idx := re.FindAllStringSubmatchIndex(s, -1)
	if idx == nil {
		return nil
	}

	valueGroup := re.SubexpIndex("value")
	unitGroup := re.SubexpIndex("unit")

	tokens := make([]Token, 0, len(idx))
	for _, m := range idx {
		start := m[2*valueGroup]
		end := m[2*unitGroup+1]
		valueText := s[m[2*valueGroup]:m[2*valueGroup+1]]
		unitText := s[m[2*unitGroup]:m[2*unitGroup+1]]

		tokens = append(tokens, Token{
			Match: models.Match{
				Original:  s[start:end],
				ValueText: valueText,
				UnitText:  unitText,
				Value:     parse(valueText),
			},
			Start: start,
			End:   end,
		})
	}

	return tokens
}

// ParseQuantity turns a matched quantity string into a number. Malformed or
// missing parts parse as zero; this never fails.
func ParseQuantity(s string) float64 {
	s = strings.TrimSpace(s)

	for i, r := range s {
		if frac, ok := vulgarFractions[r]; ok {
			return parseDecimal(strings.TrimSpace(s[:i])) + frac
		}
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		d := parseDecimal(strings.TrimSpace(den))
		if d == 0 {
			return 0
		}
		return parseDecimal(strings.TrimSpace(num)) / d
	}

	return parseDecimal(s)
}

func parseDecimal(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

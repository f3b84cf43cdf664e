// Package convert maps imperial measurement values to their metric
// equivalents. All conversions are pure and total: an unrecognized unit
// yields nil, never an error.
package convert

import (
	"math"
	"strings"

	"github.com/BunLabs/MeasurementConverter/models"
)

// Milliliters per US volume unit.
const (
	mlPerCup  = 240
	mlPerTsp  = 5
	mlPerTbsp = 15
)

// Convert returns the metric readings for a value expressed in the given
// unit text. Unambiguous Fahrenheit yields a single Celsius reading. A bare
// degree token yields both readings, each tagged with the unit it was
// assumed to be. Volume units yield a single milliliter reading tagged with
// the display form of the source unit. Celsius symbols and unknown units
// yield nil, which callers treat as "leave the original text alone".
func Convert(value float64, unit string) []models.Measurement {
	switch Canonical(unit) {
	case "°F":
		return []models.Measurement{
			{Value: fToC(value), Unit: "°C"},
		}
	case "°":
		return []models.Measurement{
			{Value: fToC(value), Unit: "°C", Interpretation: "°F"},
			{Value: cToF(value), Unit: "°F", Interpretation: "°C"},
		}
	case "cup":
		return volume(value, mlPerCup, "cups")
	case "tsp":
		return volume(value, mlPerTsp, "tsp")
	case "tbsp":
		return volume(value, mlPerTbsp, "tbsp")
	}
	return nil
}

// Canonical collapses the unit vocabulary recognized by the scanner into
// one symbol per unit: "°F", "°C", "°", "cup", "tsp", "tbsp". Unknown text
// comes back unchanged.
func Canonical(unit string) string {
	switch u := strings.TrimSpace(unit); u {
	case "°F", "℉", "F":
		return "°F"
	case "°C", "℃", "C":
		return "°C"
	case "°", "degrees":
		return "°"
	case "cup", "cups":
		return "cup"
	case "tsp", "tbsp":
		return u
	}

	// Word forms with a letter suffix: "degrees F", "degrees  C".
	if rest, ok := strings.CutPrefix(unit, "degrees "); ok {
		switch strings.TrimSpace(rest) {
		case "F":
			return "°F"
		case "C":
			return "°C"
		}
	}

	return unit
}

func fToC(f float64) float64 {
	return math.Round((f - 32) / 1.8)
}

func cToF(c float64) float64 {
	return math.Round(c*1.8 + 32)
}

func volume(value, mlPerUnit float64, display string) []models.Measurement {
	return []models.Measurement{
		{Value: math.Round(value * mlPerUnit), Unit: "mL", Interpretation: display},
	}
}

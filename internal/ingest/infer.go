package ingest

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"schemagraph/internal/match"
)

// Inferred property data types.
const (
	TypeString      = "string"
	TypeNumber      = "number"
	TypeMeasurement = "measurement"
	TypeBoolean     = "boolean"
	TypeArray       = "array"
	TypeObject      = "object"
)

// unitTokens maps a key token to the unit it denotes.
var unitTokens = map[string]string{
	"ft": "feet", "foot": "feet", "feet": "feet",
	"in": "inches", "inch": "inches", "inches": "inches",
	"m": "meters", "meter": "meters", "meters": "meters", "metre": "meters", "metres": "meters",
	"cm": "centimeters", "centimeter": "centimeters", "centimeters": "centimeters",
	"mm": "millimeters", "millimeter": "millimeters", "millimeters": "millimeters",
	"yd": "yards", "yard": "yards", "yards": "yards",
	"mi": "miles", "mile": "miles", "miles": "miles",
	"km": "kilometers", "kilometer": "kilometers", "kilometers": "kilometers",
	"deg": "degrees", "degree": "degrees", "degrees": "degrees",
	"pct": "percent", "percent": "percent", "percentage": "percent", "%": "percent",
	"lb": "pounds", "lbs": "pounds", "pound": "pounds", "pounds": "pounds",
	"kg": "kilograms", "kilogram": "kilograms", "kilograms": "kilograms",
	"psi": "psi", "pressure": "psi",
	"mph": "mph", "speed": "mph",
	"kph": "kph", "kmh": "kph",
}

// ambiguousTokens name a unit only as the last token of a key; elsewhere
// they are ordinary words ("installed_in_conduit").
var ambiguousTokens = map[string]bool{"in": true, "m": true, "mi": true}

// UnitFromKey detects the unit named by a property key. Later tokens win,
// since units are usually suffixes.
func UnitFromKey(key string) string {
	tokens := match.Tokenize(key)

	for i, tok := range slices.Backward(tokens) {
		unit, ok := unitTokens[tok]
		if !ok {
			continue
		}

		if ambiguousTokens[tok] && i != len(tokens)-1 {
			continue
		}

		return unit
	}

	return ""
}

// inferred is the shape derived from one extracted value.
type inferred struct {
	Type     string
	Unit     string
	Examples []string
}

// inferProperty derives type, unit and examples from a key and its value.
// Numbers become measurements when the key names a unit.
func inferProperty(key string, value any) inferred {
	switch v := value.(type) {
	case nil:
		return inferred{Type: TypeString}
	case string:
		return inferred{Type: TypeString, Examples: []string{v}}
	case bool:
		return inferred{Type: TypeBoolean, Examples: []string{strconv.FormatBool(v)}}
	case json.Number:
		return inferNumber(key, v.String())
	case float64:
		return inferNumber(key, strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		return inferNumber(key, strconv.Itoa(v))
	case []any:
		examples := make([]string, 0, len(v))
		for _, item := range v {
			examples = append(examples, exampleString(item))
		}

		return inferred{Type: TypeArray, Examples: examples}
	case map[string]any:
		return inferred{Type: TypeObject, Examples: []string{exampleString(v)}}
	default:
		return inferred{Type: TypeString, Examples: []string{fmt.Sprint(v)}}
	}
}

func inferNumber(key, text string) inferred {
	if unit := UnitFromKey(key); unit != "" {
		return inferred{Type: TypeMeasurement, Unit: unit, Examples: []string{text}}
	}

	return inferred{Type: TypeNumber, Examples: []string{text}}
}

func exampleString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}

		return string(data)
	default:
		return fmt.Sprint(t)
	}
}

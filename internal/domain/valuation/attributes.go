package valuation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Attribute keys understood by the calculator. Any other key is accepted and
// counted toward confidence but otherwise ignored.
const (
	FieldArea             = "area"
	FieldCity             = "city"
	FieldDistrict         = "district"
	FieldLatitude         = "latitude"
	FieldLongitude        = "longitude"
	FieldPropertyType     = "propertyType"
	FieldAge              = "age"
	FieldNeighborhoodTier = "neighborhoodTier"
	FieldFacade           = "facade"
	FieldStreetWidth      = "streetWidth"
	FieldFinishing        = "finishing"
	FieldView             = "view"
	FieldBedrooms         = "bedrooms"
	FieldBathrooms        = "bathrooms"
	FieldParkingSpaces    = "parkingSpaces"
	FieldFloor            = "floor"
	FieldLandArea         = "landArea"
	FieldBuiltArea        = "builtArea"
)

// Attributes is the sparse property description submitted for valuation.
// Values are JSON primitives: numbers, strings or booleans.
type Attributes map[string]any

// Number reads a finite numeric field. Numeric strings are accepted; NaN and
// infinities are treated as absent.
func (a Attributes) Number(key string) (float64, bool) {
	var f float64
	switch v := a[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String reads a non-blank string field.
func (a Attributes) String(key string) (string, bool) {
	v, ok := a[key].(string)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Text reads an enum-like field as a label. Strings are trimmed, numbers are
// printed in their shortest form and a true flag reads as "true", so any
// present value yields a label.
func (a Attributes) Text(key string) (string, bool) {
	switch v := a[key].(type) {
	case string:
		return a.String(key)
	case bool:
		if v {
			return "true", true
		}
		return "", false
	case nil:
		return "", false
	case json.Number:
		return v.String(), true
	default:
		if n, ok := a.Number(key); ok {
			return formatQty(n), true
		}
		return fmt.Sprint(v), true
	}
}

// Flag reports whether a boolean-ish field is switched on.
func (a Attributes) Flag(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "on", "1":
			return true
		}
		return false
	default:
		n, ok := a.Number(key)
		return ok && n != 0
	}
}

// Present reports whether key carries a non-empty value: not nil, not a
// blank string and not false.
func (a Attributes) Present(key string) bool {
	v, ok := a[key]
	if !ok {
		return false
	}
	return !isEmpty(v)
}

// FilledCount counts every non-empty field, flags included.
func (a Attributes) FilledCount() int {
	n := 0
	for _, v := range a {
		if !isEmpty(v) {
			n++
		}
	}
	return n
}

// Clone returns a shallow copy safe to retain after the request ends.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	default:
		return false
	}
}

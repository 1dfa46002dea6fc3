package listing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// FilterInputs are the raw values of the filter form, as typed or selected.
type FilterInputs struct {
	Search   string `json:"search"`
	Location string `json:"location"`
	Type     string `json:"type"`
	MinPrice string `json:"minPrice"`
	MaxPrice string `json:"maxPrice"`
}

// leading decimal literal, the same prefix a browser's parseFloat accepts
var numberPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// Clear returns the default criteria. Every listing satisfies them.
func Clear() FilterCriteria {
	return FilterCriteria{
		SearchTerm: "",
		Location:   AnyOption,
		Type:       AnyOption,
		MinPrice:   0,
		MaxPrice:   math.Inf(1),
	}
}

// DefaultInputs returns the form values a reset writes back into the inputs.
func DefaultInputs() FilterInputs {
	return FilterInputs{
		Location: AnyOption,
		Type:     AnyOption,
	}
}

// NewCriteria normalizes raw form values. It never fails: an unparsable
// minimum becomes 0 and an unparsable maximum becomes +Inf.
func NewCriteria(in FilterInputs) FilterCriteria {
	c := Clear()
	c.SearchTerm = strings.TrimSpace(in.Search)
	c.Location = selectorOrAny(in.Location)
	c.Type = selectorOrAny(in.Type)
	if v, ok := ParsePrice(in.MinPrice); ok {
		c.MinPrice = v
	}
	if v, ok := ParsePrice(in.MaxPrice); ok {
		c.MaxPrice = v
	}
	return c
}

// ParsePrice reads the leading number of s, ignoring surrounding whitespace
// and any trailing text. ok is false when s has no numeric prefix.
func ParsePrice(s string) (float64, bool) {
	m := numberPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// out of range literals come back as ±Inf with ErrRange
		if math.IsInf(v, 0) {
			return v, true
		}
		return 0, false
	}
	return v, true
}

// InputsFromValues builds form inputs from decoded JSON, where a price may
// arrive as a number instead of text. Missing keys read as empty.
func InputsFromValues(values map[string]interface{}) FilterInputs {
	return FilterInputs{
		Search:   valueString(values["search"]),
		Location: valueString(values["location"]),
		Type:     valueString(values["type"]),
		MinPrice: valueString(values["minPrice"]),
		MaxPrice: valueString(values["maxPrice"]),
	}
}

func valueString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func selectorOrAny(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return AnyOption
	}
	return v
}

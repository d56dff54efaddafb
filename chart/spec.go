package chart

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	MarkBar  = "bar"
	MarkLine = "line"
	MarkArea = "area"
	MarkArc  = "arc"
	MarkPie  = "pie"
)

var Marks = []string{MarkBar, MarkLine, MarkArea, MarkArc, MarkPie}

const (
	DefaultXField = "name"
	DefaultYField = "value"
)

type Record = *orderedmap.OrderedMap[string, any]

type Channel struct {
	Field string `json:"field" jsonschema_description:"Field name bound to this channel"`
	Type  string `json:"type,omitempty" jsonschema:"enum=nominal,enum=quantitative,enum=temporal,enum=ordinal,description=Data type"`
}

type Encoding struct {
	X     *Channel `json:"x,omitempty" jsonschema_description:"Field for the x-axis"`
	Y     *Channel `json:"y,omitempty" jsonschema_description:"Field for the y-axis"`
	Theta *Channel `json:"theta,omitempty" jsonschema_description:"Field for pie chart values (quantitative)"`
	Color *Channel `json:"color,omitempty" jsonschema_description:"Field for color grouping (nominal or ordinal)"`
}

// RawSpec is the chart description as the model sends it: data.values is a
// JSON-encoded array of flat records.
type RawSpec struct {
	Mark        string    `json:"mark" jsonschema:"required" jsonschema_description:"Chart type: 'bar', 'line', 'area', or 'arc'/'pie'"`
	Title       string    `json:"title,omitempty" jsonschema_description:"Chart title - always include for context"`
	Description string    `json:"description,omitempty" jsonschema_description:"Chart description - helps users understand the data"`
	Data        RawData   `json:"data" jsonschema:"required" jsonschema_description:"Chart data - use multi-series format when possible"`
	Encoding    *Encoding `json:"encoding,omitempty" jsonschema_description:"Chart encoding - for multi-series bar/line charts only specify the x field"`
}

type RawData struct {
	Values string `json:"values" jsonschema:"required" jsonschema_description:"JSON string containing an array of data objects. For multi-series include all numeric fields in each object"`
}

type Spec struct {
	Mark        string    `json:"mark"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Data        Data      `json:"data"`
	Encoding    *Encoding `json:"encoding,omitempty"`
}

type Data struct {
	Values []Record `json:"values"`
}

func (s Spec) XField() string {
	if s.Encoding != nil && s.Encoding.X != nil && s.Encoding.X.Field != "" {
		return s.Encoding.X.Field
	}
	return DefaultXField
}

func (s Spec) YField() string {
	if s.Encoding == nil {
		return DefaultYField
	}
	if isPie(s.Mark) && s.Encoding.Theta != nil && s.Encoding.Theta.Field != "" {
		return s.Encoding.Theta.Field
	}
	if s.Encoding.Y != nil && s.Encoding.Y.Field != "" {
		return s.Encoding.Y.Field
	}
	return DefaultYField
}

// NumericFields lists the fields of the first record holding numbers,
// in record order, skipping the x-axis field.
func (s Spec) NumericFields() []string {
	if len(s.Data.Values) == 0 || s.Data.Values[0] == nil {
		return nil
	}

	x := s.XField()
	fields := []string{}

	for pair := s.Data.Values[0].Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == x {
			continue
		}
		if _, ok := number(pair.Value); ok {
			fields = append(fields, pair.Key)
		}
	}

	return fields
}

// MultiSeries reports the series fields when there is more than one.
func (s Spec) MultiSeries() ([]string, bool) {
	fields := s.NumericFields()
	if len(fields) > 1 {
		return fields, true
	}
	return nil, false
}

func isPie(mark string) bool {
	return mark == MarkPie || mark == MarkArc
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrInvalidValues = errors.New("Invalid JSON format in data.values")
	ErrMissingMark   = errors.New("Chart spec must include a 'mark' field")
	ErrMissingValues = errors.New("Chart spec must include data with values array")
)

type InvalidMarkError struct {
	Mark string
}

func (e *InvalidMarkError) Error() string {
	return fmt.Sprintf("Invalid chart type '%s'. Must be one of: %s", e.Mark, strings.Join(Marks, ", "))
}

// Normalize parses data.values and validates the result. The same raw spec
// always normalizes to the same Spec, field order included.
func Normalize(raw RawSpec) (Spec, error) {
	values, err := parseValues(raw.Data.Values)
	if err != nil {
		return Spec{}, err
	}

	if raw.Mark == "" {
		return Spec{}, ErrMissingMark
	}

	if len(values) == 0 {
		return Spec{}, ErrMissingValues
	}

	if !slices.Contains(Marks, raw.Mark) {
		return Spec{}, &InvalidMarkError{Mark: raw.Mark}
	}

	spec := Spec{
		Mark:        raw.Mark,
		Title:       raw.Title,
		Description: raw.Description,
		Data:        Data{Values: values},
		Encoding:    raw.Encoding,
	}

	return spec, nil
}

func parseValues(encoded string) ([]Record, error) {
	var probe any
	if err := json.Unmarshal([]byte(encoded), &probe); err != nil {
		return nil, ErrInvalidValues
	}

	items, ok := probe.([]any)
	if !ok {
		return nil, nil
	}

	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return nil, nil
		}
	}

	var values []Record
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return nil, ErrInvalidValues
	}

	return values, nil
}

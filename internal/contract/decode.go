package contract

import (
	"encoding/json"
	"fmt"
	"math"
)

// Field names of the output contract.
const (
	FieldSummary       = "summary"
	FieldStatus        = "completeness_status"
	FieldMissingPoints = "missing_points"
	FieldEvidence      = "evidence"
	FieldConfidence    = "confidence"
)

// draft is the structural view of raw output. Each field stays nil until it
// has decoded with the right shape.
type draft struct {
	summary       *string
	status        *string
	missingPoints []string
	evidence      []string
	confidence    *float64
}

// decode performs the structural phase: every required field must be
// present with the expected primitive shape. Fields are checked in
// declaration order.
func decode(raw map[string]any) (*draft, *Rejection) {
	if raw == nil {
		return nil, schemaErr(FieldSummary, "output is not an object")
	}
	d := &draft{}

	s, rej := requiredString(raw, FieldSummary)
	if rej != nil {
		return nil, rej
	}
	d.summary = &s

	st, rej := requiredString(raw, FieldStatus)
	if rej != nil {
		return nil, rej
	}
	d.status = &st

	if v, ok := raw[FieldMissingPoints]; ok {
		mp, err := stringList(v)
		if err != nil {
			return nil, schemaErr(FieldMissingPoints, err.Error())
		}
		d.missingPoints = mp
	} else {
		d.missingPoints = []string{}
	}

	v, ok := raw[FieldEvidence]
	if !ok {
		return nil, schemaErr(FieldEvidence, "missing")
	}
	ev, err := stringList(v)
	if err != nil {
		return nil, schemaErr(FieldEvidence, err.Error())
	}
	d.evidence = ev

	v, ok = raw[FieldConfidence]
	if !ok {
		return nil, schemaErr(FieldConfidence, "missing")
	}
	c, err := number(v)
	if err != nil {
		return nil, schemaErr(FieldConfidence, err.Error())
	}
	d.confidence = &c

	return d, nil
}

func requiredString(raw map[string]any, field string) (string, *Rejection) {
	v, ok := raw[field]
	if !ok {
		return "", schemaErr(field, "missing")
	}
	s, ok := v.(string)
	if !ok {
		return "", schemaErr(field, fmt.Sprintf("expected string, got %s", typeName(v)))
	}
	return s, nil
}

func stringList(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return clone(list), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d: expected string, got %s", i, typeName(item))
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list of strings, got %s", typeName(v))
}

func number(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n.String())
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected number, got %s", typeName(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected finite number")
	}
	return f, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, json.Number:
		return "number"
	case []any, []string:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func schemaErr(field, detail string) *Rejection {
	return &Rejection{Kind: KindSchema, Field: field, Detail: detail}
}

package contract

import "fmt"

// Kind classifies why a result was rejected.
type Kind string

const (
	KindSchema       Kind = "schema_violation"
	KindRange        Kind = "range_violation"
	KindEnum         Kind = "invalid_enum"
	KindInconsistent Kind = "inconsistent_fields"
)

// Rejection is returned by Validate when the output breaks the contract.
type Rejection struct {
	Kind   Kind
	Field  string
	Bound  string
	Detail string
}

func (r *Rejection) Error() string {
	msg := fmt.Sprintf("%s: %s", r.Kind, r.Field)
	if r.Bound != "" {
		msg += " (" + r.Bound + ")"
	}
	if r.Detail != "" {
		msg += ": " + r.Detail
	}
	return msg
}

// Is matches another *Rejection with the same kind, so callers can write
// errors.Is(err, &contract.Rejection{Kind: contract.KindRange}).
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	if !ok {
		return false
	}
	return t.Kind == r.Kind && (t.Field == "" || t.Field == r.Field)
}

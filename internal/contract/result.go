// Package contract turns untrusted generator output into a validated
// AnalysisResult. Output is decoded structurally first, then checked against
// an ordered list of rules; the first failing rule decides the rejection.
package contract

import "encoding/json"

// Status is the completeness verdict of an analysis.
type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
	StatusUnknown  Status = "unknown"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusComplete, StatusPartial, StatusUnknown:
		return true
	}
	return false
}

// AnalysisResult is an accepted analysis. Values are only produced by
// Validate and cannot be changed afterwards; slice accessors return copies.
type AnalysisResult struct {
	summary       string
	status        Status
	missingPoints []string
	evidence      []string
	confidence    float64
}

func (r AnalysisResult) Summary() string { return r.summary }
func (r AnalysisResult) Status() Status { return r.status }
func (r AnalysisResult) Confidence() float64 { return r.confidence }

// MissingPoints returns a copy of the missing sections list.
func (r AnalysisResult) MissingPoints() []string { return clone(r.missingPoints) }

// Evidence returns a copy of the supporting quotes.
func (r AnalysisResult) Evidence() []string { return clone(r.evidence) }

type resultJSON struct {
	Summary            string   `json:"summary"`
	CompletenessStatus Status   `json:"completeness_status"`
	MissingPoints      []string `json:"missing_points"`
	Evidence           []string `json:"evidence"`
	Confidence         float64  `json:"confidence"`
}

// MarshalJSON encodes the result with the same field names it was decoded from.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Summary:            r.summary,
		CompletenessStatus: r.status,
		MissingPoints:      r.MissingPoints(),
		Evidence:           r.Evidence(),
		Confidence:         r.confidence,
	})
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

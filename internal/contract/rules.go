package contract

import (
	"fmt"
	"unicode/utf8"
)

const (
	MinSummaryLen = 10
	MaxSummaryLen = 500
	MinConfidence = 0.0
	MaxConfidence = 1.0
)

// checked is a draft whose fields all passed structural decoding.
type checked struct {
	summary       string
	status        string
	missingPoints []string
	evidence      []string
	confidence    float64
}

type rule func(c checked) *Rejection

// rules run in order; the first rejection wins. The cross-field rule is last
// because it needs every field to be individually well-formed.
var rules = []rule{
	summaryLength,
	confidenceBounds,
	evidencePresent,
	statusKnown,
	completeHasNoMissingPoints,
}

func summaryLength(c checked) *Rejection {
	n := utf8.RuneCountInString(c.summary)
	if n < MinSummaryLen || n > MaxSummaryLen {
		return &Rejection{
			Kind:   KindRange,
			Field:  FieldSummary,
			Bound:  fmt.Sprintf("length %d..%d", MinSummaryLen, MaxSummaryLen),
			Detail: fmt.Sprintf("got %d", n),
		}
	}
	return nil
}

func confidenceBounds(c checked) *Rejection {
	if c.confidence < MinConfidence || c.confidence > MaxConfidence {
		return &Rejection{
			Kind:   KindRange,
			Field:  FieldConfidence,
			Bound:  fmt.Sprintf("%.1f..%.1f", MinConfidence, MaxConfidence),
			Detail: fmt.Sprintf("got %g", c.confidence),
		}
	}
	return nil
}

func evidencePresent(c checked) *Rejection {
	if len(c.evidence) == 0 {
		return &Rejection{Kind: KindRange, Field: FieldEvidence, Bound: "at least 1 item"}
	}
	return nil
}

func statusKnown(c checked) *Rejection {
	if !Status(c.status).Valid() {
		return &Rejection{
			Kind:   KindEnum,
			Field:  FieldStatus,
			Bound:  "complete|partial|unknown",
			Detail: fmt.Sprintf("got %q", c.status),
		}
	}
	return nil
}

func completeHasNoMissingPoints(c checked) *Rejection {
	if Status(c.status) == StatusComplete && len(c.missingPoints) > 0 {
		return &Rejection{
			Kind:   KindInconsistent,
			Field:  FieldMissingPoints,
			Detail: "complete documents cannot list missing points",
		}
	}
	return nil
}

package contract

// Validate checks raw generator output against the analysis contract. On
// success it returns an immutable AnalysisResult; otherwise the error is a
// *Rejection.
func Validate(raw map[string]any) (AnalysisResult, error) {
	d, rej := decode(raw)
	if rej != nil {
		return AnalysisResult{}, rej
	}
	c := checked{
		summary:       *d.summary,
		status:        *d.status,
		missingPoints: d.missingPoints,
		evidence:      d.evidence,
		confidence:    *d.confidence,
	}
	for _, r := range rules {
		if rej := r(c); rej != nil {
			return AnalysisResult{}, rej
		}
	}
	return AnalysisResult{
		summary:       c.summary,
		status:        Status(c.status),
		missingPoints: clone(c.missingPoints),
		evidence:      clone(c.evidence),
		confidence:    c.confidence,
	}, nil
}

// ParseAndValidate extracts the JSON object from generated text and
// validates it.
func ParseAndValidate(text string) (AnalysisResult, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return AnalysisResult{}, err
	}
	return Validate(raw)
}

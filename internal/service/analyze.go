package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"docqa/internal/contract"
	"docqa/internal/domain"
	"docqa/internal/prompt"
)

// Analyze assesses a document for completeness. The generator's output is
// accepted only if it passes the analysis contract; parse failures and
// rejections are returned as *contract.ParseError and *contract.Rejection.
func (p *Pipeline) Analyze(ctx context.Context, text string) (contract.AnalysisResult, error) {
	rid := requestID()
	start := time.Now()

	n := utf8.RuneCountInString(text)
	switch {
	case n < p.opts.AnalyzeMinChars:
		return contract.AnalysisResult{}, fmt.Errorf("%w: %d < %d characters", ErrDocumentTooShort, n, p.opts.AnalyzeMinChars)
	case n > p.opts.AnalyzeMaxChars:
		return contract.AnalysisResult{}, fmt.Errorf("%w: %d > %d characters", ErrDocumentTooLong, n, p.opts.AnalyzeMaxChars)
	}
	log := p.logger.WithCorrelationId(rid)
	log.Info().Int("chars", n).Str("preview", preview(text, 100)).Msg("Analysis started")

	found, err := p.guidelines.Top(ctx, text, p.opts.GuidelineTopK)
	if err != nil {
		return contract.AnalysisResult{}, err
	}
	texts := make([]string, len(found))
	names := make([]string, len(found))
	for i, g := range found {
		texts[i] = g.Text
		names[i] = g.Name
	}
	log.Debug().Strs("guidelines", names).Msg("Guidelines retrieved")

	pr, err := prompt.Analysis(text, texts)
	if err != nil {
		return contract.AnalysisResult{}, fmt.Errorf("build analysis prompt: %w", err)
	}
	raw, err := p.generator.Generate(ctx, pr)
	if err != nil {
		return contract.AnalysisResult{}, &domain.GenerationError{Generator: p.generator.Name(), Err: err}
	}

	result, err := contract.ParseAndValidate(raw)
	if err != nil {
		var rej *contract.Rejection
		if errors.As(err, &rej) {
			log.Warn().Str("kind", string(rej.Kind)).Str("field", rej.Field).Msg("Generator output rejected")
		} else {
			log.Warn().Err(err).Msg("Generator output not parseable")
		}
		return contract.AnalysisResult{}, err
	}

	log.Info().
		Str("status", string(result.Status())).
		Str("confidence", fmt.Sprintf("%.2f", result.Confidence())).
		Str("duration", time.Since(start).String()).
		Msg("Analysis complete")
	return result, nil
}

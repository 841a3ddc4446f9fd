// Package facets fans a transcript out to four independent inference facets
// and collects the structured results. The fan-out is all-or-nothing: one
// failed or unparseable facet fails the whole analysis, so callers never see
// a partial result.
package facets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/callscore/internal/llm"
)

const (
	facetSentiment = "sentiment_intent"
	facetSemantic  = "semantic_discourse"
	facetEmotional = "emotional_profile"
	facetStructure = "conversation_structure"
)

const defaultFacetTimeout = 60 * time.Second

// FacetError marks a failure of one named facet: an inference error, a
// timeout, or non-JSON output.
type FacetError struct {
	Facet string
	Err   error
}

func (e *FacetError) Error() string { return fmt.Sprintf("facet %s: %v", e.Facet, e.Err) }
func (e *FacetError) Unwrap() error { return e.Err }

type Analyzer struct {
	llm     llm.Completer
	logger  *slog.Logger
	timeout time.Duration
}

func New(c llm.Completer, logger *slog.Logger) *Analyzer {
	return &Analyzer{llm: c, logger: logger, timeout: defaultFacetTimeout}
}

// SetTimeout overrides the per-facet timeout.
func (a *Analyzer) SetTimeout(d time.Duration) {
	a.timeout = d
}

// outcome is the tagged per-facet result of the fan-out.
type outcome struct {
	facet string
	raw   string
	err   error
}

// Analyze runs the four facet calls concurrently and waits for all of them.
// Any facet failure returns a *FacetError and no Result.
func (a *Analyzer) Analyze(ctx context.Context, transcript string) (*Result, error) {
	facets := []struct {
		name   string
		prompt string
	}{
		{facetSentiment, sentimentPrompt},
		{facetSemantic, semanticPrompt},
		{facetEmotional, emotionalPrompt},
		{facetStructure, structurePrompt},
	}

	a.logger.Info("dispatching facet analysis",
		"facets", len(facets),
		"transcript_len", len(transcript),
	)

	ch := make(chan outcome, len(facets))
	for _, f := range facets {
		go func(name, prompt string) {
			raw, err := a.complete(ctx, prompt, transcript)
			ch <- outcome{facet: name, raw: raw, err: err}
		}(f.name, f.prompt)
	}

	raws := make(map[string]string, len(facets))
	var failure *FacetError
	for range facets {
		out := <-ch
		if out.err != nil {
			a.logger.Error("facet failed", "facet", out.facet, "error", out.err)
			if failure == nil {
				failure = &FacetError{Facet: out.facet, Err: out.err}
			}
			continue
		}
		raws[out.facet] = out.raw
	}
	if failure != nil {
		return nil, failure
	}

	var res Result
	for facet, dst := range map[string]any{
		facetSentiment: &res.Sentiment,
		facetSemantic:  &res.Semantic,
		facetEmotional: &res.Emotional,
		facetStructure: &res.Structure,
	} {
		if err := json.Unmarshal([]byte(stripFences(raws[facet])), dst); err != nil {
			a.logger.Error("facet returned invalid JSON", "facet", facet, "raw", raws[facet])
			return nil, &FacetError{Facet: facet, Err: fmt.Errorf("parse output: %w", err)}
		}
	}

	a.logger.Info("facet analysis complete", "facets", len(facets))
	return &res, nil
}

func (a *Analyzer) complete(ctx context.Context, prompt, transcript string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	messages := []llm.Message{
		{Role: "user", Content: fmt.Sprintf(prompt, transcript)},
	}
	return a.llm.Complete(ctx, systemPrompt, messages, 2048)
}

// stripFences removes a markdown code fence (with optional json language tag)
// wrapped around a model response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.Trim(s, "`")
	s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	return strings.TrimSpace(s)
}

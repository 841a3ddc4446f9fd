// Package coordinator drives the analysis pipeline for one lead: analyze
// every transcribed call that lacks an AnalysisRecord, then re-score the lead
// and append a new ledger version. Per-call failures are tolerated and
// reported; only a missing lead is fatal.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/callscore/internal/events"
	"github.com/MikeSquared-Agency/callscore/internal/scoring"
	"github.com/MikeSquared-Agency/callscore/internal/store"
)

// Store is the persistence surface the coordinator needs.
type Store interface {
	GetLead(ctx context.Context, id uuid.UUID) (*store.Lead, error)
	CallsByLead(ctx context.Context, leadID uuid.UUID) ([]store.Call, error)
	AnalyzedCallIDs(ctx context.Context, leadID uuid.UUID) (map[uuid.UUID]bool, error)
	LatestTranscribedCall(ctx context.Context, leadID uuid.UUID) (*store.Call, error)
	GetAnalysisByCall(ctx context.Context, callID uuid.UUID) (*store.AnalysisRecord, error)
	AppendScore(ctx context.Context, leadID, officerID uuid.UUID, score float64, reason string, callIDs []uuid.UUID) (*store.ScoreVersion, error)
}

// Orchestrator analyzes a single call.
type Orchestrator interface {
	AnalyzeCall(ctx context.Context, callID uuid.UUID, transcript string) (*store.AnalysisRecord, error)
}

// Publisher emits domain events; may be left nil.
type Publisher interface {
	Publish(subject string, data any) error
}

// Report is the status object returned to the caller. Partial failures are
// reported here, never raised.
type Report struct {
	LeadID          uuid.UUID `json:"lead_id"`
	TotalCalls      int       `json:"total_calls"`
	AlreadyAnalyzed int       `json:"already_analyzed"`
	NewlyAnalyzed   int       `json:"newly_analyzed"`
	Errors          []string  `json:"errors"`
	Score           *float64  `json:"score,omitempty"`
	ScoreVersion    int       `json:"score_version,omitempty"`
	Actions         []string  `json:"actions"`
}

func (r *Report) act(format string, args ...any) {
	r.Actions = append(r.Actions, fmt.Sprintf(format, args...))
}

func (r *Report) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

type Coordinator struct {
	store  Store
	orch   Orchestrator
	events Publisher
	logger *slog.Logger
}

func New(s Store, o Orchestrator, pub Publisher, logger *slog.Logger) *Coordinator {
	return &Coordinator{store: s, orch: o, events: pub, logger: logger}
}

// Analyze runs the full pipeline for a lead. Calls are processed
// sequentially to bound concurrent inference load; each call's facet batch is
// atomic on its own, so a failed call never blocks its siblings. A new score
// version is appended whenever at least one transcribed call exists, whether
// or not anything new was analyzed in this invocation.
func (c *Coordinator) Analyze(ctx context.Context, leadID uuid.UUID) (*Report, error) {
	lead, err := c.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("lead %s: %w", leadID, err)
	}

	report := &Report{LeadID: leadID, Errors: []string{}, Actions: []string{}}

	calls, err := c.store.CallsByLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("load calls for lead %s: %w", leadID, err)
	}
	report.TotalCalls = len(calls)

	var transcribed []store.Call
	for _, call := range calls {
		if call.HasTranscript() {
			transcribed = append(transcribed, call)
		}
	}
	if len(transcribed) == 0 {
		c.logger.Info("nothing to analyze", "lead_id", leadID, "total_calls", len(calls))
		report.act("no transcribed calls found, nothing to analyze")
		return report, nil
	}

	analyzed, err := c.store.AnalyzedCallIDs(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("load analyzed calls for lead %s: %w", leadID, err)
	}

	for _, call := range transcribed {
		if analyzed[call.ID] {
			report.AlreadyAnalyzed++
			continue
		}

		if _, err := c.orch.AnalyzeCall(ctx, call.ID, call.Transcript); err != nil {
			c.logger.Error("call analysis failed", "lead_id", leadID, "call_id", call.ID, "error", err)
			report.fail("call %s: %v", call.ID, err)
			continue
		}
		report.NewlyAnalyzed++
		report.act("analyzed call %s", call.ID)
	}

	c.score(ctx, lead, transcribed, report)

	c.logger.Info("lead analysis complete",
		"lead_id", leadID,
		"total_calls", report.TotalCalls,
		"already_analyzed", report.AlreadyAnalyzed,
		"newly_analyzed", report.NewlyAnalyzed,
		"errors", len(report.Errors),
	)
	return report, nil
}

// score recomputes the lead score from the latest transcribed call and
// appends a ledger version. The snapshot covers every transcribed call known
// right now, even though only the latest call drives the value.
func (c *Coordinator) score(ctx context.Context, lead *store.Lead, transcribed []store.Call, report *Report) {
	latest, err := c.store.LatestTranscribedCall(ctx, lead.ID)
	if err != nil {
		report.fail("latest call: %v", err)
		return
	}

	analysis, err := c.store.GetAnalysisByCall(ctx, latest.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			report.fail("latest call %s has no analysis, skipping scoring", latest.ID)
		} else {
			report.fail("load analysis for call %s: %v", latest.ID, err)
		}
		return
	}

	result := scoring.Compute(lead, latest, analysis)

	callIDs := make([]uuid.UUID, len(transcribed))
	for i, call := range transcribed {
		callIDs[i] = call.ID
	}

	version, err := c.store.AppendScore(ctx, lead.ID, latest.OfficerID, result.Score, result.Reason, callIDs)
	if err != nil {
		report.fail("append score: %v", err)
		return
	}

	report.Score = &version.Score
	report.ScoreVersion = version.Version
	report.act("scored %.2f at version %d from call %s", version.Score, version.Version, latest.ID)

	if c.events != nil {
		if err := c.events.Publish(events.SubjectScoreUpdated, map[string]any{
			"lead_id": lead.ID.String(),
			"score":   version.Score,
			"version": version.Version,
		}); err != nil {
			c.logger.Warn("failed to publish score updated event", "error", err)
		}
	}
}

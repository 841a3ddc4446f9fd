// Package analysis turns one call's transcript into a persisted
// AnalysisRecord: deterministic metrics plus four inference facets, merged
// and written exactly once.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/callscore/internal/events"
	"github.com/MikeSquared-Agency/callscore/internal/facets"
	"github.com/MikeSquared-Agency/callscore/internal/metrics"
	"github.com/MikeSquared-Agency/callscore/internal/store"
)

// FacetAnalyzer produces the facet results for a transcript.
type FacetAnalyzer interface {
	Analyze(ctx context.Context, transcript string) (*facets.Result, error)
}

// Recorder persists analysis records. Insert reports false when the call
// already has a record.
type Recorder interface {
	InsertAnalysis(ctx context.Context, rec *store.AnalysisRecord) (bool, error)
}

// Publisher emits domain events. May be nil-backed; see events.Client.
type Publisher interface {
	Publish(subject string, data any) error
}

type Orchestrator struct {
	facets    FacetAnalyzer
	store     Recorder
	events    Publisher
	logger    *slog.Logger
	modelName string
}

func New(fa FacetAnalyzer, rec Recorder, pub Publisher, modelName string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		facets:    fa,
		store:     rec,
		events:    pub,
		logger:    logger,
		modelName: modelName,
	}
}

// AnalyzeCall produces and persists the AnalysisRecord for one call. The
// deterministic metrics always win over facet output for the fields both
// cover. If any facet fails, nothing is persisted. If a record already
// exists the insert is a no-op and the built record is returned unpersisted.
func (o *Orchestrator) AnalyzeCall(ctx context.Context, callID uuid.UUID, transcript string) (*store.AnalysisRecord, error) {
	if transcript == "" {
		return nil, fmt.Errorf("call %s has no transcript", callID)
	}

	o.logger.Info("analyzing call", "call_id", callID, "transcript_len", len(transcript))

	m := metrics.Calculate(transcript)

	res, err := o.facets.Analyze(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("analyze call %s: %w", callID, err)
	}

	rec := merge(callID, o.modelName, m, res)

	inserted, err := o.store.InsertAnalysis(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("persist analysis for call %s: %w", callID, err)
	}
	if !inserted {
		o.logger.Warn("call already analyzed, keeping existing record", "call_id", callID)
		return rec, nil
	}

	if o.events != nil {
		if err := o.events.Publish(events.SubjectCallAnalyzed, map[string]any{
			"call_id":    callID.String(),
			"sentiment":  rec.Sentiment,
			"confidence": rec.Confidence,
		}); err != nil {
			o.logger.Warn("failed to publish call analyzed event", "error", err)
		}
	}

	o.logger.Info("call analysis persisted",
		"call_id", callID,
		"analysis_id", rec.ID,
		"sentiment", rec.Sentiment,
		"phases", len(rec.ConversationPhases),
	)
	return rec, nil
}

// merge combines facet output with deterministic metrics into one record.
func merge(callID uuid.UUID, modelName string, m metrics.Metrics, res *facets.Result) *store.AnalysisRecord {
	return &store.AnalysisRecord{
		CallID:    callID,
		ModelName: modelName,

		Sentiment:             res.Sentiment.Sentiment,
		Tone:                  res.Sentiment.Tone,
		IntentType:            res.Sentiment.IntentType,
		IntentStrength:        res.Sentiment.IntentStrength,
		DecisionStage:         res.Sentiment.DecisionStage,
		ConversionProbability: res.Sentiment.ConversionProbability,
		Summary:               res.Sentiment.Summary,
		OutcomeClassification: res.Sentiment.OutcomeClassification,

		TopicsDiscussed:    res.Semantic.TopicsDiscussed,
		SpeechActs:         res.Semantic.SpeechActs,
		DiscourseRelations: res.Semantic.DiscourseRelations,
		FramingStyle:       res.Semantic.FramingStyle,
		Themes:             res.Semantic.Themes,
		Highlights:         res.Semantic.Highlights,

		PainPoints:      res.Emotional.PainPoints,
		Objections:      res.Emotional.Objections,
		ClarityScore:    res.Emotional.ClarityScore,
		TrustScore:      res.Emotional.TrustScore,
		EmotionProfile:  res.Emotional.EmotionProfile,
		DominantEmotion: res.Emotional.DominantEmotion,
		EmpathyScore:    res.Emotional.EmpathyScore,

		NextActions:      res.Structure.NextActions,
		FollowupPriority: res.Structure.FollowupPriority,
		CooperationIndex: res.Structure.CooperationIndex,
		ResponseLatency:  res.Structure.ResponseLatency,
		Confidence:       res.Structure.Confidence,

		Keywords:           m.Keywords,
		DeceptionMarkers:   m.DeceptionMarkers,
		TalkRatio:          m.TalkRatio,
		DominanceScore:     m.DominanceScore,
		Interruptions:      m.Interruptions,
		PolitenessLevel:    m.PolitenessLevel,
		FormalityLevel:     m.FormalityLevel,
		EntityMentions:     m.EntityMentions,
		ConversationPhases: m.ConversationPhases,
	}
}

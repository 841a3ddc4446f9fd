package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/callscore/internal/metrics"
)

// AnalysisRecord is the merged result of all analysis facets for one call.
// At most one record exists per call; re-analysis is a no-op. The
// deterministic-metric fields (keywords through conversation phases) always
// come from the metrics calculator, never from facet output.
type AnalysisRecord struct {
	ID        uuid.UUID
	CallID    uuid.UUID
	ModelName string

	// Sentiment and intent facet.
	Sentiment             string
	Tone                  string
	IntentType            string
	IntentStrength        string
	DecisionStage         string
	ConversionProbability float64
	Summary               string
	OutcomeClassification string

	// Semantic and discourse facet.
	TopicsDiscussed    []string
	SpeechActs         []string
	DiscourseRelations []string
	FramingStyle       string
	Themes             []string
	Highlights         []string

	// Emotional facet.
	PainPoints      string
	Objections      string
	ClarityScore    float64
	TrustScore      float64
	EmotionProfile  map[string]float64
	DominantEmotion string
	EmpathyScore    float64

	// Conversation structure facet.
	NextActions      string
	FollowupPriority string
	CooperationIndex float64
	ResponseLatency  float64
	Confidence       float64

	// Deterministic metrics.
	Keywords           []metrics.Keyword
	DeceptionMarkers   map[string]int
	TalkRatio          metrics.TalkRatio
	DominanceScore     metrics.Dominance
	Interruptions      int
	PolitenessLevel    float64
	FormalityLevel     float64
	EntityMentions     metrics.EntityMentions
	ConversationPhases []string

	CreatedAt time.Time
}

// InsertAnalysis persists an analysis record, assigning rec.ID. The insert is
// conditional on the call not already having a record; it reports false
// without error when one exists, which keeps re-analysis idempotent even
// under concurrent callers.
func (s *Store) InsertAnalysis(ctx context.Context, rec *AnalysisRecord) (bool, error) {
	rec.ID = uuid.New()

	jsonCols, err := marshalAnalysisJSON(rec)
	if err != nil {
		return false, err
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO call_analyses (
			id, call_id, model_name,
			sentiment, tone, intent_type, intent_strength, decision_stage,
			conversion_probability, summary_ai, outcome_classification,
			topics_discussed, speech_acts, discourse_relations, framing_style,
			themes, highlights,
			pain_points, objections, clarity_score, trust_score, emotion_profile,
			dominant_emotion, empathy_score,
			next_actions, followup_priority, cooperation_index, response_latency, confidence,
			keywords, deception_markers, talk_ratio, dominance_score, interruptions,
			politeness_level, formality_level, entity_mentions, conversation_phases,
			created_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24,
			$25, $26, $27, $28, $29,
			$30, $31, $32, $33, $34, $35, $36, $37, $38,
			now()
		)
		ON CONFLICT (call_id) DO NOTHING`,
		rec.ID, rec.CallID, rec.ModelName,
		rec.Sentiment, rec.Tone, rec.IntentType, rec.IntentStrength, rec.DecisionStage,
		rec.ConversionProbability, rec.Summary, rec.OutcomeClassification,
		jsonCols.topics, jsonCols.speechActs, jsonCols.discourse, rec.FramingStyle,
		jsonCols.themes, jsonCols.highlights,
		rec.PainPoints, rec.Objections, rec.ClarityScore, rec.TrustScore, jsonCols.emotions,
		rec.DominantEmotion, rec.EmpathyScore,
		rec.NextActions, rec.FollowupPriority, rec.CooperationIndex, rec.ResponseLatency, rec.Confidence,
		jsonCols.keywords, jsonCols.deception, jsonCols.talkRatio, jsonCols.dominance, rec.Interruptions,
		rec.PolitenessLevel, rec.FormalityLevel, jsonCols.entities, jsonCols.phases,
	)
	if err != nil {
		return false, fmt.Errorf("insert analysis: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetAnalysisByCall fetches the analysis record for a call, or ErrNotFound.
func (s *Store) GetAnalysisByCall(ctx context.Context, callID uuid.UUID) (*AnalysisRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, call_id, model_name,
		       COALESCE(sentiment, ''), COALESCE(tone, ''), COALESCE(intent_type, ''),
		       COALESCE(intent_strength, ''), COALESCE(decision_stage, ''),
		       COALESCE(conversion_probability, 0), COALESCE(summary_ai, ''),
		       COALESCE(outcome_classification, ''),
		       topics_discussed, speech_acts, discourse_relations, COALESCE(framing_style, ''),
		       themes, highlights,
		       COALESCE(pain_points, ''), COALESCE(objections, ''),
		       COALESCE(clarity_score, 0), COALESCE(trust_score, 0), emotion_profile,
		       COALESCE(dominant_emotion, ''), COALESCE(empathy_score, 0),
		       COALESCE(next_actions, ''), COALESCE(followup_priority, ''),
		       COALESCE(cooperation_index, 0), COALESCE(response_latency, 0), COALESCE(confidence, 0),
		       keywords, deception_markers, talk_ratio, dominance_score,
		       COALESCE(interruptions, 0), COALESCE(politeness_level, 0),
		       COALESCE(formality_level, 0), entity_mentions, conversation_phases,
		       created_at
		FROM call_analyses
		WHERE call_id = $1`,
		callID,
	)

	var rec AnalysisRecord
	var topics, speechActs, discourse, themes, highlights []byte
	var emotions, keywords, deception, talkRatio, dominance, entities, phases []byte

	err := row.Scan(&rec.ID, &rec.CallID, &rec.ModelName,
		&rec.Sentiment, &rec.Tone, &rec.IntentType, &rec.IntentStrength, &rec.DecisionStage,
		&rec.ConversionProbability, &rec.Summary, &rec.OutcomeClassification,
		&topics, &speechActs, &discourse, &rec.FramingStyle,
		&themes, &highlights,
		&rec.PainPoints, &rec.Objections, &rec.ClarityScore, &rec.TrustScore, &emotions,
		&rec.DominantEmotion, &rec.EmpathyScore,
		&rec.NextActions, &rec.FollowupPriority, &rec.CooperationIndex, &rec.ResponseLatency, &rec.Confidence,
		&keywords, &deception, &talkRatio, &dominance,
		&rec.Interruptions, &rec.PolitenessLevel, &rec.FormalityLevel, &entities, &phases,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	for _, field := range []struct {
		raw []byte
		dst any
	}{
		{topics, &rec.TopicsDiscussed},
		{speechActs, &rec.SpeechActs},
		{discourse, &rec.DiscourseRelations},
		{themes, &rec.Themes},
		{highlights, &rec.Highlights},
		{emotions, &rec.EmotionProfile},
		{keywords, &rec.Keywords},
		{deception, &rec.DeceptionMarkers},
		{talkRatio, &rec.TalkRatio},
		{dominance, &rec.DominanceScore},
		{entities, &rec.EntityMentions},
		{phases, &rec.ConversationPhases},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, fmt.Errorf("decode analysis field: %w", err)
		}
	}

	return &rec, nil
}

// AnalyzedCallIDs returns the set of call ids for a lead that already have an
// analysis record.
func (s *Store) AnalyzedCallIDs(ctx context.Context, leadID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ca.call_id
		FROM call_analyses ca
		JOIN calls c ON c.id = ca.call_id
		WHERE c.lead_id = $1`,
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("analyzed call ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan call id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

type analysisJSON struct {
	topics, speechActs, discourse, themes, highlights   []byte
	emotions, keywords, deception, talkRatio, dominance []byte
	entities, phases                                    []byte
}

func marshalAnalysisJSON(rec *AnalysisRecord) (*analysisJSON, error) {
	var j analysisJSON
	var err error
	for _, field := range []struct {
		dst *[]byte
		src any
	}{
		{&j.topics, rec.TopicsDiscussed},
		{&j.speechActs, rec.SpeechActs},
		{&j.discourse, rec.DiscourseRelations},
		{&j.themes, rec.Themes},
		{&j.highlights, rec.Highlights},
		{&j.emotions, rec.EmotionProfile},
		{&j.keywords, rec.Keywords},
		{&j.deception, rec.DeceptionMarkers},
		{&j.talkRatio, rec.TalkRatio},
		{&j.dominance, rec.DominanceScore},
		{&j.entities, rec.EntityMentions},
		{&j.phases, rec.ConversationPhases},
	} {
		if *field.dst, err = json.Marshal(field.src); err != nil {
			return nil, fmt.Errorf("encode analysis field: %w", err)
		}
	}
	return &j, nil
}

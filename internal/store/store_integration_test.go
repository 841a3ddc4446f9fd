//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/callscore/internal/metrics"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func seedLeadWithCall(t *testing.T, s *Store) (leadID, callID, officerID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	leadID = uuid.New()
	callID = uuid.New()
	officerID = uuid.New()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, name, credit_score, interest_level, status) VALUES ($1, $2, $3, $4, $5)`,
		leadID, "Integration Test Lead", 700, 8, "Active")
	if err != nil {
		t.Fatalf("seed lead failed: %v", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO calls (id, lead_id, officer_id, duration_minutes, transcription) VALUES ($1, $2, $3, $4, $5)`,
		callID, leadID, officerID, 15, "Agent: hello\nCustomer: hi there")
	if err != nil {
		t.Fatalf("seed call failed: %v", err)
	}

	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM leads WHERE id = $1", leadID)
	})
	return leadID, callID, officerID
}

func TestIntegration_InsertAnalysisIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	_, callID, _ := seedLeadWithCall(t, s)

	rec := &AnalysisRecord{
		CallID:         callID,
		ModelName:      "integration-test",
		Sentiment:      "positive",
		IntentStrength: "high",
		ClarityScore:   8,
		Keywords:       []metrics.Keyword{{Keyword: "hello", Frequency: 1}},
		TalkRatio:      metrics.TalkRatio{Agent: 0.5, Customer: 0.5},
	}

	inserted, err := s.InsertAnalysis(ctx, rec)
	if err != nil {
		t.Fatalf("InsertAnalysis failed: %v", err)
	}
	if !inserted {
		t.Fatal("expected first insert to win")
	}

	// A second insert for the same call must be a no-op, not an error.
	dup := &AnalysisRecord{CallID: callID, Sentiment: "negative"}
	inserted, err = s.InsertAnalysis(ctx, dup)
	if err != nil {
		t.Fatalf("duplicate InsertAnalysis failed: %v", err)
	}
	if inserted {
		t.Fatal("expected duplicate insert to be skipped")
	}

	// The stored record is the first one.
	got, err := s.GetAnalysisByCall(ctx, callID)
	if err != nil {
		t.Fatalf("GetAnalysisByCall failed: %v", err)
	}
	if got.Sentiment != "positive" {
		t.Errorf("expected first record to survive, got sentiment %q", got.Sentiment)
	}
	if len(got.Keywords) != 1 || got.Keywords[0].Keyword != "hello" {
		t.Errorf("expected keywords round-trip, got %+v", got.Keywords)
	}
}

func TestIntegration_AnalyzedCallIDs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	leadID, callID, _ := seedLeadWithCall(t, s)

	ids, err := s.AnalyzedCallIDs(ctx, leadID)
	if err != nil {
		t.Fatalf("AnalyzedCallIDs failed: %v", err)
	}
	if ids[callID] {
		t.Fatal("call must not be marked analyzed before insert")
	}

	if _, err := s.InsertAnalysis(ctx, &AnalysisRecord{CallID: callID}); err != nil {
		t.Fatalf("InsertAnalysis failed: %v", err)
	}

	ids, err = s.AnalyzedCallIDs(ctx, leadID)
	if err != nil {
		t.Fatalf("AnalyzedCallIDs after insert failed: %v", err)
	}
	if !ids[callID] {
		t.Error("expected call marked analyzed after insert")
	}
}

func TestIntegration_ScoreLedgerVersions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	leadID, callID, officerID := seedLeadWithCall(t, s)

	v1, err := s.AppendScore(ctx, leadID, officerID, 75.5, "first pass", []uuid.UUID{callID})
	if err != nil {
		t.Fatalf("AppendScore (v1) failed: %v", err)
	}
	if v1.Version != 1 {
		t.Errorf("expected version 1, got %d", v1.Version)
	}

	v2, err := s.AppendScore(ctx, leadID, officerID, 82.0, "second pass", []uuid.UUID{callID})
	if err != nil {
		t.Fatalf("AppendScore (v2) failed: %v", err)
	}
	if v2.Version != 2 {
		t.Errorf("expected version 2, got %d", v2.Version)
	}

	latest, err := s.LatestScore(ctx, leadID)
	if err != nil {
		t.Fatalf("LatestScore failed: %v", err)
	}
	if latest.Version != 2 || latest.Score != 82.0 {
		t.Errorf("expected latest v2 score 82.0, got v%d score %f", latest.Version, latest.Score)
	}

	history, err := s.ScoreHistory(ctx, leadID)
	if err != nil {
		t.Fatalf("ScoreHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(history))
	}
	if history[0].Version != 2 || history[1].Version != 1 {
		t.Errorf("expected newest first, got %d then %d", history[0].Version, history[1].Version)
	}
	if history[1].Score != 75.5 || history[1].Reason != "first pass" {
		t.Errorf("expected v1 unchanged, got %+v", history[1])
	}
	if len(history[0].CallIDsSnapshot) != 1 || history[0].CallIDsSnapshot[0] != callID {
		t.Errorf("expected snapshot round-trip, got %+v", history[0].CallIDsSnapshot)
	}
}

func TestIntegration_LatestScoreNotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.LatestScore(ctx, uuid.New())
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIntegration_LeadAndCallReads(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	leadID, callID, _ := seedLeadWithCall(t, s)

	lead, err := s.GetLead(ctx, leadID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if lead.Name != "Integration Test Lead" || lead.CreditScore == nil || *lead.CreditScore != 700 {
		t.Errorf("unexpected lead: %+v", lead)
	}

	calls, err := s.CallsByLead(ctx, leadID)
	if err != nil {
		t.Fatalf("CallsByLead failed: %v", err)
	}
	if len(calls) != 1 || calls[0].ID != callID {
		t.Fatalf("expected the seeded call, got %+v", calls)
	}
	if !calls[0].HasTranscript() {
		t.Error("expected transcript present")
	}

	latest, err := s.LatestTranscribedCall(ctx, leadID)
	if err != nil {
		t.Fatalf("LatestTranscribedCall failed: %v", err)
	}
	if latest.ID != callID {
		t.Errorf("expected call %s, got %s", callID, latest.ID)
	}
}

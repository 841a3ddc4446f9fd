package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/callscore/internal/facets"
	"github.com/MikeSquared-Agency/callscore/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFacets struct {
	result *facets.Result
	err    error
	calls  int
}

func (f *fakeFacets) Analyze(ctx context.Context, transcript string) (*facets.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeRecorder struct {
	inserted []*store.AnalysisRecord
	exists   bool
	err      error
}

func (f *fakeRecorder) InsertAnalysis(ctx context.Context, rec *store.AnalysisRecord) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.exists {
		return false, nil
	}
	f.inserted = append(f.inserted, rec)
	return true, nil
}

func facetResult() *facets.Result {
	return &facets.Result{
		Sentiment: facets.SentimentIntent{
			Sentiment:             "positive",
			IntentStrength:        "high",
			ConversionProbability: 70,
		},
		Semantic: facets.SemanticDiscourse{
			TopicsDiscussed: []string{"personal loan"},
			// Facets must not override deterministic keyword extraction;
			// nothing here maps onto Keywords.
		},
		Emotional: facets.EmotionalProfile{
			ClarityScore: 8,
			EmpathyScore: 7,
		},
		Structure: facets.ConversationStructure{
			CooperationIndex: 0.8,
			Confidence:       0.9,
		},
	}
}

func TestAnalyzeCall_MergesDeterministicAndFacets(t *testing.T) {
	ff := &fakeFacets{result: facetResult()}
	rec := &fakeRecorder{}
	o := New(ff, rec, nil, "test-model", discardLogger())

	transcript := "Agent: Hello! Would a personal loan work for you?\nCustomer: Maybe. What is the rate?"
	got, err := o.AnalyzeCall(context.Background(), uuid.New(), transcript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.inserted) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(rec.inserted))
	}
	if got.Sentiment != "positive" {
		t.Errorf("expected facet sentiment, got %q", got.Sentiment)
	}
	if got.ModelName != "test-model" {
		t.Errorf("expected model name, got %q", got.ModelName)
	}

	// Deterministic fields come from the metrics calculator.
	if len(got.Keywords) == 0 {
		t.Error("expected deterministic keywords")
	}
	if got.TalkRatio.Agent+got.TalkRatio.Customer != 1.0 {
		t.Errorf("expected deterministic talk ratio, got %+v", got.TalkRatio)
	}
	if got.DeceptionMarkers["maybe"] != 1 {
		t.Errorf("expected deterministic deception markers, got %v", got.DeceptionMarkers)
	}
	if len(got.ConversationPhases) == 0 {
		t.Error("expected deterministic conversation phases")
	}
}

func TestAnalyzeCall_FacetFailureAborts(t *testing.T) {
	ff := &fakeFacets{err: &facets.FacetError{Facet: "emotional_profile", Err: errors.New("timeout")}}
	rec := &fakeRecorder{}
	o := New(ff, rec, nil, "test-model", discardLogger())

	_, err := o.AnalyzeCall(context.Background(), uuid.New(), "Agent: hello")
	if err == nil {
		t.Fatal("expected error when facets fail")
	}
	if len(rec.inserted) != 0 {
		t.Fatal("no record may be persisted on facet failure")
	}

	var fe *facets.FacetError
	if !errors.As(err, &fe) {
		t.Errorf("expected wrapped *FacetError, got %T", err)
	}
}

func TestAnalyzeCall_EmptyTranscript(t *testing.T) {
	ff := &fakeFacets{result: facetResult()}
	o := New(ff, &fakeRecorder{}, nil, "test-model", discardLogger())

	_, err := o.AnalyzeCall(context.Background(), uuid.New(), "")
	if err == nil {
		t.Fatal("expected error for empty transcript")
	}
	if ff.calls != 0 {
		t.Errorf("expected no facet calls for empty transcript, got %d", ff.calls)
	}
}

func TestAnalyzeCall_ExistingRecordIsNoOp(t *testing.T) {
	ff := &fakeFacets{result: facetResult()}
	rec := &fakeRecorder{exists: true}
	o := New(ff, rec, nil, "test-model", discardLogger())

	got, err := o.AnalyzeCall(context.Background(), uuid.New(), "Agent: hello again")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected the built record back")
	}
	if len(rec.inserted) != 0 {
		t.Error("conflicting insert must not persist a second record")
	}
}

func TestAnalyzeCall_PersistenceFailurePropagates(t *testing.T) {
	ff := &fakeFacets{result: facetResult()}
	rec := &fakeRecorder{err: errors.New("connection reset")}
	o := New(ff, rec, nil, "test-model", discardLogger())

	_, err := o.AnalyzeCall(context.Background(), uuid.New(), "Agent: hello")
	if err == nil {
		t.Fatal("expected persistence failure to propagate")
	}
}

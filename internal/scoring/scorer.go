// Package scoring computes the deterministic lead score. The score is a pure
// function of the lead's attributes, its most recently dated transcribed call,
// and that call's analysis record; older calls do not influence the value.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/MikeSquared-Agency/callscore/internal/store"
)

// Result is a computed score with its audit trail.
type Result struct {
	Score  float64
	Reason string
}

// Compute combines structured lead data with the call's analysis into a final
// conversion score in [0, 100]. The reason string records the contributing raw
// inputs for audit; it is not sufficient to recompute the score.
func Compute(lead *store.Lead, call *store.Call, analysis *store.AnalysisRecord) Result {
	sum := creditFactor(lead.CreditScore) +
		float64(intOrZero(lead.InterestLevel)) +
		durationFactor(call.DurationMinutes) +
		statusBonus(lead.Status) +
		sentimentFactor(analysis.Sentiment) +
		analysis.ClarityScore +
		analysis.EmpathyScore +
		analysis.CooperationIndex*10 +
		analysis.ConversionProbability*0.4 +
		intentFactor(analysis.IntentStrength)

	score := clamp(round2(sum))

	reason := fmt.Sprintf(
		"Calculated from intent=%s, sentiment=%s, clarity=%g, credit=%s, cooperation=%g",
		analysis.IntentStrength, analysis.Sentiment, analysis.ClarityScore,
		creditStr(lead.CreditScore), analysis.CooperationIndex,
	)

	return Result{Score: score, Reason: reason}
}

// creditFactor scales a 0-850 credit score onto 0-10. Absent scores
// contribute nothing.
func creditFactor(creditScore *int) float64 {
	if creditScore == nil {
		return 0
	}
	return float64(*creditScore) / 850 * 10
}

// durationFactor rewards calls longer than ten minutes.
func durationFactor(durationMinutes int) float64 {
	if durationMinutes > 10 {
		return 5
	}
	return 2
}

func statusBonus(status string) float64 {
	switch strings.ToLower(status) {
	case "qualified", "active":
		return 5
	}
	return 0
}

func sentimentFactor(sentiment string) float64 {
	switch strings.ToLower(sentiment) {
	case "positive":
		return 10
	case "neutral":
		return 5
	case "negative":
		return -5
	}
	return 0
}

func intentFactor(strength string) float64 {
	switch strings.ToLower(strength) {
	case "high":
		return 15
	case "medium":
		return 7
	}
	return 0
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func creditStr(creditScore *int) string {
	if creditScore == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *creditScore)
}

func round2(v float64) float64 { return math.RoundToEven(v*100) / 100 }

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

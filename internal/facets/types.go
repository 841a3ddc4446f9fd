package facets

// SentimentIntent is the sentiment/intent/conversion facet payload.
type SentimentIntent struct {
	Sentiment             string  `json:"sentiment"`
	Tone                  string  `json:"tone"`
	IntentType            string  `json:"intent_type"`
	IntentStrength        string  `json:"intent_strength"`
	DecisionStage         string  `json:"decision_stage"`
	ConversionProbability float64 `json:"conversion_probability"`
	Summary               string  `json:"summary_ai"`
	OutcomeClassification string  `json:"outcome_classification"`
}

// SemanticDiscourse is the topics/discourse/themes facet payload.
type SemanticDiscourse struct {
	TopicsDiscussed    []string `json:"topics_discussed"`
	SpeechActs         []string `json:"speech_acts"`
	DiscourseRelations []string `json:"discourse_relations"`
	FramingStyle       string   `json:"framing_style"`
	Themes             []string `json:"themes"`
	Highlights         []string `json:"highlights"`
}

// EmotionalProfile is the emotional/psychological facet payload.
type EmotionalProfile struct {
	PainPoints      string             `json:"pain_points"`
	Objections      string             `json:"objections"`
	ClarityScore    float64            `json:"clarity_score"`
	TrustScore      float64            `json:"trust_score"`
	EmotionProfile  map[string]float64 `json:"emotion_profile"`
	DominantEmotion string             `json:"dominant_emotion"`
	EmpathyScore    float64            `json:"empathy_score"`
}

// ConversationStructure is the flow/dynamics facet payload.
type ConversationStructure struct {
	NextActions      string  `json:"next_actions"`
	FollowupPriority string  `json:"followup_priority"`
	CooperationIndex float64 `json:"cooperation_index"`
	ResponseLatency  float64 `json:"response_latency"`
	Confidence       float64 `json:"confidence"`
}

// Result bundles all four facet payloads for one transcript.
type Result struct {
	Sentiment SentimentIntent
	Semantic  SemanticDiscourse
	Emotional EmotionalProfile
	Structure ConversationStructure
}

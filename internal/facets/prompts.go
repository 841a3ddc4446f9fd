package facets

const systemPrompt = `You are an analyst for loan sales call transcripts. You answer with pure JSON only — no markdown, no code fences, no commentary. When you are unsure of a value, use null.`

const sentimentPrompt = `Analyze ONLY the sentiment, tone, intent and conversion aspects of this call.

Return JSON with exactly these fields:
{
  "sentiment": "positive/negative/neutral",
  "tone": "professional/casual/aggressive/friendly",
  "intent_type": "inquiry/application/complaint/followup",
  "intent_strength": "high/medium/low",
  "decision_stage": "awareness/consideration/decision/action",
  "conversion_probability": 0-100,
  "summary_ai": "Brief 2-3 sentence summary of the call",
  "outcome_classification": "Resolved/Escalated/Unresolved"
}

TRANSCRIPT:
%s`

const semanticPrompt = `Analyze ONLY the semantic content and discourse structure of this call.

Return JSON with exactly these fields:
{
  "topics_discussed": ["topic1", "topic2"],
  "speech_acts": ["request", "confirmation", "offer", "rejection"],
  "discourse_relations": ["Turn X elaborates on Turn Y"],
  "framing_style": "benefit emphasis/urgency framing/neutral/problem-focused",
  "themes": ["main theme 1", "main theme 2"],
  "highlights": ["Turn X: significant event"]
}

Identify key topics and themes, and note significant moments in the conversation.

TRANSCRIPT:
%s`

const emotionalPrompt = `Analyze ONLY the emotional and psychological aspects of this call.

Return JSON with exactly these fields:
{
  "pain_points": "Customer's main concerns or problems",
  "objections": "Customer's objections or hesitations",
  "clarity_score": 0-10,
  "trust_score": 0-10,
  "emotion_profile": {"emotion_name": 0.0-1.0},
  "dominant_emotion": "primary emotion detected",
  "empathy_score": 0-10
}

Scores are 0-10, emotion values are 0.0-1.0. Be objective.

TRANSCRIPT:
%s`

const structurePrompt = `Analyze ONLY the conversation flow and dynamics of this call.

Return JSON with exactly these fields:
{
  "next_actions": "Recommended next steps",
  "followup_priority": "Low/Medium/High",
  "cooperation_index": 0.0-1.0,
  "response_latency": 0.0,
  "confidence": 0.0-1.0
}

Estimate metrics from the conversation flow. Confidence reflects overall analysis certainty.

TRANSCRIPT:
%s`

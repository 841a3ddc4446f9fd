// Package metrics computes deterministic transcript analytics: everything that
// can be derived from the raw text with pattern matching alone, without any
// inference calls. The output is a pure function of the transcript string.
package metrics

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultTopKeywords is the keyword list size used by All.
const DefaultTopKeywords = 10

var (
	speakerRe  = regexp.MustCompile(`(?i)^(Agent|Customer|Officer|Client|Caller):\s*(.+)`)
	wordRe     = regexp.MustCompile(`\b[a-z]{3,}\b`)
	amountRe   = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d{2})?|\b\d+\s*(?:dollars|rupees|euros)\b`)
	dateRe     = regexp.MustCompile(`(?i)\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b|\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2}(?:,\s+\d{4})?\b`)
	productRe  = regexp.MustCompile(`\b(?:personal loan|home loan|auto loan|mortgage|car loan|student loan|business loan)\b`)
	solutionRe = regexp.MustCompile(`\b(?:rate|interest|term|payment|approval|qualify)\b`)
)

// Keyword is a transcript keyword with its occurrence count.
type Keyword struct {
	Keyword   string `json:"keyword"`
	Frequency int    `json:"frequency"`
}

// TalkRatio is each side's share of the spoken words. The two shares sum to
// 1.0, or are both 0.5 when the transcript has no attributed words.
type TalkRatio struct {
	Agent    float64 `json:"agent"`
	Customer float64 `json:"customer"`
}

// Dominance is the talk ratio expressed as integer percentages.
type Dominance struct {
	Agent    int `json:"agent"`
	Customer int `json:"customer"`
}

// EntityMentions holds regex-extracted entities, each category deduplicated
// in first-occurrence order and capped at 5 items.
type EntityMentions struct {
	Product []string `json:"product"`
	Date    []string `json:"date"`
	Amount  []string `json:"amount"`
}

// Metrics bundles every deterministic measure. All fields are always
// populated; there is no partial result.
type Metrics struct {
	Keywords           []Keyword      `json:"keywords"`
	DeceptionMarkers   map[string]int `json:"deception_markers"`
	TalkRatio          TalkRatio      `json:"talk_ratio"`
	DominanceScore     Dominance      `json:"dominance_score"`
	Interruptions      int            `json:"interruptions"`
	PolitenessLevel    float64        `json:"politeness_level"`
	FormalityLevel     float64        `json:"formality_level"`
	EntityMentions     EntityMentions `json:"entity_mentions"`
	ConversationPhases []string       `json:"conversation_phases"`
}

type utterance struct {
	speaker   string // "agent", "customer" or "unknown"
	text      string
	textLower string
}

// Calculator parses a transcript once and derives metrics from it.
type Calculator struct {
	original   string
	lower      string
	utterances []utterance
}

func NewCalculator(transcript string) *Calculator {
	c := &Calculator{
		original: transcript,
		lower:    strings.ToLower(transcript),
	}
	c.parse()
	return c
}

// Calculate is the convenience entry point: all metrics in one call.
func Calculate(transcript string) Metrics {
	return NewCalculator(transcript).All()
}

func (c *Calculator) All() Metrics {
	return Metrics{
		Keywords:           c.Keywords(DefaultTopKeywords),
		DeceptionMarkers:   c.DeceptionMarkers(),
		TalkRatio:          c.TalkRatio(),
		DominanceScore:     c.DominanceScore(),
		Interruptions:      c.Interruptions(),
		PolitenessLevel:    c.PolitenessLevel(),
		FormalityLevel:     c.FormalityLevel(),
		EntityMentions:     c.EntityMentions(),
		ConversationPhases: c.ConversationPhases(),
	}
}

// parse splits the transcript into utterances. A line matching a speaker
// label starts a new utterance; an unlabelled line continues the previous
// one, or opens an "unknown" utterance when nothing precedes it.
func (c *Calculator) parse() {
	for _, raw := range strings.Split(c.original, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := speakerRe.FindStringSubmatch(line); m != nil {
			speaker := "customer"
			switch strings.ToLower(m[1]) {
			case "agent", "officer":
				speaker = "agent"
			}
			text := strings.TrimSpace(m[2])
			c.utterances = append(c.utterances, utterance{
				speaker:   speaker,
				text:      text,
				textLower: strings.ToLower(text),
			})
			continue
		}

		if n := len(c.utterances); n > 0 {
			c.utterances[n-1].text += " " + line
			c.utterances[n-1].textLower += " " + strings.ToLower(line)
		} else {
			c.utterances = append(c.utterances, utterance{
				speaker:   "unknown",
				text:      line,
				textLower: strings.ToLower(line),
			})
		}
	}
}

// Keywords returns up to topN keywords ordered by descending frequency.
// Equal frequencies are broken by first occurrence in the transcript, so the
// result is stable across runs.
func (c *Calculator) Keywords(topN int) []Keyword {
	words := wordRe.FindAllString(c.lower, -1)

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, w := range words {
		if stopWords[w] {
			continue
		}
		if _, ok := counts[w]; !ok {
			firstSeen[w] = i
		}
		counts[w]++
	}

	keywords := make([]Keyword, 0, len(counts))
	for w, n := range counts {
		keywords = append(keywords, Keyword{Keyword: w, Frequency: n})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Frequency != keywords[j].Frequency {
			return keywords[i].Frequency > keywords[j].Frequency
		}
		return firstSeen[keywords[i].Keyword] < firstSeen[keywords[j].Keyword]
	})

	if len(keywords) > topN {
		keywords = keywords[:topN]
	}
	return keywords
}

// DeceptionMarkers counts hedge-phrase occurrences, returning only phrases
// that appear at least once.
func (c *Calculator) DeceptionMarkers() map[string]int {
	markers := make(map[string]int)
	for _, hedge := range hedgePhrases {
		if n := countPhrase(c.lower, hedge); n > 0 {
			markers[hedge] = n
		}
	}
	return markers
}

// TalkRatio splits the word count between agent and customer. Unknown-speaker
// words are not attributed to either side.
func (c *Calculator) TalkRatio() TalkRatio {
	var agentWords, customerWords int
	for _, u := range c.utterances {
		n := len(strings.Fields(u.text))
		switch u.speaker {
		case "agent":
			agentWords += n
		case "customer":
			customerWords += n
		}
	}

	total := agentWords + customerWords
	if total == 0 {
		return TalkRatio{Agent: 0.5, Customer: 0.5}
	}
	return TalkRatio{
		Agent:    round2(float64(agentWords) / float64(total)),
		Customer: round2(float64(customerWords) / float64(total)),
	}
}

func (c *Calculator) DominanceScore() Dominance {
	ratio := c.TalkRatio()
	return Dominance{
		Agent:    int(ratio.Agent * 100),
		Customer: int(ratio.Customer * 100),
	}
}

// Interruptions counts adjacent utterance pairs where the speaker changes and
// the earlier turn is very short (1-4 words).
func (c *Calculator) Interruptions() int {
	interruptions := 0
	for i := 0; i+1 < len(c.utterances); i++ {
		if c.utterances[i].speaker == c.utterances[i+1].speaker {
			continue
		}
		n := len(strings.Fields(c.utterances[i].text))
		if n > 0 && n < 5 {
			interruptions++
		}
	}
	return interruptions
}

// PolitenessLevel scores 0-10 from polite-phrase density per 100 words.
// Floor 3.0, or 5.0 for a zero-word transcript.
func (c *Calculator) PolitenessLevel() float64 {
	count := 0
	for _, phrase := range politePhrases {
		count += countPhrase(c.lower, phrase)
	}

	words := len(strings.Fields(c.lower))
	if words == 0 {
		return 5.0
	}
	normalized := float64(count) / float64(words) * 100
	return round1(math.Min(3.0+normalized*2, 10.0))
}

// FormalityLevel scores 0-10 from formal-word density per 100 words.
// Floor 2.0, or 5.0 for a zero-word transcript.
func (c *Calculator) FormalityLevel() float64 {
	count := 0
	for _, word := range formalWords {
		count += countPhrase(c.lower, word)
	}

	words := len(strings.Fields(c.lower))
	if words == 0 {
		return 5.0
	}
	normalized := float64(count) / float64(words) * 100
	return round1(math.Min(2.0+normalized*3, 10.0))
}

// EntityMentions extracts monetary amounts, date-like strings and loan
// product names with regexes.
func (c *Calculator) EntityMentions() EntityMentions {
	return EntityMentions{
		Amount:  dedupCap(amountRe.FindAllString(c.original, -1), 5),
		Date:    dedupCap(dateRe.FindAllString(c.original, -1), 5),
		Product: dedupCap(productRe.FindAllString(c.lower, -1), 5),
	}
}

// ConversationPhases detects which sales-call phases appear, in a fixed
// evaluation order: greeting (first 3 utterances), needs assessment (2+
// question marks), objection handling, solution presentation, closing (last 3
// utterances). Falls back to "General Discussion".
func (c *Calculator) ConversationPhases() []string {
	var phases []string

	if len(c.utterances) > 0 {
		first := joinLower(c.utterances[:min(3, len(c.utterances))])
		if containsAny(first, greetingMarkers) {
			phases = append(phases, "Greeting")
		}
	}

	if strings.Count(c.original, "?") >= 2 {
		phases = append(phases, "Needs Assessment")
	}

	for _, u := range c.utterances {
		if containsAny(u.textLower, objectionMarkers) {
			phases = append(phases, "Objection Handling")
			break
		}
	}

	if solutionRe.MatchString(c.lower) {
		phases = append(phases, "Solution Presentation")
	}

	if n := len(c.utterances); n > 0 {
		last := joinLower(c.utterances[max(0, n-3):])
		if containsAny(last, closingMarkers) {
			phases = append(phases, "Closing")
		}
	}

	if len(phases) == 0 {
		return []string{"General Discussion"}
	}
	return phases
}

// countPhrase counts whole-word occurrences of phrase in text.
func countPhrase(text, phrase string) int {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
	return len(re.FindAllString(text, -1))
}

func dedupCap(items []string, limit int) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

func joinLower(us []utterance) string {
	parts := make([]string, len(us))
	for i, u := range us {
		parts[i] = u.textLower
	}
	return strings.Join(parts, " ")
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Half-to-even rounding, so complementary talk-ratio shares still sum to 1.0
// after rounding.
func round2(v float64) float64 { return math.RoundToEven(v*100) / 100 }
func round1(v float64) float64 { return math.RoundToEven(v*10) / 10 }

package metrics

// Hedge phrases that signal uncertainty or evasion.
var hedgePhrases = []string{
	"maybe", "perhaps", "possibly", "probably", "might", "could",
	"i think", "i believe", "i guess", "kind of", "sort of",
	"actually", "basically", "honestly", "literally", "just",
}

var politePhrases = []string{
	"please", "thank you", "thanks", "appreciate", "excuse me",
	"pardon", "sorry", "apologize", "would you mind", "if you don't mind",
}

var formalWords = []string{
	"regarding", "furthermore", "therefore", "however", "nonetheless",
	"moreover", "consequently", "accordingly", "subsequently", "hereby",
}

// Stop words excluded from keyword extraction.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
	"of": true, "with": true, "by": true, "from": true, "up": true,
	"about": true, "into": true, "through": true, "during": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true,
	"i": true, "you": true, "he": true, "she": true, "it": true,
	"we": true, "they": true, "this": true, "that": true,
	"these": true, "those": true,
}

var greetingMarkers = []string{
	"hello", "hi", "good morning", "good afternoon", "good evening", "how are you",
}

var objectionMarkers = []string{
	"but", "however", "concern", "worried", "not sure", "hesitant",
}

var closingMarkers = []string{
	"thank you", "thanks", "goodbye", "bye", "have a nice", "take care",
}

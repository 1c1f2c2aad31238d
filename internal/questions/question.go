// Package questions implements the Question Pool Manager (QPM): a lazy,
// self-refilling, deduplicating queue of playable questions drawn from the
// shared store's question catalogs.
package questions

// Default hash map keys for the two question catalogs loaded at bootstrap.
const (
	NormalQuestionsKey = "NORMAL_QUESTIONS"
	FinalQuestionsKey  = "FINAL_QUESTIONS"
)

// Question is the immutable catalog record, as stored one per hash field.
type Question struct {
	Category           string   `json:"category"`
	Prompt             string   `json:"question"`
	CanonicalAnswer    string   `json:"answer"`
	AlternateSpellings []string `json:"alternateSpellings"`
	Distractors        []string `json:"suggestions"`
}

// PlayableQuestion is a catalog question transformed for one round: a chosen
// answer variant plus a shuffled 3-option list.
type PlayableQuestion struct {
	Prompt      string   `json:"question"`
	Answer      string   `json:"answer"`
	Options     []string `json:"options"`
	SourceKey   string   `json:"-"`
	SourceIndex string   `json:"-"`
}

package entities

const DefaultExplanation = "No explanation provided"

// RawQuestion is a question as returned by a generator, before its answer is resolved.
// Answer may be a letter code ("B"), literal option text, an "all/none of the above"
// phrase, or text that is not among the options at all.
type RawQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// RawQuiz is a batch of raw questions with an optional generator-provided title.
type RawQuiz struct {
	Title     string
	Questions []RawQuestion
}

// QuizQuestion is a normalized question. CorrectAnswer is always one of Options.
type QuizQuestion struct {
	ID            int      `json:"id"` // 1-based position in the session
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// OptionIndex returns the position of option in q.Options or -1.
func (q QuizQuestion) OptionIndex(option string) int {
	for i, o := range q.Options {
		if o == option {
			return i
		}
	}
	return -1
}

// Clone returns a copy that does not share the options slice.
func (q QuizQuestion) Clone() QuizQuestion {
	q.Options = append([]string(nil), q.Options...)
	return q
}

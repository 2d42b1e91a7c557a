package service

import (
	"strings"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

const (
	phraseNoneOfTheAbove = "none of the above"
	phraseAllOfTheAbove  = "all of the above"

	optionAllOfTheAbove = "All of the above"
	optionNoAnswer      = "No answer provided"

	// allSlot is the conventional "D" position of an "all of the above" option.
	allSlot = 3
)

var letterToIndex = map[string]int{
	"A": 0,
	"B": 1,
	"C": 2,
	"D": 3,
	"E": 4,
}

// Normalize resolves the raw answer reference into a literal option and returns the
// canonical question. The correct answer is always a member of the returned options;
// when no option matches, the answer is appended. raw.Options is never modified.
//
// Resolution order:
//  1. answers mentioning "none of the above" pick the option with that phrase, or the last one;
//  2. a single upper-case letter A..E indexes into the options when in range;
//  3. the literal "all of the above" picks the option with that phrase, else a "D" slot
//     mentioning "all", else a new "All of the above" option;
//  4. exact text match;
//  5. the answer is appended as a new option.
func Normalize(raw entities.RawQuestion, ordinal int) entities.QuizQuestion {
	options := append([]string(nil), raw.Options...)
	options, correct := resolveAnswer(options, raw.Answer)

	explanation := raw.Explanation
	if strings.TrimSpace(explanation) == "" {
		explanation = entities.DefaultExplanation
	}

	return entities.QuizQuestion{
		ID:            ordinal,
		Question:      raw.Question,
		Options:       options,
		CorrectAnswer: correct,
		Explanation:   explanation,
	}
}

// NormalizeAll normalizes raws in order, numbering them from 1.
func NormalizeAll(raws []entities.RawQuestion) []entities.QuizQuestion {
	questions := make([]entities.QuizQuestion, 0, len(raws))
	for i, raw := range raws {
		questions = append(questions, Normalize(raw, i+1))
	}
	return questions
}

func resolveAnswer(options []string, answer string) ([]string, string) {
	trimmed := strings.TrimSpace(answer)
	lower := strings.ToLower(trimmed)

	if trimmed == "" {
		if len(options) > 0 {
			return options, options[0]
		}
		return append(options, optionNoAnswer), optionNoAnswer
	}

	if strings.Contains(lower, phraseNoneOfTheAbove) {
		if i := indexContaining(options, phraseNoneOfTheAbove); i >= 0 {
			return options, options[i]
		}
		if len(options) > 0 {
			return options, options[len(options)-1]
		}
		return append(options, trimmed), trimmed
	}

	if i, ok := letterToIndex[trimmed]; ok && i < len(options) {
		return options, options[i]
	}

	if lower == phraseAllOfTheAbove {
		if i := indexContaining(options, phraseAllOfTheAbove); i >= 0 {
			return options, options[i]
		}
		if len(options) > allSlot && strings.Contains(strings.ToLower(options[allSlot]), "all") {
			return options, options[allSlot]
		}
		return append(options, optionAllOfTheAbove), optionAllOfTheAbove
	}

	for _, candidate := range []string{answer, trimmed} {
		for _, o := range options {
			if o == candidate {
				return options, o
			}
		}
	}

	return append(options, trimmed), trimmed
}

// indexContaining returns the first option containing phrase, ignoring case.
func indexContaining(options []string, phrase string) int {
	for i, o := range options {
		if strings.Contains(strings.ToLower(o), phrase) {
			return i
		}
	}
	return -1
}

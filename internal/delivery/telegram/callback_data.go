package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionTopic  = "topic"
	actionTopics = "topics"
	actionQuiz   = "quiz"
)

// Quiz sub-actions.
const (
	quizAnswer = "answer"
	quizNext   = "next"
	quizPrev   = "prev"
	quizFinish = "finish"
	quizReset  = "reset"
	quizReview = "review"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// sub returns the first parameter, the sub-action of quiz callbacks.
func (cd callbackData) sub() string {
	if len(cd.Params) == 0 {
		return ""
	}
	return cd.Params[0]
}

// intParam parses the i-th parameter as a non-negative integer.
func (cd callbackData) intParam(i int) (int, bool) {
	if i >= len(cd.Params) {
		return 0, false
	}
	n, err := strconv.Atoi(cd.Params[i])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// buildTopicCallback builds callback data for starting a quiz on a listed topic.
func buildTopicCallback(index int) string {
	return callbackData{
		Action: actionTopic,
		Params: []string{strconv.Itoa(index)},
	}.encode()
}

func buildTopicsCallback() string {
	return actionTopics
}

// buildQuizAnswerCallback builds callback data for answering a question with an option.
// The question index lets stale buttons be told apart from the current question.
func buildQuizAnswerCallback(questionIndex, optionIndex int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizAnswer, strconv.Itoa(questionIndex), strconv.Itoa(optionIndex)},
	}.encode()
}

func buildQuizCallback(subAction string) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{subAction},
	}.encode()
}

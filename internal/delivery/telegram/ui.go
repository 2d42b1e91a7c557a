package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/ai-quiz-bot/internal/service"
)

// popularTopics are offered when /quiz is sent without a topic.
var popularTopics = []string{
	"React Native",
	"JavaScript",
	"Python",
	"Next.js",
	"Machine Learning",
}

const selectedMark = "✅ "

// buildTopicKeyboard builds the topic picker, two topics per row.
func buildTopicKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(popularTopics); i += 2 {
		row := tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(popularTopics[i], buildTopicCallback(i)),
		)
		if i+1 < len(popularTopics) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(popularTopics[i+1], buildTopicCallback(i+1)))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildQuestionKeyboard builds option buttons and navigation for the current question.
func buildQuestionKeyboard(st service.SessionState) tgbotapi.InlineKeyboardMarkup {
	q, ok := st.Current()
	if !ok {
		return tgbotapi.NewInlineKeyboardMarkup()
	}

	answer := st.CurrentAnswer()

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, option := range q.Options {
		label := option
		if answer != "" && option == answer {
			label = selectedMark + option
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildQuizAnswerCallback(st.CurrentIndex, i)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if st.CurrentIndex > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Previous", buildQuizCallback(quizPrev)))
	}
	if st.IsLast() {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("🏁 Finish", buildQuizCallback(quizFinish)))
	} else {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", buildQuizCallback(quizNext)))
	}
	rows = append(rows, nav)

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Reset", buildQuizCallback(quizReset)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildResultKeyboard builds the keyboard shown under a finished quiz.
func buildResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Review answers", buildQuizCallback(quizReview)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 New quiz", buildTopicsCallback()),
		),
	)
}

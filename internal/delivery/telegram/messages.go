// messages.go contains message templates and formatting helpers for Telegram.

package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// User-facing messages.
const (
	msgChooseTopic       = "Choose a topic or send /quiz <topic> [number of questions]."
	msgGenerating        = "⏳ Generating your quiz..."
	msgBusy              = "Still working on your previous request, please wait."
	msgQuizInProgress    = "You already have a quiz in progress. Finish it or send /reset."
	msgEmptyTopic        = "Please enter a topic, for example: /quiz Python 5"
	msgGenerationFailed  = "Could not generate questions for this topic. Please try again later."
	msgSessionReset      = "The quiz was reset while it was loading."
	msgNoActiveQuiz      = "You have no active quiz. Send /quiz to start one."
	msgStaleQuestion     = "This question is no longer active."
	msgAnswerAll         = "Please answer all questions before finishing."
	msgQuizReset         = "Quiz reset."
	msgResultNotSaved    = "⚠️ Your result could not be saved."
	msgNotSavedAnonymous = "Log in with /login to keep your results in your history."
	msgLoginRequired     = "Please log in first: /login <email> <password>"
	msgLoginUsage        = "Usage: /login <email> <password>"
	msgRegisterUsage     = "Usage: /register <name> <email> <password>"
	msgInvalidEmail      = "That does not look like a valid email address."
	msgEmptyPassword     = "Password must not be empty."
	msgEmptyName         = "Name must not be empty."
	msgLoggedOut         = "You are logged out."
	msgNoHistory         = "No quizzes yet. Send /quiz to take your first one."
	msgInternalError     = "Something went wrong. Please try again later."
	msgUnknownCommand    = "Unknown command. Send /help to see what I can do."
)

const msgHelp = `I generate multiple-choice quizzes on any topic.

/quiz - choose a topic
/quiz <topic> [count] - start a quiz, e.g. /quiz Machine Learning 10
/reset - drop the current quiz
/history - your finished quizzes
/profile - your stats and rank
/login <email> <password> - log in to save results
/register <name> <email> <password> - create an account
/logout - log out`

// maxMessageLength is Telegram's limit for a single text message.
const maxMessageLength = 4096

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a message without parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

func welcomeMessage(name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(bold("Hi, " + name + "!"))
	} else {
		sb.WriteString(bold("Hi!"))
	}
	sb.WriteString("\n\n")
	sb.WriteString(md(msgHelp))

	return sb.String()
}

// splitMessage splits text on line boundaries into chunks Telegram accepts.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		sb     strings.Builder
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if sb.Len() > 0 {
				chunks = append(chunks, sb.String())
				sb.Reset()
			}
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if sb.Len()+len(line) > limit {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
		sb.WriteString(line)
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}

	return chunks
}

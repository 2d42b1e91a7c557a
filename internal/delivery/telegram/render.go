package telegram

import (
	"fmt"
	"strings"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/ai-quiz-bot/internal/service"
)

const dateLayout = "Jan 2, 2006"

// renderQuestion renders the current question of an in-progress quiz.
func renderQuestion(st service.SessionState) string {
	q, ok := st.Current()
	if !ok {
		return md(msgNoActiveQuiz)
	}

	var sb strings.Builder
	sb.WriteString(bold(st.Title))
	sb.WriteString("\n")
	sb.WriteString(italic(fmt.Sprintf("Question %d of %d", st.CurrentIndex+1, len(st.Questions))))
	sb.WriteString("\n\n")
	sb.WriteString(md(q.Question))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Answered: %d/%d", st.AnsweredCount(), len(st.Questions))))

	return sb.String()
}

// renderResult renders the summary of a finished quiz.
func renderResult(result *entities.QuizResult, saved, loggedIn bool) string {
	rank := service.RankFor(result.Percentage)

	var sb strings.Builder
	sb.WriteString(bold("🎉 Quiz completed!"))
	sb.WriteString("\n")
	sb.WriteString(md(result.Title))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Score: %d/%d (%d%%)", result.Score, result.TotalQuestions, result.Percentage)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Rank: %s", rank.Label)))

	switch {
	case !loggedIn:
		sb.WriteString("\n\n")
		sb.WriteString(italic(msgNotSavedAnonymous))
	case !saved:
		sb.WriteString("\n\n")
		sb.WriteString(md(msgResultNotSaved))
	}

	return sb.String()
}

// renderReview renders every question with the user's answer, the correct answer and the explanation.
func renderReview(st service.SessionState) string {
	var sb strings.Builder
	sb.WriteString(bold("📋 " + st.Title))
	sb.WriteString("\n")

	for i, q := range st.Questions {
		answer := ""
		if i < len(st.UserAnswers) {
			answer = st.UserAnswers[i]
		}

		mark := "❌"
		if answer == q.CorrectAnswer {
			mark = "✅"
		}

		sb.WriteString("\n")
		sb.WriteString(bold(fmt.Sprintf("%s %d. %s", mark, q.ID, q.Question)))
		sb.WriteString("\n")
		if answer == "" {
			answer = "-"
		}
		sb.WriteString(md("Your answer: " + answer))
		sb.WriteString("\n")
		if answer != q.CorrectAnswer {
			sb.WriteString(md("Correct answer: " + q.CorrectAnswer))
			sb.WriteString("\n")
		}
		sb.WriteString(italic(q.Explanation))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderHistory renders the list of finished quizzes.
func renderHistory(entries []entities.HistoryEntry) string {
	if len(entries) == 0 {
		return md(msgNoHistory)
	}

	var sb strings.Builder
	sb.WriteString(bold("📚 Quiz history"))
	sb.WriteString("\n")

	for _, e := range entries {
		sb.WriteString("\n")
		line := fmt.Sprintf("%s: %d/%d (%d%%)", e.Topic, e.Score, e.TotalQuestions, e.Percentage)
		if !e.CompletedAt.IsZero() {
			line += ", " + e.CompletedAt.Format(dateLayout)
		}
		sb.WriteString(md("• " + line))
	}

	return sb.String()
}

// renderProfile renders the profile screen with stats and rank.
func renderProfile(summary *service.ProfileSummary) string {
	p := summary.Profile
	s := summary.Stats

	name := p.DisplayName
	if name == "" {
		name = p.Username
	}
	if name == "" {
		name = p.Email
	}

	var sb strings.Builder
	sb.WriteString(bold("👤 " + name))
	sb.WriteString("\n")
	if p.Email != "" {
		sb.WriteString(md(p.Email))
		sb.WriteString("\n")
	}
	if !p.CreatedAt.IsZero() {
		sb.WriteString(italic("Member since " + p.CreatedAt.Format(dateLayout)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(bold(fmt.Sprintf("🏅 %s", summary.Rank.Label)))
	sb.WriteString("\n")
	sb.WriteString(italic(summary.Rank.Description))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Quizzes: %d", s.TotalQuizzes)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Questions: %d", s.TotalQuestions)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Correct: %d", s.TotalCorrect)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Average score: %d%%", s.AverageScore)))

	if len(summary.Recent) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(bold("Recent"))
		for _, e := range summary.Recent {
			sb.WriteString("\n")
			sb.WriteString(md(fmt.Sprintf("• %s: %d%%", e.Topic, e.Percentage)))
		}
	}

	return sb.String()
}

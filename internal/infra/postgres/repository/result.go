package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/ai-quiz-bot/internal/infra/postgres"
)

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// ResultRepository stores finished quizzes and serves the quiz history.
type ResultRepository struct {
	db    postgres.DBTX
	tx    TxRunner
	limit int
}

// NewResultRepository creates a ResultRepository. History returns at most limit entries;
// a non-positive limit means no limit.
func NewResultRepository(db postgres.DBTX, tx TxRunner, limit int) *ResultRepository {
	return &ResultRepository{db: db, tx: tx, limit: limit}
}

// SaveResult inserts the result and its per-question details in one transaction.
func (r *ResultRepository) SaveResult(ctx context.Context, result *entities.QuizResult) error {
	if _, err := uuid.Parse(result.ID); err != nil {
		result.ID = uuid.NewString()
	}

	return r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO quiz_results (
				id, user_id, topic, title, score, total_questions, percentage, completed_at
			) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)
		`

		_, err := tx.Exec(
			ctx,
			query,
			result.ID,
			result.UserID,
			result.Topic,
			result.Title,
			result.Score,
			result.TotalQuestions,
			result.Percentage,
			result.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("insert quiz result: %w", err)
		}

		if len(result.QuestionDetails) == 0 {
			return nil
		}

		detailQuery := `
			INSERT INTO quiz_result_details (
				result_id, position, question, options, correct_answer, user_answer, is_correct
			) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		`

		batch := &pgx.Batch{}
		for i, d := range result.QuestionDetails {
			batch.Queue(detailQuery, result.ID, i, d.Question, d.Options, d.CorrectAnswer, d.UserAnswer, d.IsCorrect)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert quiz result details: %w", err)
		}

		return nil
	})
}

// History returns the user's results, newest first, with their details.
func (r *ResultRepository) History(ctx context.Context, userID string) ([]entities.HistoryEntry, error) {
	query := `
		SELECT id::text, topic, score, total_questions, percentage, completed_at
		FROM quiz_results
		WHERE user_id = $1
		ORDER BY completed_at DESC
	`
	args := []any{userID}
	if r.limit > 0 {
		query += " LIMIT $2"
		args = append(args, r.limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quiz history: %w", err)
	}
	defer rows.Close()

	var (
		entries []entities.HistoryEntry
		ids     []string
	)
	for rows.Next() {
		var e entities.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Topic, &e.Score, &e.TotalQuestions, &e.Percentage, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz history: %w", err)
	}

	if len(entries) == 0 {
		return entries, nil
	}

	details, err := r.details(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].QuestionDetails = details[entries[i].ID]
	}

	return entries, nil
}

func (r *ResultRepository) details(ctx context.Context, resultIDs []string) (map[string][]entities.QuestionDetail, error) {
	query := `
		SELECT result_id::text, question, options, correct_answer, user_answer, is_correct
		FROM quiz_result_details
		WHERE result_id = ANY($1::uuid[])
		ORDER BY result_id, position
	`

	rows, err := r.db.Query(ctx, query, resultIDs)
	if err != nil {
		return nil, fmt.Errorf("query quiz result details: %w", err)
	}
	defer rows.Close()

	details := make(map[string][]entities.QuestionDetail, len(resultIDs))
	for rows.Next() {
		var (
			resultID string
			d        entities.QuestionDetail
		)
		if err := rows.Scan(&resultID, &d.Question, &d.Options, &d.CorrectAnswer, &d.UserAnswer, &d.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan quiz result detail: %w", err)
		}
		details[resultID] = append(details[resultID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz result details: %w", err)
	}

	return details, nil
}

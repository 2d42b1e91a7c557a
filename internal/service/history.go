package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

var ErrNotLoggedIn = errors.New("user is not logged in")

// ProfileSummary is a user profile with statistics computed from the quiz history.
type ProfileSummary struct {
	Profile entities.Profile
	Stats   entities.QuizStats
	Rank    entities.Rank
	Recent  []entities.HistoryEntry
}

const recentEntries = 3

type rankThreshold struct {
	min  int
	rank entities.Rank
}

var ranks = []rankThreshold{
	{90, entities.Rank{Label: "Immortal", Description: "Top-tier mastery across every quiz"}},
	{80, entities.Rank{Label: "Divine", Description: "Consistently excellent results"}},
	{70, entities.Rank{Label: "Ancient", Description: "Strong, reliable knowledge"}},
	{50, entities.Rank{Label: "Legend", Description: "More right than wrong"}},
	{1, entities.Rank{Label: "Crusader", Description: "On the way up"}},
}

var newcomer = entities.Rank{Label: "Newcomer", Description: "Take a quiz to earn a rank"}

// HistoryService serves quiz history and profile statistics.
type HistoryService struct {
	history  HistoryRepository
	profiles ProfileProvider
	logger   *zap.Logger
}

// NewHistoryService creates a history service. profiles may be nil, in which case
// profiles are derived from the logged-in identity.
func NewHistoryService(history HistoryRepository, profiles ProfileProvider, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		history:  history,
		profiles: profiles,
		logger:   logger,
	}
}

// History returns the user's finished quizzes, newest first.
func (s *HistoryService) History(ctx context.Context, user entities.User) ([]entities.HistoryEntry, error) {
	if user.UID == "" {
		return nil, ErrNotLoggedIn
	}

	entries, err := s.history.History(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	return entries, nil
}

// Profile returns the user's profile together with stats and rank.
func (s *HistoryService) Profile(ctx context.Context, user entities.User) (*ProfileSummary, error) {
	if user.UID == "" {
		return nil, ErrNotLoggedIn
	}

	profile := entities.Profile{
		UID:         user.UID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Username:    user.Username,
	}

	if s.profiles != nil {
		p, err := s.profiles.Profile(ctx, user.UID)
		switch {
		case err != nil:
			// the identity is still good enough to show stats
			s.logger.Warn("failed to fetch profile, using identity",
				zap.String("user_id", user.UID),
				zap.Error(err),
			)
		case p != nil:
			profile = *p
		}
	}

	entries, err := s.History(ctx, user)
	if err != nil {
		return nil, err
	}

	stats := ComputeStats(entries)

	recent := entries
	if len(recent) > recentEntries {
		recent = recent[:recentEntries]
	}

	return &ProfileSummary{
		Profile: profile,
		Stats:   stats,
		Rank:    RankFor(stats.AverageScore),
		Recent:  recent,
	}, nil
}

// ComputeStats aggregates history entries.
func ComputeStats(entries []entities.HistoryEntry) entities.QuizStats {
	stats := entities.QuizStats{TotalQuizzes: len(entries)}
	for _, e := range entries {
		stats.TotalQuestions += e.TotalQuestions
		stats.TotalCorrect += e.Score
	}

	if stats.TotalQuestions > 0 {
		stats.AverageScore = int(math.Round(float64(stats.TotalCorrect) / float64(stats.TotalQuestions) * 100))
	}

	return stats
}

// RankFor maps an average score percentage to a rank.
func RankFor(averageScore int) entities.Rank {
	for _, r := range ranks {
		if averageScore >= r.min {
			return r.rank
		}
	}
	return newcomer
}

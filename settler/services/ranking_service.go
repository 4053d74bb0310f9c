package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/apptracker/settler/settler/database/repositories"
)

// RankingService rebuilds the global ranking from user balances. The whole
// table is replaced each run; order is points descending with user ID
// ascending as the tie-break so repeated runs produce identical rankings.
type RankingService struct {
	users    repositories.UserRepository
	rankings repositories.RankingRepository
}

func NewRankingService(users repositories.UserRepository, rankings repositories.RankingRepository) *RankingService {
	return &RankingService{users: users, rankings: rankings}
}

func (s *RankingService) Rebuild(ctx context.Context) ([]*models.RankingEntry, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	entries := BuildRanking(users)
	if err := s.rankings.ReplaceAll(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to replace ranking: %w", err)
	}

	for i, e := range entries {
		if i >= 10 {
			break
		}
		slog.Info("Ranking",
			slog.String("type", "run"),
			slog.Int("rank", e.Rank),
			slog.String("name", e.Name),
			slog.Int64("points", e.Points))
	}

	return entries, nil
}

// BuildRanking orders users by points descending, user ID ascending, and
// assigns 1-based ranks.
func BuildRanking(users []*models.User) []*models.RankingEntry {
	sorted := make([]*models.User, len(users))
	copy(sorted, users)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].ID < sorted[j].ID
	})

	entries := make([]*models.RankingEntry, len(sorted))
	for i, u := range sorted {
		entries[i] = &models.RankingEntry{
			Rank:   i + 1,
			UserID: u.ID,
			Name:   u.DisplayName(),
			Points: u.Points,
		}
	}
	return entries
}

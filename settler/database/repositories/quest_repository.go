package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/uptrace/bun"
)

type QuestRepository interface {
	GetOpenByUser(ctx context.Context, userID string) ([]*models.Quest, error)
	// MarkCompleted flips the quest's completed flag and records the reward.
	// Returns false when the quest was already completed, so a concurrent or
	// repeated run can never reward it twice.
	MarkCompleted(ctx context.Context, questID string, reward int64, completedAt time.Time) (bool, error)
	Create(ctx context.Context, quest *models.Quest) error
}

type questRepository struct {
	db *bun.DB
}

func NewQuestRepository(db *bun.DB) QuestRepository {
	return &questRepository{db: db}
}

func (r *questRepository) GetOpenByUser(ctx context.Context, userID string) ([]*models.Quest, error) {
	var quests []*models.Quest
	err := r.db.NewSelect().
		Model(&quests).
		Where("user_id = ?", userID).
		Where("completed = ?", false).
		Order("quest_id ASC").
		Scan(ctx)

	if err != nil {
		slog.Error("Failed to get open quests",
			slog.String("type", "db"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, err
	}

	return quests, nil
}

func (r *questRepository) MarkCompleted(ctx context.Context, questID string, reward int64, completedAt time.Time) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Quest)(nil)).
		Set("completed = ?", true).
		Set("completed_at = ?", completedAt).
		Set("reward_points = ?", reward).
		Set("updated_at = ?", time.Now()).
		Where("quest_id = ?", questID).
		Where("completed = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *questRepository) Create(ctx context.Context, quest *models.Quest) error {
	if quest.CreatedAt.IsZero() {
		quest.CreatedAt = time.Now()
	}
	quest.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(quest).
		On("CONFLICT (quest_id) DO NOTHING").
		Exec(ctx)
	return err
}

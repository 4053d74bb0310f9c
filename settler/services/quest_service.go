package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/apptracker/settler/settler/database/repositories"
)

// QuestEvaluator settles a user's open quests against their aggregated
// usage. A quest completes when its deadline has passed and actual usage met
// the target; it then pays floor(target/30)*50 points exactly once. A quest
// whose deadline passed without enough usage stays open and is re-checked on
// every later run until it succeeds or is purged externally.
type QuestEvaluator struct {
	quests repositories.QuestRepository
	ledger *Ledger
	loc    *time.Location
	now    func() time.Time
}

func NewQuestEvaluator(quests repositories.QuestRepository, ledger *Ledger, loc *time.Location) *QuestEvaluator {
	return &QuestEvaluator{
		quests: quests,
		ledger: ledger,
		loc:    loc,
		now:    time.Now,
	}
}

// QuestReward computes the one-time payout for meeting a usage target.
func QuestReward(targetMinutes int) int64 {
	if targetMinutes < 0 {
		return 0
	}
	return int64(targetMinutes/30) * 50
}

// Evaluate settles every open quest for the user and returns the total
// reward issued this run plus the number of quests completed. Malformed
// quests are skipped with a warning, never treated as errors.
func (e *QuestEvaluator) Evaluate(ctx context.Context, userID string, actualMinutes map[string]int) (int64, int, error) {
	open, err := e.quests.GetOpenByUser(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get open quests: %w", err)
	}

	now := e.now()
	var totalReward int64
	completed := 0

	for _, quest := range open {
		deadline, err := quest.Deadline(e.loc)
		if err != nil {
			slog.Warn("Skipping quest with malformed deadline",
				slog.String("type", "run"),
				slog.String("user_id", userID),
				slog.String("quest_id", quest.QuestID),
				slog.Any("error", err))
			continue
		}

		if now.Before(deadline) {
			continue
		}

		actual := actualMinutes[quest.PackageName]
		if actual < quest.TargetMinutes {
			// Expired but unmet: left open so a later re-aggregation of the
			// same date can still satisfy it.
			continue
		}

		reward := QuestReward(quest.TargetMinutes)
		flipped, err := e.quests.MarkCompleted(ctx, quest.QuestID, reward, now)
		if err != nil {
			return totalReward, completed, fmt.Errorf("failed to complete quest %s: %w", quest.QuestID, err)
		}
		if !flipped {
			continue
		}

		completed++
		if reward > 0 {
			desc := fmt.Sprintf("Quest success: %s", quest.AppName)
			if err := e.ledger.Award(ctx, userID, reward, models.ReasonQuestSuccess, desc); err != nil {
				return totalReward, completed, err
			}
			totalReward += reward
		}

		slog.Info("Quest completed",
			slog.String("type", "run"),
			slog.String("user_id", userID),
			slog.String("quest_id", quest.QuestID),
			slog.String("app", quest.AppName),
			slog.Int("target_minutes", quest.TargetMinutes),
			slog.Int("actual_minutes", actual),
			slog.Int64("reward", reward))
	}

	return totalReward, completed, nil
}

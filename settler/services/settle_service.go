package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/apptracker/settler/settler/analysis"
	"github.com/apptracker/settler/settler/database/models"
	"github.com/apptracker/settler/settler/database/repositories"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// UsageClassifier is the external category-analysis capability. It must not
// fail: implementations return a fallback result instead of an error.
type UsageClassifier interface {
	Classify(ctx context.Context, cacheKey string, usageLines []string) analysis.Classification
}

// RunReport summarizes one settlement run for operators. Failed users can be
// re-run individually without touching the rest.
type RunReport struct {
	Date            string        `json:"date"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	UsersSettled    []UserResult  `json:"users_settled"`
	UsersFailed     []UserFailure `json:"users_failed"`
	TotalPoints     int64         `json:"total_points"`
	QuestsCompleted int           `json:"quests_completed"`
}

type UserResult struct {
	UserID          string `json:"user_id"`
	ActivityPoints  int64  `json:"activity_points"`
	QuestPoints     int64  `json:"quest_points"`
	QuestsCompleted int    `json:"quests_completed"`
	NewBalance      int64  `json:"new_balance"`
	TotalMinutes    int    `json:"total_minutes"`
}

type UserFailure struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// SettleService runs the daily settlement: per-user aggregation,
// classification, scoring, quest evaluation and ledger commit, then one
// global ranking rebuild after every user has finished.
type SettleService struct {
	usage      repositories.UsageRepository
	dashboards repositories.DashboardRepository
	classifier UsageClassifier
	ledger     *Ledger
	evaluator  *QuestEvaluator
	ranking    *RankingService

	concurrency int64
}

func NewSettleService(
	usage repositories.UsageRepository,
	dashboards repositories.DashboardRepository,
	classifier UsageClassifier,
	ledger *Ledger,
	evaluator *QuestEvaluator,
	ranking *RankingService,
	concurrency int,
) *SettleService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SettleService{
		usage:       usage,
		dashboards:  dashboards,
		classifier:  classifier,
		ledger:      ledger,
		evaluator:   evaluator,
		ranking:     ranking,
		concurrency: int64(concurrency),
	}
}

// Run settles every user with usage on the given date. Users share no state,
// so they are processed in parallel under a concurrency cap; a failing user
// lands in the report instead of aborting the others. The ranking rebuild
// runs strictly after all commits.
func (s *SettleService) Run(ctx context.Context, date string) (*RunReport, error) {
	report := &RunReport{
		Date:      date,
		StartedAt: time.Now(),
	}

	userIDs, err := s.usage.GetUserIDs(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for %s: %w", date, err)
	}

	slog.Info("Settlement run started",
		slog.String("type", "run"),
		slog.String("date", date),
		slog.Int("users", len(userIDs)))

	var mu sync.Mutex
	sem := semaphore.NewWeighted(s.concurrency)
	g, gctx := errgroup.WithContext(ctx)

	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			start := time.Now()
			result, err := s.settleUser(gctx, userID, date)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Per-user failures stay inside the report; only context
				// cancellation stops the group.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Error("User settlement failed",
					slog.String("type", "run"),
					slog.String("user_id", userID),
					slog.Any("error", err))
				report.UsersFailed = append(report.UsersFailed, UserFailure{UserID: userID, Error: err.Error()})
				return nil
			}

			report.UsersSettled = append(report.UsersSettled, result)
			report.TotalPoints += result.ActivityPoints + result.QuestPoints
			report.QuestsCompleted += result.QuestsCompleted

			slog.Info("User settled",
				slog.String("type", "run"),
				slog.String("user_id", userID),
				slog.Int64("activity_points", result.ActivityPoints),
				slog.Int64("quest_points", result.QuestPoints),
				slog.Int64("balance", result.NewBalance),
				slog.Duration("took", time.Since(start)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	if _, err := s.ranking.Rebuild(ctx); err != nil {
		return report, fmt.Errorf("failed to rebuild ranking: %w", err)
	}

	report.FinishedAt = time.Now()
	slog.Info("Settlement run finished",
		slog.String("type", "run"),
		slog.String("date", date),
		slog.Int("settled", len(report.UsersSettled)),
		slog.Int("failed", len(report.UsersFailed)),
		slog.Int64("total_points", report.TotalPoints),
		slog.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

func (s *SettleService) settleUser(ctx context.Context, userID string, date string) (UserResult, error) {
	records, err := s.usage.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return UserResult{}, fmt.Errorf("failed to load usage: %w", err)
	}

	minutes := analysis.AggregateMinutes(records)
	lines := analysis.PromptLines(minutes)

	// Quest evaluation deliberately uses the raw aggregated minutes, never
	// the classifier output, so rewards survive classifier outages.
	classification := s.classifier.Classify(ctx, userID+"|"+date, lines)
	activityScore := analysis.ActivityScore(classification.CategoryMinutes)

	questPoints, questsCompleted, err := s.evaluator.Evaluate(ctx, userID, minutes)
	if err != nil {
		return UserResult{}, err
	}

	if activityScore > 0 {
		if err := s.ledger.Award(ctx, userID, activityScore, models.ReasonDailyActivity, "Daily activity reward"); err != nil {
			return UserResult{}, err
		}
	}

	balance, err := s.ledger.Commit(ctx, userID, activityScore+questPoints)
	if err != nil {
		return UserResult{}, err
	}

	snapshot := &models.DashboardSnapshot{
		UserID:          userID,
		Date:            date,
		Summary:         classification.Summary,
		CategoryMinutes: classification.CategoryMinutes,
		TotalMinutes:    analysis.TotalMinutes(minutes),
	}
	if err := s.dashboards.Upsert(ctx, snapshot); err != nil {
		return UserResult{}, fmt.Errorf("failed to write dashboard: %w", err)
	}

	return UserResult{
		UserID:          userID,
		ActivityPoints:  activityScore,
		QuestPoints:     questPoints,
		QuestsCompleted: questsCompleted,
		NewBalance:      balance,
		TotalMinutes:    snapshot.TotalMinutes,
	}, nil
}

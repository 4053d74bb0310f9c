package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/uptrace/bun"
)

type UsageRepository interface {
	GetByUserAndDate(ctx context.Context, userID string, date string) ([]*models.UsageRecord, error)
	GetUserIDs(ctx context.Context, date string) ([]string, error)
	BulkUpsert(ctx context.Context, records []*models.UsageRecord) error
}

type usageRepository struct {
	db *bun.DB
}

func NewUsageRepository(db *bun.DB) UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) GetByUserAndDate(ctx context.Context, userID string, date string) ([]*models.UsageRecord, error) {
	var records []*models.UsageRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("user_id = ?", userID).
		Where("date = ?", date).
		Order("package_name ASC").
		Scan(ctx)

	if err != nil {
		slog.Error("Database error when getting usage records",
			slog.String("type", "db"),
			slog.String("operation", "GetByUserAndDate"),
			slog.String("user_id", userID),
			slog.String("date", date),
			slog.String("error", err.Error()))
		return nil, err
	}

	return records, nil
}

// GetUserIDs lists every user with at least one usage record on the date.
func (r *usageRepository) GetUserIDs(ctx context.Context, date string) ([]string, error) {
	var userIDs []string
	err := r.db.NewSelect().
		Model((*models.UsageRecord)(nil)).
		ColumnExpr("DISTINCT user_id").
		Where("date = ?", date).
		OrderExpr("user_id ASC").
		Scan(ctx, &userIDs)

	return userIDs, err
}

func (r *usageRepository) BulkUpsert(ctx context.Context, records []*models.UsageRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, rec := range records {
		rec.UpdatedAt = time.Now()
	}

	_, err := r.db.NewInsert().
		Model(&records).
		On("CONFLICT (user_id, date, package_name) DO UPDATE").
		Set("used_time_millis = EXCLUDED.used_time_millis").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

package repositories

import (
	"context"
	"time"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/uptrace/bun"
)

type DashboardRepository interface {
	// Upsert overwrites the snapshot for (user, date); re-running settlement
	// for the same date is idempotent at the dashboard level.
	Upsert(ctx context.Context, snapshot *models.DashboardSnapshot) error
	Get(ctx context.Context, userID string, date string) (*models.DashboardSnapshot, error)
}

type dashboardRepository struct {
	db *bun.DB
}

func NewDashboardRepository(db *bun.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) Upsert(ctx context.Context, snapshot *models.DashboardSnapshot) error {
	snapshot.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(snapshot).
		On("CONFLICT (user_id, date) DO UPDATE").
		Set("summary = EXCLUDED.summary").
		Set("category_minutes = EXCLUDED.category_minutes").
		Set("total_minutes = EXCLUDED.total_minutes").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *dashboardRepository) Get(ctx context.Context, userID string, date string) (*models.DashboardSnapshot, error) {
	snapshot := new(models.DashboardSnapshot)
	err := r.db.NewSelect().
		Model(snapshot).
		Where("user_id = ?", userID).
		Where("date = ?", date).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

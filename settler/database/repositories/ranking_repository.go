package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/uptrace/bun"
)

type RankingRepository interface {
	// ReplaceAll swaps the whole ranking table for the given entries in one
	// transaction. The ranking is never patched incrementally.
	ReplaceAll(ctx context.Context, entries []*models.RankingEntry) error
}

type rankingRepository struct {
	db *bun.DB
}

func NewRankingRepository(db *bun.DB) RankingRepository {
	return &rankingRepository{db: db}
}

func (r *rankingRepository) ReplaceAll(ctx context.Context, entries []*models.RankingEntry) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.RankingEntry)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear ranking: %w", err)
		}

		if len(entries) == 0 {
			return nil
		}

		now := time.Now()
		for _, e := range entries {
			e.UpdatedAt = now
		}

		if _, err := tx.NewInsert().
			Model(&entries).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert ranking entries: %w", err)
		}
		return nil
	})
}

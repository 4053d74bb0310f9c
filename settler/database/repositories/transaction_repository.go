package repositories

import (
	"context"
	"time"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/uptrace/bun"
)

type TransactionRepository interface {
	// Append writes one immutable ledger entry. Entries are never updated or
	// deleted afterwards.
	Append(ctx context.Context, tx *models.PointTransaction) error
	GetByUser(ctx context.Context, userID string, limit int) ([]*models.PointTransaction, error)
}

type transactionRepository struct {
	db *bun.DB
}

func NewTransactionRepository(db *bun.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Append(ctx context.Context, tx *models.PointTransaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	_, err := r.db.NewInsert().Model(tx).Exec(ctx)
	return err
}

func (r *transactionRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.PointTransaction, error) {
	var txs []*models.PointTransaction
	err := r.db.NewSelect().
		Model(&txs).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)

	return txs, err
}

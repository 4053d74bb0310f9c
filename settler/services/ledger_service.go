package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/apptracker/settler/settler/database/repositories"
)

// Ledger is the single point of truth for point balances. Awards append
// immutable transactions; Commit folds a run's total into the stored balance.
type Ledger struct {
	users repositories.UserRepository
	txs   repositories.TransactionRepository
}

func NewLedger(users repositories.UserRepository, txs repositories.TransactionRepository) *Ledger {
	return &Ledger{users: users, txs: txs}
}

// CurrentBalance returns the stored balance, 0 for unknown users.
func (l *Ledger) CurrentBalance(ctx context.Context, userID string) (int64, error) {
	return l.users.GetPoints(ctx, userID)
}

// Award appends one ledger transaction. Zero-point awards are suppressed and
// never reach the transaction log.
func (l *Ledger) Award(ctx context.Context, userID string, points int64, reason string, description string) error {
	if points == 0 {
		return nil
	}

	tx := &models.PointTransaction{
		UserID:      userID,
		Points:      points,
		Reason:      reason,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := l.txs.Append(ctx, tx); err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	slog.Info("Points awarded",
		slog.String("type", "run"),
		slog.String("user_id", userID),
		slog.Int64("points", points),
		slog.String("reason", reason))
	return nil
}

// Commit sets the balance to currentBalance + awarded and returns the new
// total. This is a read-then-write with no isolation: two concurrent commits
// for the same user can lose an update. Settlement runs one commit per user
// per run; anything stronger needs an atomic increment against the store.
func (l *Ledger) Commit(ctx context.Context, userID string, awarded int64) (int64, error) {
	current, err := l.users.GetPoints(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	total := current + awarded
	if err := l.users.SetPoints(ctx, userID, total); err != nil {
		return 0, fmt.Errorf("failed to write balance: %w", err)
	}
	return total, nil
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ReasonDailyActivity = "daily_activity"
	ReasonQuestSuccess  = "quest_success"
)

// PointTransaction is one append-only ledger entry. Zero-point entries are
// never written; the award path suppresses them.
type PointTransaction struct {
	bun.BaseModel `bun:"table:point_transactions,alias:pt"`

	ID          int64  `bun:"id,pk,autoincrement"`
	UserID      string `bun:"user_id,notnull"`
	Points      int64  `bun:"points,notnull"`
	Reason      string `bun:"reason,notnull"`
	Description string `bun:"description"`

	CreatedAt time.Time `bun:"created_at,notnull"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RankingEntry is one row of the global ranking table. The whole table is
// rebuilt from user balances after every settlement run, never patched.
type RankingEntry struct {
	bun.BaseModel `bun:"table:ranking_entries,alias:re"`

	Rank   int    `bun:"rank,pk"`
	UserID string `bun:"user_id,notnull"`
	Name   string `bun:"name,notnull,default:''"`
	Points int64  `bun:"points,notnull,default:0"`

	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

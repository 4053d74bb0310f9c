package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DashboardSnapshot is the per-user, per-date analysis result shown in the
// app. Re-running settlement for the same date overwrites it in place.
type DashboardSnapshot struct {
	bun.BaseModel `bun:"table:dashboard_snapshots,alias:ds"`

	UserID          string         `bun:"user_id,pk"`
	Date            string         `bun:"date,pk"`
	Summary         string         `bun:"summary"`
	CategoryMinutes map[string]int `bun:"category_minutes,type:jsonb"`
	TotalMinutes    int            `bun:"total_minutes,notnull,default:0"`

	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UsageRecord is one app's raw usage for one user on one day, as uploaded by
// the tracking client. Dates are stored as "2006-01-02" strings in the
// settlement time zone. The settler never writes these rows.
type UsageRecord struct {
	bun.BaseModel `bun:"table:usage_records,alias:ur"`

	UserID         string `bun:"user_id,pk"`
	Date           string `bun:"date,pk"`
	PackageName    string `bun:"package_name,pk"`
	UsedTimeMillis int64  `bun:"used_time_millis,notnull,default:0"`

	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

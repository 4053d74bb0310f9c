package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Quest is a user-defined usage goal: reach TargetMinutes of use for one app
// before the deadline. Completed is monotonic; once true the quest is settled
// and never evaluated again. RewardPoints and CompletedAt record how the
// terminal state was reached.
type Quest struct {
	bun.BaseModel `bun:"table:quests,alias:q"`

	QuestID       string `bun:"quest_id,pk"`
	UserID        string `bun:"user_id,notnull"`
	PackageName   string `bun:"package_name,notnull"`
	AppName       string `bun:"app_name"`
	TargetMinutes int    `bun:"target_minutes,notnull,default:0"`

	// Deadline as the client stores it: separate date and time-of-day fields.
	DeadlineDate string `bun:"deadline_date"`
	DeadlineTime string `bun:"deadline_time"`

	Completed    bool       `bun:"completed,notnull,default:false"`
	CompletedAt  *time.Time `bun:"completed_at"`
	RewardPoints int64      `bun:"reward_points,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Deadline parses the stored deadline fields in the given location.
func (q *Quest) Deadline(loc *time.Location) (time.Time, error) {
	if q.DeadlineDate == "" || q.DeadlineTime == "" {
		return time.Time{}, fmt.Errorf("quest %s: missing deadline fields", q.QuestID)
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", q.DeadlineDate+" "+q.DeadlineTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("quest %s: %w", q.QuestID, err)
	}
	return t, nil
}

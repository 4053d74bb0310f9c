package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID     string `bun:"id,pk"`
	Name   string `bun:"name,notnull,default:''"`
	Points int64  `bun:"points,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// DisplayName returns the user's name, falling back to a placeholder for
// accounts that never finished nickname setup.
func (u *User) DisplayName() string {
	if u.Name == "" {
		return "anonymous"
	}
	return u.Name
}

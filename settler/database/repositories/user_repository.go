package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/uptrace/bun"
)

type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	GetPoints(ctx context.Context, userID string) (int64, error)
	SetPoints(ctx context.Context, userID string, points int64) error
	Upsert(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Error("Database error when getting user",
			slog.String("type", "db"),
			slog.String("operation", "GetByID"),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, err
	}

	return user, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.NewSelect().
		Model(&users).
		Order("id ASC").
		Scan(ctx)

	if err != nil {
		slog.Error("Database error when getting all users",
			slog.String("type", "db"),
			slog.String("operation", "GetAll"),
			slog.String("error", err.Error()))
		return nil, err
	}

	return users, nil
}

// GetPoints returns the user's current balance, or 0 for unknown users.
func (r *userRepository) GetPoints(ctx context.Context, userID string) (int64, error) {
	var user models.User
	err := r.db.NewSelect().
		Model(&user).
		Column("points").
		Where("id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return user.Points, nil
}

// SetPoints writes an absolute balance, creating the user row if the tracking
// client uploaded usage before the account finished registration.
func (r *userRepository) SetPoints(ctx context.Context, userID string, points int64) error {
	now := time.Now()
	user := &models.User{
		ID:        userID,
		Points:    points,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT (id) DO UPDATE").
		Set("points = EXCLUDED.points").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("points = EXCLUDED.points").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

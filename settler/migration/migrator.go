package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/apptracker/settler/settler/database/repositories"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Migrator imports data from the legacy document store the first backend
// wrote to. One-shot; safe to re-run because every target write is an upsert
// or insert-if-absent.
type Migrator struct {
	pgDB    *bun.DB
	mongoDB *mongo.Database

	batchSize int
	collNames map[string]string
}

func NewMigrator(pgDB *bun.DB, client *mongo.Client, dbName string) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		mongoDB:   client.Database(dbName),
		batchSize: 500,
		collNames: map[string]string{
			"users":     "users",
			"quests":    "quests",
			"usage":     "usagestats",
			"pointslog": "pointslog",
		},
	}
}

type legacyUser struct {
	ID     string `bson:"_id"`
	Name   string `bson:"name"`
	Points int64  `bson:"points"`
}

type legacyQuest struct {
	ID            string `bson:"_id"`
	UserID        string `bson:"uid"`
	PackageName   string `bson:"packageName"`
	AppName       string `bson:"appName"`
	TargetMinutes int    `bson:"targetMinutes"`
	DeadlineDate  string `bson:"deadlineDate"`
	DeadlineTime  string `bson:"deadlineTime"`
	Completed     bool   `bson:"completed"`
}

type legacyUsage struct {
	UserID         string `bson:"uid"`
	Date           string `bson:"date"`
	PackageName    string `bson:"packageName"`
	UsedTimeMillis int64  `bson:"usedTimeMillis"`
}

type legacyPointsLog struct {
	UserID    string    `bson:"uid"`
	Points    int64     `bson:"points"`
	Reason    string    `bson:"reason"`
	Timestamp time.Time `bson:"timestamp"`
}

func (m *Migrator) MigrateAll(ctx context.Context) error {
	start := time.Now()

	if err := m.migrateUsers(ctx); err != nil {
		return fmt.Errorf("users migration failed: %w", err)
	}
	if err := m.migrateQuests(ctx); err != nil {
		return fmt.Errorf("quests migration failed: %w", err)
	}
	if err := m.migrateUsage(ctx); err != nil {
		return fmt.Errorf("usage migration failed: %w", err)
	}
	if err := m.migratePointsLog(ctx); err != nil {
		return fmt.Errorf("points log migration failed: %w", err)
	}

	slog.Info("Legacy migration finished",
		slog.String("type", "db"),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (m *Migrator) migrateUsers(ctx context.Context) error {
	users := repositories.NewUserRepository(m.pgDB)

	cur, err := m.mongoDB.Collection(m.collNames["users"]).Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	count := 0
	for cur.Next(ctx) {
		var legacy legacyUser
		if err := cur.Decode(&legacy); err != nil {
			slog.Warn("Skipping undecodable legacy user",
				slog.String("type", "db"),
				slog.Any("error", err))
			continue
		}

		if err := users.Upsert(ctx, &models.User{
			ID:     legacy.ID,
			Name:   legacy.Name,
			Points: legacy.Points,
		}); err != nil {
			return err
		}
		count++
	}
	if err := cur.Err(); err != nil {
		return err
	}

	slog.Info("Migrated users", slog.String("type", "db"), slog.Int("count", count))
	return nil
}

func (m *Migrator) migrateQuests(ctx context.Context) error {
	quests := repositories.NewQuestRepository(m.pgDB)

	cur, err := m.mongoDB.Collection(m.collNames["quests"]).Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	count := 0
	for cur.Next(ctx) {
		var legacy legacyQuest
		if err := cur.Decode(&legacy); err != nil {
			slog.Warn("Skipping undecodable legacy quest",
				slog.String("type", "db"),
				slog.Any("error", err))
			continue
		}

		if err := quests.Create(ctx, &models.Quest{
			QuestID:       legacy.ID,
			UserID:        legacy.UserID,
			PackageName:   legacy.PackageName,
			AppName:       legacy.AppName,
			TargetMinutes: legacy.TargetMinutes,
			DeadlineDate:  legacy.DeadlineDate,
			DeadlineTime:  legacy.DeadlineTime,
			Completed:     legacy.Completed,
		}); err != nil {
			return err
		}
		count++
	}
	if err := cur.Err(); err != nil {
		return err
	}

	slog.Info("Migrated quests", slog.String("type", "db"), slog.Int("count", count))
	return nil
}

func (m *Migrator) migrateUsage(ctx context.Context) error {
	usage := repositories.NewUsageRepository(m.pgDB)

	cur, err := m.mongoDB.Collection(m.collNames["usage"]).Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	batch := make([]*models.UsageRecord, 0, m.batchSize)
	count := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := usage.BulkUpsert(ctx, batch); err != nil {
			return err
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}

	for cur.Next(ctx) {
		var legacy legacyUsage
		if err := cur.Decode(&legacy); err != nil {
			slog.Warn("Skipping undecodable legacy usage record",
				slog.String("type", "db"),
				slog.Any("error", err))
			continue
		}

		batch = append(batch, &models.UsageRecord{
			UserID:         legacy.UserID,
			Date:           legacy.Date,
			PackageName:    legacy.PackageName,
			UsedTimeMillis: legacy.UsedTimeMillis,
		})
		if len(batch) >= m.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	slog.Info("Migrated usage records", slog.String("type", "db"), slog.Int("count", count))
	return nil
}

func (m *Migrator) migratePointsLog(ctx context.Context) error {
	txs := repositories.NewTransactionRepository(m.pgDB)

	cur, err := m.mongoDB.Collection(m.collNames["pointslog"]).Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	count := 0
	for cur.Next(ctx) {
		var legacy legacyPointsLog
		if err := cur.Decode(&legacy); err != nil {
			slog.Warn("Skipping undecodable legacy points log entry",
				slog.String("type", "db"),
				slog.Any("error", err))
			continue
		}
		if legacy.Points == 0 {
			continue
		}

		// The legacy log only kept free-text reasons; quest entries were
		// prefixed with the quest marker, everything else was the daily
		// activity reward.
		reason := models.ReasonDailyActivity
		if strings.Contains(legacy.Reason, "퀘스트") || strings.Contains(legacy.Reason, "Quest") {
			reason = models.ReasonQuestSuccess
		}

		if err := txs.Append(ctx, &models.PointTransaction{
			UserID:      legacy.UserID,
			Points:      legacy.Points,
			Reason:      reason,
			Description: legacy.Reason,
			CreatedAt:   legacy.Timestamp,
		}); err != nil {
			return err
		}
		count++
	}
	if err := cur.Err(); err != nil {
		return err
	}

	slog.Info("Migrated point transactions", slog.String("type", "db"), slog.Int("count", count))
	return nil
}

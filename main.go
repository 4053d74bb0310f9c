package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/apptracker/settler/settler"
	"github.com/apptracker/settler/settler/analysis"
	"github.com/apptracker/settler/settler/database"
	"github.com/apptracker/settler/settler/database/repositories"
	"github.com/apptracker/settler/settler/logger"
	"github.com/apptracker/settler/settler/migration"
	"github.com/apptracker/settler/settler/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	date := flag.String("date", "", "settlement date (YYYY-MM-DD, default: today in the configured time zone)")
	migrateLegacy := flag.Bool("migrate-legacy", false, "import data from the legacy document store and exit")
	skipArchive := flag.Bool("skip-archive", false, "do not upload the run report to Spaces")
	flag.Parse()

	cfg, err := settler.LoadConfig(*path)
	if err != nil {
		slog.SetDefault(slog.New(logger.NewHandler(slog.LevelInfo)))
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))
	slog.Info("Starting usage settlement",
		slog.String("version", version),
		slog.String("commit", commit))

	loc, err := time.LoadLocation(cfg.Settle.Timezone)
	if err != nil {
		slog.Error("Invalid time zone", slog.String("timezone", cfg.Settle.Timezone), slog.Any("error", err))
		os.Exit(-1)
	}

	targetDate := *date
	if targetDate == "" {
		targetDate = time.Now().In(loc).Format("2006-01-02")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	dbStartTime := time.Now()
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if *migrateLegacy {
		if err := runMigration(ctx, cfg, db); err != nil {
			slog.Error("Legacy migration failed", slog.Any("error", err))
			os.Exit(-1)
		}
		return
	}

	userRepo := repositories.NewUserRepository(db.BunDB())
	usageRepo := repositories.NewUsageRepository(db.BunDB())
	questRepo := repositories.NewQuestRepository(db.BunDB())
	txRepo := repositories.NewTransactionRepository(db.BunDB())
	dashboardRepo := repositories.NewDashboardRepository(db.BunDB())
	rankingRepo := repositories.NewRankingRepository(db.BunDB())

	classifier := analysis.NewClassifier(
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second,
	)

	ledger := services.NewLedger(userRepo, txRepo)
	evaluator := services.NewQuestEvaluator(questRepo, ledger, loc)
	ranking := services.NewRankingService(userRepo, rankingRepo)
	settle := services.NewSettleService(usageRepo, dashboardRepo, classifier, ledger, evaluator, ranking, cfg.Settle.Concurrency)

	report, err := settle.Run(ctx, targetDate)
	if err != nil {
		slog.Error("Settlement run failed", slog.Any("error", err))
		os.Exit(-1)
	}

	if !*skipArchive && cfg.ArchiveEnabled() {
		archive, err := services.NewReportArchive(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.ReportRoot,
		)
		if err != nil {
			logger.LogError("Failed to set up report archive", err)
		} else if err := archive.Upload(ctx, report); err != nil {
			logger.LogError("Failed to archive run report", err)
		}
	}

	if len(report.UsersFailed) > 0 {
		slog.Warn("Settlement finished with failures",
			slog.String("type", "run"),
			slog.Int("failed", len(report.UsersFailed)))
		os.Exit(1)
	}
}

func runMigration(ctx context.Context, cfg *settler.Config, db *database.DB) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			slog.Warn("Failed to disconnect from legacy store", slog.Any("error", err))
		}
	}()

	migrator := migration.NewMigrator(db.BunDB(), client, cfg.Mongo.Database)
	return migrator.MigrateAll(ctx)
}

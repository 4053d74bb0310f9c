package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/apptracker/settler/settler/analysis"
	"github.com/apptracker/settler/settler/database/models"
	"github.com/apptracker/settler/settler/database/repositories/mock"
	"go.uber.org/mock/gomock"
)

type stubClassifier struct {
	result analysis.Classification
}

func (s stubClassifier) Classify(_ context.Context, _ string, _ []string) analysis.Classification {
	return s.result
}

type settleMocks struct {
	usage      *mock.MockUsageRepository
	quests     *mock.MockQuestRepository
	txs        *mock.MockTransactionRepository
	users      *mock.MockUserRepository
	dashboards *mock.MockDashboardRepository
	rankings   *mock.MockRankingRepository
}

func newSettleService(t *testing.T, classifier UsageClassifier) (*SettleService, settleMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := settleMocks{
		usage:      mock.NewMockUsageRepository(ctrl),
		quests:     mock.NewMockQuestRepository(ctrl),
		txs:        mock.NewMockTransactionRepository(ctrl),
		users:      mock.NewMockUserRepository(ctrl),
		dashboards: mock.NewMockDashboardRepository(ctrl),
		rankings:   mock.NewMockRankingRepository(ctrl),
	}

	ledger := NewLedger(m.users, m.txs)
	evaluator := NewQuestEvaluator(m.quests, ledger, time.UTC)
	evaluator.now = func() time.Time { return fixedNow }
	ranking := NewRankingService(m.users, m.rankings)

	return NewSettleService(m.usage, m.dashboards, classifier, ledger, evaluator, ranking, 2), m
}

func Test_SettleService_Run_activityScenario(t *testing.T) {
	classifier := stubClassifier{result: analysis.Classification{
		Summary:         "A study-heavy day with a short social break.",
		CategoryMinutes: map[string]int{"Study": 120, "SocialMedia": 10},
	}}
	s, m := newSettleService(t, classifier)

	const date = "2025-06-01"
	m.usage.EXPECT().GetUserIDs(gomock.Any(), date).Return([]string{"u1"}, nil)
	m.usage.EXPECT().GetByUserAndDate(gomock.Any(), "u1", date).Return([]*models.UsageRecord{
		{UserID: "u1", Date: date, PackageName: "com.google.android.apps.docs", UsedTimeMillis: 7_200_000},
		{UserID: "u1", Date: date, PackageName: "com.instagram.android", UsedTimeMillis: 600_000},
	}, nil)
	m.quests.EXPECT().GetOpenByUser(gomock.Any(), "u1").Return(nil, nil)

	m.txs.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *models.PointTransaction) error {
			if tx.Points != 120 || tx.Reason != models.ReasonDailyActivity {
				t.Errorf("unexpected transaction %+v", tx)
			}
			return nil
		})
	m.users.EXPECT().GetPoints(gomock.Any(), "u1").Return(int64(40), nil)
	m.users.EXPECT().SetPoints(gomock.Any(), "u1", int64(160)).Return(nil)

	m.dashboards.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap *models.DashboardSnapshot) error {
			if snap.TotalMinutes != 130 {
				t.Errorf("TotalMinutes = %d, want 130", snap.TotalMinutes)
			}
			if snap.Summary != "A study-heavy day with a short social break." {
				t.Errorf("Summary = %q", snap.Summary)
			}
			return nil
		})

	m.users.EXPECT().GetAll(gomock.Any()).Return([]*models.User{{ID: "u1", Name: "Alex", Points: 160}}, nil)
	m.rankings.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(nil)

	report, err := s.Run(context.Background(), date)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.UsersSettled) != 1 || len(report.UsersFailed) != 0 {
		t.Fatalf("report = %+v", report)
	}

	result := report.UsersSettled[0]
	if result.ActivityPoints != 120 || result.QuestPoints != 0 || result.NewBalance != 160 {
		t.Errorf("result = %+v", result)
	}
	if report.TotalPoints != 120 {
		t.Errorf("TotalPoints = %d, want 120", report.TotalPoints)
	}
}

func Test_SettleService_Run_classifierDownQuestStillPays(t *testing.T) {
	s, m := newSettleService(t, stubClassifier{result: analysis.Fallback()})

	const date = "2025-06-01"
	m.usage.EXPECT().GetUserIDs(gomock.Any(), date).Return([]string{"u1"}, nil)
	m.usage.EXPECT().GetByUserAndDate(gomock.Any(), "u1", date).Return([]*models.UsageRecord{
		{UserID: "u1", Date: date, PackageName: "com.duolingo", UsedTimeMillis: 5_700_000}, // 95 min
	}, nil)
	m.quests.EXPECT().GetOpenByUser(gomock.Any(), "u1").Return([]*models.Quest{{
		QuestID:       "q1",
		UserID:        "u1",
		PackageName:   "com.duolingo",
		AppName:       "Duolingo",
		TargetMinutes: 90,
		DeadlineDate:  "2025-06-01",
		DeadlineTime:  "23:59:59",
	}}, nil)
	m.quests.EXPECT().
		MarkCompleted(gomock.Any(), "q1", int64(150), fixedNow).
		Return(true, nil)

	// Exactly one transaction: the quest reward. Activity score is zero, so
	// no daily activity entry is written.
	m.txs.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *models.PointTransaction) error {
			if tx.Points != 150 || tx.Reason != models.ReasonQuestSuccess {
				t.Errorf("unexpected transaction %+v", tx)
			}
			return nil
		})
	m.users.EXPECT().GetPoints(gomock.Any(), "u1").Return(int64(0), nil)
	m.users.EXPECT().SetPoints(gomock.Any(), "u1", int64(150)).Return(nil)

	m.dashboards.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap *models.DashboardSnapshot) error {
			if snap.Summary != analysis.FallbackSummary {
				t.Errorf("Summary = %q, want fallback", snap.Summary)
			}
			if len(snap.CategoryMinutes) != 0 {
				t.Errorf("CategoryMinutes = %v, want empty", snap.CategoryMinutes)
			}
			return nil
		})

	m.users.EXPECT().GetAll(gomock.Any()).Return([]*models.User{{ID: "u1", Points: 150}}, nil)
	m.rankings.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(nil)

	report, err := s.Run(context.Background(), date)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.QuestsCompleted != 1 || report.TotalPoints != 150 {
		t.Errorf("report = %+v", report)
	}
}

func Test_SettleService_Run_isolatesUserFailures(t *testing.T) {
	s, m := newSettleService(t, stubClassifier{result: analysis.Fallback()})

	const date = "2025-06-01"
	m.usage.EXPECT().GetUserIDs(gomock.Any(), date).Return([]string{"bad", "good"}, nil)

	m.usage.EXPECT().
		GetByUserAndDate(gomock.Any(), "bad", date).
		Return(nil, errors.New("connection reset"))

	m.usage.EXPECT().GetByUserAndDate(gomock.Any(), "good", date).Return([]*models.UsageRecord{
		{UserID: "good", Date: date, PackageName: "com.a", UsedTimeMillis: 60_000},
	}, nil)
	m.quests.EXPECT().GetOpenByUser(gomock.Any(), "good").Return(nil, nil)
	m.users.EXPECT().GetPoints(gomock.Any(), "good").Return(int64(0), nil)
	m.users.EXPECT().SetPoints(gomock.Any(), "good", int64(0)).Return(nil)
	m.dashboards.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

	m.users.EXPECT().GetAll(gomock.Any()).Return(nil, nil)
	m.rankings.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(nil)

	report, err := s.Run(context.Background(), date)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.UsersSettled) != 1 || report.UsersSettled[0].UserID != "good" {
		t.Errorf("settled = %+v", report.UsersSettled)
	}
	if len(report.UsersFailed) != 1 || report.UsersFailed[0].UserID != "bad" {
		t.Errorf("failed = %+v", report.UsersFailed)
	}
}

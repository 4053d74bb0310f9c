package services

import (
	"context"
	"testing"

	"github.com/apptracker/settler/settler/database/models"
	"github.com/apptracker/settler/settler/database/repositories/mock"
	"go.uber.org/mock/gomock"
)

func Test_Ledger_Award(t *testing.T) {
	ctx := context.Background()

	t.Run("zero points never appends", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mock.NewMockUserRepository(ctrl)
		txs := mock.NewMockTransactionRepository(ctrl)
		// No Append expectation: the mock controller fails the test if one happens.

		l := NewLedger(users, txs)
		if err := l.Award(ctx, "u1", 0, models.ReasonDailyActivity, "nothing"); err != nil {
			t.Fatalf("Award() error = %v", err)
		}
	})

	t.Run("appends one transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mock.NewMockUserRepository(ctrl)
		txs := mock.NewMockTransactionRepository(ctrl)

		txs.EXPECT().
			Append(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tx *models.PointTransaction) error {
				if tx.UserID != "u1" || tx.Points != 150 || tx.Reason != models.ReasonQuestSuccess {
					t.Errorf("unexpected transaction %+v", tx)
				}
				return nil
			})

		l := NewLedger(users, txs)
		if err := l.Award(ctx, "u1", 150, models.ReasonQuestSuccess, "Quest success: YouTube"); err != nil {
			t.Fatalf("Award() error = %v", err)
		}
	})
}

func Test_Ledger_Commit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		current int64
		awarded int64
		want    int64
	}{
		{name: "prior balance plus run total", current: 40, awarded: 120, want: 160},
		{name: "unknown user starts at zero", current: 0, awarded: 150, want: 150},
		{name: "zero award keeps balance", current: 77, awarded: 0, want: 77},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			users := mock.NewMockUserRepository(ctrl)
			txs := mock.NewMockTransactionRepository(ctrl)

			users.EXPECT().GetPoints(gomock.Any(), "u1").Return(tt.current, nil)
			users.EXPECT().SetPoints(gomock.Any(), "u1", tt.want).Return(nil)

			l := NewLedger(users, txs)
			got, err := l.Commit(ctx, "u1", tt.awarded)
			if err != nil {
				t.Fatalf("Commit() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Commit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func Test_Ledger_CurrentBalance_absentUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	txs := mock.NewMockTransactionRepository(ctrl)

	users.EXPECT().GetPoints(gomock.Any(), "ghost").Return(int64(0), nil)

	l := NewLedger(users, txs)
	got, err := l.CurrentBalance(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("CurrentBalance() error = %v", err)
	}
	if got != 0 {
		t.Errorf("CurrentBalance() = %d, want 0", got)
	}
}

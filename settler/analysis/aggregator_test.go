package analysis

import (
	"reflect"
	"testing"

	"github.com/apptracker/settler/settler/database/models"
)

func Test_AggregateMinutes(t *testing.T) {
	tests := []struct {
		name    string
		records []*models.UsageRecord
		want    map[string]int
	}{
		{
			name:    "no records",
			records: nil,
			want:    map[string]int{},
		},
		{
			name: "rounds half up",
			records: []*models.UsageRecord{
				{PackageName: "com.a", UsedTimeMillis: 90_000},  // 1.5 min
				{PackageName: "com.b", UsedTimeMillis: 89_999},  // just under 1.5
				{PackageName: "com.c", UsedTimeMillis: 150_000}, // 2.5 min
			},
			want: map[string]int{"com.a": 2, "com.b": 1, "com.c": 3},
		},
		{
			name: "sums duplicate packages before rounding",
			records: []*models.UsageRecord{
				{PackageName: "com.a", UsedTimeMillis: 45_000},
				{PackageName: "com.a", UsedTimeMillis: 45_000},
			},
			want: map[string]int{"com.a": 2},
		},
		{
			name: "drops zero duration rows",
			records: []*models.UsageRecord{
				{PackageName: "com.a", UsedTimeMillis: 0},
				{PackageName: "com.b", UsedTimeMillis: 7_200_000},
			},
			want: map[string]int{"com.b": 120},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateMinutes(tt.records)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AggregateMinutes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_AggregateMinutes_totalWithinRoundingTolerance(t *testing.T) {
	records := []*models.UsageRecord{
		{PackageName: "com.a", UsedTimeMillis: 123_456},
		{PackageName: "com.b", UsedTimeMillis: 59_999},
		{PackageName: "com.c", UsedTimeMillis: 3_601_000},
	}

	var exactMillis int64
	for _, r := range records {
		exactMillis += r.UsedTimeMillis
	}

	minutes := AggregateMinutes(records)
	total := TotalMinutes(minutes)

	exact := float64(exactMillis) / 60000.0
	diff := float64(total) - exact
	if diff < 0 {
		diff = -diff
	}
	// Each package can be off by at most half a minute.
	if diff > float64(len(records))*0.5 {
		t.Errorf("total %d minutes too far from exact %.2f", total, exact)
	}

	for pkg, m := range minutes {
		if m < 0 {
			t.Errorf("negative minutes for %s: %d", pkg, m)
		}
	}
}

package analysis

import (
	"github.com/apptracker/settler/settler/database/models"
)

// AggregateMinutes normalizes raw per-app millisecond durations into whole
// minutes per package. Durations are summed per package before rounding, so a
// package that shows up in several rows counts once. Rounding is half-up.
func AggregateMinutes(records []*models.UsageRecord) map[string]int {
	totals := make(map[string]int64, len(records))
	for _, rec := range records {
		if rec.UsedTimeMillis <= 0 {
			continue
		}
		totals[rec.PackageName] += rec.UsedTimeMillis
	}

	minutes := make(map[string]int, len(totals))
	for pkg, millis := range totals {
		minutes[pkg] = int((millis + 30000) / 60000)
	}
	return minutes
}

// TotalMinutes sums the aggregated minutes across all packages.
func TotalMinutes(minutes map[string]int) int {
	total := 0
	for _, m := range minutes {
		total += m
	}
	return total
}

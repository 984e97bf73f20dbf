package services

import (
	"math"
	"time"

	"github.com/lunara-app/lunara/internal/models"
)

type PeriodStartResult struct {
	Entry models.CycleEntry
	// CycleLength is the length of the cycle that just ended, nil when this
	// is the first recorded start.
	CycleLength *int
	NewAverage  int
}

// RecordPeriodStart appends a period start to the profile's history, evicts
// beyond the retention window and recomputes the simple average cycle length
// over entries with a usable length. When no entry is usable the previous
// average (or the default) is retained.
func RecordPeriodStart(profile *models.CycleProfile, startDate time.Time, now time.Time) PeriodStartResult {
	day := DateAtLocation(startDate, startDate.Location())

	var cycleLength *int
	if profile.LastPeriodStart != nil && !profile.LastPeriodStart.IsZero() {
		length := DaysBetween(DateAtLocation(*profile.LastPeriodStart, day.Location()), day)
		cycleLength = &length
	}

	entry := models.CycleEntry{StartDate: day, Length: cycleLength, RecordedAt: now}
	profile.CycleHistory = append(profile.CycleHistory, entry)
	if len(profile.CycleHistory) > models.CycleHistoryWindow {
		profile.CycleHistory = profile.CycleHistory[len(profile.CycleHistory)-models.CycleHistoryWindow:]
	}

	profile.AverageCycleLength = recomputeAverage(profile.CycleHistory, profile.AverageCycleLength)
	profile.LastPeriodStart = &day

	return PeriodStartResult{Entry: entry, CycleLength: cycleLength, NewAverage: profile.AverageCycleLength}
}

func recomputeAverage(history []models.CycleEntry, previous int) int {
	total := 0
	count := 0
	for _, entry := range history {
		if entry.Length == nil || *entry.Length <= 0 {
			continue
		}
		total += *entry.Length
		count++
	}
	if count == 0 {
		if previous > 0 {
			return previous
		}
		return models.DefaultCycleLength
	}
	return int(math.Round(float64(total) / float64(count)))
}

package services

import (
	"fmt"
	"time"

	"github.com/lunara-app/lunara/internal/models"
)

// lutealPhaseDays is treated as a fixed constant in prediction.
const lutealPhaseDays = 14

type FertileWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type CyclePrediction struct {
	// PredictedLength is the recency-weighted average cycle length, kept as
	// a float for reporting. Calendar dates below floor it: a fraction of a
	// day never moves a midnight-anchored date into the next calendar day.
	PredictedLength float64
	NextPeriodStart time.Time
	// OvulationDay is the 0-indexed offset from the last period start.
	OvulationDay  int
	OvulationDate time.Time
	FertileWindow FertileWindow
	// UpcomingCycles holds three consecutive future period start dates,
	// beginning with NextPeriodStart.
	UpcomingCycles []time.Time
	MidCycleDate   time.Time
}

func ValidateCycleParameters(cycleLength int, periodDuration int) error {
	if cycleLength < models.MinCycleLength || cycleLength > models.MaxCycleLength {
		return fmt.Errorf("%w: cycle length must be between %d and %d days",
			ErrInvalidCycleParameters, models.MinCycleLength, models.MaxCycleLength)
	}
	if periodDuration < models.MinPeriodDuration || periodDuration > models.MaxPeriodDuration {
		return fmt.Errorf("%w: period duration must be between %d and %d days",
			ErrInvalidCycleParameters, models.MinPeriodDuration, models.MaxPeriodDuration)
	}
	return nil
}

// PredictCycle computes the next period start, fertile window and upcoming
// cycle dates from the recorded history, falling back to the explicit average
// when the history carries no usable lengths.
func PredictCycle(history []models.CycleEntry, averageCycleLength int, periodDuration int, lastPeriodStart time.Time) (CyclePrediction, error) {
	if err := ValidateCycleParameters(averageCycleLength, periodDuration); err != nil {
		return CyclePrediction{}, err
	}

	anchor := lastPeriodStart
	if len(history) > 0 {
		anchor = history[len(history)-1].StartDate
	}
	if anchor.IsZero() {
		return CyclePrediction{}, fmt.Errorf("%w: last period start is required", ErrIncompleteCycleData)
	}
	anchor = DateAtLocation(anchor, anchor.Location())

	predictedLength := WeightedCycleLength(history)
	if predictedLength <= 0 {
		predictedLength = float64(averageCycleLength)
	}

	lengthDays := int(predictedLength)
	nextPeriodStart := AddDays(anchor, lengthDays)
	ovulationDay := lengthDays - lutealPhaseDays

	fertileStart := AddDays(anchor, maxInt(8, ovulationDay-5))
	fertileEnd := AddDays(anchor, minInt(lengthDays-3, ovulationDay+1))

	upcoming := make([]time.Time, 0, 3)
	cursor := nextPeriodStart
	for len(upcoming) < 3 {
		upcoming = append(upcoming, cursor)
		cursor = AddDays(cursor, lengthDays)
	}

	return CyclePrediction{
		PredictedLength: predictedLength,
		NextPeriodStart: nextPeriodStart,
		OvulationDay:    ovulationDay,
		OvulationDate:   AddDays(anchor, ovulationDay),
		FertileWindow:   FertileWindow{Start: fertileStart, End: fertileEnd},
		UpcomingCycles:  upcoming,
		MidCycleDate:    AddDays(anchor, lengthDays/2),
	}, nil
}

// WeightedCycleLength averages the recorded cycle lengths weighted by their
// 1-based position in the history window (oldest = 1), so recent cycles count
// more. Entries without a positive length keep their position but contribute
// nothing. Returns 0 when no entry is usable.
func WeightedCycleLength(history []models.CycleEntry) float64 {
	weightedSum := 0.0
	weightTotal := 0.0
	for index, entry := range history {
		if entry.Length == nil || *entry.Length <= 0 {
			continue
		}
		weight := float64(index + 1)
		weightedSum += float64(*entry.Length) * weight
		weightTotal += weight
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}

func maxInt(a int, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a int, b int) int {
	if a < b {
		return a
	}
	return b
}

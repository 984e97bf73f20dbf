package services

import (
	"fmt"
	"time"

	"github.com/lunara-app/lunara/internal/models"
)

// Two phase-classification policies exist in the product and disagree around
// the cycle boundaries. They are deliberately kept as separate named
// strategies; callers pick one, nothing merges them.
type PhasePolicy string

const (
	// PolicyRelative derives the ovulation day from the cycle length and
	// classifies relative to it.
	PolicyRelative PhasePolicy = "relative"
	// PolicyFixed uses fixed day-of-cycle buckets regardless of cycle shape.
	PolicyFixed PhasePolicy = "fixed"
)

const (
	PhaseMenstrual    = "menstrual"
	PhaseFollicular   = "follicular"
	PhaseOvulatory    = "ovulatory"
	PhaseLuteal       = "luteal"
	PhasePremenstrual = "premenstrual"
)

type PhaseResult struct {
	Phase string `json:"phase"`
	// DayOfCycle is 1-indexed for display.
	DayOfCycle int `json:"day_of_cycle"`
}

func ParsePhasePolicy(raw string) (PhasePolicy, bool) {
	switch PhasePolicy(raw) {
	case PolicyRelative, PolicyFixed:
		return PhasePolicy(raw), true
	case "":
		return PolicyRelative, true
	default:
		return "", false
	}
}

// ClassifyPhase maps today onto a cycle phase under the chosen policy.
func ClassifyPhase(policy PhasePolicy, today time.Time, lastPeriodStart time.Time, cycleLength int, periodDuration int) (PhaseResult, error) {
	if lastPeriodStart.IsZero() {
		return PhaseResult{}, fmt.Errorf("%w: last period start is required", ErrIncompleteCycleData)
	}
	if cycleLength <= 0 {
		return PhaseResult{}, fmt.Errorf("%w: cycle length is required", ErrIncompleteCycleData)
	}
	if periodDuration <= 0 {
		periodDuration = models.DefaultPeriodDuration
	}

	daysSince := DaysBetween(DateAtLocation(lastPeriodStart, today.Location()), DateAtLocation(today, today.Location()))

	switch policy {
	case PolicyFixed:
		return classifyFixed(daysSince, cycleLength), nil
	default:
		return classifyRelative(daysSince, cycleLength, periodDuration), nil
	}
}

func classifyRelative(daysSince int, cycleLength int, periodDuration int) PhaseResult {
	day := ((daysSince % cycleLength) + cycleLength) % cycleLength
	ovulationDay := cycleLength - lutealPhaseDays

	phase := PhaseLuteal
	switch {
	case day < periodDuration:
		phase = PhaseMenstrual
	case day < maxInt(ovulationDay-1, periodDuration):
		phase = PhaseFollicular
	case day <= ovulationDay+1:
		phase = PhaseOvulatory
	}
	return PhaseResult{Phase: phase, DayOfCycle: day + 1}
}

func classifyFixed(daysSince int, cycleLength int) PhaseResult {
	day := daysSince % cycleLength

	phase := PhasePremenstrual
	switch {
	case day <= 5:
		phase = PhaseMenstrual
	case day <= 13:
		phase = PhaseFollicular
	case day <= 15:
		phase = PhaseOvulatory
	case day <= 28:
		phase = PhaseLuteal
	}
	return PhaseResult{Phase: phase, DayOfCycle: day + 1}
}

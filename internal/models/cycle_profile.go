package models

import "time"

const (
	DefaultCycleLength      = 28
	DefaultPeriodDuration   = 5
	DefaultNotificationHour = 9

	MinCycleLength    = 21
	MaxCycleLength    = 45
	MinPeriodDuration = 1
	MaxPeriodDuration = 10

	// CycleHistoryWindow bounds how many completed cycles are kept for
	// prediction; older entries are evicted first.
	CycleHistoryWindow = 12
)

// CycleEntry is one recorded period start. Length is the number of days of
// the cycle that ended at this start; it is unknown for the very first entry.
type CycleEntry struct {
	StartDate  time.Time `json:"start_date"`
	Length     *int      `json:"length,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

type CycleProfile struct {
	ID                 uint         `gorm:"primaryKey" json:"-"`
	SubjectID          uint         `gorm:"uniqueIndex;not null" json:"subject_id"`
	LastPeriodStart    *time.Time   `json:"last_period_start,omitempty"`
	AverageCycleLength int          `gorm:"not null;default:28" json:"average_cycle_length"`
	PeriodDuration     int          `gorm:"not null;default:5" json:"period_duration"`
	CycleHistory       []CycleEntry `gorm:"serializer:json" json:"cycle_history"`
	ReminderDays       []int        `gorm:"serializer:json" json:"reminder_days"`
	NotificationHour   int          `gorm:"not null;default:9" json:"notification_hour"`
	CreatedAt          time.Time    `json:"-"`
	UpdatedAt          time.Time    `json:"-"`
}

func DefaultReminderDays() []int {
	return []int{3, 1}
}

package models

import "time"

const (
	CategoryPeriodReminder  = "period_reminder"
	CategoryFertileWindow   = "fertile_window"
	CategoryWellnessTip     = "wellness_tip"
	CategoryCyclePrediction = "cycle_prediction"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// CycleCategories are the categories regenerated wholesale whenever cycle
// info changes. Wellness tips are deliberately excluded: they accumulate and
// are only removed by the retention purge or the subject.
func CycleCategories() []string {
	return []string{CategoryPeriodReminder, CategoryFertileWindow, CategoryCyclePrediction}
}

type Reminder struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	SubjectID uint       `gorm:"index;not null" json:"subject_id"`
	Category  string     `gorm:"not null;default:period_reminder" json:"category"`
	Title     string     `json:"title"`
	Message   string     `gorm:"not null" json:"message"`
	DueAt     time.Time  `gorm:"not null;index" json:"due_at"`
	Priority  string     `gorm:"not null;default:medium" json:"priority"`
	Sent      bool       `gorm:"not null;default:false" json:"sent"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

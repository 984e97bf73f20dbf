package models

import "time"

// Insight stores an AI-generated wellness analysis verbatim. The fields are
// opaque payload from the language-model collaborator; nothing here parses
// or depends on their content.
type Insight struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SubjectID       uint      `gorm:"index;not null" json:"subject_id"`
	Analysis        string    `json:"analysis"`
	Recommendations string    `json:"recommendations"`
	RiskLevel       string    `json:"risk_level"`
	NextSteps       string    `json:"next_steps"`
	CreatedAt       time.Time `json:"created_at"`
}

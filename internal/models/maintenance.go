package models

import "time"

// MaintenanceState is a single-row table tracking when background cleanup
// last ran, so the purge guard survives restarts.
type MaintenanceState struct {
	ID          uint       `gorm:"primaryKey"`
	LastPurgeAt *time.Time
	UpdatedAt   time.Time
}

package db

import "gorm.io/gorm"

type Repositories struct {
	Profiles    *ProfileRepository
	Reminders   *ReminderRepository
	Insights    *InsightRepository
	Maintenance *MaintenanceRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Profiles:    NewProfileRepository(database),
		Reminders:   NewReminderRepository(database),
		Insights:    NewInsightRepository(database),
		Maintenance: NewMaintenanceRepository(database),
	}
}

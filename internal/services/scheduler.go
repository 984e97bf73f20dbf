package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lunara-app/lunara/internal/models"
)

type ReminderText struct {
	Title   string
	Message string
}

// CycleReminderPlan describes one reminder regeneration. All display text is
// supplied by the caller; the scheduler only computes due timestamps.
type CycleReminderPlan struct {
	SubjectID       uint
	NextPeriodStart time.Time
	// FertileWindow, when set, also schedules window start/end reminders.
	FertileWindow *FertileWindow
	// MidCycleDate, when set, schedules a cycle_prediction check-in.
	MidCycleDate     time.Time
	ReminderDays     []int
	NotificationHour int
	PeriodText       func(daysBefore int) ReminderText
	FertileStartText ReminderText
	FertileEndText   ReminderText
	MidCycleText     ReminderText
}

type ReminderScheduler struct {
	reminders ReminderStore
	location  *time.Location
}

func NewReminderScheduler(reminders ReminderStore, location *time.Location) *ReminderScheduler {
	if location == nil {
		location = time.Local
	}
	return &ReminderScheduler{reminders: reminders, location: location}
}

// ScheduleCycleReminders replaces the subject's unsent period_reminder,
// fertile_window and cycle_prediction reminders with a freshly computed
// batch. Reminders already in the past at scheduling time are skipped.
// Returns how many reminders were actually created.
func (scheduler *ReminderScheduler) ScheduleCycleReminders(ctx context.Context, plan CycleReminderPlan, now time.Time) (int, error) {
	if plan.NextPeriodStart.IsZero() {
		return 0, fmt.Errorf("%w: next period start is not derivable", ErrScheduling)
	}

	hour := plan.NotificationHour
	if hour < 0 || hour > 23 {
		hour = models.DefaultNotificationHour
	}

	batch := make([]models.Reminder, 0, len(plan.ReminderDays)+3)

	for _, daysBefore := range plan.ReminderDays {
		dueAt := scheduler.dueAt(AddDays(plan.NextPeriodStart, -daysBefore), hour)
		if !dueAt.After(now) {
			continue
		}

		priority := models.PriorityMedium
		if daysBefore == 1 {
			priority = models.PriorityHigh
		}

		text := defaultPeriodText(daysBefore)
		if plan.PeriodText != nil {
			text = plan.PeriodText(daysBefore)
		}

		batch = append(batch, models.Reminder{
			SubjectID: plan.SubjectID,
			Category:  models.CategoryPeriodReminder,
			Title:     text.Title,
			Message:   text.Message,
			DueAt:     dueAt,
			Priority:  priority,
			CreatedAt: now,
		})
	}

	if plan.FertileWindow != nil {
		batch = scheduler.appendIfFuture(batch, plan.SubjectID, models.CategoryFertileWindow,
			plan.FertileWindow.Start, hour, plan.FertileStartText, now)
		batch = scheduler.appendIfFuture(batch, plan.SubjectID, models.CategoryFertileWindow,
			plan.FertileWindow.End, hour, plan.FertileEndText, now)
	}
	if !plan.MidCycleDate.IsZero() {
		batch = scheduler.appendIfFuture(batch, plan.SubjectID, models.CategoryCyclePrediction,
			plan.MidCycleDate, hour, plan.MidCycleText, now)
	}

	// The replace runs even when the batch is empty: stale reminders from
	// the previous prediction must not survive a reschedule.
	if err := scheduler.reminders.ReplaceCycleReminders(ctx, plan.SubjectID, batch); err != nil {
		return 0, fmt.Errorf("replace cycle reminders: %w", err)
	}
	return len(batch), nil
}

// ScheduleWellnessTip appends a wellness_tip reminder without touching the
// regenerated categories. Past due dates are skipped.
func (scheduler *ReminderScheduler) ScheduleWellnessTip(ctx context.Context, subjectID uint, dueDate time.Time, hour int, text ReminderText, now time.Time) (bool, error) {
	if hour < 0 || hour > 23 {
		hour = models.DefaultNotificationHour
	}
	dueAt := scheduler.dueAt(dueDate, hour)
	if !dueAt.After(now) {
		return false, nil
	}

	reminder := models.Reminder{
		SubjectID: subjectID,
		Category:  models.CategoryWellnessTip,
		Title:     text.Title,
		Message:   text.Message,
		DueAt:     dueAt,
		Priority:  models.PriorityLow,
		CreatedAt: now,
	}
	if err := scheduler.reminders.Create(ctx, &reminder); err != nil {
		return false, fmt.Errorf("create wellness tip: %w", err)
	}
	return true, nil
}

func (scheduler *ReminderScheduler) appendIfFuture(batch []models.Reminder, subjectID uint, category string, dueDate time.Time, hour int, text ReminderText, now time.Time) []models.Reminder {
	dueAt := scheduler.dueAt(dueDate, hour)
	if !dueAt.After(now) {
		return batch
	}
	return append(batch, models.Reminder{
		SubjectID: subjectID,
		Category:  category,
		Title:     text.Title,
		Message:   text.Message,
		DueAt:     dueAt,
		Priority:  models.PriorityMedium,
		CreatedAt: now,
	})
}

func (scheduler *ReminderScheduler) dueAt(dueDate time.Time, hour int) time.Time {
	day := DateAtLocation(dueDate, scheduler.location)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, scheduler.location)
}

func defaultPeriodText(daysBefore int) ReminderText {
	plural := ""
	if daysBefore != 1 {
		plural = "s"
	}
	return ReminderText{
		Title:   "Period Starting Soon",
		Message: fmt.Sprintf("Your next period is predicted in %d day%s.", daysBefore, plural),
	}
}

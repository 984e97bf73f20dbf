package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lunara-app/lunara/internal/models"
	"github.com/lunara-app/lunara/internal/services"
)

type predictCycleRequest struct {
	LastPeriodStart    string `json:"lastPeriodStart"`
	AverageCycleLength *int   `json:"averageCycleLength"`
	PeriodDuration     *int   `json:"periodDuration"`
}

type cycleHistoryEntryPayload struct {
	StartDate  string `json:"startDate"`
	Length     *int   `json:"length"`
	RecordedAt string `json:"recordedAt"`
}

type updateCycleRequest struct {
	LastPeriodStart    string                     `json:"lastPeriodStart"`
	AverageCycleLength int                        `json:"averageCycleLength"`
	PeriodDuration     *int                       `json:"periodDuration"`
	CycleHistory       []cycleHistoryEntryPayload `json:"cycleHistory"`
	ReminderDays       []int                      `json:"reminderDays"`
}

type startPeriodRequest struct {
	StartDate string `json:"startDate"`
}

// PredictCycle is the stateless prediction endpoint: it computes dates from
// the request alone and stores nothing.
func (handler *Handler) PredictCycle(c *fiber.Ctx) error {
	request := predictCycleRequest{}
	if err := c.BodyParser(&request); err != nil {
		return messageResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if request.LastPeriodStart == "" {
		return messageResponse(c, fiber.StatusBadRequest, "lastPeriodStart is required")
	}

	cycleLength := models.DefaultCycleLength
	if request.AverageCycleLength != nil {
		cycleLength = *request.AverageCycleLength
	}
	periodDuration := models.DefaultPeriodDuration
	if request.PeriodDuration != nil {
		periodDuration = *request.PeriodDuration
	}

	lastPeriodStart, err := services.ParseISODate(request.LastPeriodStart, handler.location)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	prediction, err := services.PredictCycle(nil, cycleLength, periodDuration, lastPeriodStart)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"nextPeriodStart": services.FormatISODate(prediction.NextPeriodStart),
		"fertileWindow": []string{
			services.FormatISODate(prediction.FertileWindow.Start),
			services.FormatISODate(prediction.FertileWindow.End),
		},
		"upcomingCycles": formatISODates(prediction.UpcomingCycles),
	})
}

// UpdateCycle overwrites the subject's cycle settings and regenerates the
// reminder set from the new prediction.
func (handler *Handler) UpdateCycle(c *fiber.Ctx) error {
	request := updateCycleRequest{}
	if err := c.BodyParser(&request); err != nil {
		return messageResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if request.LastPeriodStart == "" || request.AverageCycleLength == 0 {
		return messageResponse(c, fiber.StatusBadRequest, "lastPeriodStart and averageCycleLength are required")
	}

	lastPeriodStart, err := services.ParseISODate(request.LastPeriodStart, handler.location)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	history, err := handler.parseHistoryPayload(request.CycleHistory)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	subjectID := handler.subjectID(c)
	profile, found, err := handler.profiles.FindBySubject(c.Context(), subjectID)
	if err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to load cycle profile")
	}
	if !found {
		profile = defaultProfile(subjectID)
	}

	profile.LastPeriodStart = &lastPeriodStart
	profile.AverageCycleLength = request.AverageCycleLength
	if request.PeriodDuration != nil {
		profile.PeriodDuration = *request.PeriodDuration
	}
	profile.CycleHistory = history
	if len(request.ReminderDays) > 0 {
		profile.ReminderDays = request.ReminderDays
	}

	prediction, err := services.PredictCycle(profile.CycleHistory, profile.AverageCycleLength, profile.PeriodDuration, lastPeriodStart)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	if err := handler.profiles.Upsert(c.Context(), &profile); err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to update cycle info")
	}

	created, err := handler.rescheduleReminders(c, profile, prediction)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message":          "Cycle info updated",
		"nextPeriod":       services.FormatISODate(prediction.NextPeriodStart),
		"remindersCreated": created,
	})
}

// StartPeriod records a new period start: the just-finished cycle length is
// derived from the previous start, the average is recomputed and the
// reminder set is regenerated.
func (handler *Handler) StartPeriod(c *fiber.Ctx) error {
	request := startPeriodRequest{}
	if err := c.BodyParser(&request); err != nil {
		return messageResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if request.StartDate == "" {
		return messageResponse(c, fiber.StatusBadRequest, "startDate is required")
	}

	startDate, err := services.ParseISODate(request.StartDate, handler.location)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	subjectID := handler.subjectID(c)
	profile, found, err := handler.profiles.FindBySubject(c.Context(), subjectID)
	if err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to load cycle profile")
	}
	if !found {
		profile = defaultProfile(subjectID)
	}

	result := services.RecordPeriodStart(&profile, startDate, handler.now().In(handler.location))

	prediction, err := services.PredictCycle(profile.CycleHistory, profile.AverageCycleLength, profile.PeriodDuration, startDate)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	if err := handler.profiles.Upsert(c.Context(), &profile); err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to start period")
	}

	created, err := handler.rescheduleReminders(c, profile, prediction)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	response := fiber.Map{
		"message":           "Period started successfully",
		"nextPeriod":        services.FormatISODate(prediction.NextPeriodStart),
		"newAvgCycleLength": result.NewAverage,
		"remindersCreated":  created,
	}
	if result.CycleLength != nil {
		response["cycleLength"] = *result.CycleLength
	}
	return c.JSON(response)
}

// NextPeriod reports the predicted next period with today's phase.
func (handler *Handler) NextPeriod(c *fiber.Ctx) error {
	profile, ok, err := handler.loadCompleteProfile(c)
	if err != nil || !ok {
		return err
	}

	prediction, err := services.PredictCycle(profile.CycleHistory, profile.AverageCycleLength, profile.PeriodDuration, *profile.LastPeriodStart)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	policy, ok := services.ParsePhasePolicy(c.Query("policy"))
	if !ok {
		return messageResponse(c, fiber.StatusBadRequest, "Unknown phase policy")
	}

	today := services.DateAtLocation(handler.now(), handler.location)
	daysUntilNext := services.DaysBetween(today, prediction.NextPeriodStart)

	phase, err := services.ClassifyPhase(policy, today, *profile.LastPeriodStart, profile.AverageCycleLength, profile.PeriodDuration)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"nextPeriod":    services.FormatISODate(prediction.NextPeriodStart),
		"daysUntilNext": daysUntilNext,
		"isOverdue":     daysUntilNext < 0,
		"cyclePhase":    phase.Phase,
		"dayOfCycle":    phase.DayOfCycle,
	})
}

// CycleStatus is the dashboard read: prediction, phase, history and the
// pending reminder queue in one payload.
func (handler *Handler) CycleStatus(c *fiber.Ctx) error {
	profile, ok, err := handler.loadCompleteProfile(c)
	if err != nil || !ok {
		return err
	}

	prediction, err := services.PredictCycle(profile.CycleHistory, profile.AverageCycleLength, profile.PeriodDuration, *profile.LastPeriodStart)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	policy, ok := services.ParsePhasePolicy(c.Query("policy"))
	if !ok {
		return messageResponse(c, fiber.StatusBadRequest, "Unknown phase policy")
	}

	now := handler.now().In(handler.location)
	today := services.DateAtLocation(now, handler.location)
	daysUntilNext := services.DaysBetween(today, prediction.NextPeriodStart)

	phase, err := services.ClassifyPhase(policy, today, *profile.LastPeriodStart, profile.AverageCycleLength, profile.PeriodDuration)
	if err != nil {
		return cycleErrorResponse(c, err)
	}

	upcoming, err := handler.reminders.ListPendingBySubject(c.Context(), profile.SubjectID, now, 20)
	if err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to get cycle status")
	}

	return c.JSON(fiber.Map{
		"nextPeriod":    services.FormatISODate(prediction.NextPeriodStart),
		"daysUntilNext": daysUntilNext,
		"isOverdue":     daysUntilNext < 0,
		"cyclePhase":    phase.Phase,
		"dayOfCycle":    phase.DayOfCycle,
		"fertileWindow": []string{
			services.FormatISODate(prediction.FertileWindow.Start),
			services.FormatISODate(prediction.FertileWindow.End),
		},
		"upcomingCycles":    formatISODates(prediction.UpcomingCycles),
		"upcomingReminders": upcoming,
		"cycleHistory":      profile.CycleHistory,
		"reminderDays":      reminderDaysOrDefault(profile.ReminderDays),
	})
}

func (handler *Handler) loadCompleteProfile(c *fiber.Ctx) (models.CycleProfile, bool, error) {
	profile, found, err := handler.profiles.FindBySubject(c.Context(), handler.subjectID(c))
	if err != nil {
		return models.CycleProfile{}, false, messageResponse(c, fiber.StatusInternalServerError, "Failed to load cycle profile")
	}
	if !found || profile.LastPeriodStart == nil || profile.AverageCycleLength == 0 {
		return models.CycleProfile{}, false, messageResponse(c, fiber.StatusBadRequest, "Cycle info incomplete")
	}
	return profile, true, nil
}

func (handler *Handler) rescheduleReminders(c *fiber.Ctx, profile models.CycleProfile, prediction services.CyclePrediction) (int, error) {
	window := prediction.FertileWindow
	plan := services.CycleReminderPlan{
		SubjectID:        profile.SubjectID,
		NextPeriodStart:  prediction.NextPeriodStart,
		FertileWindow:    &window,
		MidCycleDate:     prediction.MidCycleDate,
		ReminderDays:     reminderDaysOrDefault(profile.ReminderDays),
		NotificationHour: profile.NotificationHour,
		FertileStartText: services.ReminderText{
			Title:   "Fertile Window Begins",
			Message: "Your fertile window begins today. This is your most fertile time if you're trying to conceive.",
		},
		FertileEndText: services.ReminderText{
			Title:   "Ovulation Peak",
			Message: "Your fertile window ends today. Ovulation likely occurred in the past 24-48 hours.",
		},
		MidCycleText: services.ReminderText{
			Title:   "Mid-Cycle Check",
			Message: "You're halfway through your cycle. Great time to focus on nutrition and exercise.",
		},
	}
	return handler.scheduler.ScheduleCycleReminders(c.Context(), plan, handler.now().In(handler.location))
}

func (handler *Handler) parseHistoryPayload(payload []cycleHistoryEntryPayload) ([]models.CycleEntry, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	now := handler.now().In(handler.location)
	history := make([]models.CycleEntry, 0, len(payload))
	for _, item := range payload {
		startDate, err := services.ParseISODate(item.StartDate, handler.location)
		if err != nil {
			return nil, err
		}
		entry := models.CycleEntry{StartDate: startDate, Length: item.Length, RecordedAt: now}
		if item.RecordedAt != "" {
			recordedAt, err := services.ParseISODate(item.RecordedAt, handler.location)
			if err != nil {
				return nil, err
			}
			entry.RecordedAt = recordedAt
		}
		history = append(history, entry)
	}

	if len(history) > models.CycleHistoryWindow {
		history = history[len(history)-models.CycleHistoryWindow:]
	}
	return history, nil
}

func defaultProfile(subjectID uint) models.CycleProfile {
	return models.CycleProfile{
		SubjectID:          subjectID,
		AverageCycleLength: models.DefaultCycleLength,
		PeriodDuration:     models.DefaultPeriodDuration,
		ReminderDays:       models.DefaultReminderDays(),
		NotificationHour:   models.DefaultNotificationHour,
	}
}

func reminderDaysOrDefault(days []int) []int {
	if len(days) == 0 {
		return models.DefaultReminderDays()
	}
	return days
}

func formatISODates(dates []time.Time) []string {
	formatted := make([]string, 0, len(dates))
	for _, date := range dates {
		formatted = append(formatted, services.FormatISODate(date))
	}
	return formatted
}

func cycleErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidCycleParameters),
		errors.Is(err, services.ErrIncompleteCycleData),
		errors.Is(err, services.ErrScheduling):
		return messageResponse(c, fiber.StatusBadRequest, err.Error())
	default:
		return messageResponse(c, fiber.StatusInternalServerError, "Internal error")
	}
}

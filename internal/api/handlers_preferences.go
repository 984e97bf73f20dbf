package api

import "github.com/gofiber/fiber/v2"

type preferencesRequest struct {
	ReminderDays     []int `json:"reminderDays"`
	NotificationHour *int  `json:"notificationHour"`
}

func (handler *Handler) GetPreferences(c *fiber.Ctx) error {
	profile, found, err := handler.profiles.FindBySubject(c.Context(), handler.subjectID(c))
	if err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to load preferences")
	}
	if !found {
		profile = defaultProfile(handler.subjectID(c))
	}

	return c.JSON(fiber.Map{
		"reminderDays":     reminderDaysOrDefault(profile.ReminderDays),
		"notificationHour": profile.NotificationHour,
	})
}

func (handler *Handler) UpdatePreferences(c *fiber.Ctx) error {
	request := preferencesRequest{}
	if err := c.BodyParser(&request); err != nil {
		return messageResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if request.ReminderDays != nil && !validReminderDays(request.ReminderDays) {
		return messageResponse(c, fiber.StatusBadRequest, "reminderDays must be integers between 0 and 60")
	}
	if request.NotificationHour != nil && (*request.NotificationHour < 0 || *request.NotificationHour > 23) {
		return messageResponse(c, fiber.StatusBadRequest, "notificationHour must be between 0 and 23")
	}

	subjectID := handler.subjectID(c)
	profile, found, err := handler.profiles.FindBySubject(c.Context(), subjectID)
	if err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to load preferences")
	}
	if !found {
		profile = defaultProfile(subjectID)
	}

	if request.ReminderDays != nil {
		profile.ReminderDays = request.ReminderDays
	}
	if request.NotificationHour != nil {
		profile.NotificationHour = *request.NotificationHour
	}

	if err := handler.profiles.Upsert(c.Context(), &profile); err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to update preferences")
	}

	return c.JSON(fiber.Map{
		"message":          "Preferences updated",
		"reminderDays":     reminderDaysOrDefault(profile.ReminderDays),
		"notificationHour": profile.NotificationHour,
	})
}

func validReminderDays(days []int) bool {
	for _, day := range days {
		if day < 0 || day > 60 {
			return false
		}
	}
	return true
}

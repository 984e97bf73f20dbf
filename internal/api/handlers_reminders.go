package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListReminders(c *fiber.Ctx) error {
	now := handler.now().In(handler.location)
	reminders, err := handler.reminders.ListPendingBySubject(c.Context(), handler.subjectID(c), now, 20)
	if err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to fetch reminders")
	}
	return c.JSON(reminders)
}

// MarkReminderRead flips a reminder to sent on behalf of the subject, so a
// reminder acknowledged in the UI is not delivered again by the sweep.
func (handler *Handler) MarkReminderRead(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return messageResponse(c, fiber.StatusBadRequest, "Invalid reminder id")
	}

	reminder, found, err := handler.reminders.FindBySubjectAndID(c.Context(), handler.subjectID(c), id)
	if err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to mark reminder as read")
	}
	if !found {
		return messageResponse(c, fiber.StatusNotFound, "Reminder not found")
	}

	now := handler.now().In(handler.location)
	if _, err := handler.reminders.MarkSent(c.Context(), reminder.ID, now); err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to mark reminder as read")
	}

	return c.JSON(fiber.Map{"message": "Reminder marked as read"})
}

func (handler *Handler) DeleteReminder(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return messageResponse(c, fiber.StatusBadRequest, "Invalid reminder id")
	}

	deleted, err := handler.reminders.DeleteBySubjectAndID(c.Context(), handler.subjectID(c), id)
	if err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to delete reminder")
	}
	if !deleted {
		return messageResponse(c, fiber.StatusNotFound, "Reminder not found")
	}

	return c.JSON(fiber.Map{"message": "Reminder deleted"})
}

func (handler *Handler) ClearReminders(c *fiber.Ctx) error {
	if err := handler.reminders.DeleteAllBySubject(c.Context(), handler.subjectID(c)); err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to clear reminders")
	}
	return c.JSON(fiber.Map{"message": "All reminders cleared"})
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

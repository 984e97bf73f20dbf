package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// Manual dispatcher runs for operators; the scheduled sweeps cover normal
// operation. Both operations are idempotent, so re-triggering is safe.

func (handler *Handler) TriggerSweep(c *fiber.Ctx) error {
	now := handler.now().In(handler.location)
	sent, err := handler.dispatcher.SweepDue(c.Context(), now)
	if err != nil {
		log.Printf("ops: manual sweep finished with errors: %v", err)
	}
	return c.JSON(fiber.Map{
		"sent":       sent,
		"hadErrors":  err != nil,
		"executedAt": now,
	})
}

func (handler *Handler) TriggerPurge(c *fiber.Ctx) error {
	now := handler.now().In(handler.location)
	purged, err := handler.dispatcher.PurgeExpired(c.Context(), now)
	if err != nil {
		log.Printf("ops: manual purge failed: %v", err)
		return messageResponse(c, fiber.StatusInternalServerError, "Purge failed")
	}
	return c.JSON(fiber.Map{
		"purged":     purged,
		"executedAt": now,
	})
}

package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lunara-app/lunara/internal/services"
)

type Handler struct {
	profiles     services.ProfileStore
	reminders    services.ReminderStore
	insights     services.InsightStore
	scheduler    *services.ReminderScheduler
	dispatcher   *services.ReminderDispatcher
	secretKey    []byte
	opsTokenHash []byte
	location     *time.Location
	now          func() time.Time
}

type HandlerConfig struct {
	Profiles  services.ProfileStore
	Reminders services.ReminderStore
	Insights  services.InsightStore
	Scheduler *services.ReminderScheduler
	// Dispatcher backs the manual ops endpoints; the scheduled sweeps run
	// independently of the HTTP layer.
	Dispatcher *services.ReminderDispatcher
	SecretKey  []byte
	// OpsTokenHash is the bcrypt hash of the service token that guards the
	// ops routes. Empty disables them.
	OpsTokenHash []byte
	Location     *time.Location
	Now          func() time.Time
}

func NewHandler(config HandlerConfig) *Handler {
	location := config.Location
	if location == nil {
		location = time.Local
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		profiles:     config.Profiles,
		reminders:    config.Reminders,
		insights:     config.Insights,
		scheduler:    config.Scheduler,
		dispatcher:   config.Dispatcher,
		secretKey:    config.SecretKey,
		opsTokenHash: config.OpsTokenHash,
		location:     location,
		now:          now,
	}
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func messageResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

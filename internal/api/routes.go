package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	cycle := api.Group("/cycle", handler.AuthRequired)
	cycle.Post("", handler.PredictCycle)
	cycle.Post("/update", handler.UpdateCycle)
	cycle.Post("/start-period", handler.StartPeriod)
	cycle.Get("/next", handler.NextPeriod)
	cycle.Get("/status", handler.CycleStatus)

	preferences := api.Group("/preferences", handler.AuthRequired)
	preferences.Get("", handler.GetPreferences)
	preferences.Post("", handler.UpdatePreferences)

	reminders := api.Group("/reminders", handler.AuthRequired)
	reminders.Get("", handler.ListReminders)
	reminders.Post("/mark-read/:id", handler.MarkReminderRead)
	reminders.Delete("/:id", handler.DeleteReminder)
	reminders.Post("/clear-all", handler.ClearReminders)

	insights := api.Group("/insights", handler.AuthRequired)
	insights.Post("", handler.CreateInsight)
	insights.Get("/latest", handler.LatestInsight)

	ops := api.Group("/ops", handler.OpsTokenRequired)
	ops.Post("/sweep", handler.TriggerSweep)
	ops.Post("/purge", handler.TriggerPurge)
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lunara-app/lunara/internal/models"
	"github.com/lunara-app/lunara/internal/services"
)

// The insight payload comes from the language-model collaborator and is
// stored verbatim; nothing here interprets it.
type createInsightRequest struct {
	Analysis        string `json:"analysis"`
	Recommendations string `json:"recommendations"`
	RiskLevel       string `json:"riskLevel"`
	NextSteps       string `json:"nextSteps"`
	WellnessTip     *struct {
		DueDate string `json:"dueDate"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"wellnessTip"`
}

func (handler *Handler) CreateInsight(c *fiber.Ctx) error {
	request := createInsightRequest{}
	if err := c.BodyParser(&request); err != nil {
		return messageResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if request.Analysis == "" {
		return messageResponse(c, fiber.StatusBadRequest, "analysis is required")
	}

	subjectID := handler.subjectID(c)
	now := handler.now().In(handler.location)

	insight := models.Insight{
		SubjectID:       subjectID,
		Analysis:        request.Analysis,
		Recommendations: request.Recommendations,
		RiskLevel:       request.RiskLevel,
		NextSteps:       request.NextSteps,
		CreatedAt:       now,
	}
	if err := handler.insights.Create(c.Context(), &insight); err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to store insight")
	}

	tipScheduled := false
	if request.WellnessTip != nil {
		dueDate, err := services.ParseISODate(request.WellnessTip.DueDate, handler.location)
		if err != nil {
			return cycleErrorResponse(c, err)
		}

		profile, found, err := handler.profiles.FindBySubject(c.Context(), subjectID)
		if err != nil {
			return messageResponse(c, fiber.StatusInternalServerError, "Failed to load preferences")
		}
		hour := models.DefaultNotificationHour
		if found {
			hour = profile.NotificationHour
		}

		text := services.ReminderText{Title: request.WellnessTip.Title, Message: request.WellnessTip.Message}
		tipScheduled, err = handler.scheduler.ScheduleWellnessTip(c.Context(), subjectID, dueDate, hour, text, now)
		if err != nil {
			return messageResponse(c, fiber.StatusInternalServerError, "Failed to schedule wellness tip")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"insight":      insight,
		"tipScheduled": tipScheduled,
	})
}

func (handler *Handler) LatestInsight(c *fiber.Ctx) error {
	insight, found, err := handler.insights.LatestBySubject(c.Context(), handler.subjectID(c))
	if err != nil {
		return messageResponse(c, fiber.StatusInternalServerError, "Failed to load insight")
	}
	if !found {
		return messageResponse(c, fiber.StatusNotFound, "No insight recorded yet")
	}
	return c.JSON(insight)
}

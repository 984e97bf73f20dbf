package api

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lunara-app/lunara/internal/models"
)

func TestCreateAndFetchInsight(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC))
	token := mintToken(t, 1, time.Now().Add(time.Hour))

	response, _ := env.request(t, fiber.MethodGet, "/api/insights/latest", token, nil)
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 before any insight exists, got %d", response.StatusCode)
	}

	response, payload := env.request(t, fiber.MethodPost, "/api/insights", token, fiber.Map{
		"analysis":        "Cycle length has been stable over the last three months.",
		"recommendations": "Keep tracking as usual.",
		"riskLevel":       "low",
		"nextSteps":       "No action needed.",
	})
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", response.StatusCode, payload)
	}
	if payload["tipScheduled"] != false {
		t.Fatalf("expected no tip scheduled, got %v", payload["tipScheduled"])
	}

	response, payload = env.request(t, fiber.MethodGet, "/api/insights/latest", token, nil)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	if payload["analysis"] != "Cycle length has been stable over the last three months." {
		t.Fatalf("expected the stored analysis back, got %v", payload["analysis"])
	}
	if payload["risk_level"] != "low" {
		t.Fatalf("expected risk level low, got %v", payload["risk_level"])
	}
}

func TestCreateInsightRequiresAnalysis(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC))
	token := mintToken(t, 1, time.Now().Add(time.Hour))

	response, _ := env.request(t, fiber.MethodPost, "/api/insights", token, fiber.Map{
		"recommendations": "Without analysis this is rejected.",
	})
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without analysis, got %d", response.StatusCode)
	}
}

func TestCreateInsightSchedulesWellnessTip(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC))
	token := mintToken(t, 1, time.Now().Add(time.Hour))

	response, payload := env.request(t, fiber.MethodPost, "/api/insights", token, fiber.Map{
		"analysis": "Sleep quality dips in the luteal phase.",
		"wellnessTip": fiber.Map{
			"dueDate": "2024-01-10",
			"title":   "Wind-down Routine",
			"message": "Try a consistent wind-down routine this week.",
		},
	})
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", response.StatusCode, payload)
	}
	if payload["tipScheduled"] != true {
		t.Fatalf("expected the tip to be scheduled, got %v", payload["tipScheduled"])
	}

	stored := env.reminders.All()
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored tip, got %d", len(stored))
	}
	if stored[0].Category != models.CategoryWellnessTip {
		t.Fatalf("expected a wellness tip, got %s", stored[0].Category)
	}
	if stored[0].DueAt.Hour() != models.DefaultNotificationHour {
		t.Fatalf("expected the default notification hour, got %d", stored[0].DueAt.Hour())
	}
}

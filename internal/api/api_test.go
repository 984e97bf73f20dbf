package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lunara-app/lunara/internal/db"
	"github.com/lunara-app/lunara/internal/services"
	"golang.org/x/crypto/bcrypt"
)

var (
	testSecretKey = []byte("test-secret-key")
	testOpsToken  = "ops-test-token"
)

type testEnv struct {
	app         *fiber.App
	profiles    *db.MemoryProfileStore
	reminders   *db.MemoryReminderStore
	maintenance *db.MemoryMaintenanceStore
	insights    *db.MemoryInsightStore
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	profiles := db.NewMemoryProfileStore()
	reminders := db.NewMemoryReminderStore()
	maintenance := db.NewMemoryMaintenanceStore()
	insights := db.NewMemoryInsightStore()

	opsTokenHash, err := bcrypt.GenerateFromPassword([]byte(testOpsToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash ops token: %v", err)
	}

	handler := NewHandler(HandlerConfig{
		Profiles:  profiles,
		Reminders: reminders,
		Insights:  insights,
		Scheduler: services.NewReminderScheduler(reminders, time.UTC),
		Dispatcher: services.NewReminderDispatcher(
			reminders, maintenance, services.LogSender{}, 30, time.UTC,
		),
		SecretKey:    testSecretKey,
		OpsTokenHash: opsTokenHash,
		Location:     time.UTC,
		Now:          func() time.Time { return now },
	})

	app := fiber.New()
	RegisterRoutes(app, handler)

	return &testEnv{
		app:         app,
		profiles:    profiles,
		reminders:   reminders,
		maintenance: maintenance,
		insights:    insights,
	}
}

func mintToken(t *testing.T, subjectID uint, expiresAt time.Time) string {
	t.Helper()

	claims := authClaims{
		SubjectID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecretKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (env *testEnv) request(t *testing.T, method string, path string, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	payload := map[string]interface{}{}
	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(raw) > 0 {
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response body %q: %v", raw, err)
		}
		if object, ok := decoded.(map[string]interface{}); ok {
			payload = object
		}
	}
	return response, payload
}

func (env *testEnv) requestOps(t *testing.T, path string) (*http.Response, map[string]interface{}) {
	t.Helper()

	request := httptest.NewRequest(fiber.MethodPost, path, nil)
	request.Header.Set(opsTokenHeader, testOpsToken)

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}

	payload := map[string]interface{}{}
	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("decode response body %q: %v", raw, err)
		}
	}
	return response, payload
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC))

	response, _ := env.request(t, fiber.MethodGet, "/api/preferences", "", nil)
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", response.StatusCode)
	}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, authClaims{
		SubjectID:        1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("wrong-key"))
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}
	response, _ = env.request(t, fiber.MethodGet, "/api/preferences", forged, nil)
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for a forged token, got %d", response.StatusCode)
	}

	expired := mintToken(t, 1, time.Now().Add(-time.Hour))
	response, _ = env.request(t, fiber.MethodGet, "/api/preferences", expired, nil)
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for an expired token, got %d", response.StatusCode)
	}

	valid := mintToken(t, 1, time.Now().Add(time.Hour))
	response, payload := env.request(t, fiber.MethodGet, "/api/preferences", valid, nil)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d", response.StatusCode)
	}
	if payload["notificationHour"] != float64(9) {
		t.Fatalf("expected default notification hour 9, got %v", payload["notificationHour"])
	}
}

func TestAuthRequiredAcceptsCookieToken(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC))

	request := httptest.NewRequest(fiber.MethodGet, "/api/preferences", nil)
	request.AddCookie(&http.Cookie{Name: authCookieName, Value: mintToken(t, 1, time.Now().Add(time.Hour))})

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 with a cookie token, got %d", response.StatusCode)
	}
}

func TestOpsTokenRequired(t *testing.T) {
	env := newTestEnv(t, time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC))

	sendWithToken := func(token string) int {
		request := httptest.NewRequest(fiber.MethodPost, "/api/ops/sweep", nil)
		if token != "" {
			request.Header.Set(opsTokenHeader, token)
		}
		response, err := env.app.Test(request, -1)
		if err != nil {
			t.Fatalf("ops request: %v", err)
		}
		return response.StatusCode
	}

	if status := sendWithToken(""); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without ops token, got %d", status)
	}
	if status := sendWithToken("not-the-token"); status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for a wrong ops token, got %d", status)
	}
	if status := sendWithToken(testOpsToken); status != fiber.StatusOK {
		t.Fatalf("expected 200 for the configured ops token, got %d", status)
	}
}

func TestOpsRoutesDisabledWithoutHash(t *testing.T) {
	reminders := db.NewMemoryReminderStore()
	handler := NewHandler(HandlerConfig{
		Profiles:  db.NewMemoryProfileStore(),
		Reminders: reminders,
		Insights:  db.NewMemoryInsightStore(),
		Scheduler: services.NewReminderScheduler(reminders, time.UTC),
		Dispatcher: services.NewReminderDispatcher(
			reminders, db.NewMemoryMaintenanceStore(), services.LogSender{}, 30, time.UTC,
		),
		SecretKey: testSecretKey,
		Location:  time.UTC,
	})
	app := fiber.New()
	RegisterRoutes(app, handler)

	request := httptest.NewRequest(fiber.MethodPost, "/api/ops/sweep", nil)
	request.Header.Set(opsTokenHeader, testOpsToken)
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("ops request: %v", err)
	}
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 when no ops token hash is configured, got %d", response.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, time.Now())

	response, payload := env.request(t, fiber.MethodGet, "/healthz", "", nil)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	if payload["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", payload["status"])
	}
}

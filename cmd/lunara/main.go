package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lunara-app/lunara/internal/api"
	"github.com/lunara-app/lunara/internal/db"
	"github.com/lunara-app/lunara/internal/services"
)

func main() {
	location := mustLoadLocation(getEnv("TZ", "UTC"))
	time.Local = location

	secretKey := getEnv("SECRET_KEY", "change_me_in_production")
	dbPath := getEnv("DB_PATH", filepath.Join("data", "lunara.db"))
	port := getEnv("PORT", "8080")
	sweepSchedule := getEnv("SWEEP_CRON", services.DefaultSweepSchedule)
	retentionDays := getEnvInt("RETENTION_DAYS", services.DefaultRetentionDays)
	opsTokenHash := os.Getenv("OPS_TOKEN_HASH")

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	repositories := db.NewRepositories(database)

	var sender services.DeliverySender = services.LogSender{}
	if telegram, ok := services.NewTelegramSenderFromEnv(); ok {
		sender = telegram
		log.Println("delivery: telegram sender configured")
	}

	scheduler := services.NewReminderScheduler(repositories.Reminders, location)
	dispatcher := services.NewReminderDispatcher(
		repositories.Reminders,
		repositories.Maintenance,
		sender,
		retentionDays,
		location,
	)

	handler := api.NewHandler(api.HandlerConfig{
		Profiles:     repositories.Profiles,
		Reminders:    repositories.Reminders,
		Insights:     repositories.Insights,
		Scheduler:    scheduler,
		Dispatcher:   dispatcher,
		SecretKey:    []byte(secretKey),
		OpsTokenHash: []byte(opsTokenHash),
		Location:     location,
	})

	app := fiber.New(fiber.Config{
		AppName:               "Lunara",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	sweepCtx, cancelSweeps := context.WithCancel(context.Background())
	defer cancelSweeps()
	if err := dispatcher.Start(sweepCtx, sweepSchedule); err != nil {
		log.Fatalf("dispatcher init failed: %v", err)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()

		// Stop scheduling new sweeps, then wait for any in-flight sweep
		// before taking the server down.
		<-dispatcher.Stop().Done()
		cancelSweeps()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Lunara listening on http://0.0.0.0:%s (db: %s, tz: %s)", port, dbPath, location.String())
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Printf("invalid %s %q, using %d", key, raw, fallback)
		return fallback
	}
	return parsed
}

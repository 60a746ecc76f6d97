package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dkp-tracker/auth"
	"dkp-tracker/handlers"
	"dkp-tracker/middleware"
	"dkp-tracker/models"
	"dkp-tracker/services"
	"dkp-tracker/store"
	"dkp-tracker/utils"
	"dkp-tracker/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		AppName: "dkp-tracker",
	})

	// CORS for the web client. The /discord/attend route carries its own
	// fixed envelope on top of this (see middleware.DiscordCORS).
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Session-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Event{},
		&models.Player{},
		&models.Attendance{},
		&models.Adjustment{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	st := store.NewGormStore(db)

	// --- Identity provider ---
	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	authServiceToken := os.Getenv("DKP_SERVICE_TOKEN")
	if authServiceToken == "" {
		log.Fatal("DKP_SERVICE_TOKEN environment variable not set")
	}
	authClient := auth.NewClient(authServiceURL, authServiceToken)
	session := auth.NewSession(authClient)
	guard := middleware.SessionGuard(session)

	// --- Services ---
	attendanceService := services.NewAttendanceService(st)
	eventService := services.NewEventService(st)
	playerService := services.NewPlayerService(st)

	var upload services.Uploader
	exportEnabled, err := utils.InitObjectStore()
	if err != nil {
		log.Fatal("failed to initialize object store:", err)
	}
	if exportEnabled {
		upload = utils.UploadObject
	}
	exportService := services.NewExportService(st, upload)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Resolve the initial auth state in the background; the session guard
	// blocks route entry until this settles.
	session.StartWatch(ctx)

	// --- Workers ---
	reconcileInterval := envDuration("RECONCILE_INTERVAL", 10*time.Minute)
	reconcileRepair, _ := strconv.ParseBool(os.Getenv("RECONCILE_REPAIR"))
	reconciler := workers.NewReconcileWorker(st, reconcileInterval, reconcileRepair)
	reconciler.Start(ctx)

	exportService.StartExportScheduler(envDuration("EXPORT_INTERVAL", 24*time.Hour))

	// --- Routes ---
	handlers.SetupDiscordRoutes(app, attendanceService)
	handlers.SetupEventRoutes(app, eventService, attendanceService, guard)
	handlers.SetupPlayerRoutes(app, playerService, exportService, guard)

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	go func() {
		if err := app.Listen(listenAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ DKP tracker running on %s", listenAddr)
	log.Printf("✅ DKP reconcile worker running (every %s, repair=%t)", reconcileInterval, reconcileRepair)
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)
	if exportEnabled {
		log.Println("✅ Standings export enabled")
	}

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %s", name, raw, fallback)
		return fallback
	}
	return d
}

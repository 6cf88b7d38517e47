package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ibaclean-backend/config"
	"ibaclean-backend/controllers"
	"ibaclean-backend/repositories"
	"ibaclean-backend/routes"
	"ibaclean-backend/services"
	"ibaclean-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := config.NewLogger(cfg.IsRelease())
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = utils.GenerateJWTSecret()
		logger.Warn("JWT_SECRET not set, using a random secret for this process")
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}

	ctx := context.Background()

	pricing := services.NewPricingEngine(store.Catalog())
	catalog := services.NewCatalogService(store.Catalog(), pricing, logger)
	if err := catalog.Seed(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to seed catalog")
	}

	auth := services.NewAuthService(store.Customers(), cfg.JWT.Secret, cfg.JWT.Expiry(), logger)
	if err := auth.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		logger.WithError(err).Fatal("Failed to seed admin account")
	}

	messages, email := newSenders(cfg, logger)
	renderer := services.NewRenderer(cfg.Business.Name, cfg.Business.ClientURL)
	dispatcher := services.NewDispatcher(messages, email, store.Attempts(), renderer, cfg.Notify.Timeout, logger)

	bookings := services.NewBookingService(store, dispatcher, logger)
	intake := services.NewIntakeService(store, pricing, services.NewIdentityResolver(), dispatcher, logger)

	sweeper := services.NewResendSweeper(store.Attempts(), dispatcher, cfg.Resend.MaxAttempts, cfg.Resend.Lookback, logger)
	if err := sweeper.Start(cfg.Resend.Schedule); err != nil {
		logger.WithError(err).Fatal("Failed to start resend sweep")
	}
	defer sweeper.Stop()

	r := routes.SetupRouter(cfg, logger, routes.Controllers{
		Booking: &controllers.BookingController{Intake: intake, Bookings: bookings},
		Catalog: &controllers.CatalogController{Catalog: catalog},
		Admin:   &controllers.AdminController{Bookings: bookings, Catalog: catalog},
		Auth:    &controllers.AuthController{Auth: auth},
	})
	if !cfg.IsRelease() {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
}

func openStore(cfg *config.Config, logger *logrus.Logger) (repositories.Store, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using the in-memory store, data is lost on restart")
		return repositories.NewMemoryStore(), nil
	}

	db, err := config.ConnectDB(cfg.Database, cfg.IsRelease())
	if err != nil {
		return nil, err
	}
	if err := repositories.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("Connected to database")
	return repositories.NewGormStore(db), nil
}

func newSenders(cfg *config.Config, logger *logrus.Logger) (services.MessageSender, services.EmailSender) {
	var messages services.MessageSender
	if cfg.Twilio.Enabled() {
		messages = services.NewTwilioMessageSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppNumber)
	} else {
		logger.Warn("Twilio not configured, messages are logged only")
		messages = services.NewLogMessageSender(logger)
	}

	var email services.EmailSender
	if cfg.SMTP.Enabled() {
		email = services.NewSMTPEmailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		logger.Warn("SMTP not configured, emails are logged only")
		email = services.NewLogEmailSender(logger)
	}
	return messages, email
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}

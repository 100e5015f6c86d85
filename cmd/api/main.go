package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fretline/buildtrack-api/internal/application/notifier"
	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/config"
	"github.com/fretline/buildtrack-api/internal/infrastructure/database"
	"github.com/fretline/buildtrack-api/internal/infrastructure/repository"
	"github.com/fretline/buildtrack-api/internal/presentation/http/handler"
	"github.com/fretline/buildtrack-api/internal/presentation/http/routes"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/oauth"
	"github.com/fretline/buildtrack-api/pkg/sms"
	"github.com/fretline/buildtrack-api/pkg/storage"
	"github.com/fretline/buildtrack-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set up structured logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.App.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed roles, permissions, and the initial admin account
	if err := database.SeedDefaultData(db, cfg.Admin); err != nil {
		logger.Warnf("Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	factoryRepo := repository.NewFactoryRepository(db)
	runRepo := repository.NewRunRepository(db)
	guitarRepo := repository.NewGuitarRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	clientRepo := repository.NewClientRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	customShopRepo := repository.NewCustomShopRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	passwordResetRepo := repository.NewPasswordResetTokenRepository(db)
	inviteRepo := repository.NewInviteTokenRepository(db)

	// Initialize photo storage
	photoStore, err := storage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.PublicURL)
	if err != nil {
		logger.Fatalf("Failed to initialize photo storage: %v", err)
	}

	// Initialize the email composer using the stored branding when present
	branding := mailer.Branding{
		AppName:   cfg.App.Name,
		PortalURL: cfg.App.PortalURL,
	}
	if settings, err := settingsRepo.Get(context.Background()); err == nil && settings != nil {
		if settings.CompanyName != "" {
			branding.AppName = settings.CompanyName
		}
		if settings.PortalURL != "" {
			branding.PortalURL = settings.PortalURL
		}
		branding.LogoURL = settings.LogoURL
	}
	composer, err := mailer.NewComposer(branding)
	if err != nil {
		logger.Fatalf("Failed to initialize email composer: %v", err)
	}

	// Initialize the email sender. Without Mailgun credentials messages are
	// logged instead of delivered.
	var emailSender mailer.Sender
	if cfg.Email.MailgunAPIKey != "" && cfg.Email.MailgunDomain != "" {
		emailSender = mailer.NewMailgunSender(mailer.MailgunConfig{
			APIKey:    cfg.Email.MailgunAPIKey,
			Domain:    cfg.Email.MailgunDomain,
			APIBase:   cfg.Email.MailgunAPIBase,
			FromName:  cfg.Email.FromName,
			FromEmail: cfg.Email.FromEmail,
		})
	} else {
		logger.Warn("Mailgun not configured, emails will be logged only")
		emailSender = mailer.NewNoopSender(logger)
	}

	// Initialize the SMS sender the same way
	var smsSender sms.Sender
	if cfg.SMS.TwilioAccountSID != "" && cfg.SMS.TwilioAuthToken != "" {
		smsSender = sms.NewTwilioSender(sms.TwilioConfig{
			AccountSID: cfg.SMS.TwilioAccountSID,
			AuthToken:  cfg.SMS.TwilioAuthToken,
			FromNumber: cfg.SMS.TwilioFromNumber,
		})
	} else {
		smsSender = sms.NewNoopSender(logger)
	}

	// Initialize Google OAuth service
	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:         cfg.OAuth.GoogleClientID,
		ClientSecret:     cfg.OAuth.GoogleClientSecret,
		RedirectURL:      cfg.OAuth.GoogleRedirectURL,
		PortalSuccessURL: cfg.OAuth.PortalSuccessURL,
		PortalErrorURL:   cfg.OAuth.PortalErrorURL,
	})

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, passwordResetRepo, inviteRepo, outboxRepo, jwtManager, composer)
	userService := service.NewUserService(userRepo, roleRepo, inviteRepo, outboxRepo, composer)
	factoryService := service.NewFactoryService(factoryRepo)
	runService := service.NewRunService(runRepo, factoryRepo, clientRepo, settingsRepo, composer)
	guitarService := service.NewGuitarService(guitarRepo, runRepo, clientRepo, settingsRepo, composer)
	noteService := service.NewNoteService(noteRepo, guitarRepo)
	photoService := service.NewPhotoService(noteRepo, guitarRepo, photoStore)
	clientService := service.NewClientService(clientRepo, userRepo, roleRepo, runRepo, inviteRepo, outboxRepo, settingsRepo, composer)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, guitarRepo, settingsRepo, composer)
	customShopService := service.NewCustomShopService(customShopRepo, clientRepo, settingsRepo, composer, cfg.Email.StaffInbox)
	settingsService := service.NewSettingsService(settingsRepo, outboxRepo, composer)
	dashboardService := service.NewDashboardService(analyticsRepo, invoiceRepo)
	exportService := service.NewExportService(runRepo, guitarRepo)

	// Start the outbox dispatcher and the maintenance scheduler
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notifier.NewDispatcher(outboxRepo, emailSender, smsSender, logger, cfg.Outbox)
	dispatcher.Start(ctx)

	scheduler := notifier.NewScheduler(outboxRepo, idempotencyRepo, logger, cfg.Outbox.LockTTL)
	if err := scheduler.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:       handler.NewAuthHandler(authService, googleOAuthService),
		User:       handler.NewUserHandler(userService),
		Factory:    handler.NewFactoryHandler(factoryService),
		Run:        handler.NewRunHandler(runService, exportService),
		Guitar:     handler.NewGuitarHandler(guitarService),
		Note:       handler.NewNoteHandler(noteService, photoService),
		Client:     handler.NewClientHandler(clientService, guitarService, invoiceService),
		Invoice:    handler.NewInvoiceHandler(invoiceService),
		CustomShop: handler.NewCustomShopHandler(customShopService),
		Settings:   handler.NewSettingsHandler(settingsService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          logger,
		IdempotencyRepo: idempotencyRepo,
	})

	// Serve stored photos
	router.Static("/uploads", cfg.Storage.Path)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting %s server on port %s (%s)", cfg.App.Name, port, cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}

	dispatcher.Stop()
	scheduler.Stop()

	logger.Info("Server stopped")
	os.Exit(0)
}

package main

import (
	"crypto/tls"
	"log"
	"net"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/gatehouse-api/internal/config"
	"github.com/yukikurage/gatehouse-api/internal/constants"
	"github.com/yukikurage/gatehouse-api/internal/database"
	"github.com/yukikurage/gatehouse-api/internal/handlers"
	"github.com/yukikurage/gatehouse-api/internal/i18n"
	"github.com/yukikurage/gatehouse-api/internal/logging"
	"github.com/yukikurage/gatehouse-api/internal/mailer"
	"github.com/yukikurage/gatehouse-api/internal/middleware"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"github.com/yukikurage/gatehouse-api/internal/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg, logger); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(database.GetDB(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health"},
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{
				zap.String("request_id", middleware.GetRequestID(c)),
			}
		},
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Accept-Language", constants.RequestIDHeader)
	corsConfig.ExposeHeaders = append(corsConfig.ExposeHeaders, constants.RequestIDHeader, "Retry-After")
	r.Use(cors.New(corsConfig))

	// Setup session middleware with Redis
	redisAddr := net.JoinHostPort(cfg.RedisHost, cfg.RedisPort)
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logger.Fatal("failed to create redis session store", zap.Error(err))
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: 2, // Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.Use(i18n.Middleware())

	var sender mailer.Sender = mailer.LogSender{Logger: logger}
	if cfg.SMTPHostPort != "" {
		smtpCfg := mailer.SMTPConfig{
			HostPort: cfg.SMTPHostPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
		}
		if cfg.SMTPTLS {
			host, _, err := net.SplitHostPort(cfg.SMTPHostPort)
			if err != nil {
				logger.Fatal("invalid SMTP_HOST_PORT", zap.Error(err))
			}
			smtpCfg.TLS = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
		}
		sender = mailer.NewSMTPSender(smtpCfg)
	}

	now := func() time.Time { return time.Now().UTC() }
	db := database.GetDB()

	// Initialize repositories
	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	linkRepo := repository.NewInviteLinkRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize services
	settings := services.InvitationSettings{
		FrontendURL: cfg.FrontendURL,
		MailFrom:    cfg.SMTPFrom,
		TTL:         cfg.InvitationTTL,
	}
	authService := services.NewAuthService(userRepo, logger, now)
	mainOrg := services.NewMainOrganizationSelector(userRepo, orgRepo, logger)
	orgService := services.NewOrganizationService(orgRepo, mainOrg, logger, now)
	notificationService := services.NewNotificationService(notificationRepo, orgRepo, logger, now)
	admitter := services.NewAdmitter(invitationRepo, admissionRepo, mainOrg, logger, now)
	invitationService := services.NewInvitationService(services.InvitationServiceDeps{
		OrgRepo:        orgRepo,
		UserRepo:       userRepo,
		InvitationRepo: invitationRepo,
		Accounts:       authService,
		Admitter:       admitter,
		Notifications:  notificationService,
		Sender:         sender,
		Settings:       settings,
		Logger:         logger,
		Now:            now,
	})
	linkService := services.NewInviteLinkService(services.InviteLinkServiceDeps{
		OrgRepo:        orgRepo,
		LinkRepo:       linkRepo,
		InvitationRepo: invitationRepo,
		Accounts:       authService,
		Admitter:       admitter,
		Notifications:  notificationService,
		Settings:       settings,
		Logger:         logger,
		Now:            now,
	})

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:          handlers.NewAuthHandler(authService, orgService),
		Organizations: handlers.NewOrganizationHandler(orgService),
		Invitations:   handlers.NewInvitationHandler(invitationService),
		InviteLinks:   handlers.NewInviteLinkHandler(linkService, cfg.FrontendURL),
		Notifications: handlers.NewNotificationHandler(notificationService),
	}, middleware.NewIPRateLimiter(cfg.AcceptRateRequests, cfg.AcceptRateWindow))

	// Start server
	logger.Info("server starting", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"clubrun/docs"
	"clubrun/internal/auth"
	"clubrun/internal/cache"
	"clubrun/internal/config"
	"clubrun/internal/db"
	"clubrun/internal/handler"
	"clubrun/internal/mail"
	"clubrun/internal/model"
	"clubrun/internal/repository"
	"clubrun/internal/router"
	"clubrun/internal/service"
)

// @title Clubrun API
// @version 1.0
// @description Multi-tenant marathon registration API for running clubs: events, fee categories, invitation-gated signup, and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.HideBanner = true

	gormDB, err := db.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.Club{},
		&model.User{},
		&model.Invitation{},
		&model.Marathon{},
		&model.Category{},
		&model.Participation{},
	); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	mailer := mail.New(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, logger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	invitationRepo := repository.NewInvitationRepository(gormDB)
	marathonRepo := repository.NewMarathonRepository(gormDB)
	participationRepo := repository.NewParticipationRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, invitationRepo, jwtService, tokenStore, mailer, cfg.FrontendURL, logger)
	invitationService := service.NewInvitationService(invitationRepo, mailer, cfg.FrontendURL, logger)
	marathonService := service.NewMarathonService(marathonRepo, cacheClient)
	participationService := service.NewParticipationService(participationRepo, marathonRepo, cacheClient)
	userService := service.NewUserService(userRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	invitationHandler := handler.NewInvitationHandler(invitationService)
	marathonHandler := handler.NewMarathonHandler(marathonService)
	participationHandler := handler.NewParticipationHandler(participationService)
	userHandler := handler.NewUserHandler(userService)

	// Register routes
	router.Register(
		e,
		cfg,
		logger,
		jwtService,
		authHandler,
		invitationHandler,
		marathonHandler,
		participationHandler,
		userHandler,
	)

	addr := ":" + cfg.ServerPort
	logger.Info("starting server", zap.String("addr", addr))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server start", zap.Error(err))
	}
}

package router

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"clubrun/internal/auth"
	"clubrun/internal/config"
	"clubrun/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	invitationHandler *handler.InvitationHandler,
	marathonHandler *handler.MarathonHandler,
	participationHandler *handler.ParticipationHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogMethod:  true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	// Marathon listing and detail resolve a token when one is present; the
	// policy layer decides what anonymous callers may see.
	browse := api.Group("/marathon", auth.Optional(jwtService))
	browse.GET("", marathonHandler.List)
	browse.GET("/:id", marathonHandler.Get)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}), auth.LoadIdentity)

	secured.PUT("/auth/password", authHandler.UpdatePassword)

	secured.GET("/users", userHandler.ListUsers)
	secured.GET("/users/:id", userHandler.GetUser)

	secured.GET("/marathon/:id/participants", participationHandler.Participants)
	secured.POST("/marathon/:id/participate", participationHandler.Participate)
	if cfg.AllowCancellation {
		secured.DELETE("/marathon/:id/participate", participationHandler.Cancel)
	}

	// Admin routes
	admin := secured.Group("/admin", auth.RequireAdmin)
	admin.POST("/marathon", marathonHandler.Create)
	admin.PATCH("/marathon/:id", marathonHandler.Update)
	admin.DELETE("/marathon/:id", marathonHandler.Delete)
	admin.POST("/invitations", invitationHandler.CreateInvitation)
	admin.POST("/invite-members", invitationHandler.InviteMembers)
	admin.GET("/participants", participationHandler.ClubParticipants)

	e.Server.ReadHeaderTimeout = 10 * time.Second
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

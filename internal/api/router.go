package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/civicdesk/issue-tracker/docs"
	"github.com/civicdesk/issue-tracker/internal/api/handler"
	"github.com/civicdesk/issue-tracker/internal/api/middleware"
	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

// Services bundles the use-case implementations the router exposes. They are
// constructed once at startup and injected here; the router owns no state.
type Services struct {
	Issues   ports.IssueService
	Payments ports.PaymentService
	Auth     ports.AuthService
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, svcs Services, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("civicdesk"))

	// --- Handlers ---
	issueHandler := handler.NewIssueHandler(svcs.Issues)
	paymentHandler := handler.NewPaymentHandler(svcs.Payments)
	authHandler := handler.NewAuthHandler(svcs.Auth)

	authMW := middleware.Auth(jwtSecret)
	staffOnly := middleware.RBAC(domain.RoleStaff, domain.RoleAdmin)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Issue lifecycle ---
	v1 := e.Group("/v1")
	v1.POST("/issues", issueHandler.Create)
	v1.GET("/issues", issueHandler.List)
	v1.GET("/issues/:id", issueHandler.Get)
	v1.PUT("/issues/:id", issueHandler.Edit)
	v1.DELETE("/issues/:id", issueHandler.Delete)
	v1.PATCH("/issues/upvote/:id", issueHandler.Upvote)
	v1.PATCH("/issues/assign/:id", issueHandler.Assign, authMW, staffOnly)
	v1.PATCH("/issues/status/:id", issueHandler.ChangeStatus, authMW, staffOnly)

	// --- Payments ---
	v1.POST("/checkout/premium", paymentHandler.PremiumCheckout)
	v1.POST("/checkout/boost", paymentHandler.BoostCheckout)
	v1.POST("/payments/confirm", paymentHandler.Confirm)
	v1.GET("/admin/payments/summary", paymentHandler.RevenueSummary, authMW, adminOnly)

	// --- Health probes and ops endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

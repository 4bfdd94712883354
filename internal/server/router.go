package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opdev7/LendTez/internal/auth"
	"github.com/opdev7/LendTez/internal/config"
	"github.com/opdev7/LendTez/internal/http/handlers"
	"github.com/opdev7/LendTez/internal/http/middleware"
	"github.com/opdev7/LendTez/internal/version"
)

type Dependencies struct {
	Pinger          handlers.Pinger
	AdminHandler    *handlers.AdminHandler
	LoanHandler     *handlers.LoanHandler
	DealHandler     *handlers.DealHandler
	TransferHandler *handlers.TransferHandler
	WSHandler       interface{ HandleWebSocket(c *gin.Context) }
	JWTManager      *auth.JWTManager
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	})

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	// The on-chain state is public; reads need no caller identity.
	r.GET("/v1/tokens", deps.LoanHandler.ListTokens)
	r.GET("/v1/loans", deps.LoanHandler.ListLoans)
	r.GET("/v1/loans/:id", deps.LoanHandler.GetLoan)
	r.GET("/v1/deals", deps.DealHandler.ListDeals)
	r.GET("/v1/deals/:id", deps.DealHandler.GetDeal)

	if deps.WSHandler != nil {
		r.GET("/v1/ws", deps.WSHandler.HandleWebSocket)
	}

	authed := r.Group("/v1")
	authed.Use(middleware.RequireAuth(deps.JWTManager))
	authed.POST("/transfer", deps.TransferHandler.Accept)
	authed.POST("/loans", deps.LoanHandler.AddLoan)
	authed.POST("/loans/:id/cancel", deps.LoanHandler.CancelLoan)
	authed.POST("/loans/:id/fund", deps.DealHandler.FundLoan)
	authed.POST("/deals/:id/close", deps.DealHandler.CloseDeal)

	// Admin authorization lives in the contract's own access checks; the
	// middleware only establishes who is calling.
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(deps.JWTManager))
	admin.POST("/withdraw", deps.AdminHandler.Withdraw)
	admin.POST("/admins", deps.AdminHandler.AddAdmin)
	admin.DELETE("/admins/:address", deps.AdminHandler.RemoveAdmin)
	admin.POST("/delegate", deps.AdminHandler.SetDelegate)
	admin.POST("/pause", deps.AdminHandler.SetPause)
	admin.POST("/duration-bounds", deps.AdminHandler.SetDurationBounds)
	admin.POST("/tokens", deps.AdminHandler.AddToken)
	admin.POST("/tokens/:id/active", deps.AdminHandler.SetTokenActive)
	admin.GET("/journal", deps.AdminHandler.ListJournal)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}

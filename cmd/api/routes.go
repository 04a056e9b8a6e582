package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"phonebank/internal/assignment"
	"phonebank/internal/auth"
	"phonebank/internal/config"
	"phonebank/internal/httpapi"
	"phonebank/internal/leaderboard"
	"phonebank/internal/reporting"
	"phonebank/internal/resetcode"
	"phonebank/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type registerDeps struct {
	cfg  config.Config
	log  *slog.Logger
	db   *sql.DB
	rdb  *redis.Client
	auth *auth.Manager
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, deps registerDeps) {
	repo := assignment.NewPostgresRepo(deps.db)

	h := httpapi.Handlers{
		Auth: deps.auth,
		Authenticator: auth.NewAuthenticator(repo, deps.rdb,
			deps.cfg.Auth.LoginMaxAttempts, deps.cfg.Auth.LoginAttemptWindow),
		Engine: assignment.NewService(repo, assignment.Options{
			ReserveMaxRetries: deps.cfg.Engine.ReserveMaxRetries,
			EnforceCallHours:  deps.cfg.Engine.CallHoursEnforced,
		}),
		Leaderboard: leaderboard.NewService(leaderboard.NewPostgresRepo(deps.db)),
		Reporting:   reporting.NewService(reporting.NewPostgresRepo(deps.db)),
	}

	reset := httpapi.ResetHandlers{
		Directory: repo,
		Codes:     resetcode.NewStore(deps.rdb, deps.cfg.Engine.ResetCodeTTL),
		Notifier:  logNotifier{log: deps.log},
	}

	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), deps.db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := deps.rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/v1/auth/login", h.Login)
	r.POST("/v1/auth/reset/request", reset.Request)
	r.POST("/v1/auth/reset/confirm", reset.Confirm)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(deps.auth))
	{
		calls := v1.Group("/calls")
		{
			calls.POST("/reserve", h.Reserve)
			calls.POST("/complete", h.Complete)
			calls.POST("/giveup", h.GiveUp)
		}

		v1.GET("/clients/:client_id/history", h.ClientHistory)
		v1.GET("/leaderboard", h.GetLeaderboard)
		v1.GET("/reports/campaign", h.CampaignSummary)
	}
}

// logNotifier stands in for an SMS gateway: reset codes land in the
// structured log until a provider integration is configured.
type logNotifier struct {
	log *slog.Logger
}

func (n logNotifier) SendResetCode(ctx context.Context, phone, code string) error {
	n.log.Info("pin reset code issued", "phone", phone, "code", code)
	return nil
}

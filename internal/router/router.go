package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/brunomoyse/pp-service/internal/config"
	"github.com/brunomoyse/pp-service/internal/handler"
	"github.com/brunomoyse/pp-service/internal/middleware"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth          *handler.AuthHandler
	Clubs         *handler.ClubHandler
	Tournaments   *handler.TournamentHandler
	Registrations *handler.RegistrationHandler
	Seating       *handler.SeatingHandler
	Clock         *handler.ClockHandler
	Results       *handler.ResultsHandler
}

// Register wires all routes. Everything under /v1 except auth requires a
// valid access token; mutation routes additionally require the manager or
// admin role, and handlers verify club-level management where it matters.
// Hot read endpoints get a short-TTL Redis response cache.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, h *Handlers) {
	e.GET("/healthz", handler.Health)

	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	auth := e.Group("/v1/auth", rl)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	anyRole := middleware.RequireRole("player", "manager", "admin")
	staff := middleware.RequireRole("manager", "admin")
	admin := middleware.RequireRole("admin")

	v1 := e.Group("/v1", rl, middleware.JWTAuth(cfg.JWTSecret))
	v1.GET("/me", h.Auth.Me, anyRole)

	// Clubs and their physical tables.
	v1.POST("/clubs", h.Clubs.CreateClub, admin)
	v1.GET("/clubs/:id", h.Clubs.GetClub, anyRole)
	v1.POST("/clubs/:id/managers", h.Clubs.AddManager, admin)
	v1.POST("/clubs/:id/tables", h.Clubs.CreateTable, staff)
	v1.GET("/clubs/:id/tables", h.Clubs.ListTables, anyRole)
	v1.GET("/clubs/:id/tournaments", h.Tournaments.ListByClub, anyRole)

	// Tournament lifecycle.
	v1.POST("/tournaments", h.Tournaments.Create, staff)
	v1.GET("/tournaments/:id", h.Tournaments.Get, anyRole)
	v1.PUT("/tournaments/:id/status", h.Tournaments.UpdateStatus, staff)
	v1.PUT("/tournaments/:id/structure", h.Tournaments.SetStructure, staff)
	v1.GET("/tournaments/:id/structure", h.Tournaments.Structure, anyRole, cache)

	// Registration and arrival workflow.
	v1.POST("/tournaments/:id/registrations", h.Registrations.Register, anyRole)
	v1.GET("/tournaments/:id/registrations", h.Registrations.List, staff)
	v1.DELETE("/tournaments/:id/registrations", h.Registrations.Cancel, anyRole)
	v1.POST("/tournaments/:id/checkin", h.Registrations.CheckIn, staff)
	v1.POST("/tournaments/:id/self-checkin", h.Registrations.SelfCheckIn, anyRole)
	v1.POST("/tournaments/:id/no-show", h.Registrations.NoShow, staff)
	v1.POST("/tournaments/:id/eliminations", h.Registrations.Eliminate, staff)

	// Seating.
	v1.GET("/tournaments/:id/floor", h.Seating.Floor, anyRole, cache)
	v1.POST("/tournaments/:id/seats", h.Seating.AssignSeat, staff)
	v1.DELETE("/tournaments/:id/seats/:assignmentID", h.Seating.Unassign, staff)
	v1.GET("/tournaments/:id/seats/history", h.Seating.History, staff)
	v1.PUT("/tournaments/:id/stacks", h.Seating.UpdateStack, staff)
	v1.POST("/tournaments/:id/balance", h.Seating.Balance, staff)
	v1.POST("/tournaments/:id/tables", h.Seating.AssignTable, staff)
	v1.DELETE("/tournaments/:id/tables/:tableID", h.Seating.UnassignTable, staff)
	v1.GET("/tournaments/:id/unassigned", h.Seating.Unassigned, staff)

	// Clock.
	v1.POST("/tournaments/:id/clock", h.Clock.Create, staff)
	v1.GET("/tournaments/:id/clock", h.Clock.State, anyRole)
	v1.POST("/tournaments/:id/clock/start", h.Clock.Start, staff)
	v1.POST("/tournaments/:id/clock/pause", h.Clock.Pause, staff)
	v1.POST("/tournaments/:id/clock/resume", h.Clock.Resume, staff)
	v1.POST("/tournaments/:id/clock/advance", h.Clock.Advance, staff)
	v1.POST("/tournaments/:id/clock/revert", h.Clock.Revert, staff)
	v1.PUT("/tournaments/:id/clock/auto-advance", h.Clock.SetAutoAdvance, staff)
	v1.GET("/tournaments/:id/clock/events", h.Clock.Events, anyRole)

	// Money: entries, payouts, deals, results.
	v1.POST("/tournaments/:id/entries", h.Results.RecordEntry, staff)
	v1.GET("/tournaments/:id/entries", h.Results.Entries, staff)
	v1.POST("/tournaments/:id/payouts", h.Results.ComputePayouts, staff)
	v1.GET("/tournaments/:id/payouts", h.Results.Payouts, anyRole)
	v1.POST("/tournaments/:id/results", h.Results.EnterResults, staff)
	v1.GET("/tournaments/:id/results", h.Results.Standings, anyRole, cache)
	v1.GET("/tournaments/:id/deal", h.Results.Deal, anyRole)

	// Payout templates.
	v1.POST("/payout-templates", h.Results.CreateTemplate, admin)
	v1.GET("/payout-templates", h.Results.ListTemplates, staff)
	v1.GET("/payout-templates/:id", h.Results.GetTemplate, staff)
	v1.PUT("/payout-templates/:id", h.Results.UpdateTemplate, admin)
	v1.DELETE("/payout-templates/:id", h.Results.DeleteTemplate, admin)
}

package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/brunomoyse/pp-service/internal/config"
	"github.com/brunomoyse/pp-service/internal/database"
	"github.com/brunomoyse/pp-service/internal/handler"
	"github.com/brunomoyse/pp-service/internal/logging"
	"github.com/brunomoyse/pp-service/internal/queue"
	"github.com/brunomoyse/pp-service/internal/repository"
	"github.com/brunomoyse/pp-service/internal/router"
	"github.com/brunomoyse/pp-service/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Nil when Redis is down; caching and rate limiting degrade to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, caching and rate limiting disabled")
	}

	pub := queue.NewPublisher(cfg.AMQPURL, logger)
	go func() {
		if err := queue.StartOperationsConsumer(cfg.AMQPURL, logger); err != nil {
			logger.Warn("operations consumer stopped", zap.Error(err))
		}
	}()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clubs := repository.NewClubRepo(db)
	clubTables := repository.NewClubTableRepo(db)
	tournaments := repository.NewTournamentRepo(db)
	registrations := repository.NewRegistrationRepo(db)
	seats := repository.NewSeatAssignmentRepo(db)
	clocks := repository.NewClockRepo(db)
	structures := repository.NewStructureRepo(db)
	entries := repository.NewEntryRepo(db)
	payouts := repository.NewPayoutRepo(db)
	templates := repository.NewPayoutTemplateRepo(db)
	results := repository.NewResultRepo(db)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	tournamentSvc := service.NewTournamentService(db, tournaments, structures, clocks, pub, logger)
	checkinSvc := service.NewCheckInService(db, tournaments, registrations, seats, clubTables, users, pub, logger, rng)
	seatingSvc := service.NewSeatingService(db, seats, clubTables, pub, logger)
	clockSvc := service.NewClockService(db, clocks, structures, tournaments, pub, logger)
	resultsSvc := service.NewResultsService(db, entries, payouts, templates, results, tournaments, rdb, pub, logger)

	sched, err := service.StartScheduler(clockSvc, logger)
	if err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, rdb, &router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Clubs:         handler.NewClubHandler(clubs, clubTables),
		Tournaments:   handler.NewTournamentHandler(tournamentSvc, clubs),
		Registrations: handler.NewRegistrationHandler(checkinSvc, registrations, clubs),
		Seating:       handler.NewSeatingHandler(seatingSvc, seats, clubs),
		Clock:         handler.NewClockHandler(clockSvc, clubs),
		Results:       handler.NewResultsHandler(resultsSvc, templates, clubs),
	})

	addr := ":" + cfg.Port
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	logger.Info("listening on " + addr + " (env=" + cfg.Env + ")")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sched.Shutdown(); err != nil {
		logger.Warn("scheduler shutdown", zap.Error(err))
	}
	if err := e.Shutdown(ctx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
}

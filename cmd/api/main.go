package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civicworks/triage-service/internal/api/http"
	"github.com/civicworks/triage-service/internal/api/http/handlers"
	"github.com/civicworks/triage-service/internal/auth"
	"github.com/civicworks/triage-service/internal/cache"
	"github.com/civicworks/triage-service/internal/config"
	"github.com/civicworks/triage-service/internal/events"
	"github.com/civicworks/triage-service/internal/observability"
	"github.com/civicworks/triage-service/internal/persistence"
	"github.com/civicworks/triage-service/internal/repository"
	"github.com/civicworks/triage-service/internal/service"
	"github.com/civicworks/triage-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	actionRepo := repository.NewActionRepository(pool)
	directory := repository.NewEngineerDirectory(pool)

	dispatcher := events.NewInMemoryDispatcher()

	var snapshots *cache.DashboardCache
	if cfg.Cache.Enabled {
		snapshots = cache.NewDashboardCache(redis.Client, cfg.Cache.TTL(), logger)
	}

	assignmentService := service.NewAssignmentService(directory)
	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		TicketRepo: ticketRepo,
		Assignment: assignmentService,
		ActionRepo: actionRepo,
		Dispatcher: dispatcher,
		Cache:      snapshots,
	})
	statsService := service.NewStatsService(actionRepo)
	authService := service.NewAuthService(*cfg, accountRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(workflowService),
		Triage:         handlers.NewTriageHandler(workflowService, assignmentService, statsService, snapshots),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

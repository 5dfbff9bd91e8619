package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ByteBlast1/KanFlow/internal/config"
	"github.com/ByteBlast1/KanFlow/internal/database"
	"github.com/ByteBlast1/KanFlow/internal/logger"
	"github.com/ByteBlast1/KanFlow/internal/persistence"
	"github.com/ByteBlast1/KanFlow/internal/repository"
	"github.com/ByteBlast1/KanFlow/internal/seed"
	"github.com/ByteBlast1/KanFlow/internal/server"
	"github.com/ByteBlast1/KanFlow/internal/service"
)

const sweepInterval = time.Minute

// openStore picks the snapshot backend. The returned database service is nil
// unless the postgres backend is in use.
func openStore(cfg *config.Config) (repository.SnapshotStore, database.Service, server.HealthChecker, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		store := repository.NewRedisStore(repository.NewRedisClient(cfg.Storage.RedisURL))
		return store, nil, server.NewStoreHealth(config.BackendRedis, store), nil
	case config.BackendPostgres:
		dbService, err := database.New(cfg.Database, log.StandardLogger())
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewGormStore(dbService.GetDB()), dbService, dbService, nil
	default:
		store := repository.NewMemoryStore()
		return store, nil, server.NewStoreHealth(config.BackendMemory, store), nil
	}
}

func gracefulShutdown(apiServer *http.Server, store repository.SnapshotStore, dbService database.Service, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish the requests it is handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	if err := store.Close(); err != nil {
		log.WithError(err).Error("close snapshot store")
	}
	if dbService != nil {
		if err := dbService.Close(); err != nil {
			log.WithError(err).Error("close database connection pool")
		} else {
			log.Info("database connection pool closed")
		}
	}

	log.Info("server exiting")
	done <- true
}

// sweepIdle drops expired sessions and idle board views until ctx is
// cancelled.
func sweepIdle(ctx context.Context, sessions *service.SessionStore, boards service.BoardService, idle time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				log.WithField("expired", n).Debug("sessions swept")
			}
			if clients, closed := boards.EvictIdle(idle); clients > 0 || closed > 0 {
				log.WithFields(log.Fields{"clients": clients, "boards": closed}).Debug("idle board views released")
			}
		}
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)

	// 1. Snapshot store
	store, dbService, health, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	log.WithField("backend", cfg.Storage.Backend).Info("snapshot store ready")

	snapshots := persistence.NewAdapter(store, log.StandardLogger(), cfg.Storage.WriteTimeout)
	keys := persistence.Keys{BoardPrefix: cfg.Storage.BoardKeyPrefix, Dashboard: cfg.Storage.DashboardKey}
	data := seed.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Stores and services
	dashboard := service.NewDashboardStore(snapshots, keys.Dashboard, data)
	dashboard.Subscribe(service.NewDashboardPersister(snapshots, keys.Dashboard))
	dashboard.Load(ctx)

	sessions := service.NewSessionStore(cfg.SessionTTL)
	boards := service.NewBoardService(snapshots, keys, data)
	go sweepIdle(ctx, sessions, boards, cfg.ClientIdleTTL)

	auth := service.NewAuthService(repository.NewMemoryUserRepository(), sessions, cfg.BcryptCost)
	if err := service.SeedUsers(ctx, auth, data.Users()); err != nil {
		return err
	}

	// 3. HTTP server
	apiServer := server.NewServer(cfg,
		boards,
		service.NewDashboardService(dashboard),
		auth,
		health,
	)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, store, dbService, done)

	log.WithField("addr", apiServer.Addr).Info("starting server")
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	<-done
	log.Info("graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("kanflow stopped")
	}
}

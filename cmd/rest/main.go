package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messenger-be/internal/bootstrap"
	"messenger-be/internal/config"
	"messenger-be/internal/server"
	"messenger-be/internal/tracer"
	"messenger-be/pkg/database"

	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing)

	// 3. Initialize Database
	var gormDB *gorm.DB
	if cfg.App.StoreDriver != bootstrap.StoreDriverMemory {
		db, err := database.NewGormDB(cfg.Database.Connection, database.Options{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SlowThreshold:   cfg.Database.SlowThreshold,
		})
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	if err := container.StartBackground(ctx); err != nil {
		log.Printf("Background services failed to start: %v", err)
	}

	// 6. Run Server
	srv := server.New(cfg, container)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		log.Printf("Server stopped: %v", err)
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}

	// 7. Graceful Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Live sockets hold their handlers open, so drain them before waiting on the server.
	container.Drain()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	container.Close()
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("Tracer shutdown error: %v", err)
	}
	if gormDB != nil {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Serhii-Leonenko/price-analyzer/modules/alert"
	"github.com/Serhii-Leonenko/price-analyzer/modules/api"
	"github.com/Serhii-Leonenko/price-analyzer/modules/catalog"
	"github.com/Serhii-Leonenko/price-analyzer/modules/currency"
	"github.com/Serhii-Leonenko/price-analyzer/modules/pricing"
	"github.com/Serhii-Leonenko/price-analyzer/modules/scheduler"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Missing .env is fine; the environment may be set by the deployment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== Price Analyzer ===")

	db, err := openDatabase()
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Order: independent modules first, then modules with dependencies.
	app.Register(catalog.NewModule(db))
	app.Register(pricing.NewModule(db))
	app.Register(currency.NewModule(db))
	app.Register(alert.NewModule(db))
	app.Register(scheduler.NewModule())
	app.Register(api.NewModule())

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	log.Println("Application started successfully!")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
			"database": func(_ context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// openDatabase opens the shared SQLite connection all modules use. Each
// module migrates its own tables on start.
func openDatabase() (*gorm.DB, error) {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "price-analyzer.db"
	}

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %q: %w", dbPath, err)
	}
	return db, nil
}

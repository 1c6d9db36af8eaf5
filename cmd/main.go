package main

import (
	"context"
	"log"
	"net/http"

	"github.com/senyabanana/gig-service/internal/db"
	"github.com/senyabanana/gig-service/internal/handlers"
	"github.com/senyabanana/gig-service/internal/notify"
	"github.com/senyabanana/gig-service/internal/repository"
	"github.com/senyabanana/gig-service/internal/router"
	"github.com/senyabanana/gig-service/internal/router/config"
	"github.com/senyabanana/gig-service/internal/scheduler"
	"github.com/senyabanana/gig-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("error initializing logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	requestRepo := repository.NewPostgresRequestRepository(dbPool)
	responseRepo := repository.NewPostgresResponseRepository(dbPool)
	snapshotRepo := repository.NewPostgresSnapshotRepository(dbPool)

	gateway := notify.NewLogGateway(logger)
	matchingService := services.NewMatchingService(requestRepo, responseRepo, gateway, cfg.SearchWindow())
	adviceService := services.NewAdviceService(snapshotRepo)

	expiryScheduler := scheduler.NewExpiryScheduler(matchingService, logger, cfg.SweepInterval())
	matchingService.AttachScheduler(expiryScheduler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go expiryScheduler.Run(ctx)

	requestHandler := handlers.NewRequestHandler(matchingService, logger, cfg.HandlerTimeout())
	responseHandler := handlers.NewResponseHandler(matchingService, logger, cfg.HandlerTimeout())
	rateHandler := handlers.NewRateHandler(adviceService, logger, cfg.HandlerTimeout())

	routes := router.InitRoutes(requestHandler, responseHandler, rateHandler)

	logger.Infof("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}

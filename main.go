package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/d3ming/ycx25-voter/config"
	"github.com/d3ming/ycx25-voter/services"
	"github.com/d3ming/ycx25-voter/sources"
	"github.com/d3ming/ycx25-voter/storage"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database
	db, err := storage.OpenDB(cfg)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	logging.Info("Successfully connected to companies database.", zap.String("driver", cfg.DBDriver))

	logging.Info("Running database auto-migration...")
	if err := storage.Migrate(db); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Object Storage (optional)
	var bucket *storage.Bucket
	if cfg.S3Enabled() {
		s3Client, err := storage.NewS3Client(context.Background(), cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		bucket = storage.NewBucket(s3Client, cfg)
	}

	// Ingestion
	overrides, err := services.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		logging.Fatal("Failed to load overrides", zap.Error(err))
	}
	var src sources.Source = sources.FileSource{Path: cfg.CSVPath}
	if cfg.CSVS3Key != "" {
		if bucket == nil {
			logging.Fatal("CSV_S3_KEY is set but S3 is not configured")
		}
		src = sources.S3Source{Bucket: bucket, Key: cfg.CSVS3Key}
	}
	ingestor := services.NewIngestor(db, logging, overrides)
	if _, err := ingestor.Seed(context.Background(), src); err != nil {
		logging.Fatal("Ingestion failed", zap.Error(err))
	}

	// Setup Services
	companyService := services.NewCompanyService(db, logging)
	var snapshotService *services.SnapshotService
	if bucket != nil {
		snapshotService = services.NewSnapshotService(companyService, bucket, cfg.SnapshotPrefix, cfg.SnapshotKeep, logging)
	}

	// Setup Router
	router := newRouter(cfg, companyService, snapshotService, logging)

	// Setup Cron
	if cfg.SnapshotCron != "" {
		if snapshotService == nil {
			logging.Fatal("SNAPSHOT_CRON is set but S3 is not configured")
		}
		cronScheduler := cron.New()
		_, err := cronScheduler.AddFunc(cfg.SnapshotCron, func() {
			logging.Info("Running scheduled snapshot export...")
			if _, err := snapshotService.Export(context.Background()); err != nil {
				logging.Error("Cron job failed", zap.Error(err))
			}
		})
		if err != nil {
			logging.Fatal("Invalid SNAPSHOT_CRON", zap.String("schedule", cfg.SnapshotCron), zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

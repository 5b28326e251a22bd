// Command migrate-storage copies resource files from Supabase Storage to the
// configured S3-compatible bucket and points the resource items at the copies.
// Run it with STORAGE_BACKEND=s3 so the target settings are loaded.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/consultorio-web/consultorio-backend/config"
	"github.com/consultorio-web/consultorio-backend/db"
	"github.com/consultorio-web/consultorio-backend/internal/storage"
	"github.com/consultorio-web/consultorio-backend/internal/store/postgres"
	"github.com/consultorio-web/consultorio-backend/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "List files that would be copied without uploading")
	concurrency := flag.Int("concurrency", 4, "Number of parallel copies")
	sourceBase := flag.String("source-base-url", "", "Public URL prefix of the source bucket (defaults to the Supabase bucket)")
	flag.Parse()

	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Storage.Backend != config.StorageBackendS3 || !cfg.Storage.Enabled {
		log.Fatal("Target storage must be an enabled s3 backend (set STORAGE_BACKEND=s3 and the S3 credentials)")
	}
	if *sourceBase == "" {
		*sourceBase = strings.TrimRight(cfg.Supabase.URL, "/") + "/storage/v1/object/public/" + cfg.Storage.Bucket
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	m := &migrator{
		items:      postgres.NewResourceStore(pool),
		target:     storage.NewS3Store(s3Options(cfg)),
		client:     &http.Client{Timeout: time.Minute},
		sourceBase: strings.TrimRight(*sourceBase, "/"),
		log:        log,
	}

	summary, err := m.Run(ctx, *dryRun, *concurrency)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Infow("Migration summary",
		"total", summary.Total,
		"migrated", summary.Migrated,
		"errors", summary.Errors,
		"dry_run", *dryRun)
	if summary.Errors > 0 {
		_ = logger.Close()
		os.Exit(1)
	}
}

func s3Options(cfg *config.Config) storage.S3Options {
	return storage.S3Options{
		Endpoint:        cfg.Storage.S3Endpoint,
		Region:          cfg.Storage.S3Region,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.S3AccessKeyID,
		SecretAccessKey: cfg.Storage.S3SecretAccessKey,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
	}
}

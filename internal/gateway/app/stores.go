package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"intentional/internal/gateway/config"
	artifactrepo "intentional/internal/gateway/repository/artifact"
	taskrepo "intentional/internal/gateway/repository/task"
)

type gatewayStores struct {
	tasks     taskrepo.Store
	artifacts artifactrepo.Store
	close     func() error
}

// initStores picks postgres, then sqlite, then memory for tasks. Report
// copies go to S3 when it is configured and are skipped otherwise.
func initStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gatewayStores, error) {
	stores := &gatewayStores{close: func() error { return nil }}
	switch {
	case strings.TrimSpace(cfg.Store.DatabaseURL) != "":
		db, err := taskrepo.OpenPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open task store: %w", err)
		}
		stores.tasks, stores.close = db, db.Close
		log.Info("task store: postgres")
	case strings.TrimSpace(cfg.Store.SQLitePath) != "":
		db, err := taskrepo.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open task store: %w", err)
		}
		stores.tasks, stores.close = db, db.Close
		log.Info("task store: sqlite", zap.String("path", cfg.Store.SQLitePath))
	default:
		stores.tasks = taskrepo.NewMemoryStore()
		log.Info("task store: in-memory")
	}

	artifacts, err := chooseArtifactStore(cfg, log, newArtifactS3StoreFactory(cfg, log))
	if err != nil {
		_ = stores.close()
		return nil, err
	}
	stores.artifacts = artifacts
	return stores, nil
}

func newArtifactS3StoreFactory(cfg *config.Config, log *zap.Logger) func() (artifactrepo.Store, error) {
	return func() (artifactrepo.Store, error) {
		s3Cfg := artifactrepo.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		}
		s3Store, err := artifactrepo.NewS3Store(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
		}
		log.Info("artifact store: s3", zap.String("bucket", s3Cfg.Bucket), zap.String("endpoint", s3Cfg.Endpoint))
		return s3Store, nil
	}
}

// chooseArtifactStore returns nil when report copies are disabled.
func chooseArtifactStore(cfg *config.Config, log *zap.Logger, s3Factory func() (artifactrepo.Store, error)) (artifactrepo.Store, error) {
	if cfg.Artifact.CanUseS3() {
		return s3Factory()
	}
	if cfg.Artifact.Enabled {
		log.Warn("artifact store: s3 config incomplete, report copies disabled")
	}
	return nil, nil
}

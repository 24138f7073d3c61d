package main

import (
	"fmt"

	"go.uber.org/zap"

	"csoportal/backend/internal/config"
	"csoportal/backend/internal/logger"
	sqlstore "csoportal/backend/internal/storage/sql"
)

// main 对配置的数据库执行建表与自动迁移。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	if cfg.Database.Type == "" {
		log.Fatal("database.type is not configured, set CSOPORTAL_DATABASE_TYPE to mysql or postgres")
	}

	log.Info("running database migration",
		zap.String("type", cfg.Database.Type),
	)

	// NewStore 在建立连接后自动执行迁移
	store, err := sqlstore.NewStore(
		cfg.Database.Type,
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	defer store.Close()

	log.Info("database migration completed successfully")
}

package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"himakeu/models"
	"himakeu/pkg/directory"
)

// Stores bundles the two database handles. Master (Postgres) holds members
// and credentials; Ledger (MySQL) holds transactions.
type Stores struct {
	Master *gorm.DB
	Ledger *gorm.DB
}

// openStores connects both databases. Pings are disabled so the server comes
// up even when a store is unreachable; failures surface on first use and in
// /api/health.
func openStores(cfg *Config, log *zap.Logger) (*Stores, error) {
	gormCfg := func() *gorm.Config {
		return &gorm.Config{
			SkipDefaultTransaction: true,
			DisableAutomaticPing:   true,
			Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		}
	}

	master, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), gormCfg())
	if err != nil {
		return nil, err
	}
	ledgerDB, err := gorm.Open(mysql.New(mysql.Config{
		DSN: cfg.MySQL.DSN(),
		// skip the version probe so a down ledger store does not block startup
		SkipInitializeWithVersion: true,
	}), gormCfg())
	if err != nil {
		return nil, err
	}

	configurePool(master, cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns, log)
	configurePool(ledgerDB, cfg.MySQL.MaxOpenConns, cfg.MySQL.MaxIdleConns, log)

	return &Stores{Master: master, Ledger: ledgerDB}, nil
}

func configurePool(db *gorm.DB, maxOpen, maxIdle int, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("could not access sql.DB for pool limits", zap.Error(err))
		return
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Hour)
}

// migrate runs AutoMigrate per model so a failure on one table does not block
// the others. Errors are logged and ignored, matching the advisory startup
// policy: schema problems show up on first use.
func (s *Stores) migrate(log *zap.Logger) {
	masterModels := []interface{}{&models.Member{}, &models.User{}}
	for _, m := range masterModels {
		if err := s.Master.AutoMigrate(m); err != nil {
			log.Warn("master migration warning", zap.Error(err))
		}
	}
	ledgerModels := []interface{}{&models.Transaction{}, &models.TransactionDecision{}}
	for _, m := range ledgerModels {
		if err := s.Ledger.AutoMigrate(m); err != nil {
			log.Warn("ledger migration warning", zap.Error(err))
		}
	}
}

// seedAdmin creates a first admin account when none exists, so a fresh
// install is usable. Credentials come from ADMIN_USERNAME / ADMIN_PASSWORD
// (defaults admin / admin123, development only).
func seedAdmin(dir *directory.Store, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	_, err := dir.Register(ctx, directory.Registration{
		NIM:        "ADMIN",
		FullName:   "Administrator",
		Email:      "admin@himakeu.local",
		Department: "Himakeu",
		YearJoined: time.Now().Year(),
		Username:   username,
		Password:   password,
		Role:       models.RoleAdmin,
	})
	switch {
	case err == nil:
		log.Info("seeded admin account", zap.String("username", username))
	case err == directory.ErrDuplicate:
		// already seeded
	default:
		log.Warn("admin seeding skipped", zap.Error(err))
	}
}

// ensureUploadDirs creates the receipts directory under the upload base.
func ensureUploadDirs(base string, log *zap.Logger) {
	if err := os.MkdirAll(filepath.Join(base, "receipts"), 0o755); err != nil {
		log.Warn("failed to create upload dir", zap.String("base", base), zap.Error(err))
	}
}

// healthCheck pings both stores with a short timeout. Advisory only.
func (s *Stores) healthCheck(ctx context.Context) map[string]bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]bool{"postgres": false, "mysql": false}
	if sqlDB, err := s.Master.DB(); err == nil {
		status["postgres"] = sqlDB.PingContext(ctx) == nil
	}
	if sqlDB, err := s.Ledger.DB(); err == nil {
		status["mysql"] = sqlDB.PingContext(ctx) == nil
	}
	return status
}

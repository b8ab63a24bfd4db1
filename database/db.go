package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anoixa/photo-manager/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openDB 按配置的方言建立 gorm 连接并设置连接池
func openDB(cfg *config.Config) (*gorm.DB, error) {
	dialect := cfg.DBType
	if dialect == "" {
		dialect = "sqlite"
	}

	gormConfig := &gorm.Config{
		Logger:                 sqlLogger(),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	}

	var db *gorm.DB
	var err error

	switch dialect {
	case "sqlite", "sqlite3":
		path := cfg.DBFilePath
		if path == "" {
			path = "./data/photo-manager.db"
		}
		// WAL 模式，允许并发读
		db, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL"), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		log.Printf("Using SQLite database: %s", path)
	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUsername, cfg.DBPassword, cfg.DBName)
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Printf("Connected to PostgreSQL on %s:%d", cfg.DBHost, cfg.DBPort)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dialect)
	}

	tunePool(db, cfg)

	return db, nil
}

// sqlLogger 开发版本打印 SQL，发行版本静默
func sqlLogger() logger.Interface {
	level := logger.Silent
	colorful := false
	if config.CommitHash == "n/a" {
		level = logger.Info
		colorful = true
	}

	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  colorful,
		},
	)
}

func tunePool(db *gorm.DB, cfg *config.Config) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)
	}
}

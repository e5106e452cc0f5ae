package repository

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/nguyentantai21042004/speaker-flow/internal/config"
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
)

type implRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

// Open connects to MySQL and verifies the connection.
func Open(cfg config.DatabaseConfig, log logger.Logger) (Repository, error) {
	db, err := sqlx.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(db, log), nil
}

// New wraps an existing connection.
func New(db *sqlx.DB, log logger.Logger) Repository {
	return &implRepository{
		db:     db,
		logger: log,
	}
}

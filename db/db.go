package db

import (
	"context"
	"time"

	"meal-admin/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

var Pool *sqlx.DB

func Init(cfg config.DBConfig) error {
	conn, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return err
	}
	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return err
	}
	Pool = conn
	return nil
}

// SetTestDB swaps the global pool, typically for a sqlmock-backed one.
func SetTestDB(conn *sqlx.DB) {
	Pool = conn
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}

// Package db opens the MySQL financial store and bootstraps its schema:
// the company_data table keyed by (company_id, year) and the
// calculate_financial_metrics procedure that refreshes derived columns.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/finsage/finsage/internal/config"
	"github.com/finsage/finsage/internal/metadata"
)

//go:embed calculate_financial_metrics.sql
var calculateFinancialMetricsSQL string

// Open connects to MySQL and verifies the server is reachable.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	pool, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	pool.SetMaxOpenConns(16)
	pool.SetMaxIdleConns(4)
	pool.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping mysql at %s:%d: %w", cfg.MySQLHost, cfg.MySQLPort, err)
	}
	return pool, nil
}

// EnsureSchema creates company_data if absent and (re)installs the
// derived-metrics procedure.
func EnsureSchema(ctx context.Context, pool *sql.DB) error {
	if _, err := pool.ExecContext(ctx, createTableStatement()); err != nil {
		return fmt.Errorf("create company_data: %w", err)
	}
	if _, err := pool.ExecContext(ctx, "DROP PROCEDURE IF EXISTS calculate_financial_metrics"); err != nil {
		return fmt.Errorf("drop procedure: %w", err)
	}
	if _, err := pool.ExecContext(ctx, calculateFinancialMetricsSQL); err != nil {
		return fmt.Errorf("create procedure: %w", err)
	}
	return nil
}

func createTableStatement() string {
	var defs []string
	for _, col := range metadata.CanonicalColumns() {
		defs = append(defs, col+" "+columnType(col))
	}
	for _, col := range metadata.DerivedColumns {
		defs = append(defs, col+" DOUBLE")
	}
	defs = append(defs, "PRIMARY KEY (company_id, year)")

	return "CREATE TABLE IF NOT EXISTS company_data (\n    " +
		strings.Join(defs, ",\n    ") + "\n)"
}

func columnType(col string) string {
	if col == "year" {
		return "INT NOT NULL"
	}
	if col == "company_id" {
		return "VARCHAR(32) NOT NULL"
	}
	if metadata.TextColumns[col] {
		return "VARCHAR(255)"
	}
	return "DOUBLE"
}

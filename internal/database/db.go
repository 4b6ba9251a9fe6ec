package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables the repositories expect.  Statements are
// idempotent so startup can always run them.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS menu_versions (
			id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			note       VARCHAR(255) NOT NULL DEFAULT ''
		) CHARACTER SET utf8mb4`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			external_id     VARCHAR(64)  NOT NULL,
			menu_version_id BIGINT UNSIGNED NOT NULL,
			name            VARCHAR(255) NOT NULL,
			price           DECIMAL(10,2) NOT NULL,
			station         VARCHAR(64)  NOT NULL,
			unit_kind       VARCHAR(16)  NOT NULL,
			hidden          TINYINT(1)   NOT NULL DEFAULT 0,
			KEY idx_items_version (menu_version_id),
			CONSTRAINT fk_items_version FOREIGN KEY (menu_version_id)
				REFERENCES menu_versions (id) ON DELETE CASCADE
		) CHARACTER SET utf8mb4`,
		`CREATE TABLE IF NOT EXISTS stations (
			id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			slug       VARCHAR(64)  NOT NULL,
			name       VARCHAR(255) NOT NULL,
			catch_all  TINYINT(1)   NOT NULL DEFAULT 0,
			active     TINYINT(1)   NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_stations_slug (slug)
		) CHARACTER SET utf8mb4`,
		`CREATE TABLE IF NOT EXISTS correction_rules (
			rule_key          VARCHAR(255) NOT NULL PRIMARY KEY,
			raw_text          TEXT         NOT NULL,
			predicted_item_id VARCHAR(64)  NULL,
			corrected_item_id VARCHAR(64)  NOT NULL,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_rules_created (created_at)
		) CHARACTER SET utf8mb4`,
		`CREATE TABLE IF NOT EXISTS receipts (
			id           VARCHAR(36)  NOT NULL PRIMARY KEY,
			table_label  VARCHAR(64)  NOT NULL,
			people       INT          NULL,
			bread        TINYINT(1)   NOT NULL DEFAULT 0,
			lines_json   JSON         NOT NULL,
			total        DECIMAL(10,2) NOT NULL,
			has_unpriced TINYINT(1)   NOT NULL DEFAULT 0,
			opened_at    DATETIME NOT NULL,
			closed_at    DATETIME NOT NULL,
			KEY idx_receipts_table (table_label),
			KEY idx_receipts_closed (closed_at)
		) CHARACTER SET utf8mb4`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Package sqlite stores the routing table in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type Adapter struct {
	db     *sql.DB
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite config: %w", err)
	}

	db, err := sql.Open("sqlite3", config.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single writer connection avoids SQLITE_BUSY between our own statements
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		db:     db,
		config: config,
	}

	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *Adapter) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *Adapter) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS fanout_routes (
			route_id TEXT PRIMARY KEY,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS fanout_targets (
			route_id TEXT NOT NULL REFERENCES fanout_routes(route_id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			url TEXT NOT NULL,
			PRIMARY KEY (route_id, position)
		)`,
	}

	for _, query := range queries {
		if _, err := a.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) Load(ctx context.Context) (map[string][]string, error) {
	routes := make(map[string][]string)

	rows, err := a.db.QueryContext(ctx, `SELECT route_id FROM fanout_routes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes[id] = []string{}
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = a.db.QueryContext(ctx,
		`SELECT route_id, url FROM fanout_targets ORDER BY route_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, url string
		if err := rows.Scan(&id, &url); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		routes[id] = append(routes[id], url)
	}
	return routes, rows.Err()
}

// Save rewrites both tables in one transaction.
func (a *Adapter) Save(ctx context.Context, routes map[string][]string) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fanout_targets`); err != nil {
		return fmt.Errorf("failed to clear targets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM fanout_routes`); err != nil {
		return fmt.Errorf("failed to clear routes: %w", err)
	}

	routeStmt, err := tx.PrepareContext(ctx, `INSERT INTO fanout_routes (route_id) VALUES (?)`)
	if err != nil {
		return err
	}
	defer routeStmt.Close()

	targetStmt, err := tx.PrepareContext(ctx, `INSERT INTO fanout_targets (route_id, position, url) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer targetStmt.Close()

	for id, targets := range routes {
		if _, err := routeStmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to insert route %s: %w", id, err)
		}
		for position, url := range targets {
			if _, err := targetStmt.ExecContext(ctx, id, position, url); err != nil {
				return fmt.Errorf("failed to insert target for %s: %w", id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

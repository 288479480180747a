// Package postgres stores the routing table in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Adapter struct {
	pool   *pgxpool.Pool
	config *Config
}

func NewAdapter(ctx context.Context, config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL config: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(config.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		pool:   pool,
		config: config,
	}

	if err := adapter.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) Close() error {
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}

func (a *Adapter) Health(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

func (a *Adapter) migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS fanout_routes (
			route_id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS fanout_targets (
			route_id TEXT NOT NULL REFERENCES fanout_routes(route_id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			url TEXT NOT NULL,
			PRIMARY KEY (route_id, position)
		)`,
	}

	for _, query := range queries {
		if _, err := a.pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) Load(ctx context.Context) (map[string][]string, error) {
	routes := make(map[string][]string)

	ids, err := a.pool.Query(ctx, `SELECT route_id FROM fanout_routes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	routeIDs, err := pgx.CollectRows(ids, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan routes: %w", err)
	}
	for _, id := range routeIDs {
		routes[id] = []string{}
	}

	rows, err := a.pool.Query(ctx,
		`SELECT route_id, url FROM fanout_targets ORDER BY route_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	var id, url string
	_, err = pgx.ForEachRow(rows, []any{&id, &url}, func() error {
		routes[id] = append(routes[id], url)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan targets: %w", err)
	}
	return routes, nil
}

// Save rewrites both tables in one transaction, bulk loading targets with COPY.
func (a *Adapter) Save(ctx context.Context, routes map[string][]string) error {
	return pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM fanout_targets`); err != nil {
			return fmt.Errorf("failed to clear targets: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM fanout_routes`); err != nil {
			return fmt.Errorf("failed to clear routes: %w", err)
		}

		routeRows, targetRows := copyRows(routes)

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"fanout_routes"},
			[]string{"route_id"}, pgx.CopyFromRows(routeRows)); err != nil {
			return fmt.Errorf("failed to insert routes: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"fanout_targets"},
			[]string{"route_id", "position", "url"}, pgx.CopyFromRows(targetRows)); err != nil {
			return fmt.Errorf("failed to insert targets: %w", err)
		}
		return nil
	})
}

// copyRows flattens routes into COPY rows for both tables.
func copyRows(routes map[string][]string) (routeRows, targetRows [][]any) {
	for id, targets := range routes {
		routeRows = append(routeRows, []any{id})
		for position, url := range targets {
			targetRows = append(targetRows, []any{id, int32(position), url})
		}
	}
	return routeRows, targetRows
}

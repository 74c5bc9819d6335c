package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opengreens/verdant/internal/model"
)

// PostgresStore writes rows directly into Postgres using pgxpool. It targets
// the same markers and events tables the Supabase path does, for deployments
// that talk to the database without the PostgREST layer.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS markers (
	id         UUID PRIMARY KEY,
	type       TEXT NOT NULL,
	latitude   DOUBLE PRECISION NOT NULL,
	longitude  DOUBLE PRECISION NOT NULL,
	created_by UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id                   UUID PRIMARY KEY,
	marker_id            UUID NOT NULL REFERENCES markers(id),
	title                TEXT NOT NULL,
	description          TEXT,
	category             TEXT NOT NULL,
	start_time           TIMESTAMPTZ NOT NULL,
	end_time             TIMESTAMPTZ NOT NULL,
	max_participants     INT NOT NULL,
	current_participants INT NOT NULL DEFAULT 0,
	status               TEXT NOT NULL DEFAULT 'upcoming',
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// NewPostgresStore creates a store with a connection pool and runs the
// idempotent schema migration.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	if connString == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

// CreateMarker inserts a marker row.
func (s *PostgresStore) CreateMarker(ctx context.Context, marker *model.Marker) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO markers (id, type, latitude, longitude, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		marker.ID, string(marker.Type), marker.Latitude, marker.Longitude,
		marker.CreatedBy, marker.CreatedAt, marker.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create marker: %w", err)
	}
	return nil
}

// CreateEvent inserts an event row.
func (s *PostgresStore) CreateEvent(ctx context.Context, event *model.Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO events (id, marker_id, title, description, category, start_time, end_time,
		                     max_participants, current_participants, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		event.ID, event.MarkerID, event.Title, event.Description, event.Category,
		event.StartTime, event.EndTime, event.MaxParticipants, event.CurrentParticipants,
		string(event.Status), event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

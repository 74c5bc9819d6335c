package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/opengreens/verdant/internal/model"
)

// Store persists the markers and events a run produces. Every event
// references a marker at the cluster's center point, so CreateMarker is
// always called first and its failure aborts the event.
type Store interface {
	// Name identifies the backend in reports and logs.
	Name() string

	// CreateMarker inserts a map marker row.
	CreateMarker(ctx context.Context, marker *model.Marker) error

	// CreateEvent inserts an event row referencing an existing marker.
	CreateEvent(ctx context.Context, event *model.Event) error

	// Close releases backend resources.
	Close()
}

// New creates a store from the configured driver.
func New(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "supabase":
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey)

	case "postgres":
		return NewPostgresStore(ctx, cfg.DatabaseURL)

	case "dryrun", "":
		return NewDryRunStore(), nil

	default:
		return nil, fmt.Errorf("unknown store driver: %s (supported: supabase, postgres, dryrun)", cfg.Driver)
	}
}

package store

import (
	"context"
	"sync"

	"github.com/opengreens/verdant/internal/model"
)

// DryRunStore records inserts in memory without touching any backend. It is
// the default driver, used by the preview command and by tests.
type DryRunStore struct {
	mu      sync.Mutex
	markers []model.Marker
	events  []model.Event
}

// NewDryRunStore creates an empty dry-run store.
func NewDryRunStore() *DryRunStore {
	return &DryRunStore{}
}

func (s *DryRunStore) Name() string { return "dryrun" }

// CreateMarker records the marker.
func (s *DryRunStore) CreateMarker(_ context.Context, marker *model.Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, *marker)
	return nil
}

// CreateEvent records the event.
func (s *DryRunStore) CreateEvent(_ context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

// Close is a no-op.
func (s *DryRunStore) Close() {}

// Markers returns the recorded markers.
func (s *DryRunStore) Markers() []model.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Marker(nil), s.markers...)
}

// Events returns the recorded events.
func (s *DryRunStore) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Event(nil), s.events...)
}

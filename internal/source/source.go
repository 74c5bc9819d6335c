package source

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/opengreens/verdant/internal/cluster"
	"github.com/opengreens/verdant/internal/model"
)

// HTTPClient is the fetch dependency injected into API-backed sources. The
// pipeline's Fetcher satisfies it; tests use an in-memory fake.
type HTTPClient interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Source produces a batch of normalized, pre-filtered environmental issues
// from one upstream 311 data source. Fetch returns only records with valid
// coordinates and parseable open timestamps.
type Source interface {
	// Name identifies the source in reports and logs.
	Name() string

	// Table returns the categorization table matching this source's
	// vocabulary.
	Table() cluster.Table

	// Fetch retrieves and normalizes the current batch.
	Fetch(ctx context.Context) ([]model.Issue, error)
}

// Registry holds the configured sources in a fixed order.
type Registry struct {
	sources []Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a source. Registration order is processing order.
func (r *Registry) Register(s Source) {
	r.sources = append(r.sources, s)
}

// All returns the registered sources.
func (r *Registry) All() []Source {
	return r.sources
}

// Find returns the source with the given name, or nil.
func (r *Registry) Find(name string) Source {
	for _, s := range r.sources {
		if strings.EqualFold(s.Name(), name) {
			return s
		}
	}
	return nil
}

// Shared field helpers. City portals disagree on field names and on whether
// numbers arrive as strings, so the JSON sources decode into generic maps
// and pull values through these.

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// timeFormats are tried in order when parsing upstream timestamps.
var timeFormats = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	// Timestamps with sub-second precision or trailing fragments: retry on
	// the first 19 characters ("2006-01-02T15:04:05").
	if len(s) > 19 {
		for _, format := range timeFormats[2:] {
			if t, err := time.Parse(format, s[:19]); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

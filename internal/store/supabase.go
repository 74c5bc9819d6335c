package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opengreens/verdant/internal/model"
)

// SupabaseStore writes rows through the Supabase PostgREST API. The service
// role key goes in both the apikey header and the bearer token, which is how
// PostgREST expects server-side clients to authenticate.
type SupabaseStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSupabaseStore creates a store for one Supabase project.
func NewSupabaseStore(baseURL, apiKey string) (*SupabaseStore, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("supabase key is required")
	}

	return &SupabaseStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (s *SupabaseStore) Name() string { return "supabase" }

// CreateMarker inserts a marker row.
func (s *SupabaseStore) CreateMarker(ctx context.Context, marker *model.Marker) error {
	if err := s.insert(ctx, "markers", marker); err != nil {
		return fmt.Errorf("create marker: %w", err)
	}
	return nil
}

// CreateEvent inserts an event row.
func (s *SupabaseStore) CreateEvent(ctx context.Context, event *model.Event) error {
	if err := s.insert(ctx, "events", event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (s *SupabaseStore) Close() {}

func (s *SupabaseStore) insert(ctx context.Context, table string, row any) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	url := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("insert into %s: status %d: %s", table, resp.StatusCode, string(detail))
	}

	return nil
}

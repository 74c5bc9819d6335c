package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/opengreens/verdant/internal/cluster"
	"github.com/opengreens/verdant/internal/model"
)

// Open311City configures one city's Open311 v2 endpoint.
type Open311City struct {
	Name           string `yaml:"name"`
	JurisdictionID string `yaml:"jurisdiction_id"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key,omitempty"`
}

// DefaultOpen311Cities lists cities with working Open311 endpoints.
func DefaultOpen311Cities() []Open311City {
	return []Open311City{
		{Name: "Baltimore", JurisdictionID: "baltimorecity.gov", BaseURL: "http://311.baltimorecity.gov/open311/v2/"},
		{Name: "Bloomington", JurisdictionID: "bloomington.in.gov", BaseURL: "https://bloomington.in.gov/crm/open311/v2/"},
		{Name: "Brookline", JurisdictionID: "brooklinema.gov", BaseURL: "http://spot.brooklinema.gov/open311/v2/"},
		{Name: "Chicago", JurisdictionID: "chicago.gov", BaseURL: "http://311api.cityofchicago.org/open311/v2/"},
	}
}

// Open311Source fetches open service requests from a standard Open311 v2
// API. Open311 service vocabularies are loose, so environmental filtering
// uses the broad keyword list in cluster.Open311Filter.
type Open311Source struct {
	city     Open311City
	client   HTTPClient
	daysBack int
	table    cluster.Table
	now      func() time.Time
}

// NewOpen311Source creates a source for one Open311 jurisdiction.
func NewOpen311Source(city Open311City, client HTTPClient, daysBack int) *Open311Source {
	if daysBack <= 0 {
		daysBack = 14
	}
	return &Open311Source{
		city:     city,
		client:   client,
		daysBack: daysBack,
		table:    cluster.Open311Table,
		now:      time.Now,
	}
}

func (s *Open311Source) Name() string { return "open311:" + s.city.Name }

func (s *Open311Source) Table() cluster.Table { return s.table }

// Services returns the service names the jurisdiction tracks, used for
// verbose diagnostics.
func (s *Open311Source) Services(ctx context.Context) ([]string, error) {
	body, err := s.client.Get(ctx, s.endpoint("services.json", nil))
	if err != nil {
		return nil, fmt.Errorf("open311 %s: services: %w", s.city.Name, err)
	}

	var services []map[string]any
	if err := json.Unmarshal(body, &services); err != nil {
		return nil, fmt.Errorf("open311 %s: decode services: %w", s.city.Name, err)
	}

	var names []string
	for _, svc := range services {
		if name := firstString(svc, "service_name"); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Fetch retrieves open service requests in the recency window and keeps the
// environmental ones.
func (s *Open311Source) Fetch(ctx context.Context) ([]model.Issue, error) {
	end := s.now()
	start := end.AddDate(0, 0, -s.daysBack)

	params := url.Values{}
	params.Set("start_date", start.Format(time.RFC3339))
	params.Set("end_date", end.Format(time.RFC3339))
	params.Set("status", "open")

	body, err := s.client.Get(ctx, s.endpoint("requests.json", params))
	if err != nil {
		return nil, fmt.Errorf("open311 %s: requests: %w", s.city.Name, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("open311 %s: decode requests: %w", s.city.Name, err)
	}

	return s.normalize(rows), nil
}

func (s *Open311Source) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("jurisdiction_id", s.city.JurisdictionID)
	if s.city.APIKey != "" {
		params.Set("api_key", s.city.APIKey)
	}
	return strings.TrimSuffix(s.city.BaseURL, "/") + "/" + path + "?" + params.Encode()
}

func (s *Open311Source) normalize(rows []map[string]any) []model.Issue {
	var issues []model.Issue

	for _, row := range rows {
		lat, okLat := firstFloat(row, "lat")
		lng, okLng := firstFloat(row, "long", "lng")
		if !okLat || !okLng {
			continue
		}

		openedAt, ok := parseTime(firstString(row, "requested_datetime"))
		if !ok {
			continue
		}

		issue := model.Issue{
			ID:         firstString(row, "service_request_id"),
			Title:      firstString(row, "service_name"),
			Reason:     firstString(row, "description"),
			Department: firstString(row, "agency_responsible"),
			Address:    firstString(row, "address"),
			City:       s.city.Name,
			Status:     firstString(row, "status"),
			Latitude:   lat,
			Longitude:  lng,
			OpenedAt:   openedAt,
			Source:     s.Name(),
		}
		if issue.Status == "" {
			issue.Status = "open"
		}

		if !issue.HasCoordinates() {
			continue
		}
		if !s.environmental(issue) {
			continue
		}

		issues = append(issues, issue)
	}

	return issues
}

// environmental checks the broad Open311 keyword filter across service name
// and description.
func (s *Open311Source) environmental(issue model.Issue) bool {
	text := strings.ToLower(issue.Title + " " + issue.Reason)
	for _, keyword := range cluster.Open311Filter {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/opengreens/verdant/internal/cluster"
	"github.com/opengreens/verdant/internal/model"
)

// SocrataCity configures one city's Socrata SODA endpoint.
type SocrataCity struct {
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"base_url"`
	DatasetID string `yaml:"dataset_id"`
	AppToken  string `yaml:"app_token,omitempty"`
}

// DefaultSocrataCities lists the major cities with Socrata-powered 311 data.
func DefaultSocrataCities() []SocrataCity {
	return []SocrataCity{
		{Name: "New York City", BaseURL: "https://data.cityofnewyork.us/resource", DatasetID: "erm2-nwe9"},
		{Name: "Chicago", BaseURL: "https://data.cityofchicago.org/resource", DatasetID: "v6vf-nfxy"},
		{Name: "San Francisco", BaseURL: "https://data.sfgov.org/resource", DatasetID: "vw6y-z8j6"},
		{Name: "Los Angeles", BaseURL: "https://data.lacity.org/resource", DatasetID: "pvft-t768"},
	}
}

// SocrataSource fetches 311 service requests from one city's SODA endpoint.
// The query pre-filters on recency server-side; category filtering happens
// locally against the Socrata table.
type SocrataSource struct {
	city     SocrataCity
	client   HTTPClient
	daysBack int
	limit    int
	table    cluster.Table
	now      func() time.Time
}

// NewSocrataSource creates a source for one city.
func NewSocrataSource(city SocrataCity, client HTTPClient, daysBack, limit int) *SocrataSource {
	if daysBack <= 0 {
		daysBack = 14
	}
	if limit <= 0 {
		limit = 1000
	}
	return &SocrataSource{
		city:     city,
		client:   client,
		daysBack: daysBack,
		limit:    limit,
		table:    cluster.SocrataTable,
		now:      time.Now,
	}
}

func (s *SocrataSource) Name() string { return "socrata:" + s.city.Name }

func (s *SocrataSource) Table() cluster.Table { return s.table }

// Fetch queries the SODA endpoint and normalizes the response.
func (s *SocrataSource) Fetch(ctx context.Context) ([]model.Issue, error) {
	body, err := s.client.Get(ctx, s.queryURL())
	if err != nil {
		return nil, fmt.Errorf("socrata %s: %w", s.city.Name, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("socrata %s: decode: %w", s.city.Name, err)
	}

	return s.normalize(rows), nil
}

func (s *SocrataSource) queryURL() string {
	startDate := s.now().AddDate(0, 0, -s.daysBack).Format("2006-01-02T15:04:05")

	params := url.Values{}
	params.Set("$where", fmt.Sprintf("created_date >= '%s'", startDate))
	params.Set("$limit", fmt.Sprintf("%d", s.limit))
	params.Set("$order", "created_date DESC")
	if s.city.AppToken != "" {
		params.Set("$$app_token", s.city.AppToken)
	}

	return fmt.Sprintf("%s/%s.json?%s", s.city.BaseURL, s.city.DatasetID, params.Encode())
}

// normalize converts raw SODA rows into issues, tolerating the field-name
// drift between city datasets.
func (s *SocrataSource) normalize(rows []map[string]any) []model.Issue {
	var issues []model.Issue

	for _, row := range rows {
		lat, okLat := firstFloat(row, "latitude", "lat")
		lng, okLng := firstFloat(row, "longitude", "lng", "long")
		if !okLat || !okLng {
			continue
		}

		openedAt, ok := parseTime(firstString(row, "created_date", "opened_date", "requested_datetime"))
		if !ok {
			continue
		}

		issue := model.Issue{
			ID:         firstString(row, "unique_key", "service_request_number", "case_id"),
			Title:      firstString(row, "complaint_type", "service_name", "category"),
			Reason:     firstString(row, "descriptor", "service_subtype", "source"),
			Department: firstString(row, "agency", "agency_name"),
			Address:    firstString(row, "incident_address", "address"),
			City:       s.city.Name,
			Status:     firstString(row, "status"),
			Latitude:   lat,
			Longitude:  lng,
			OpenedAt:   openedAt,
			Source:     s.Name(),
		}
		if issue.Status == "" {
			issue.Status = "Open"
		}

		if closedAt, ok := parseTime(firstString(row, "closed_date", "resolved_date")); ok {
			issue.ClosedAt = closedAt
		}

		if !issue.HasCoordinates() {
			continue
		}
		if !s.table.Matches(issue) {
			continue
		}

		issues = append(issues, issue)
	}

	return issues
}

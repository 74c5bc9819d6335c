package source

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

// fakeClient serves canned bodies keyed by URL substring.
type fakeClient struct {
	bodies  map[string]string
	err     error
	lastURL string
}

func (c *fakeClient) Get(_ context.Context, rawURL string) ([]byte, error) {
	c.lastURL = rawURL
	if c.err != nil {
		return nil, c.err
	}
	for substr, body := range c.bodies {
		if strings.Contains(rawURL, substr) {
			return []byte(body), nil
		}
	}
	return nil, errors.New("no canned response for " + rawURL)
}

const socrataJSON = `[
  {"unique_key": "63001", "complaint_type": "Dirty Conditions", "descriptor": "Trash", "agency": "DSNY",
   "incident_address": "100 BROADWAY", "status": "Open", "created_date": "2025-03-27T14:12:28.000",
   "latitude": "40.7128", "longitude": "-74.0060"},
  {"unique_key": "63002", "complaint_type": "Illegal Parking", "descriptor": "Blocked Hydrant", "agency": "NYPD",
   "incident_address": "200 BROADWAY", "status": "Open", "created_date": "2025-03-27T15:00:00.000",
   "latitude": "40.7130", "longitude": "-74.0062"},
  {"unique_key": "63003", "complaint_type": "Water Quality", "descriptor": "unknown odor/taste in drinking water (QA6)", "agency": "DEP",
   "incident_address": "300 BROADWAY", "status": "Closed", "created_date": "2025-03-26T09:00:00.000",
   "closed_date": "2025-03-27T09:00:00.000", "latitude": 40.7140, "longitude": -74.0070},
  {"unique_key": "63004", "complaint_type": "Dirty Conditions", "descriptor": "Litter",
   "created_date": "2025-03-27T16:00:00.000"}
]`

func newTestSocrata(client HTTPClient) *SocrataSource {
	s := NewSocrataSource(SocrataCity{
		Name:      "New York City",
		BaseURL:   "https://data.cityofnewyork.us/resource",
		DatasetID: "erm2-nwe9",
	}, client, 14, 500)
	s.now = func() time.Time {
		return time.Date(2025, 3, 28, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestSocrataSource_Fetch(t *testing.T) {
	client := &fakeClient{bodies: map[string]string{"erm2-nwe9.json": socrataJSON}}
	s := newTestSocrata(client)

	issues, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	// 63002 is not environmental, 63004 has no coordinates.
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}

	first := issues[0]
	if first.ID != "63001" {
		t.Errorf("unexpected ID: %s", first.ID)
	}
	if first.Latitude != 40.7128 || first.Longitude != -74.0060 {
		t.Errorf("string coordinates not parsed: %f, %f", first.Latitude, first.Longitude)
	}
	if first.Source != "socrata:New York City" {
		t.Errorf("unexpected source tag: %s", first.Source)
	}

	// Numeric coordinates and closed_date on the water quality row.
	second := issues[1]
	if second.ID != "63003" {
		t.Errorf("unexpected ID: %s", second.ID)
	}
	if second.ClosedAt.IsZero() {
		t.Error("expected closed_date to be carried over")
	}
}

func TestSocrataSource_QueryURL(t *testing.T) {
	client := &fakeClient{bodies: map[string]string{"erm2-nwe9.json": "[]"}}
	s := newTestSocrata(client)

	if _, err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	u, err := url.Parse(client.lastURL)
	if err != nil {
		t.Fatalf("bad query URL: %v", err)
	}
	q := u.Query()
	if got := q.Get("$where"); got != "created_date >= '2025-03-14T12:00:00'" {
		t.Errorf("unexpected $where: %s", got)
	}
	if got := q.Get("$limit"); got != "500" {
		t.Errorf("unexpected $limit: %s", got)
	}
	if got := q.Get("$order"); got != "created_date DESC" {
		t.Errorf("unexpected $order: %s", got)
	}
	if q.Has("$$app_token") {
		t.Error("app token should be omitted when unset")
	}
}

func TestSocrataSource_AppToken(t *testing.T) {
	client := &fakeClient{bodies: map[string]string{"erm2-nwe9.json": "[]"}}
	s := newTestSocrata(client)
	s.city.AppToken = "secret-token"

	if _, err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	u, _ := url.Parse(client.lastURL)
	if got := u.Query().Get("$$app_token"); got != "secret-token" {
		t.Errorf("expected app token in query, got %q", got)
	}
}

func TestSocrataSource_FetchError(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	s := newTestSocrata(client)

	if _, err := s.Fetch(context.Background()); err == nil {
		t.Error("expected error from failing client")
	}
}

func TestSocrataSource_BadJSON(t *testing.T) {
	client := &fakeClient{bodies: map[string]string{"erm2-nwe9.json": "<html>rate limited</html>"}}
	s := newTestSocrata(client)

	if _, err := s.Fetch(context.Background()); err == nil {
		t.Error("expected decode error for non-JSON body")
	}
}

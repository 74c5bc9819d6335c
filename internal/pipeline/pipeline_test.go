package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/opengreens/verdant/internal/cluster"
	"github.com/opengreens/verdant/internal/compose"
	"github.com/opengreens/verdant/internal/model"
	"github.com/opengreens/verdant/internal/observability"
	"github.com/opengreens/verdant/internal/source"
	"github.com/opengreens/verdant/internal/store"
)

type fakeSource struct {
	name   string
	issues []model.Issue
	err    error
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Table() cluster.Table { return cluster.BostonTable }

func (s *fakeSource) Fetch(context.Context) ([]model.Issue, error) {
	return s.issues, s.err
}

// failingStore rejects every insert.
type failingStore struct{}

func (failingStore) Name() string                                  { return "failing" }
func (failingStore) CreateMarker(context.Context, *model.Marker) error { return errors.New("insert denied") }
func (failingStore) CreateEvent(context.Context, *model.Event) error   { return errors.New("insert denied") }
func (failingStore) Close()                                        {}

func testIssues() []model.Issue {
	opened := time.Date(2025, 3, 27, 14, 0, 0, 0, time.UTC)
	return []model.Issue{
		{ID: "1", Title: "Illegal Dumping", Neighborhood: "Dorchester", City: "Boston", Status: "Open",
			Latitude: 42.3601, Longitude: -71.0589, OpenedAt: opened, Source: "boston"},
		{ID: "2", Title: "Overflowing Litter Baskets", Neighborhood: "Dorchester", City: "Boston", Status: "Open",
			Latitude: 42.3611, Longitude: -71.0595, OpenedAt: opened, Source: "boston"},
		// Advocacy issue far away: its own cluster.
		{ID: "3", Title: "Air Pollution Control", Neighborhood: "Allston", City: "Boston", Status: "Open",
			Latitude: 42.3530, Longitude: -71.1300, OpenedAt: opened, Source: "boston"},
	}
}

func testPipeline(st store.Store) *Pipeline {
	cfg := model.DefaultConfig()
	cfg.RateLimit.ComposeDelay = 0
	return New(cfg, st, observability.NewMetricsForTesting())
}

func TestPipeline_ProcessSource(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2025, 3, 26, 9, 0, 0, 0, time.UTC))
	compose.SetClock(fake)
	defer compose.SetClock(nil)

	dryrun := store.NewDryRunStore()
	p := testPipeline(dryrun)

	report := p.ProcessSource(context.Background(), &fakeSource{name: "boston", issues: testIssues()})
	if report.Error != "" {
		t.Fatalf("unexpected source error: %s", report.Error)
	}
	if report.Environmental != 3 {
		t.Errorf("expected 3 environmental issues, got %d", report.Environmental)
	}
	if report.Clusters != 2 {
		t.Fatalf("expected 2 clusters, got %d", report.Clusters)
	}
	if len(report.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(report.Events))
	}

	markers := dryrun.Markers()
	events := dryrun.Events()
	if len(markers) != 2 || len(events) != 2 {
		t.Fatalf("expected 2 markers and 2 events persisted, got %d and %d", len(markers), len(events))
	}

	// First cluster: two cleanup issues, marker at their centroid.
	if markers[0].Type != model.MarkerEvent {
		t.Errorf("expected event marker, got %s", markers[0].Type)
	}
	wantLat := (42.3601 + 42.3611) / 2
	if diff := markers[0].Latitude - wantLat; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("marker latitude: got %f, want %f", markers[0].Latitude, wantLat)
	}

	first := events[0]
	if first.MarkerID != markers[0].ID {
		t.Error("event should reference its marker")
	}
	if first.Category != "cleanup" {
		t.Errorf("expected cleanup category, got %s", first.Category)
	}
	if first.MaxParticipants != 30 {
		t.Errorf("cleanup cap: got %d, want 30", first.MaxParticipants)
	}
	if first.Status != model.EventUpcoming {
		t.Errorf("expected upcoming status, got %s", first.Status)
	}
	// Scheduled for Saturday 2025-03-29 10:00, three hours.
	if first.StartTime.Weekday() != time.Saturday || first.StartTime.Hour() != 10 {
		t.Errorf("unexpected start time: %v", first.StartTime)
	}
	if first.EndTime.Sub(first.StartTime) != 3*time.Hour {
		t.Errorf("unexpected duration: %v", first.EndTime.Sub(first.StartTime))
	}

	// Second cluster is the advocacy issue.
	if events[1].Category != "advocacy" {
		t.Errorf("expected advocacy category, got %s", events[1].Category)
	}
	if events[1].MaxParticipants != 25 {
		t.Errorf("advocacy cap: got %d, want 25", events[1].MaxParticipants)
	}

	// No provider configured: template copy.
	if !strings.Contains(first.Title, "Dorchester") {
		t.Errorf("template title should carry the neighborhood: %s", first.Title)
	}
}

func TestPipeline_ProcessSource_FetchError(t *testing.T) {
	p := testPipeline(store.NewDryRunStore())

	report := p.ProcessSource(context.Background(), &fakeSource{name: "boston", err: errors.New("portal down")})
	if report.Error != "portal down" {
		t.Errorf("expected fetch error in report, got %q", report.Error)
	}
	if len(report.Events) != 0 {
		t.Error("failed source should create no events")
	}
}

func TestPipeline_ProcessSource_StoreFailureSkipsCluster(t *testing.T) {
	p := testPipeline(failingStore{})

	report := p.ProcessSource(context.Background(), &fakeSource{name: "boston", issues: testIssues()})
	if report.Error != "" {
		t.Fatalf("store failure should not fail the source: %s", report.Error)
	}
	if len(report.Events) != 0 {
		t.Errorf("expected no events, got %d", len(report.Events))
	}
	if len(report.Failures) != 2 {
		t.Errorf("expected 2 recorded failures, got %d", len(report.Failures))
	}
}

func TestPipeline_Run_ReportOrder(t *testing.T) {
	p := testPipeline(store.NewDryRunStore())

	sources := []*fakeSource{
		{name: "boston", issues: testIssues()},
		{name: "socrata:New York City"},
		{name: "open311:Baltimore", err: errors.New("timeout")},
	}

	report := p.Run(context.Background(), []source.Source{sources[0], sources[1], sources[2]})
	if len(report.Sources) != 3 {
		t.Fatalf("expected 3 source reports, got %d", len(report.Sources))
	}
	// Registration order survives concurrent completion.
	for i, want := range []string{"boston", "socrata:New York City", "open311:Baltimore"} {
		if report.Sources[i].Source != want {
			t.Errorf("source %d: got %s, want %s", i, report.Sources[i].Source, want)
		}
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("finish time precedes start time")
	}
}

func TestRenderer_Outputs(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "run.json")
	mdPath := filepath.Join(dir, "run.md")

	report := &model.RunReport{
		StartedAt:  time.Date(2025, 3, 26, 9, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 3, 26, 9, 1, 0, 0, time.UTC),
		Sources: []model.SourceReport{
			{
				Source:        "boston",
				IssuesFetched: 3,
				Environmental: 3,
				Clusters:      2,
				Events: []model.Event{
					{Title: "Dorchester Environmental Cleanup", Category: "cleanup",
						StartTime: time.Date(2025, 3, 29, 10, 0, 0, 0, time.UTC), MaxParticipants: 30},
				},
			},
			{Source: "open311:Baltimore", Error: "timeout"},
		},
	}

	r := NewRenderer()
	if err := r.RenderJSON(report, jsonPath); err != nil {
		t.Fatalf("render JSON: %v", err)
	}
	if err := r.RenderMarkdown(report, mdPath); err != nil {
		t.Fatalf("render markdown: %v", err)
	}

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read JSON output: %v", err)
	}
	if !strings.Contains(string(jsonData), `"boston"`) {
		t.Error("JSON output missing source name")
	}

	mdData, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("read Markdown output: %v", err)
	}
	md := string(mdData)
	if !strings.Contains(md, "# Scrape Run Report") {
		t.Error("Markdown output missing heading")
	}
	if !strings.Contains(md, "Dorchester Environmental Cleanup") {
		t.Error("Markdown output missing event row")
	}
	if !strings.Contains(md, "**Failed:** timeout") {
		t.Error("Markdown output missing source failure")
	}
}

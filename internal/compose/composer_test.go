package compose

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/opengreens/verdant/internal/cluster"
	"github.com/opengreens/verdant/internal/model"
)

// scriptedProvider returns canned responses in order.
type scriptedProvider struct {
	responses []string
	err       error
	prompts   []string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) IsAvailable(context.Context) bool { return true }

func (p *scriptedProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.responses) == 0 {
		return "", errors.New("out of responses")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func testGroup() cluster.Group {
	return cluster.Group{
		Category: cluster.Cleanup,
		Issues: []model.Issue{
			{ID: "1", Title: "Illegal Dumping", Neighborhood: "Dorchester", City: "Boston", Latitude: 42.36, Longitude: -71.06},
			{ID: "2", Title: "Overflowing Litter Baskets", Neighborhood: "Dorchester", City: "Boston", Latitude: 42.361, Longitude: -71.061},
		},
	}
}

func TestComposer_TwoStepGeneration(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"Neighbors will clear dumped debris and litter together.",
		"Dorchester Dumpster Dash",
	}}
	c := NewComposer(provider)

	draft := c.Compose(context.Background(), testGroup())
	if draft.Fallback {
		t.Fatal("Expected generated copy, got fallback")
	}
	if draft.Title != "Dorchester Dumpster Dash" {
		t.Errorf("Unexpected title: %s", draft.Title)
	}
	if draft.Description != "Neighbors will clear dumped debris and litter together." {
		t.Errorf("Unexpected description: %s", draft.Description)
	}

	if len(provider.prompts) != 2 {
		t.Fatalf("Expected 2 provider calls, got %d", len(provider.prompts))
	}
	if !strings.Contains(provider.prompts[0], "Illegal Dumping") {
		t.Error("Description prompt should list the cluster's issues")
	}
	if !strings.Contains(provider.prompts[0], "Dorchester") {
		t.Error("Description prompt should name the neighborhood")
	}
	if !strings.Contains(provider.prompts[1], "Neighbors will clear dumped debris") {
		t.Error("Title prompt should include the generated description")
	}
}

func TestComposer_FallbackOnProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("rate limited")}
	c := NewComposer(provider)

	draft := c.Compose(context.Background(), testGroup())
	if !draft.Fallback {
		t.Fatal("Expected fallback copy on provider error")
	}
	if draft.Title != "Dorchester Environmental Cleanup" {
		t.Errorf("Unexpected fallback title: %s", draft.Title)
	}
	if !strings.Contains(draft.Description, "2 environmental issue(s)") {
		t.Errorf("Fallback description should count issues: %s", draft.Description)
	}
	if !strings.Contains(draft.Description, "illegal dumping") {
		t.Errorf("Fallback description should mention the seed issue: %s", draft.Description)
	}
}

func TestComposer_NoProvider(t *testing.T) {
	c := NewComposer(nil)

	group := testGroup()
	group.Category = cluster.Advocacy
	draft := c.Compose(context.Background(), group)
	if !draft.Fallback {
		t.Fatal("Expected fallback with no provider")
	}
	if draft.Title != "Dorchester Environmental Action" {
		t.Errorf("Unexpected advocacy title: %s", draft.Title)
	}

	group.Category = cluster.Education
	draft = c.Compose(context.Background(), group)
	if draft.Title != "Dorchester Environmental Workshop" {
		t.Errorf("Unexpected education title: %s", draft.Title)
	}
}

func TestComposer_FallbackWithoutNeighborhood(t *testing.T) {
	c := NewComposer(nil)

	group := testGroup()
	for i := range group.Issues {
		group.Issues[i].Neighborhood = ""
	}
	draft := c.Compose(context.Background(), group)
	if !strings.HasPrefix(draft.Title, "Boston ") {
		t.Errorf("Expected city fallback in title: %s", draft.Title)
	}

	for i := range group.Issues {
		group.Issues[i].City = ""
	}
	draft = c.Compose(context.Background(), group)
	if !strings.HasPrefix(draft.Title, "Community ") {
		t.Errorf("Expected generic place label in title: %s", draft.Title)
	}
}

func TestComposer_TitleClamped(t *testing.T) {
	long := strings.Repeat("Save the Neighborhood ", 5)
	provider := &scriptedProvider{responses: []string{"A description.", long}}
	c := NewComposer(provider)

	draft := c.Compose(context.Background(), testGroup())
	if got := len([]rune(draft.Title)); got > maxTitleLen {
		t.Errorf("Title exceeds %d characters: %d", maxTitleLen, got)
	}
	if !strings.HasSuffix(draft.Title, "...") {
		t.Errorf("Clamped title should end with ellipsis: %s", draft.Title)
	}
}

func TestSchedule_NextSaturday(t *testing.T) {
	// Wednesday 2025-03-26.
	fake := clockwork.NewFakeClockAt(time.Date(2025, 3, 26, 9, 30, 0, 0, time.UTC))
	SetClock(fake)
	defer SetClock(nil)

	start, end := Schedule()
	if start.Weekday() != time.Saturday {
		t.Errorf("Expected Saturday start, got %s", start.Weekday())
	}
	if start.Day() != 29 || start.Hour() != 10 || start.Minute() != 0 {
		t.Errorf("Expected 2025-03-29 10:00, got %v", start)
	}
	if end.Sub(start) != 3*time.Hour {
		t.Errorf("Expected 3 hour duration, got %v", end.Sub(start))
	}
}

func TestSchedule_OnSaturdaySkipsToNext(t *testing.T) {
	// Saturday 2025-03-29: the run must target the following Saturday.
	fake := clockwork.NewFakeClockAt(time.Date(2025, 3, 29, 11, 0, 0, 0, time.UTC))
	SetClock(fake)
	defer SetClock(nil)

	start, _ := Schedule()
	if start.Day() != 5 || start.Month() != time.April {
		t.Errorf("Expected 2025-04-05, got %v", start)
	}
}

func TestMaxParticipants(t *testing.T) {
	if got := MaxParticipants(cluster.Cleanup); got != 30 {
		t.Errorf("Cleanup cap: got %d, want 30", got)
	}
	if got := MaxParticipants(cluster.Advocacy); got != 25 {
		t.Errorf("Advocacy cap: got %d, want 25", got)
	}
	if got := MaxParticipants(cluster.Education); got != 25 {
		t.Errorf("Education cap: got %d, want 25", got)
	}
}

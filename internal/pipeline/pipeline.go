package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/opengreens/verdant/internal/cluster"
	"github.com/opengreens/verdant/internal/compose"
	"github.com/opengreens/verdant/internal/model"
	"github.com/opengreens/verdant/internal/observability"
	"github.com/opengreens/verdant/internal/source"
	"github.com/opengreens/verdant/internal/store"
	"github.com/opengreens/verdant/internal/worker"
)

// Pipeline orchestrates the complete scrape: fetch issues per source, cluster
// them geographically, compose event copy, and persist marker and event rows.
type Pipeline struct {
	fetcher  *Fetcher
	composer *compose.Composer
	store    store.Store
	renderer *Renderer
	metrics  *observability.Metrics
	config   *model.Config
}

// New creates a pipeline with the given configuration and store. A failed
// compose provider setup downgrades to template copy instead of aborting.
func New(cfg *model.Config, st store.Store, metrics *observability.Metrics) *Pipeline {
	provider, err := compose.NewProvider(compose.ConfigFromModel(cfg.Compose))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: compose provider unavailable, using templates: %v\n", err)
		provider = nil
	}

	return &Pipeline{
		fetcher:  NewFetcher(cfg).WithMetrics(metrics),
		composer: compose.NewComposer(provider),
		store:    st,
		renderer: NewRenderer(),
		metrics:  metrics,
		config:   cfg,
	}
}

// Fetcher returns the shared HTTP client for wiring into API-backed sources.
func (p *Pipeline) Fetcher() *Fetcher {
	return p.fetcher
}

// Run processes all sources concurrently and assembles the run report.
// Source order in the report matches registration order regardless of
// completion order.
func (p *Pipeline) Run(ctx context.Context, sources []source.Source) *model.RunReport {
	report := &model.RunReport{StartedAt: time.Now().UTC()}

	batch := worker.NewBatchProcessor(p, p.config.Concurrency.Workers)
	results := batch.ProcessSources(ctx, sources)

	byName := make(map[string]*model.SourceReport, len(results))
	for _, r := range results {
		byName[r.Report.Source] = r.Report
	}
	for _, src := range sources {
		if sr, ok := byName[src.Name()]; ok {
			report.Sources = append(report.Sources, *sr)
		}
	}

	report.FinishedAt = time.Now().UTC()
	return report
}

// ProcessSource runs one source end to end. A fetch failure fails the source;
// a compose or persist failure skips that cluster and is recorded in the
// report, so one bad cluster never loses the rest of the batch.
func (p *Pipeline) ProcessSource(ctx context.Context, src source.Source) *model.SourceReport {
	report := &model.SourceReport{Source: src.Name()}

	issues, err := src.Fetch(ctx)
	if err != nil {
		report.Error = err.Error()
		if p.metrics != nil {
			p.metrics.SourceErrors.WithLabelValues(src.Name()).Inc()
		}
		return report
	}

	// Sources filter to environmental issues during normalization.
	report.IssuesFetched = len(issues)
	report.Environmental = len(issues)
	p.verbosef("%s: %d environmental issues", src.Name(), len(issues))

	table := src.Table()
	if p.metrics != nil {
		for _, issue := range issues {
			p.metrics.IssuesFetched.WithLabelValues(src.Name()).Inc()
			p.metrics.IssuesEnvironmental.WithLabelValues(src.Name(), string(table.Categorize(issue))).Inc()
		}
	}

	groups := cluster.Cluster(issues, p.config.Cluster.MaxDistanceKM, table)
	report.Clusters = len(groups)
	p.verbosef("%s: %d clusters", src.Name(), len(groups))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("aborted: %v", err))
			break
		}

		if p.metrics != nil {
			p.metrics.ClustersFormed.WithLabelValues(src.Name(), string(group.Category)).Inc()
		}

		event, err := p.createEvent(ctx, group)
		if err != nil {
			report.Failures = append(report.Failures, err.Error())
			if p.metrics != nil {
				p.metrics.StoreErrors.Inc()
			}
			continue
		}

		report.Events = append(report.Events, *event)
		if p.metrics != nil {
			p.metrics.EventsCreated.WithLabelValues(src.Name(), string(group.Category)).Inc()
		}
		p.verbosef("%s: created event %q", src.Name(), event.Title)

		// Pause between creations to stay under backend write limits.
		if delay := p.config.RateLimit.ComposeDelay; delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
	}

	return report
}

// createEvent turns one cluster into a persisted marker and event pair.
func (p *Pipeline) createEvent(ctx context.Context, group cluster.Group) (*model.Event, error) {
	start := time.Now()
	draft := p.composer.Compose(ctx, group)
	if p.metrics != nil {
		p.metrics.ComposeDuration.Observe(time.Since(start).Seconds())
		if draft.Fallback {
			p.metrics.ComposeFallbacks.Inc()
		}
	}

	lat, lng := group.Center()
	now := time.Now().UTC()

	marker := &model.Marker{
		ID:        uuid.NewString(),
		Type:      model.MarkerEvent,
		Latitude:  lat,
		Longitude: lng,
		CreatedBy: uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.store.CreateMarker(ctx, marker); err != nil {
		return nil, fmt.Errorf("marker for %q: %w", draft.Title, err)
	}

	startTime, endTime := compose.Schedule()
	event := &model.Event{
		ID:              uuid.NewString(),
		MarkerID:        marker.ID,
		Title:           draft.Title,
		Description:     draft.Description,
		Category:        string(group.Category),
		StartTime:       startTime,
		EndTime:         endTime,
		MaxParticipants: compose.MaxParticipants(group.Category),
		Status:          model.EventUpcoming,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := p.store.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("event %q: %w", draft.Title, err)
	}

	return event, nil
}

// RenderReport writes the report to the configured outputs and prints the
// run summary to stdout.
func (p *Pipeline) RenderReport(report *model.RunReport) error {
	if path := p.config.Output.JSON; path != "" {
		if err := p.renderer.RenderJSON(report, path); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.verbosef("wrote JSON: %s", path)
	}

	if path := p.config.Output.MD; path != "" {
		if err := p.renderer.RenderMarkdown(report, path); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.verbosef("wrote Markdown: %s", path)
	}

	p.renderer.RenderSummary(report)
	return nil
}

func (p *Pipeline) verbosef(format string, args ...any) {
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/opengreens/verdant/internal/model"
)

// Renderer writes run reports as JSON or Markdown and prints the terminal
// summary.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the report as indented JSON.
func (r *Renderer) RenderJSON(report *model.RunReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// RenderMarkdown writes the report as a Markdown document.
func (r *Renderer) RenderMarkdown(report *model.RunReport, path string) error {
	var b strings.Builder

	b.WriteString("# Scrape Run Report\n\n")
	fmt.Fprintf(&b, "- Started: %s\n", report.StartedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Finished: %s\n", report.FinishedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Issues processed: %d\n", report.TotalIssues())
	fmt.Fprintf(&b, "- Events created: %d\n\n", report.TotalEvents())

	for _, src := range report.Sources {
		fmt.Fprintf(&b, "## %s\n\n", src.Source)

		if src.Error != "" {
			fmt.Fprintf(&b, "**Failed:** %s\n\n", src.Error)
			continue
		}

		fmt.Fprintf(&b, "- Environmental issues: %d\n", src.Environmental)
		fmt.Fprintf(&b, "- Clusters: %d\n", src.Clusters)
		fmt.Fprintf(&b, "- Events created: %d\n\n", len(src.Events))

		if len(src.Events) > 0 {
			b.WriteString("| Event | Category | Start | Max |\n")
			b.WriteString("|-------|----------|-------|-----|\n")
			for _, ev := range src.Events {
				fmt.Fprintf(&b, "| %s | %s | %s | %d |\n",
					ev.Title, ev.Category, ev.StartTime.Format("Mon Jan 2 15:04"), ev.MaxParticipants)
			}
			b.WriteString("\n")
		}

		for _, failure := range src.Failures {
			fmt.Fprintf(&b, "- Skipped: %s\n", failure)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// RenderSummary prints the run summary to stdout.
func (r *Renderer) RenderSummary(report *model.RunReport) {
	fmt.Printf("\nScrape complete: %d issues, %d events across %d source(s)\n",
		report.TotalIssues(), report.TotalEvents(), len(report.Sources))

	for _, src := range report.Sources {
		if src.Error != "" {
			fmt.Printf("  ✗ %s: %s\n", src.Source, src.Error)
			continue
		}
		fmt.Printf("  ✓ %s: %d issues -> %d clusters -> %d events\n",
			src.Source, src.Environmental, src.Clusters, len(src.Events))
		for _, ev := range src.Events {
			fmt.Printf("      %s (%s, %s)\n", ev.Title, ev.Category, ev.StartTime.Format("Mon Jan 2 15:04"))
		}
	}
}

package model

import "time"

// RunReport summarizes one complete scraping run across all sources.
type RunReport struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []SourceReport `json:"sources"`
}

// SourceReport holds per-source counts and the events that were created.
type SourceReport struct {
	Source        string   `json:"source"`
	IssuesFetched int      `json:"issues_fetched"`
	Environmental int      `json:"environmental"`
	Clusters      int      `json:"clusters"`
	Events        []Event  `json:"events"`
	Failures      []string `json:"failures,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// TotalEvents returns the number of events created across all sources.
func (r *RunReport) TotalEvents() int {
	n := 0
	for _, s := range r.Sources {
		n += len(s.Events)
	}
	return n
}

// TotalIssues returns the number of environmental issues processed.
func (r *RunReport) TotalIssues() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Environmental
	}
	return n
}

package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/opengreens/verdant/internal/cluster"
	"github.com/opengreens/verdant/internal/model"
)

// BostonSource reads a Boston 311 CSV export. The export carries every case
// the city tracks; rows without coordinates, without a parseable open date,
// or outside the environmental categories are dropped during the read.
type BostonSource struct {
	path  string
	limit int
	table cluster.Table
}

// NewBostonSource creates a CSV-backed source for the given export file.
// limit caps the number of rows read (0 means no cap).
func NewBostonSource(path string, limit int) *BostonSource {
	return &BostonSource{
		path:  path,
		limit: limit,
		table: cluster.BostonTable,
	}
}

func (s *BostonSource) Name() string { return "boston" }

func (s *BostonSource) Table() cluster.Table { return s.table }

// Fetch reads and filters the CSV export.
func (s *BostonSource) Fetch(ctx context.Context) ([]model.Issue, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.parse(ctx, f)
}

func (s *BostonSource) parse(ctx context.Context, r io.Reader) ([]model.Issue, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var issues []model.Issue
	for rowNum := 0; s.limit <= 0 || rowNum < s.limit; rowNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip, keep reading.
			continue
		}

		lat, errLat := strconv.ParseFloat(field(row, "latitude"), 64)
		lng, errLng := strconv.ParseFloat(field(row, "longitude"), 64)
		if errLat != nil || errLng != nil {
			continue
		}

		openedAt, ok := parseTime(field(row, "open_dt"))
		if !ok {
			continue
		}

		issue := model.Issue{
			ID:           field(row, "case_enquiry_id"),
			Title:        field(row, "case_title"),
			Subject:      field(row, "subject"),
			Reason:       field(row, "reason"),
			Department:   field(row, "department"),
			Address:      field(row, "location"),
			Neighborhood: field(row, "neighborhood"),
			City:         "Boston",
			Status:       field(row, "case_status"),
			Latitude:     lat,
			Longitude:    lng,
			OpenedAt:     openedAt,
			Source:       s.Name(),
		}

		if closedAt, ok := parseTime(field(row, "closed_dt")); ok {
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

	return issues, nil
}

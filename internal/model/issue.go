package model

import "time"

// Issue is a single 311 service request normalized from one of the upstream
// open-data sources. Free-text fields are used only for keyword matching; the
// coordinate fields are guaranteed valid by the source parsers (records
// without usable coordinates never leave a parser).
type Issue struct {
	ID         string `json:"id"`                   // Source-unique identifier (case ID, service request number)
	Title      string `json:"title"`                // Case title / complaint type
	Subject    string `json:"subject,omitempty"`    // Subject or service name
	Reason     string `json:"reason,omitempty"`     // Reason / descriptor / free-text detail
	Department string `json:"department,omitempty"` // Responsible department or agency

	Address      string `json:"address,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	Status       string `json:"status,omitempty"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	OpenedAt time.Time `json:"opened_at"`
	ClosedAt time.Time `json:"closed_at,omitempty"` // Zero value means still open

	Source string `json:"source,omitempty"` // Which source produced this record (boston, socrata, open311)
}

// Text returns the concatenation of all free-text fields, used by the
// generic keyword matchers.
func (i Issue) Text() string {
	return i.Title + " " + i.Subject + " " + i.Reason + " " + i.Department
}

// HasCoordinates reports whether latitude and longitude are inside the
// valid WGS84 ranges. Parsers use this to drop unusable rows.
func (i Issue) HasCoordinates() bool {
	if i.Latitude == 0 && i.Longitude == 0 {
		return false
	}
	return i.Latitude >= -90 && i.Latitude <= 90 && i.Longitude >= -180 && i.Longitude <= 180
}

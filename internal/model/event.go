package model

import "time"

// MarkerType distinguishes map markers for reported issues from markers for
// generated community events.
type MarkerType string

const (
	MarkerIssue MarkerType = "issue"
	MarkerEvent MarkerType = "event"
)

// Marker is a map location row. Every event references exactly one marker
// placed at the cluster's center point.
type Marker struct {
	ID        string     `json:"id"`
	Type      MarkerType `json:"type"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// EventStatus tracks the lifecycle of a generated event.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Event is one community event generated from a cluster of issues.
type Event struct {
	ID          string      `json:"id"`
	MarkerID    string      `json:"marker_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`

	MaxParticipants     int         `json:"max_participants,omitempty"`
	CurrentParticipants int         `json:"current_participants"`
	Status              EventStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

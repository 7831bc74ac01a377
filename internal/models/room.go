package models

import "time"

type Room struct {
	ID           string    `json:"id"`
	RoomNumber   string    `json:"room_number"`
	Capacity     int       `json:"capacity"`
	Occupancy    int       `json:"occupancy"` // denormalized, recomputed from bed state
	GenderPolicy string    `json:"gender_policy,omitempty"`
	MonthlyRate  float64   `json:"monthly_rate"` // default for beds created without a rate
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AvailabilitySummary is the per-room bed count breakdown by status.
type AvailabilitySummary struct {
	RoomID      string                 `json:"room_id"`
	Total       int                    `json:"total"`
	Counts      map[BedStatus]int      `json:"counts"`
	Identifiers map[BedStatus][]string `json:"identifiers"`
}

package models

import "time"

// BedStatus is the lifecycle state of a physical bed.
type BedStatus string

const (
	StatusAvailable   BedStatus = "available"
	StatusOccupied    BedStatus = "occupied"
	StatusReserved    BedStatus = "reserved"
	StatusMaintenance BedStatus = "maintenance"
	StatusOutOfOrder  BedStatus = "out_of_order"
)

// Valid reports whether s is one of the known bed statuses.
func (s BedStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusReserved, StatusMaintenance, StatusOutOfOrder:
		return true
	}
	return false
}

type Bed struct {
	ID               string     `json:"id"`
	RoomID           string     `json:"room_id"`
	BedIdentifier    string     `json:"bed_identifier"` // unique across the whole system
	BedNumber        int        `json:"bed_number"`
	Status           BedStatus  `json:"status"`
	Gender           string     `json:"gender,omitempty"`
	MonthlyRate      float64    `json:"monthly_rate"`
	Description      string     `json:"description,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	MaintenanceNotes string     `json:"maintenance_notes,omitempty"`
	OccupantID       *string    `json:"occupant_id,omitempty"`
	OccupantName     string     `json:"occupant_name,omitempty"`
	OccupiedFrom     *time.Time `json:"occupied_from,omitempty"`
	LastCleanedAt    *time.Time `json:"last_cleaned_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type CreateBedRequest struct {
	RoomID        string  `json:"room_id"`
	BedIdentifier string  `json:"bed_identifier"`
	BedNumber     int     `json:"bed_number"`
	Gender        string  `json:"gender"`
	MonthlyRate   float64 `json:"monthly_rate"`
	Description   string  `json:"description"`
}

// UpdateBedRequest carries a partial field merge; nil means leave unchanged.
type UpdateBedRequest struct {
	BedNumber        *int       `json:"bed_number"`
	Status           *BedStatus `json:"status"`
	Gender           *string    `json:"gender"`
	MonthlyRate      *float64   `json:"monthly_rate"`
	Description      *string    `json:"description"`
	Notes            *string    `json:"notes"`
	MaintenanceNotes *string    `json:"maintenance_notes"`
	LastCleanedAt    *time.Time `json:"last_cleaned_at"`
}

// BedFilter narrows available-bed queries.
type BedFilter struct {
	RoomID  string
	Gender  string
	MinRate *float64
	MaxRate *float64
}

// Occupant identifies the person a bed is reserved or checked in for.
type Occupant struct {
	ID          string     `json:"occupant_id"`
	Name        string     `json:"occupant_name"`
	CheckInDate *time.Time `json:"check_in_date,omitempty"`
}

// OccupantUpdate describes how a status transition touches occupant fields.
// A nil *OccupantUpdate leaves them as they are.
type OccupantUpdate struct {
	Clear        bool
	OccupantID   *string
	OccupantName string
	OccupiedFrom *time.Time
}

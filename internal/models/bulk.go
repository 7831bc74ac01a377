package models

import "time"

// BedAssignment is one item of a bulk assign/confirm request.
type BedAssignment struct {
	BedIdentifier string     `json:"bed_identifier"`
	OccupantID    string     `json:"occupant_id"`
	OccupantName  string     `json:"occupant_name"`
	CheckInDate   *time.Time `json:"check_in_date,omitempty"`
}

// BulkFailure records why one item of a batch did not go through.
type BulkFailure struct {
	BedIdentifier string `json:"bed_identifier"`
	Reason        string `json:"reason"`
}

// BulkResult is the per-item outcome of a batch operation. One item
// failing never fails the batch; callers decide what a partial result
// means for their booking.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// SyncResult reports what a layout synchronization did to a room.
type SyncResult struct {
	RoomID      string        `json:"room_id"`
	Created     []string      `json:"created"`
	Updated     []string      `json:"updated"`
	Deactivated []string      `json:"deactivated"`
	Failed      []BulkFailure `json:"failed"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// RoomMigrationResult reports the backfill outcome for one room.
type RoomMigrationResult struct {
	RoomID  string `json:"room_id"`
	Created int    `json:"created"`
	Failed  int    `json:"failed"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

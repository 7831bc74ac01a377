package services

import (
	"context"

	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
)

// OccupancyService keeps the denormalized room occupancy count in sync
// with bed state. Recompute is a pure recount, so calling it redundantly
// is always safe.
type OccupancyService struct {
	Beds  repositories.BedRepository
	Rooms repositories.RoomRepository
}

func NewOccupancyService(beds repositories.BedRepository, rooms repositories.RoomRepository) *OccupancyService {
	return &OccupancyService{Beds: beds, Rooms: rooms}
}

// Recompute counts occupied beds for the room and writes the count onto
// the room row. Returns the new occupancy.
func (s *OccupancyService) Recompute(ctx context.Context, roomID string) (int, error) {
	counts, err := s.Beds.CountByStatus(ctx, roomID)
	if err != nil {
		return 0, err
	}
	occupied := len(counts[models.StatusOccupied])
	if err := s.Rooms.UpdateOccupancy(ctx, roomID, occupied); err != nil {
		return 0, err
	}
	return occupied, nil
}

// Summary returns per-status bed counts and identifier lists for a room.
func (s *OccupancyService) Summary(ctx context.Context, roomID string) (*models.AvailabilitySummary, error) {
	if _, err := s.Rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	counts, err := s.Beds.CountByStatus(ctx, roomID)
	if err != nil {
		return nil, err
	}

	summary := &models.AvailabilitySummary{
		RoomID:      roomID,
		Counts:      make(map[models.BedStatus]int, len(counts)),
		Identifiers: counts,
	}
	for status, identifiers := range counts {
		summary.Counts[status] = len(identifiers)
		summary.Total += len(identifiers)
	}
	return summary, nil
}

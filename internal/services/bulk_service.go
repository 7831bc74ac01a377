package services

import (
	"context"
	"log"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/cache"
	"hostel-backend/internal/metrics"
	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
)

// BulkService runs batches of per-bed operations for the booking
// workflows. Items are independent: a domain failure (missing bed, bad
// state) is recorded and the batch moves on, while a storage failure
// aborts the whole batch with nothing summarized. After a batch,
// occupancy is recomputed once per distinct room touched.
type BulkService struct {
	Beds      repositories.BedRepository
	BedSvc    *BedService
	Occupancy *OccupancyService
}

func NewBulkService(beds repositories.BedRepository, bedSvc *BedService, occupancy *OccupancyService) *BulkService {
	return &BulkService{Beds: beds, BedSvc: bedSvc, Occupancy: occupancy}
}

// ReserveBeds reserves every bed in the list that is currently available.
func (s *BulkService) ReserveBeds(ctx context.Context, identifiers []string, notes string) (*models.BulkResult, error) {
	return s.run(ctx, "reserve", identifiers, func(bed *models.Bed) error {
		_, err := s.BedSvc.Reserve(ctx, bed.ID, nil, notes)
		return err
	})
}

// ReleaseBeds releases every occupied bed in the list.
func (s *BulkService) ReleaseBeds(ctx context.Context, identifiers []string) (*models.BulkResult, error) {
	return s.run(ctx, "release", identifiers, func(bed *models.Bed) error {
		_, err := s.BedSvc.Release(ctx, bed.ID)
		return err
	})
}

// AssignOccupants checks occupants into their beds.
func (s *BulkService) AssignOccupants(ctx context.Context, assignments []models.BedAssignment) (*models.BulkResult, error) {
	return s.runAssignments(ctx, "assign", assignments, func(bed *models.Bed, a models.BedAssignment) error {
		_, err := s.BedSvc.CheckIn(ctx, bed.ID, models.Occupant{
			ID: a.OccupantID, Name: a.OccupantName, CheckInDate: a.CheckInDate,
		})
		return err
	})
}

// ConfirmBooking reserves beds for named occupants: the
// confirmed-but-not-yet-arrived state. Check-in happens later, per bed.
func (s *BulkService) ConfirmBooking(ctx context.Context, assignments []models.BedAssignment) (*models.BulkResult, error) {
	return s.runAssignments(ctx, "confirm", assignments, func(bed *models.Bed, a models.BedAssignment) error {
		_, err := s.BedSvc.Reserve(ctx, bed.ID, &models.Occupant{ID: a.OccupantID, Name: a.OccupantName}, "")
		return err
	})
}

// resolveBatch loads every named bed up front. Identifiers the registry
// does not know come back absent from the map; a storage error fails the
// batch before any item runs.
func (s *BulkService) resolveBatch(ctx context.Context, identifiers []string) (map[string]*models.Bed, error) {
	found, err := s.Beds.GetByIdentifiers(ctx, identifiers)
	if err != nil {
		return nil, err
	}
	byIdentifier := make(map[string]*models.Bed, len(found))
	for _, bed := range found {
		byIdentifier[bed.BedIdentifier] = bed
	}
	return byIdentifier, nil
}

func (s *BulkService) run(ctx context.Context, op string, identifiers []string, apply func(*models.Bed) error) (*models.BulkResult, error) {
	result := &models.BulkResult{Succeeded: []string{}, Failed: []models.BulkFailure{}}
	rooms := make(map[string]bool)

	beds, err := s.resolveBatch(ctx, identifiers)
	if err != nil {
		return nil, err
	}

	for _, identifier := range identifiers {
		bed, ok := beds[identifier]
		if !ok {
			result.Failed = append(result.Failed, models.BulkFailure{BedIdentifier: identifier, Reason: "not found"})
			metrics.BulkItemsTotal.WithLabelValues(op, "failed").Inc()
			continue
		}
		if err := apply(bed); err != nil {
			if apperrors.KindOf(err) == apperrors.KindInternal {
				return nil, err
			}
			result.Failed = append(result.Failed, models.BulkFailure{BedIdentifier: identifier, Reason: failureReason(op, err)})
			metrics.BulkItemsTotal.WithLabelValues(op, "failed").Inc()
			continue
		}
		result.Succeeded = append(result.Succeeded, identifier)
		rooms[bed.RoomID] = true
		metrics.BulkItemsTotal.WithLabelValues(op, "ok").Inc()
	}

	s.recomputeRooms(ctx, rooms)
	return result, nil
}

func (s *BulkService) runAssignments(ctx context.Context, op string, assignments []models.BedAssignment, apply func(*models.Bed, models.BedAssignment) error) (*models.BulkResult, error) {
	result := &models.BulkResult{Succeeded: []string{}, Failed: []models.BulkFailure{}}
	rooms := make(map[string]bool)

	identifiers := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		identifiers = append(identifiers, assignment.BedIdentifier)
	}
	beds, err := s.resolveBatch(ctx, identifiers)
	if err != nil {
		return nil, err
	}

	for _, assignment := range assignments {
		bed, ok := beds[assignment.BedIdentifier]
		if !ok {
			result.Failed = append(result.Failed, models.BulkFailure{BedIdentifier: assignment.BedIdentifier, Reason: "not found"})
			metrics.BulkItemsTotal.WithLabelValues(op, "failed").Inc()
			continue
		}
		if err := apply(bed, assignment); err != nil {
			if apperrors.KindOf(err) == apperrors.KindInternal {
				return nil, err
			}
			result.Failed = append(result.Failed, models.BulkFailure{BedIdentifier: assignment.BedIdentifier, Reason: failureReason(op, err)})
			metrics.BulkItemsTotal.WithLabelValues(op, "failed").Inc()
			continue
		}
		result.Succeeded = append(result.Succeeded, assignment.BedIdentifier)
		rooms[bed.RoomID] = true
		metrics.BulkItemsTotal.WithLabelValues(op, "ok").Inc()
	}

	s.recomputeRooms(ctx, rooms)
	return result, nil
}

func (s *BulkService) recomputeRooms(ctx context.Context, rooms map[string]bool) {
	for roomID := range rooms {
		if _, err := s.Occupancy.Recompute(ctx, roomID); err != nil {
			log.Printf("[Bulk] Occupancy recompute failed for room %s: %v", roomID, err)
		}
		cache.InvalidateRoomCaches(ctx, roomID)
	}
}

// failureReason maps transition errors to the short per-item reasons the
// booking workflow keys on. Other domain errors pass through verbatim;
// storage errors never reach here, they abort the batch.
func failureReason(op string, err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidTransition, apperrors.KindInvalidState, apperrors.KindConflict:
		switch op {
		case "reserve", "confirm":
			return "not available"
		case "release":
			return "not occupied"
		}
	}
	return err.Error()
}

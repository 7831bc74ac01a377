package services

import (
	"context"
	"log"
	"time"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/cache"
	"hostel-backend/internal/metrics"
	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"

	"github.com/google/uuid"
)

// allowedTransitions is the bed status state machine. Out_Of_Order is
// terminal here; it is only re-enterable through the administrative
// update endpoint, never through a transition operation.
var allowedTransitions = map[models.BedStatus]map[models.BedStatus]bool{
	models.StatusAvailable: {
		models.StatusOccupied:    true,
		models.StatusReserved:    true,
		models.StatusMaintenance: true,
	},
	models.StatusOccupied: {
		models.StatusAvailable:   true,
		models.StatusMaintenance: true,
	},
	models.StatusReserved: {
		models.StatusAvailable:   true,
		models.StatusOccupied:    true,
		models.StatusMaintenance: true,
	},
	models.StatusMaintenance: {
		models.StatusAvailable: true,
	},
	models.StatusOutOfOrder: {},
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to models.BedStatus) bool {
	return allowedTransitions[from][to]
}

// BedService owns single-bed lifecycle operations: registry management
// plus the allocation state machine. Every status change goes through the
// repository's compare-and-swap so two concurrent transitions on the same
// bed can never both win.
type BedService struct {
	Beds      repositories.BedRepository
	Rooms     repositories.RoomRepository
	Occupancy *OccupancyService
}

func NewBedService(beds repositories.BedRepository, rooms repositories.RoomRepository, occupancy *OccupancyService) *BedService {
	return &BedService{Beds: beds, Rooms: rooms, Occupancy: occupancy}
}

func (s *BedService) CreateBed(ctx context.Context, req *models.CreateBedRequest) (*models.Bed, error) {
	if req.BedIdentifier == "" {
		return nil, apperrors.InvalidState("bed identifier is required")
	}

	room, err := s.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	bed := &models.Bed{
		ID:            uuid.NewString(),
		RoomID:        room.ID,
		BedIdentifier: req.BedIdentifier,
		BedNumber:     req.BedNumber,
		Status:        models.StatusAvailable,
		Gender:        req.Gender,
		MonthlyRate:   req.MonthlyRate,
		Description:   req.Description,
	}
	if bed.BedNumber == 0 {
		bed.BedNumber = PositionNumber(req.BedIdentifier)
	}
	if bed.Gender == "" {
		bed.Gender = room.GenderPolicy
	}
	if bed.MonthlyRate == 0 {
		bed.MonthlyRate = room.MonthlyRate
	}

	if err := s.Beds.Create(ctx, bed); err != nil {
		return nil, err
	}

	cache.InvalidateRoomCaches(ctx, room.ID)
	return bed, nil
}

func (s *BedService) GetBed(ctx context.Context, id string) (*models.Bed, error) {
	return s.Beds.GetByID(ctx, id)
}

func (s *BedService) GetBedByIdentifier(ctx context.Context, identifier string) (*models.Bed, error) {
	return s.Beds.GetByIdentifier(ctx, identifier)
}

func (s *BedService) ListBedsByRoom(ctx context.Context, roomID string) ([]*models.Bed, error) {
	return s.Beds.ListByRoom(ctx, roomID)
}

func (s *BedService) ListAvailableBeds(ctx context.Context, filter models.BedFilter) ([]*models.Bed, error) {
	return s.Beds.ListAvailable(ctx, filter)
}

// UpdateBed is the administrative partial edit. It may set any status
// directly, including bringing a bed back from out_of_order; that path
// deliberately bypasses the state machine.
func (s *BedService) UpdateBed(ctx context.Context, id string, req *models.UpdateBedRequest) (*models.Bed, error) {
	bed, err := s.Beds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.BedNumber != nil {
		bed.BedNumber = *req.BedNumber
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.InvalidState("unknown bed status %q", *req.Status)
		}
		// The edit path never sets occupant fields, so marking a bed
		// occupied without one would leave it occupied by nobody.
		if *req.Status == models.StatusOccupied && bed.OccupantID == nil {
			return nil, apperrors.InvalidState("bed %q has no occupant assigned; use check-in", bed.BedIdentifier)
		}
		bed.Status = *req.Status
		if bed.Status == models.StatusAvailable {
			bed.OccupantID = nil
			bed.OccupantName = ""
			bed.OccupiedFrom = nil
		}
	}
	if req.Gender != nil {
		bed.Gender = *req.Gender
	}
	if req.MonthlyRate != nil {
		bed.MonthlyRate = *req.MonthlyRate
	}
	if req.Description != nil {
		bed.Description = *req.Description
	}
	if req.Notes != nil {
		bed.Notes = *req.Notes
	}
	if req.MaintenanceNotes != nil {
		bed.MaintenanceNotes = *req.MaintenanceNotes
	}
	if req.LastCleanedAt != nil {
		bed.LastCleanedAt = req.LastCleanedAt
	}

	if err := s.Beds.Update(ctx, bed); err != nil {
		return nil, err
	}

	s.afterStateChange(ctx, bed.RoomID)
	return bed, nil
}

// DeleteBed refuses to delete a bed that is occupied or reserved; those
// are soft-removed via out_of_order instead.
func (s *BedService) DeleteBed(ctx context.Context, id string) error {
	bed, err := s.Beds.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bed.Status == models.StatusOccupied || bed.Status == models.StatusReserved {
		return apperrors.InvalidState("bed %q is %s and cannot be deleted", bed.BedIdentifier, bed.Status)
	}
	if err := s.Beds.Delete(ctx, id); err != nil {
		return err
	}
	s.afterStateChange(ctx, bed.RoomID)
	return nil
}

// Reserve moves an available bed to reserved, optionally recording the
// occupant the reservation is for (booking confirmation does).
func (s *BedService) Reserve(ctx context.Context, id string, occupant *models.Occupant, notes string) (*models.Bed, error) {
	bed, err := s.Beds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(bed.Status, models.StatusReserved) {
		return nil, apperrors.InvalidTransition(string(bed.Status), string(models.StatusReserved))
	}
	if occupant != nil && bed.OccupantID != nil {
		return nil, apperrors.Conflict("bed %q already has an occupant assigned", bed.BedIdentifier)
	}

	var occ *models.OccupantUpdate
	if occupant != nil {
		occ = &models.OccupantUpdate{OccupantID: &occupant.ID, OccupantName: occupant.Name}
	}

	return s.transition(ctx, bed, models.StatusReserved, occ, notes)
}

// CheckIn marks a bed physically occupied. Allowed from available
// (walk-in) or reserved (arrival of a confirmed booking).
func (s *BedService) CheckIn(ctx context.Context, id string, occupant models.Occupant) (*models.Bed, error) {
	bed, err := s.Beds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(bed.Status, models.StatusOccupied) {
		return nil, apperrors.InvalidTransition(string(bed.Status), string(models.StatusOccupied))
	}
	if bed.OccupantID != nil && *bed.OccupantID != occupant.ID {
		return nil, apperrors.Conflict("bed %q already has an occupant assigned", bed.BedIdentifier)
	}

	from := occupant.CheckInDate
	if from == nil {
		now := time.Now()
		from = &now
	}
	occ := &models.OccupantUpdate{OccupantID: &occupant.ID, OccupantName: occupant.Name, OccupiedFrom: from}

	return s.transition(ctx, bed, models.StatusOccupied, occ, "")
}

// Release is the one path out of occupied back to available. Clearing the
// occupant fields rides the same compare-and-swap as the status change so
// release stays a single auditable action.
func (s *BedService) Release(ctx context.Context, id string) (*models.Bed, error) {
	bed, err := s.Beds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bed.Status != models.StatusOccupied {
		return nil, apperrors.InvalidState("bed %q is %s, not occupied", bed.BedIdentifier, bed.Status)
	}
	return s.transition(ctx, bed, models.StatusAvailable, &models.OccupantUpdate{Clear: true}, "")
}

// CancelReservation frees a reserved bed and clears its occupant.
func (s *BedService) CancelReservation(ctx context.Context, id string) (*models.Bed, error) {
	bed, err := s.Beds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bed.Status != models.StatusReserved {
		return nil, apperrors.InvalidState("bed %q is %s, not reserved", bed.BedIdentifier, bed.Status)
	}
	return s.transition(ctx, bed, models.StatusAvailable, &models.OccupantUpdate{Clear: true}, "")
}

// UpdateStatus is the generic transition operation. It enforces the
// state machine and refuses occupied -> available, which must go through
// Release so occupant clearing stays explicit.
func (s *BedService) UpdateStatus(ctx context.Context, id string, target models.BedStatus, notes string) (*models.Bed, error) {
	if !target.Valid() {
		return nil, apperrors.InvalidState("unknown bed status %q", target)
	}

	bed, err := s.Beds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bed.Status == models.StatusOccupied && target == models.StatusAvailable {
		return nil, apperrors.InvalidState("occupied bed %q must be released, not status-updated", bed.BedIdentifier)
	}
	if !CanTransition(bed.Status, target) {
		return nil, apperrors.InvalidTransition(string(bed.Status), string(target))
	}
	if target == models.StatusOccupied && bed.OccupantID != nil {
		return nil, apperrors.Conflict("bed %q already has an occupant assigned", bed.BedIdentifier)
	}

	var occ *models.OccupantUpdate
	if target == models.StatusAvailable {
		occ = &models.OccupantUpdate{Clear: true}
	}
	return s.transition(ctx, bed, target, occ, notes)
}

// transition performs the CAS keyed on the status the caller saw. A lost
// race comes back as Conflict with nothing written.
func (s *BedService) transition(ctx context.Context, bed *models.Bed, target models.BedStatus, occ *models.OccupantUpdate, notes string) (*models.Bed, error) {
	ok, err := s.Beds.UpdateStatusIf(ctx, bed.ID, bed.Status, target, occ)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Conflict("bed %q was modified concurrently and is no longer %s", bed.BedIdentifier, bed.Status)
	}

	metrics.BedTransitionsTotal.WithLabelValues(string(bed.Status), string(target)).Inc()

	if notes != "" {
		s.writeNotes(ctx, bed.ID, target, notes)
	}

	s.afterStateChange(ctx, bed.RoomID)
	return s.Beds.GetByID(ctx, bed.ID)
}

// writeNotes attaches the caller's note after a successful transition.
// Best effort; a failed note write never rolls back the transition.
func (s *BedService) writeNotes(ctx context.Context, id string, target models.BedStatus, notes string) {
	bed, err := s.Beds.GetByID(ctx, id)
	if err != nil {
		return
	}
	if target == models.StatusMaintenance || target == models.StatusOutOfOrder {
		bed.MaintenanceNotes = notes
	} else {
		bed.Notes = notes
	}
	if err := s.Beds.Update(ctx, bed); err != nil {
		log.Printf("[Beds] Failed to write notes for bed %s: %v", id, err)
	}
}

func (s *BedService) afterStateChange(ctx context.Context, roomID string) {
	if s.Occupancy != nil {
		if _, err := s.Occupancy.Recompute(ctx, roomID); err != nil {
			log.Printf("[Beds] Occupancy recompute failed for room %s: %v", roomID, err)
		}
	}
	cache.InvalidateRoomCaches(ctx, roomID)
}

package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/cache"
	"hostel-backend/internal/metrics"
	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"

	"github.com/google/uuid"
)

// LayoutSyncService reconciles the bed registry with the per-room layout
// document in both directions. The registry stays authoritative for bed
// state, the layout for geometry; neither side ever overwrites the
// other's domain.
type LayoutSyncService struct {
	Beds      repositories.BedRepository
	Rooms     repositories.RoomRepository
	Layouts   repositories.LayoutRepository
	Resolver  *IdentifierResolver
	Occupancy *OccupancyService

	// roomLocks serializes SyncFromLayout per room; concurrent editors
	// saving the same room's layout is a real occurrence.
	roomLocks sync.Map
}

func NewLayoutSyncService(
	beds repositories.BedRepository,
	rooms repositories.RoomRepository,
	layouts repositories.LayoutRepository,
	resolver *IdentifierResolver,
	occupancy *OccupancyService,
) *LayoutSyncService {
	return &LayoutSyncService{
		Beds:      beds,
		Rooms:     rooms,
		Layouts:   layouts,
		Resolver:  resolver,
		Occupancy: occupancy,
	}
}

func (s *LayoutSyncService) lockRoom(roomID string) func() {
	value, _ := s.roomLocks.LoadOrStore(roomID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ValidatePositions checks a position batch before any mutation. Returns
// the list of fatal field problems (duplicate or empty identifiers,
// missing geometry) and the list of non-fatal warnings (missing rotation,
// unconventional identifiers).
func ValidatePositions(positions []models.LayoutPosition) (fields []string, warnings []string) {
	seen := make(map[string]bool, len(positions))
	for i, pos := range positions {
		if pos.ID == "" {
			fields = append(fields, fmt.Sprintf("position %d: missing identifier", i))
			continue
		}
		if seen[pos.ID] {
			fields = append(fields, fmt.Sprintf("position %q: duplicate identifier", pos.ID))
		}
		seen[pos.ID] = true

		if pos.X == nil {
			fields = append(fields, fmt.Sprintf("position %q: missing x", pos.ID))
		}
		if pos.Y == nil {
			fields = append(fields, fmt.Sprintf("position %q: missing y", pos.ID))
		}
		if pos.Width == nil {
			fields = append(fields, fmt.Sprintf("position %q: missing width", pos.ID))
		}
		if pos.Height == nil {
			fields = append(fields, fmt.Sprintf("position %q: missing height", pos.ID))
		}
		if pos.Rotation == nil {
			warnings = append(warnings, fmt.Sprintf("position %q: missing rotation, defaulting to 0", pos.ID))
		}
		if !simpleBedPattern.MatchString(pos.ID) {
			warnings = append(warnings, fmt.Sprintf("position %q: identifier does not follow the bed<N> convention", pos.ID))
		}
	}
	return fields, warnings
}

// SyncFromLayout makes the registry reflect a saved layout. Validation
// failures reject the whole call with nothing written; past validation,
// individual bed creation failures are logged and skipped so one bad
// position cannot block the rest of the room. Beds that disappeared from
// the layout are deactivated to out_of_order, except occupied beds, which
// are only surfaced as warnings.
func (s *LayoutSyncService) SyncFromLayout(ctx context.Context, roomID string, raw []byte) (*models.SyncResult, error) {
	unlock := s.lockRoom(roomID)
	defer unlock()

	room, err := s.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	doc, err := models.DecodeLayoutDocument(raw)
	if err != nil {
		metrics.LayoutSyncsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidLayout([]string{err.Error()})
	}

	fields, warnings := ValidatePositions(doc.Positions)
	if len(fields) > 0 {
		metrics.LayoutSyncsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidLayout(fields)
	}

	positions, normWarnings, err := s.Resolver.NormalizePositions(ctx, roomID, doc.Positions)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, normWarnings...)

	existing, err := s.Beds.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	result := &models.SyncResult{RoomID: roomID}
	matched := make(map[string]bool, len(existing))

	for i := range positions {
		pos := positions[i]
		// A bed claimed by an earlier position is off the table; otherwise
		// a weaker cascade step (numeric suffix) could match it a second
		// time and rename it instead of creating the second bed.
		candidates := make([]*models.Bed, 0, len(existing))
		for _, bed := range existing {
			if !matched[bed.ID] {
				candidates = append(candidates, bed)
			}
		}
		if bed, ok := s.Resolver.MatchBed(pos, candidates); ok {
			matched[bed.ID] = true
			if err := s.updateMatched(ctx, bed, pos); err != nil {
				// Identifier drift could not be closed; keep the bed as is.
				warnings = append(warnings, fmt.Sprintf(
					"bed %q: could not take identifier %q: %v", bed.BedIdentifier, pos.ID, err))
				positions[i].ID = bed.BedIdentifier
			}
			result.Updated = append(result.Updated, bed.BedIdentifier)
			continue
		}

		bed := s.bedFromPosition(room, pos)
		if err := s.Resolver.CreateWithUniqueIdentifier(ctx, room, bed); err != nil {
			log.Printf("[LayoutSync] Room %s: failed to create bed for position %q: %v", roomID, pos.ID, err)
			result.Failed = append(result.Failed, models.BulkFailure{BedIdentifier: pos.ID, Reason: err.Error()})
			continue
		}
		// Collision resolution may have renamed the bed; keep the
		// persisted position in step with the registry identifier.
		positions[i].ID = bed.BedIdentifier
		result.Created = append(result.Created, bed.BedIdentifier)
	}

	kept := make(map[string]bool, len(positions))
	for _, pos := range positions {
		kept[pos.ID] = true
	}
	for _, bed := range existing {
		if matched[bed.ID] || kept[bed.BedIdentifier] || bed.Status == models.StatusOutOfOrder {
			continue
		}
		if bed.Status == models.StatusOccupied {
			warnings = append(warnings, fmt.Sprintf(
				"bed %q is occupied but no longer in the layout; not deactivated", bed.BedIdentifier))
			continue
		}
		bed.Status = models.StatusOutOfOrder
		bed.MaintenanceNotes = "removed from room layout"
		if err := s.Beds.Update(ctx, bed); err != nil {
			log.Printf("[LayoutSync] Room %s: failed to deactivate bed %q: %v", roomID, bed.BedIdentifier, err)
			result.Failed = append(result.Failed, models.BulkFailure{BedIdentifier: bed.BedIdentifier, Reason: err.Error()})
			continue
		}
		result.Deactivated = append(result.Deactivated, bed.BedIdentifier)
	}

	doc.Positions = positions
	encoded, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	if err := s.Layouts.Save(ctx, roomID, encoded); err != nil {
		return nil, err
	}

	if _, err := s.Occupancy.Recompute(ctx, roomID); err != nil {
		log.Printf("[LayoutSync] Occupancy recompute failed for room %s: %v", roomID, err)
	}
	cache.InvalidateRoomCaches(ctx, roomID)

	result.Warnings = warnings
	metrics.LayoutSyncsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// updateMatched closes identifier drift between a matched bed and its
// position and refreshes the display number hint.
func (s *LayoutSyncService) updateMatched(ctx context.Context, bed *models.Bed, pos models.LayoutPosition) error {
	changed := false
	if bed.BedIdentifier != pos.ID {
		bed.BedIdentifier = pos.ID
		changed = true
	}
	if n := PositionNumber(pos.ID); n != 0 && n != bed.BedNumber {
		bed.BedNumber = n
		changed = true
	}
	if !changed {
		return nil
	}
	return s.Beds.Update(ctx, bed)
}

func (s *LayoutSyncService) bedFromPosition(room *models.Room, pos models.LayoutPosition) *models.Bed {
	gender := pos.Gender
	if gender == "" {
		gender = room.GenderPolicy
	}
	return &models.Bed{
		ID:            uuid.NewString(),
		RoomID:        room.ID,
		BedIdentifier: pos.ID,
		BedNumber:     PositionNumber(pos.ID),
		Status:        models.StatusAvailable,
		Gender:        gender,
		MonthlyRate:   room.MonthlyRate,
	}
}

// MergedLayout loads a room's layout and beds and returns the display
// view with live registry state overlaid.
func (s *LayoutSyncService) MergedLayout(ctx context.Context, roomID string) ([]models.PositionDisplay, error) {
	raw, err := s.Layouts.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	doc, err := models.DecodeLayoutDocument(raw)
	if err != nil {
		return nil, apperrors.InvalidLayout([]string{err.Error()})
	}
	beds, err := s.Beds.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.MergeRegistryIntoLayout(doc.Positions, beds), nil
}

// MergeRegistryIntoLayout overlays registry state onto layout positions
// for display. Pure: it never mutates its inputs or persisted state, and
// unmatched positions fall back to default available styling rather than
// erroring.
func (s *LayoutSyncService) MergeRegistryIntoLayout(positions []models.LayoutPosition, beds []*models.Bed) []models.PositionDisplay {
	displays := make([]models.PositionDisplay, 0, len(positions))
	for _, pos := range positions {
		display := models.PositionDisplay{
			ID:       pos.ID,
			X:        deref(pos.X),
			Y:        deref(pos.Y),
			Width:    deref(pos.Width),
			Height:   deref(pos.Height),
			Rotation: deref(pos.Rotation),
			Status:   models.StatusAvailable,
			Gender:   pos.Gender,
		}
		if bed, ok := s.Resolver.MatchBed(pos, beds); ok {
			display.Matched = true
			display.BedID = bed.ID
			display.Status = bed.Status
			display.OccupantName = bed.OccupantName
			display.MonthlyRate = bed.MonthlyRate
			display.MaintenanceNotes = bed.MaintenanceNotes
			if bed.Gender != "" {
				display.Gender = bed.Gender
			}
		}
		display.Color = statusColor(display.Status)
		displays = append(displays, display)
	}
	return displays
}

func statusColor(status models.BedStatus) string {
	switch status {
	case models.StatusAvailable:
		return "green"
	case models.StatusOccupied:
		return "red"
	case models.StatusReserved:
		return "amber"
	default:
		// maintenance and out_of_order render gray
		return "gray"
	}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

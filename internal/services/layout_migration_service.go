package services

import (
	"context"
	"log"

	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
)

// LayoutMigrationService backfills the bed registry from legacy
// layout-only rooms: rooms whose layout document predates the registry
// and whose beds therefore exist only as positions. Safe to re-run; rooms
// that already have registry beds are skipped.
type LayoutMigrationService struct {
	Rooms    repositories.RoomRepository
	Layouts  repositories.LayoutRepository
	Beds     repositories.BedRepository
	Resolver *IdentifierResolver
	Sync     *LayoutSyncService
}

func NewLayoutMigrationService(
	rooms repositories.RoomRepository,
	layouts repositories.LayoutRepository,
	beds repositories.BedRepository,
	resolver *IdentifierResolver,
	sync *LayoutSyncService,
) *LayoutMigrationService {
	return &LayoutMigrationService{Rooms: rooms, Layouts: layouts, Beds: beds, Resolver: resolver, Sync: sync}
}

// MigrateAllRooms walks every room that has a layout document and creates
// registry beds for the ones that have none yet.
func (s *LayoutMigrationService) MigrateAllRooms(ctx context.Context) ([]models.RoomMigrationResult, error) {
	roomIDs, err := s.Layouts.ListRoomIDs(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.RoomMigrationResult, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		results = append(results, s.migrateRoom(ctx, roomID))
	}
	return results, nil
}

func (s *LayoutMigrationService) migrateRoom(ctx context.Context, roomID string) models.RoomMigrationResult {
	result := models.RoomMigrationResult{RoomID: roomID}

	room, err := s.Rooms.GetByID(ctx, roomID)
	if err != nil {
		result.Skipped = true
		result.Reason = "room not found"
		return result
	}

	existing, err := s.Beds.ListByRoom(ctx, roomID)
	if err != nil {
		result.Skipped = true
		result.Reason = err.Error()
		return result
	}
	if len(existing) > 0 {
		result.Skipped = true
		result.Reason = "registry beds already exist"
		return result
	}

	raw, err := s.Layouts.Get(ctx, roomID)
	if err != nil {
		result.Skipped = true
		result.Reason = "no layout document"
		return result
	}
	doc, err := models.DecodeLayoutDocument(raw)
	if err != nil {
		result.Skipped = true
		result.Reason = err.Error()
		return result
	}

	for _, pos := range doc.Positions {
		if pos.ID == "" {
			result.Failed++
			continue
		}
		bed := s.Sync.bedFromPosition(room, pos)
		if err := s.Resolver.CreateWithUniqueIdentifier(ctx, room, bed); err != nil {
			log.Printf("[Migration] Room %s: failed to create bed for position %q: %v", roomID, pos.ID, err)
			result.Failed++
			continue
		}
		result.Created++
	}

	log.Printf("[Migration] Room %s: created %d beds, %d failed", roomID, result.Created, result.Failed)
	return result
}

package repositories

import (
	"context"
	"sort"
	"sync"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"
)

// In-memory implementations of the repository interfaces. They honor the
// same contracts as the Postgres ones (Conflict on duplicate identifier,
// CAS semantics on UpdateStatusIf) so the service layer can be tested
// without a database.

type MemoryBedRepository struct {
	mu   sync.RWMutex
	beds map[string]*models.Bed // keyed by id
}

func NewMemoryBedRepository() *MemoryBedRepository {
	return &MemoryBedRepository{beds: make(map[string]*models.Bed)}
}

func copyBed(b *models.Bed) *models.Bed {
	c := *b
	if b.OccupantID != nil {
		id := *b.OccupantID
		c.OccupantID = &id
	}
	return &c
}

func (r *MemoryBedRepository) Create(_ context.Context, bed *models.Bed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.beds {
		if existing.BedIdentifier == bed.BedIdentifier {
			return apperrors.Conflict("bed identifier %q already exists", bed.BedIdentifier)
		}
	}
	r.beds[bed.ID] = copyBed(bed)
	return nil
}

func (r *MemoryBedRepository) GetByID(_ context.Context, id string) (*models.Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bed, ok := r.beds[id]
	if !ok {
		return nil, apperrors.NotFound("bed %q not found", id)
	}
	return copyBed(bed), nil
}

func (r *MemoryBedRepository) GetByIdentifier(_ context.Context, identifier string) (*models.Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, bed := range r.beds {
		if bed.BedIdentifier == identifier {
			return copyBed(bed), nil
		}
	}
	return nil, apperrors.NotFound("bed %q not found", identifier)
}

func (r *MemoryBedRepository) GetByIdentifiers(_ context.Context, identifiers []string) ([]*models.Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		wanted[id] = true
	}
	var beds []*models.Bed
	for _, bed := range r.beds {
		if wanted[bed.BedIdentifier] {
			beds = append(beds, copyBed(bed))
		}
	}
	sortBeds(beds)
	return beds, nil
}

func (r *MemoryBedRepository) ListByRoom(_ context.Context, roomID string) ([]*models.Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var beds []*models.Bed
	for _, bed := range r.beds {
		if bed.RoomID == roomID {
			beds = append(beds, copyBed(bed))
		}
	}
	sortBeds(beds)
	return beds, nil
}

func (r *MemoryBedRepository) ListAvailable(_ context.Context, filter models.BedFilter) ([]*models.Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var beds []*models.Bed
	for _, bed := range r.beds {
		if bed.Status != models.StatusAvailable {
			continue
		}
		if filter.RoomID != "" && bed.RoomID != filter.RoomID {
			continue
		}
		if filter.Gender != "" && bed.Gender != "" && bed.Gender != filter.Gender {
			continue
		}
		if filter.MinRate != nil && bed.MonthlyRate < *filter.MinRate {
			continue
		}
		if filter.MaxRate != nil && bed.MonthlyRate > *filter.MaxRate {
			continue
		}
		beds = append(beds, copyBed(bed))
	}
	sortBeds(beds)
	return beds, nil
}

func (r *MemoryBedRepository) Update(_ context.Context, bed *models.Bed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.beds[bed.ID]; !ok {
		return apperrors.NotFound("bed %q not found", bed.ID)
	}
	for _, existing := range r.beds {
		if existing.ID != bed.ID && existing.BedIdentifier == bed.BedIdentifier {
			return apperrors.Conflict("bed identifier %q already exists", bed.BedIdentifier)
		}
	}
	r.beds[bed.ID] = copyBed(bed)
	return nil
}

func (r *MemoryBedRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.beds[id]; !ok {
		return apperrors.NotFound("bed %q not found", id)
	}
	delete(r.beds, id)
	return nil
}

func (r *MemoryBedRepository) IdentifierExists(_ context.Context, identifier string) (bool, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, bed := range r.beds {
		if bed.BedIdentifier == identifier {
			return true, bed.RoomID, nil
		}
	}
	return false, "", nil
}

func (r *MemoryBedRepository) UpdateStatusIf(_ context.Context, id string, expected, target models.BedStatus, occ *models.OccupantUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bed, ok := r.beds[id]
	if !ok || bed.Status != expected {
		return false, nil
	}
	bed.Status = target
	if occ != nil {
		if occ.Clear {
			bed.OccupantID = nil
			bed.OccupantName = ""
			bed.OccupiedFrom = nil
		} else {
			bed.OccupantID = occ.OccupantID
			bed.OccupantName = occ.OccupantName
			bed.OccupiedFrom = occ.OccupiedFrom
		}
	}
	return true, nil
}

func (r *MemoryBedRepository) CountByStatus(_ context.Context, roomID string) (map[models.BedStatus][]string, error) {
	beds, _ := r.ListByRoom(context.Background(), roomID)
	counts := make(map[models.BedStatus][]string)
	for _, bed := range beds {
		counts[bed.Status] = append(counts[bed.Status], bed.BedIdentifier)
	}
	return counts, nil
}

func sortBeds(beds []*models.Bed) {
	sort.Slice(beds, func(i, j int) bool {
		if beds[i].BedNumber != beds[j].BedNumber {
			return beds[i].BedNumber < beds[j].BedNumber
		}
		return beds[i].BedIdentifier < beds[j].BedIdentifier
	})
}

type MemoryRoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room
}

func NewMemoryRoomRepository() *MemoryRoomRepository {
	return &MemoryRoomRepository{rooms: make(map[string]*models.Room)}
}

// Put seeds a room; test helper standing in for the upstream room service.
func (r *MemoryRoomRepository) Put(room *models.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *room
	r.rooms[room.ID] = &c
}

func (r *MemoryRoomRepository) GetByID(_ context.Context, id string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, apperrors.NotFound("room %q not found", id)
	}
	c := *room
	return &c, nil
}

func (r *MemoryRoomRepository) List(_ context.Context) ([]*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var rooms []*models.Room
	for _, room := range r.rooms {
		c := *room
		rooms = append(rooms, &c)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomNumber < rooms[j].RoomNumber })
	return rooms, nil
}

func (r *MemoryRoomRepository) UpdateOccupancy(_ context.Context, roomID string, occupancy int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return apperrors.NotFound("room %q not found", roomID)
	}
	room.Occupancy = occupancy
	return nil
}

type MemoryLayoutRepository struct {
	mu        sync.RWMutex
	documents map[string][]byte
}

func NewMemoryLayoutRepository() *MemoryLayoutRepository {
	return &MemoryLayoutRepository{documents: make(map[string][]byte)}
}

func (r *MemoryLayoutRepository) Get(_ context.Context, roomID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	document, ok := r.documents[roomID]
	if !ok {
		return nil, apperrors.NotFound("no layout for room %q", roomID)
	}
	return append([]byte(nil), document...), nil
}

func (r *MemoryLayoutRepository) Save(_ context.Context, roomID string, document []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[roomID] = append([]byte(nil), document...)
	return nil
}

func (r *MemoryLayoutRepository) ListRoomIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id := range r.documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

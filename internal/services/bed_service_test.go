package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
)

type fixture struct {
	beds    *repositories.MemoryBedRepository
	rooms   *repositories.MemoryRoomRepository
	layouts *repositories.MemoryLayoutRepository
	svc     *BedService
	occ     *OccupancyService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	beds := repositories.NewMemoryBedRepository()
	rooms := repositories.NewMemoryRoomRepository()
	rooms.Put(&models.Room{ID: "room-1", RoomNumber: "101", Capacity: 4, GenderPolicy: "male", MonthlyRate: 5000})
	rooms.Put(&models.Room{ID: "room-2", RoomNumber: "102", Capacity: 2, GenderPolicy: "female", MonthlyRate: 6000})
	occ := NewOccupancyService(beds, rooms)
	return &fixture{
		beds:    beds,
		rooms:   rooms,
		layouts: repositories.NewMemoryLayoutRepository(),
		svc:     NewBedService(beds, rooms, occ),
		occ:     occ,
	}
}

func TestCreateBedInheritsRoomDefaults(t *testing.T) {
	fx := newFixture(t)

	bed, err := fx.svc.CreateBed(context.Background(), &models.CreateBedRequest{
		RoomID:        "room-1",
		BedIdentifier: "bed3",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, bed.BedNumber)
	assert.Equal(t, "male", bed.Gender)
	assert.Equal(t, 5000.0, bed.MonthlyRate)
	assert.Equal(t, models.StatusAvailable, bed.Status)
}

func TestCreateBedDuplicateIdentifierAcrossRooms(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateBed(context.Background(), &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)

	_, err = fx.svc.CreateBed(context.Background(), &models.CreateBedRequest{RoomID: "room-2", BedIdentifier: "bed1"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestCreateBedUnknownRoom(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateBed(context.Background(), &models.CreateBedRequest{RoomID: "nope", BedIdentifier: "bed1"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReserveThenCheckInThenRelease(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	bed, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)

	reserved, err := fx.svc.Reserve(ctx, bed.ID, &models.Occupant{ID: "occ-1", Name: "Ravi"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReserved, reserved.Status)
	require.NotNil(t, reserved.OccupantID)
	assert.Equal(t, "occ-1", *reserved.OccupantID)

	occupied, err := fx.svc.CheckIn(ctx, bed.ID, models.Occupant{ID: "occ-1", Name: "Ravi"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOccupied, occupied.Status)
	assert.NotNil(t, occupied.OccupiedFrom)

	room, err := fx.rooms.GetByID(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 1, room.Occupancy)

	released, err := fx.svc.Release(ctx, bed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, released.Status)
	assert.Nil(t, released.OccupantID)
	assert.Empty(t, released.OccupantName)
	assert.Nil(t, released.OccupiedFrom)

	room, err = fx.rooms.GetByID(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 0, room.Occupancy)
}

func TestCheckInRefusesDifferentOccupant(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	bed, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)

	_, err = fx.svc.Reserve(ctx, bed.ID, &models.Occupant{ID: "occ-1", Name: "Ravi"}, "")
	require.NoError(t, err)

	_, err = fx.svc.CheckIn(ctx, bed.ID, models.Occupant{ID: "occ-2", Name: "Someone Else"})
	assert.True(t, apperrors.IsConflict(err))

	// The reservation holder can still check in.
	occupied, err := fx.svc.CheckIn(ctx, bed.ID, models.Occupant{ID: "occ-1", Name: "Ravi"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOccupied, occupied.Status)
}

func TestInvalidTransitionLeavesStatusUnchanged(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	bed, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)
	_, err = fx.svc.CheckIn(ctx, bed.ID, models.Occupant{ID: "occ-1", Name: "Ravi"})
	require.NoError(t, err)

	_, err = fx.svc.Reserve(ctx, bed.ID, nil, "")
	assert.Equal(t, apperrors.KindInvalidTransition, apperrors.KindOf(err))

	got, err := fx.svc.GetBed(ctx, bed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOccupied, got.Status)
	require.NotNil(t, got.OccupantID)
	assert.Equal(t, "occ-1", *got.OccupantID)
}

func TestUpdateStatusRefusesOccupiedToAvailable(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	bed, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)
	_, err = fx.svc.CheckIn(ctx, bed.ID, models.Occupant{ID: "occ-1", Name: "Ravi"})
	require.NoError(t, err)

	_, err = fx.svc.UpdateStatus(ctx, bed.ID, models.StatusAvailable, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "must be released")
}

func TestUpdateStatusMaintenanceRoundTrip(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	bed, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)

	under, err := fx.svc.UpdateStatus(ctx, bed.ID, models.StatusMaintenance, "leaking tap")
	require.NoError(t, err)
	assert.Equal(t, models.StatusMaintenance, under.Status)
	assert.Equal(t, "leaking tap", under.MaintenanceNotes)

	back, err := fx.svc.UpdateStatus(ctx, bed.ID, models.StatusAvailable, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, back.Status)
}

func TestOutOfOrderIsTerminalForTransitions(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	bed, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)

	stored, err := fx.beds.GetByID(ctx, bed.ID)
	require.NoError(t, err)
	stored.Status = models.StatusOutOfOrder
	require.NoError(t, fx.beds.Update(ctx, stored))

	_, err = fx.svc.UpdateStatus(ctx, bed.ID, models.StatusAvailable, "")
	assert.Equal(t, apperrors.KindInvalidTransition, apperrors.KindOf(err))

	// The administrative edit path is the one way back.
	status := models.StatusAvailable
	revived, err := fx.svc.UpdateBed(ctx, bed.ID, &models.UpdateBedRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, revived.Status)
}

func TestUpdateBedRefusesOccupiedWithoutOccupant(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	bed, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)

	occupied := models.StatusOccupied
	_, err = fx.svc.UpdateBed(ctx, bed.ID, &models.UpdateBedRequest{Status: &occupied})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))

	got, err := fx.svc.GetBed(ctx, bed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, got.Status)

	// Once a reservation holder is on the bed the edit may mark arrival.
	_, err = fx.svc.Reserve(ctx, bed.ID, &models.Occupant{ID: "occ-1", Name: "Ravi"}, "")
	require.NoError(t, err)
	updated, err := fx.svc.UpdateBed(ctx, bed.ID, &models.UpdateBedRequest{Status: &occupied})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOccupied, updated.Status)
}

func TestDeleteBedRefusesOccupiedAndReserved(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	bed, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)
	_, err = fx.svc.Reserve(ctx, bed.ID, nil, "")
	require.NoError(t, err)

	err = fx.svc.DeleteBed(ctx, bed.ID)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))

	_, err = fx.svc.CancelReservation(ctx, bed.ID)
	require.NoError(t, err)
	assert.NoError(t, fx.svc.DeleteBed(ctx, bed.ID))
}

func TestCancelReservationOnlyFromReserved(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	bed, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)

	_, err = fx.svc.CancelReservation(ctx, bed.ID)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
}

func TestConcurrentReserveOnlyOneWins(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	bed, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1"})
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Reserve(ctx, bed.ID, nil, "")
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			failed++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one reservation must win")
	assert.Equal(t, 1, failed)

	got, err := fx.svc.GetBed(ctx, bed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReserved, got.Status)
}

func TestListAvailableBedsFilter(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	cheap, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed1", MonthlyRate: 4000})
	require.NoError(t, err)
	_, err = fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed2", MonthlyRate: 8000})
	require.NoError(t, err)
	taken, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: "bed3", MonthlyRate: 4000})
	require.NoError(t, err)
	_, err = fx.svc.CheckIn(ctx, taken.ID, models.Occupant{ID: "occ-1", Name: "Ravi"})
	require.NoError(t, err)

	maxRate := 5000.0
	beds, err := fx.svc.ListAvailableBeds(ctx, models.BedFilter{RoomID: "room-1", MaxRate: &maxRate})
	require.NoError(t, err)
	require.Len(t, beds, 1)
	assert.Equal(t, cheap.ID, beds[0].ID)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"
)

func TestRecomputeCountsOccupiedBeds(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for _, identifier := range []string{"bed1", "bed2", "bed3"} {
		_, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: identifier})
		require.NoError(t, err)
	}
	bed1, err := fx.beds.GetByIdentifier(ctx, "bed1")
	require.NoError(t, err)
	_, err = fx.svc.CheckIn(ctx, bed1.ID, models.Occupant{ID: "occ-1", Name: "Ravi"})
	require.NoError(t, err)

	occupied, err := fx.occ.Recompute(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 1, occupied)

	room, err := fx.rooms.GetByID(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 1, room.Occupancy)
}

func TestSummaryGroupsByStatus(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for _, identifier := range []string{"bed1", "bed2", "bed3"} {
		_, err := fx.svc.CreateBed(ctx, &models.CreateBedRequest{RoomID: "room-1", BedIdentifier: identifier})
		require.NoError(t, err)
	}
	bed1, err := fx.beds.GetByIdentifier(ctx, "bed1")
	require.NoError(t, err)
	_, err = fx.svc.CheckIn(ctx, bed1.ID, models.Occupant{ID: "occ-1", Name: "Ravi"})
	require.NoError(t, err)
	bed2, err := fx.beds.GetByIdentifier(ctx, "bed2")
	require.NoError(t, err)
	_, err = fx.svc.Reserve(ctx, bed2.ID, nil, "")
	require.NoError(t, err)

	summary, err := fx.occ.Summary(ctx, "room-1")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Counts[models.StatusOccupied])
	assert.Equal(t, 1, summary.Counts[models.StatusReserved])
	assert.Equal(t, 1, summary.Counts[models.StatusAvailable])
	assert.Equal(t, []string{"bed1"}, summary.Identifiers[models.StatusOccupied])
	assert.Equal(t, []string{"bed3"}, summary.Identifiers[models.StatusAvailable])
}

func TestSummaryUnknownRoom(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.occ.Summary(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

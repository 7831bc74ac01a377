package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"
)

type syncFixture struct {
	*fixture
	sync *LayoutSyncService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	fx := newFixture(t)
	resolver := NewIdentifierResolver(fx.beds)
	return &syncFixture{
		fixture: fx,
		sync:    NewLayoutSyncService(fx.beds, fx.rooms, fx.layouts, resolver, fx.occ),
	}
}

func layoutJSON(t *testing.T, positions ...map[string]interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{"bedPositions": positions})
	require.NoError(t, err)
	return raw
}

func position(id string, x, y float64) map[string]interface{} {
	return map[string]interface{}{
		"id": id, "x": x, "y": y, "width": 80.0, "height": 190.0, "rotation": 0.0,
	}
}

func TestSyncFromLayoutCreatesBeds(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	result, err := fx.sync.SyncFromLayout(ctx, "room-1", layoutJSON(t,
		position("bed1", 0, 0),
		position("bed2", 100, 0),
	))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"bed1", "bed2"}, result.Created)
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.Deactivated)

	beds, err := fx.beds.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, beds, 2)
	assert.Equal(t, models.StatusAvailable, beds[0].Status)
	assert.Equal(t, "male", beds[0].Gender)
	assert.Equal(t, 5000.0, beds[0].MonthlyRate)
}

func TestSyncFromLayoutIsIdempotent(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()
	raw := layoutJSON(t, position("bed1", 0, 0), position("bed2", 100, 0))

	_, err := fx.sync.SyncFromLayout(ctx, "room-1", raw)
	require.NoError(t, err)

	result, err := fx.sync.SyncFromLayout(ctx, "room-1", raw)
	require.NoError(t, err)

	assert.Empty(t, result.Created)
	assert.ElementsMatch(t, []string{"bed1", "bed2"}, result.Updated)
	assert.Empty(t, result.Deactivated)

	beds, err := fx.beds.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, beds, 2)
}

func TestSyncFromLayoutLegacyElementsShape(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	raw := []byte(`{
		"elements": [
			{"id": "bed1", "type": "bed", "x": 0, "y": 0, "width": 80, "height": 190, "rotation": 0},
			{"id": "door1", "type": "door", "x": 300, "y": 0, "width": 90, "height": 10}
		]
	}`)

	result, err := fx.sync.SyncFromLayout(ctx, "room-1", raw)
	require.NoError(t, err)

	// Only the bed-typed element becomes a registry bed.
	assert.Equal(t, []string{"bed1"}, result.Created)

	beds, err := fx.beds.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, beds, 1)
}

func TestSyncFromLayoutInvalidGeometryRejectsWholeCall(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	raw := layoutJSON(t,
		position("bed1", 0, 0),
		map[string]interface{}{"id": "bed2", "y": 50.0, "width": 80.0, "height": 190.0}, // missing x
	)

	_, err := fx.sync.SyncFromLayout(ctx, "room-1", raw)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidLayout, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "missing x")

	// Nothing was written, not even the valid position.
	beds, err := fx.beds.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, beds)
	_, err = fx.layouts.Get(ctx, "room-1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSyncFromLayoutDuplicateIdentifiersRejected(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	raw := layoutJSON(t, position("bed1", 0, 0), position("bed1", 100, 0))

	_, err := fx.sync.SyncFromLayout(ctx, "room-1", raw)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidLayout, apperrors.KindOf(err))
}

func TestSyncFromLayoutDeactivatesOrphans(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	_, err := fx.sync.SyncFromLayout(ctx, "room-1", layoutJSON(t,
		position("bed1", 0, 0),
		position("bed2", 100, 0),
	))
	require.NoError(t, err)

	result, err := fx.sync.SyncFromLayout(ctx, "room-1", layoutJSON(t, position("bed1", 0, 0)))
	require.NoError(t, err)

	assert.Equal(t, []string{"bed2"}, result.Deactivated)

	bed2, err := fx.beds.GetByIdentifier(ctx, "bed2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOutOfOrder, bed2.Status)
	assert.Equal(t, "removed from room layout", bed2.MaintenanceNotes)
}

func TestSyncFromLayoutPreservesOccupiedOrphan(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()
	bedSvc := NewBedService(fx.beds, fx.rooms, fx.occ)

	_, err := fx.sync.SyncFromLayout(ctx, "room-1", layoutJSON(t,
		position("bed1", 0, 0),
		position("bed2", 100, 0),
	))
	require.NoError(t, err)

	bed2, err := fx.beds.GetByIdentifier(ctx, "bed2")
	require.NoError(t, err)
	_, err = bedSvc.CheckIn(ctx, bed2.ID, models.Occupant{ID: "occ-1", Name: "Ravi"})
	require.NoError(t, err)

	result, err := fx.sync.SyncFromLayout(ctx, "room-1", layoutJSON(t, position("bed1", 0, 0)))
	require.NoError(t, err)

	assert.Empty(t, result.Deactivated)
	assert.Contains(t, result.Warnings,
		`bed "bed2" is occupied but no longer in the layout; not deactivated`)

	bed2, err = fx.beds.GetByIdentifier(ctx, "bed2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOccupied, bed2.Status)
}

func TestSyncFromLayoutCrossRoomCollisionRenames(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	// room-2 already owns bed1.
	_, err := fx.sync.SyncFromLayout(ctx, "room-2", layoutJSON(t, position("bed1", 0, 0)))
	require.NoError(t, err)

	result, err := fx.sync.SyncFromLayout(ctx, "room-1", layoutJSON(t, position("bed1", 0, 0)))
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, "101-bed1", result.Created[0])

	// The persisted layout follows the rename.
	raw, err := fx.layouts.Get(ctx, "room-1")
	require.NoError(t, err)
	doc, err := models.DecodeLayoutDocument(raw)
	require.NoError(t, err)
	require.Len(t, doc.Positions, 1)
	assert.Equal(t, "101-bed1", doc.Positions[0].ID)
}

func TestSyncFromLayoutNeverMatchesOneBedTwice(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.beds.Create(ctx, &models.Bed{
		ID: "uuid-1", RoomID: "room-1", BedIdentifier: "bed1", BedNumber: 1,
		Status: models.StatusAvailable,
	}))

	// bed01 carries the numeric suffix 1 too; it must become a second
	// bed, not steal the one bed1 already claimed.
	result, err := fx.sync.SyncFromLayout(ctx, "room-1", layoutJSON(t,
		position("bed1", 0, 0),
		position("bed01", 100, 0),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"bed1"}, result.Updated)
	assert.Equal(t, []string{"bed01"}, result.Created)

	beds, err := fx.beds.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, beds, 2)
}

func TestSyncFromLayoutUnknownRoom(t *testing.T) {
	fx := newSyncFixture(t)

	_, err := fx.sync.SyncFromLayout(context.Background(), "nope", layoutJSON(t, position("bed1", 0, 0)))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestValidatePositions(t *testing.T) {
	x, y, w, h := 1.0, 2.0, 80.0, 190.0

	fields, warnings := ValidatePositions([]models.LayoutPosition{
		{ID: "bed1", X: &x, Y: &y, Width: &w, Height: &h},
		{ID: "", X: &x, Y: &y, Width: &w, Height: &h},
		{ID: "weird-id", X: &x, Y: &y, Width: &w},
	})

	assert.Contains(t, fields, "position 1: missing identifier")
	assert.Contains(t, fields, `position "weird-id": missing height`)
	assert.Contains(t, warnings, `position "bed1": missing rotation, defaulting to 0`)
	assert.Contains(t, warnings, `position "weird-id": identifier does not follow the bed<N> convention`)
}

func TestMergeRegistryIntoLayoutIsPure(t *testing.T) {
	fx := newSyncFixture(t)
	x, y, w, h := 0.0, 0.0, 80.0, 190.0

	occID := "occ-1"
	beds := []*models.Bed{{
		ID: "uuid-1", RoomID: "room-1", BedIdentifier: "bed1", BedNumber: 1,
		Status: models.StatusOccupied, OccupantID: &occID, OccupantName: "Ravi",
		MonthlyRate: 5000, Gender: "male",
	}}
	positions := []models.LayoutPosition{
		{ID: "bed1", X: &x, Y: &y, Width: &w, Height: &h},
		{ID: "bed2", X: &x, Y: &y, Width: &w, Height: &h},
	}

	displays := fx.sync.MergeRegistryIntoLayout(positions, beds)
	require.Len(t, displays, 2)

	assert.True(t, displays[0].Matched)
	assert.Equal(t, models.StatusOccupied, displays[0].Status)
	assert.Equal(t, "Ravi", displays[0].OccupantName)
	assert.Equal(t, "red", displays[0].Color)

	// Unmatched positions render as available; no error, no mutation.
	assert.False(t, displays[1].Matched)
	assert.Equal(t, models.StatusAvailable, displays[1].Status)
	assert.Equal(t, "green", displays[1].Color)

	assert.Equal(t, models.StatusOccupied, beds[0].Status)
	assert.Equal(t, "bed2", positions[1].ID)
}

func TestStatusColors(t *testing.T) {
	assert.Equal(t, "green", statusColor(models.StatusAvailable))
	assert.Equal(t, "red", statusColor(models.StatusOccupied))
	assert.Equal(t, "amber", statusColor(models.StatusReserved))
	assert.Equal(t, "gray", statusColor(models.StatusMaintenance))
	assert.Equal(t, "gray", statusColor(models.StatusOutOfOrder))
}

func TestMergedLayoutNoLayout(t *testing.T) {
	fx := newSyncFixture(t)

	_, err := fx.sync.MergedLayout(context.Background(), "room-1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLayoutDocumentExtraSurvivesSync(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	raw := []byte(`{
		"bedPositions": [{"id": "bed1", "x": 0, "y": 0, "width": 80, "height": 190, "rotation": 0}],
		"roomDimensions": {"width": 400, "height": 300},
		"furniture": [{"id": "desk1"}]
	}`)

	_, err := fx.sync.SyncFromLayout(ctx, "room-1", raw)
	require.NoError(t, err)

	saved, err := fx.layouts.Get(ctx, "room-1")
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(saved, &top))
	assert.Contains(t, top, "roomDimensions")
	assert.Contains(t, top, "furniture")
	assert.Contains(t, top, "bedPositions")
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"hostel-backend/internal/cache"
	"hostel-backend/internal/services"
	"hostel-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type LayoutHandler struct {
	Sync      *services.LayoutSyncService
	Migration *services.LayoutMigrationService
}

func NewLayoutHandler(sync *services.LayoutSyncService, migration *services.LayoutMigrationService) *LayoutHandler {
	return &LayoutHandler{Sync: sync, Migration: migration}
}

// GetLayout serves the merged floor-plan view: layout geometry overlaid
// with live registry status. Cached per room until the next mutation.
func (h *LayoutHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	ctx := r.Context()

	if data, ok := cache.GetCachedLayout(ctx, roomID); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	positions, err := h.Sync.MergedLayout(ctx, roomID)
	if err != nil {
		utils.Error(w, err)
		return
	}

	response := map[string]interface{}{
		"room_id":      roomID,
		"bedPositions": positions,
	}
	data, err := json.Marshal(response)
	if err != nil {
		utils.Error(w, err)
		return
	}
	cache.CacheLayout(ctx, roomID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// SaveLayout takes the raw layout document from the floor-plan editor and
// synchronizes the bed registry against it.
func (h *LayoutHandler) SaveLayout(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil || len(raw) == 0 {
		utils.BadRequest(w, "Empty layout document")
		return
	}

	result, err := h.Sync.SyncFromLayout(r.Context(), mux.Vars(r)["id"], raw)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// MigrateAllRooms backfills registry beds for legacy layout-only rooms.
func (h *LayoutHandler) MigrateAllRooms(w http.ResponseWriter, r *http.Request) {
	results, err := h.Migration.MigrateAllRooms(r.Context())
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"rooms": results})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"hostel-backend/internal/cache"
	"hostel-backend/internal/models"
	"hostel-backend/internal/services"
	"hostel-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type RoomHandler struct {
	BedService *services.BedService
	Occupancy  *services.OccupancyService
}

func NewRoomHandler(bedService *services.BedService, occupancy *services.OccupancyService) *RoomHandler {
	return &RoomHandler{BedService: bedService, Occupancy: occupancy}
}

func (h *RoomHandler) ListRoomBeds(w http.ResponseWriter, r *http.Request) {
	beds, err := h.BedService.ListBedsByRoom(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, err)
		return
	}
	if beds == nil {
		beds = []*models.Bed{}
	}
	utils.JSON(w, http.StatusOK, beds)
}

// GetAvailability serves the per-room bed availability summary, cached
// briefly since booking pages poll it.
func (h *RoomHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	ctx := r.Context()

	if data, ok := cache.GetCachedAvailability(ctx, roomID); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	summary, err := h.Occupancy.Summary(ctx, roomID)
	if err != nil {
		utils.Error(w, err)
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		utils.Error(w, err)
		return
	}
	cache.CacheAvailability(ctx, roomID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

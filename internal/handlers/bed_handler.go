package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"hostel-backend/internal/models"
	"hostel-backend/internal/services"
	"hostel-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type BedHandler struct {
	Service *services.BedService
}

func NewBedHandler(s *services.BedService) *BedHandler {
	return &BedHandler{Service: s}
}

func (h *BedHandler) CreateBed(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "Invalid request body")
		return
	}

	bed, err := h.Service.CreateBed(r.Context(), &req)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, bed)
}

func (h *BedHandler) GetBed(w http.ResponseWriter, r *http.Request) {
	bed, err := h.Service.GetBed(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bed)
}

func (h *BedHandler) GetBedByIdentifier(w http.ResponseWriter, r *http.Request) {
	bed, err := h.Service.GetBedByIdentifier(r.Context(), mux.Vars(r)["identifier"])
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bed)
}

// ListBeds lists available beds filtered by room, gender and rate range.
func (h *BedHandler) ListBeds(w http.ResponseWriter, r *http.Request) {
	filter := models.BedFilter{
		RoomID: r.URL.Query().Get("room_id"),
		Gender: r.URL.Query().Get("gender"),
	}
	if v := r.URL.Query().Get("min_rate"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinRate = &rate
		}
	}
	if v := r.URL.Query().Get("max_rate"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxRate = &rate
		}
	}

	beds, err := h.Service.ListAvailableBeds(r.Context(), filter)
	if err != nil {
		utils.Error(w, err)
		return
	}
	if beds == nil {
		beds = []*models.Bed{}
	}
	utils.JSON(w, http.StatusOK, beds)
}

func (h *BedHandler) UpdateBed(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateBedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "Invalid request body")
		return
	}

	bed, err := h.Service.UpdateBed(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bed)
}

func (h *BedHandler) DeleteBed(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteBed(r.Context(), mux.Vars(r)["id"]); err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type reserveRequest struct {
	Occupant *models.Occupant `json:"occupant"`
	Notes    string           `json:"notes"`
}

func (h *BedHandler) ReserveBed(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // empty body means a bare reservation
	}

	bed, err := h.Service.Reserve(r.Context(), mux.Vars(r)["id"], req.Occupant, req.Notes)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bed)
}

func (h *BedHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var occupant models.Occupant
	if err := json.NewDecoder(r.Body).Decode(&occupant); err != nil {
		utils.BadRequest(w, "Invalid request body")
		return
	}
	if occupant.ID == "" {
		utils.BadRequest(w, "occupant_id is required")
		return
	}

	bed, err := h.Service.CheckIn(r.Context(), mux.Vars(r)["id"], occupant)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bed)
}

func (h *BedHandler) ReleaseBed(w http.ResponseWriter, r *http.Request) {
	bed, err := h.Service.Release(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bed)
}

func (h *BedHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	bed, err := h.Service.CancelReservation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bed)
}

type statusRequest struct {
	Status models.BedStatus `json:"status"`
	Notes  string           `json:"notes"`
}

func (h *BedHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "Invalid request body")
		return
	}

	bed, err := h.Service.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status, req.Notes)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bed)
}

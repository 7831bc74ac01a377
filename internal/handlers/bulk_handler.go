package handlers

import (
	"encoding/json"
	"net/http"

	"hostel-backend/internal/models"
	"hostel-backend/internal/services"
	"hostel-backend/pkg/utils"
)

type BulkHandler struct {
	Service *services.BulkService
}

func NewBulkHandler(s *services.BulkService) *BulkHandler {
	return &BulkHandler{Service: s}
}

type bulkIdentifiersRequest struct {
	BedIdentifiers []string `json:"bed_identifiers"`
	Notes          string   `json:"notes"`
}

type bulkAssignmentsRequest struct {
	Assignments []models.BedAssignment `json:"assignments"`
}

func (h *BulkHandler) ReserveBeds(w http.ResponseWriter, r *http.Request) {
	var req bulkIdentifiersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.Service.ReserveBeds(r.Context(), req.BedIdentifiers, req.Notes)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *BulkHandler) ReleaseBeds(w http.ResponseWriter, r *http.Request) {
	var req bulkIdentifiersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.Service.ReleaseBeds(r.Context(), req.BedIdentifiers)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *BulkHandler) AssignOccupants(w http.ResponseWriter, r *http.Request) {
	var req bulkAssignmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.Service.AssignOccupants(r.Context(), req.Assignments)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *BulkHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	var req bulkAssignmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.Service.ConfirmBooking(r.Context(), req.Assignments)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

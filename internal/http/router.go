package http

import (
	"hostel-backend/internal/handlers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	bedHandler *handlers.BedHandler,
	bulkHandler *handlers.BulkHandler,
	roomHandler *handlers.RoomHandler,
	layoutHandler *handlers.LayoutHandler,
	healthHandler *handlers.HealthHandler,
) *mux.Router {
	r := mux.NewRouter()

	// Health and metrics
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Beds - queries
	bedsAPI := r.PathPrefix("/api/beds").Subrouter()
	bedsAPI.HandleFunc("", bedHandler.ListBeds).Methods("GET")
	bedsAPI.HandleFunc("", bedHandler.CreateBed).Methods("POST")
	bedsAPI.HandleFunc("/identifier/{identifier}", bedHandler.GetBedByIdentifier).Methods("GET")

	// Beds - bulk operations (registered before /{id} so "bulk" never
	// matches as a bed id)
	bedsAPI.HandleFunc("/bulk/reserve", bulkHandler.ReserveBeds).Methods("POST")
	bedsAPI.HandleFunc("/bulk/release", bulkHandler.ReleaseBeds).Methods("POST")
	bedsAPI.HandleFunc("/bulk/assign", bulkHandler.AssignOccupants).Methods("POST")
	bedsAPI.HandleFunc("/bulk/confirm", bulkHandler.ConfirmBooking).Methods("POST")

	// Beds - single-bed lifecycle
	bedsAPI.HandleFunc("/{id}", bedHandler.GetBed).Methods("GET")
	bedsAPI.HandleFunc("/{id}", bedHandler.UpdateBed).Methods("PUT")
	bedsAPI.HandleFunc("/{id}", bedHandler.DeleteBed).Methods("DELETE")
	bedsAPI.HandleFunc("/{id}/reserve", bedHandler.ReserveBed).Methods("POST")
	bedsAPI.HandleFunc("/{id}/check-in", bedHandler.CheckIn).Methods("POST")
	bedsAPI.HandleFunc("/{id}/release", bedHandler.ReleaseBed).Methods("POST")
	bedsAPI.HandleFunc("/{id}/cancel-reservation", bedHandler.CancelReservation).Methods("POST")
	bedsAPI.HandleFunc("/{id}/status", bedHandler.UpdateStatus).Methods("POST")

	// Rooms
	roomsAPI := r.PathPrefix("/api/rooms").Subrouter()
	roomsAPI.HandleFunc("/{id}/beds", roomHandler.ListRoomBeds).Methods("GET")
	roomsAPI.HandleFunc("/{id}/availability", roomHandler.GetAvailability).Methods("GET")
	roomsAPI.HandleFunc("/{id}/layout", layoutHandler.GetLayout).Methods("GET")
	roomsAPI.HandleFunc("/{id}/layout", layoutHandler.SaveLayout).Methods("PUT")

	// One-time backfill for legacy layout-only rooms
	r.HandleFunc("/api/layout/migrate", layoutHandler.MigrateAllRooms).Methods("POST")

	return r
}

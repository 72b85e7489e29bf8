package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/pulse/pkg/api"
	"github.com/platinummonkey/pulse/pkg/storage"
)

// Handlers provides the HTTP boundary over the service facade.
type Handlers struct {
	service *Service
}

// NewHandlers creates the HTTP handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{
		service: service,
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Profiles
	r.HandleFunc("/api/v1/users", h.SaveProfile).Methods("POST")
	r.HandleFunc("/api/v1/users/{id}", h.GetProfile).Methods("GET")

	// Events
	r.HandleFunc("/api/v1/events", h.SubmitEvent).Methods("POST")

	// Statistics
	r.HandleFunc("/api/v1/stats/events/{type}", h.GetEventCount).Methods("GET")
	r.HandleFunc("/api/v1/stats/users/{id}/activity", h.GetUserActivity).Methods("GET")
	r.HandleFunc("/api/v1/stats/store", h.GetStoreStats).Methods("GET")
}

// SaveProfile handles POST /api/v1/users
func (h *Handlers) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var profile api.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := profile.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SaveProfile(r.Context(), &profile); err != nil {
		writeStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/v1/users/{id}
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// submitEventRequest is the ingestion request body.
type submitEventRequest struct {
	UserID    int64                  `json:"user_id"`
	EventType string                 `json:"event_type"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// SubmitEvent handles POST /api/v1/events
func (h *Handlers) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req submitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID <= 0 || req.EventType == "" {
		writeError(w, http.StatusBadRequest, "user_id and event_type are required")
		return
	}

	ack, err := h.service.SubmitEvent(r.Context(), req.UserID, req.EventType, req.Metadata)
	if err != nil {
		var serr *storage.SerializationError
		if errors.As(err, &serr) {
			writeError(w, http.StatusBadRequest, serr.Error())
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, ack)
}

// GetEventCount handles GET /api/v1/stats/events/{type}
func (h *Handlers) GetEventCount(w http.ResponseWriter, r *http.Request) {
	eventType := mux.Vars(r)["type"]

	count, err := h.service.EventCount(r.Context(), eventType)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no events recorded for type")
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &api.EventCountResponse{EventType: eventType, Count: count})
}

// GetUserActivity handles GET /api/v1/stats/users/{id}/activity
func (h *Handlers) GetUserActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	score, err := h.service.UserActivity(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no activity recorded for user")
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &api.UserActivityResponse{UserID: userID, Score: score})
}

// GetStoreStats handles GET /api/v1/stats/store
func (h *Handlers) GetStoreStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.StoreStats(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// pathID parses the integer path variable, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &api.ErrorResponse{Error: message})
}

// writeStoreError maps store-level failures to a 502; anything else is
// an internal error. Absence is handled by the callers, never here.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrUnavailable) {
		writeError(w, http.StatusBadGateway, "store unavailable")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

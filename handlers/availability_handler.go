package handlers

import (
	"net/http"

	"github.com/mcoleague/match-center/middleware"
	"github.com/mcoleague/match-center/models"
	"github.com/mcoleague/match-center/services"
)

type AvailabilityHandler struct {
	availabilityService services.AvailabilityService
}

func NewAvailabilityHandler(availabilityService services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

func (h *AvailabilityHandler) ListClubAvailability(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	windows, err := h.availabilityService.ListClubAvailability(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"windows": windows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type createWindowRequest struct {
	DayOfWeek int `json:"day_of_week"`
	StartMin  int `json:"start_min"`
	EndMin    int `json:"end_min"`
}

func (h *AvailabilityHandler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input createWindowRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	window, err := h.availabilityService.AddWindow(r.Context(), userID, models.AvailabilityWindow{
		OwnerID:   clubID,
		DayOfWeek: input.DayOfWeek,
		StartMin:  input.StartMin,
		EndMin:    input.EndMin,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"window": window}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AvailabilityHandler) DeleteWindow(w http.ResponseWriter, r *http.Request) {
	windowID, err := getIDFromURL(r, "windowID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := h.availabilityService.RemoveWindow(r.Context(), userID, windowID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

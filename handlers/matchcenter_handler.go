package handlers

import (
	"net/http"

	"github.com/mcoleague/match-center/services"
)

type MatchCenterHandler struct {
	matchCenterService services.MatchCenterService
}

func NewMatchCenterHandler(matchCenterService services.MatchCenterService) *MatchCenterHandler {
	return &MatchCenterHandler{matchCenterService: matchCenterService}
}

func (h *MatchCenterHandler) Summary(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.matchCenterService.Summary(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, summary, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

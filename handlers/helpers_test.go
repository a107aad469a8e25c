package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoleague/match-center/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"match not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"stale state", services.ErrStaleState, http.StatusConflict},
		{"invalid transition", services.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"slot taken is a guard failure", services.ErrSlotNotAvailable, http.StatusUnprocessableEntity},
		{"self confirmation is a guard failure", services.ErrScoreSelfConfirm, http.StatusUnprocessableEntity},
		{"validation", services.ErrValidationFailed, http.StatusBadRequest},
		{"missing slot datetime", services.ErrSlotDatetimeMissing, http.StatusBadRequest},
		{"missing images", services.ErrScoreImagesRequired, http.StatusBadRequest},
		{"bad credentials", services.ErrAuthInvalidCredentials, http.StatusUnauthorized},
		{"not a match club", services.ErrNotMatchClub, http.StatusForbidden},
		{"home club scheduling", services.ErrOnlyAwaySchedules, http.StatusForbidden},
		{"email taken", services.ErrAuthEmailTaken, http.StatusConflict},
		{"OCR outage", services.ErrExternalService, http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/matches/1", nil)

			mapServiceErrorToHTTP(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body, "error")
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Datetime string `json:"datetime"`
	}

	newRequest := func(body string) (*httptest.ResponseRecorder, *http.Request) {
		return httptest.NewRecorder(),
			httptest.NewRequest(http.MethodPost, "/matches/1/schedule", strings.NewReader(body))
	}

	t.Run("valid body", func(t *testing.T) {
		w, r := newRequest(`{"datetime":"2026-03-09T23:00:00Z"}`)
		var dst payload
		require.NoError(t, readJSON(w, r, &dst))
		assert.Equal(t, "2026-03-09T23:00:00Z", dst.Datetime)
	})

	t.Run("unknown field", func(t *testing.T) {
		w, r := newRequest(`{"datetime":"x","extra":1}`)
		var dst payload
		err := readJSON(w, r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown key")
	})

	t.Run("empty body", func(t *testing.T) {
		w, r := newRequest("")
		var dst payload
		err := readJSON(w, r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not be empty")
	})

	t.Run("trailing garbage", func(t *testing.T) {
		w, r := newRequest(`{"datetime":"x"}{"datetime":"y"}`)
		var dst payload
		err := readJSON(w, r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "single JSON value")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w, r := newRequest(`{"datetime":`)
		var dst payload
		err := readJSON(w, r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "badly-formed")
	})
}

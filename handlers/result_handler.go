package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freddywood17/team-racing-app/services"
)

type ResultHandler struct {
	resultsService services.ResultsService
}

func NewResultHandler(rs services.ResultsService) *ResultHandler {
	return &ResultHandler{resultsService: rs}
}

func (h *ResultHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")

	snapshot, err := h.resultsService.Snapshot(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")

	var input struct {
		MatchID string `json:"match_id"`
		Winner  string `json:"winner"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.MatchID == "" || input.Winner == "" {
		badRequestResponse(w, r, errors.New("match_id and winner are required"))
		return
	}

	snapshot, err := h.resultsService.Record(r.Context(), competitionID, input.MatchID, input.Winner)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"results": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

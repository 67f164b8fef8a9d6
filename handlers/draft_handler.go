package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freddywood17/team-racing-app/models"
	"github.com/freddywood17/team-racing-app/services"
)

type DraftHandler struct {
	draftService services.DraftService
}

func NewDraftHandler(ds services.DraftService) *DraftHandler {
	return &DraftHandler{draftService: ds}
}

func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")

	device, err := deviceID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	draft, err := h.draftService.GetDraft(r.Context(), device, competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"draft": draft}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DraftHandler) SavePick(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")

	device, err := deviceID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

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

	draft, err := h.draftService.SavePick(r.Context(), device, competitionID, models.Pick{
		MatchID: input.MatchID,
		Winner:  input.Winner,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"draft": draft}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DraftHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")

	device, err := deviceID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.draftService.ClearDraft(r.Context(), device, competitionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

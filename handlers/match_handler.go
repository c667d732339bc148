package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

type slotRequest struct {
	Team models.TeamSlot `json:"team"`
}

type walkoverRequest struct {
	Winner models.TeamSlot `json:"winner"`
}

func (h *MatchHandler) ids(r *http.Request) (string, string, error) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		return "", "", err
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		return "", "", err
	}
	return tournamentID, matchID, nil
}

func (h *MatchHandler) writeResult(w http.ResponseWriter, r *http.Request, result *services.OperationResult, err error) {
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments/{tournamentID}/matches?stage=&status=&category=
func (h *MatchHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	filter := services.ListMatchesFilter{Category: query.Get("category")}
	if raw := query.Get("stage"); raw != "" {
		stage := models.Stage(raw)
		filter.Stage = &stage
	}
	if raw := query.Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		filter.Status = &status
	}

	matches, err := h.matchService.ListMatches(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordPointHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/points
func (h *MatchHandler) RecordPointHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := h.ids(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req slotRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if !req.Team.Valid() {
		badRequestResponse(w, r, errors.New("team must be team1 or team2"))
		return
	}

	result, err := h.matchService.RecordPoint(r.Context(), tournamentID, matchID, req.Team)
	h.writeResult(w, r, result, err)
}

// UndoPointHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/undo
func (h *MatchHandler) UndoPointHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := h.ids(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req slotRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if !req.Team.Valid() {
		badRequestResponse(w, r, errors.New("team must be team1 or team2"))
		return
	}

	result, err := h.matchService.UndoPoint(r.Context(), tournamentID, matchID, req.Team)
	h.writeResult(w, r, result, err)
}

// StartSetHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/sets
func (h *MatchHandler) StartSetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := h.ids(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.StartSet(r.Context(), tournamentID, matchID)
	h.writeResult(w, r, result, err)
}

// WalkoverHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/walkover
func (h *MatchHandler) WalkoverHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := h.ids(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req walkoverRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if !req.Winner.Valid() {
		badRequestResponse(w, r, errors.New("winner must be team1 or team2"))
		return
	}

	result, err := h.matchService.RecordWalkover(r.Context(), tournamentID, matchID, req.Winner)
	h.writeResult(w, r, result, err)
}

// AssignCourtHandler handles PUT /tournaments/{tournamentID}/matches/{matchID}/court
func (h *MatchHandler) AssignCourtHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, err := h.ids(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.AssignCourtInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.AssignCourt(r.Context(), tournamentID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

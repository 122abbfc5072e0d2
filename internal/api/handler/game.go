package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nickagee13/commandtrack/internal/api/request"
	"github.com/nickagee13/commandtrack/internal/api/response"
	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/services/game"
)

// GameHandler handles game record endpoints
type GameHandler struct {
	gameService *game.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameService *game.Service) *GameHandler {
	return &GameHandler{
		gameService: gameService,
	}
}

// Record handles POST /api/v1/games
func (h *GameHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req request.RecordGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	players := make([]model.GamePlayer, len(req.Players))
	for i, p := range req.Players {
		if p.ProfileID != nil && p.GuestName != "" {
			WriteError(w, NewInvalidRequestError("a player cannot have both profile_id and guest_name"))
			return
		}
		if p.ProfileID == nil && p.GuestName == "" {
			WriteError(w, NewInvalidRequestError("each player needs a profile_id or guest_name"))
			return
		}

		colors, ok := model.ParseColorIdentity(p.ColorIdentity)
		if !ok {
			WriteError(w, NewInvalidRequestError("color_identity must use only WUBRG symbols"))
			return
		}

		var participant model.Participant
		if p.ProfileID != nil {
			participant = model.ProfileParticipant(model.ProfileID(*p.ProfileID))
		} else {
			participant = model.GuestParticipant(p.GuestName)
		}

		players[i] = model.GamePlayer{
			Participant:    participant,
			DisplayName:    p.DisplayName,
			Commander:      p.Commander,
			ColorIdentity:  colors,
			Placement:      p.Placement,
			FinalLife:      p.FinalLife,
			DamageDealt:    p.DamageDealt,
			DamageReceived: p.DamageReceived,
			TurnsSurvived:  p.TurnsSurvived,
		}
	}

	params := game.RecordParams{
		Players:   players,
		TurnCount: req.TurnCount,
	}
	if req.StartedAt != nil {
		params.StartedAt = *req.StartedAt
	}

	g, err := h.gameService.RecordGame(r.Context(), params)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(g))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	g, err := h.gameService.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// ListForProfile handles GET /api/v1/profiles/{id}/games
func (h *GameHandler) ListForProfile(w http.ResponseWriter, r *http.Request) {
	profileID := model.ProfileID(mux.Vars(r)["id"])

	games, err := h.gameService.ListForProfile(r.Context(), profileID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameListFromModels(games))
}

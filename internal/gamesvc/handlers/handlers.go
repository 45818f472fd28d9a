package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/jwtauth"

	"github.com/tdnguyen/cardtable-services/internal/gamesvc/service"
)

type Handler struct {
	tokenAuth   *jwtauth.JWTAuth
	gameService *service.GameService
}

func NewHandler(gameService *service.GameService) *Handler {
	return &Handler{gameService: gameService}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "game service is running at port " + os.Getenv("GAME_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	json.NewEncoder(w).Encode(rsp)
}

// ActiveGameHandler exposes the active game for monitoring.
func (h *Handler) ActiveGameHandler(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameService.GetActiveGame(r.Context())
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: err.Error()})
		return
	}
	if game == nil {
		h.CreateResponse(w, Response{Code: http.StatusNotFound, Message: "no active game"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: game})
}

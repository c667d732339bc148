package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub               *realtime.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
	logger            *log.Logger
}

// NewWebSocketHandler accepts connections from any origin when allowedOrigins
// is empty or contains "*".
func NewWebSocketHandler(hub *realtime.Hub, ts services.TournamentService, allowedOrigins []string, logger *log.Logger) *WebSocketHandler {
	if logger == nil {
		logger = log.Default()
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		logger:            logger.WithPrefix("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

// ServeWs handles GET /ws/tournaments/{tournamentID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.tournamentService.GetTournament(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Warn("websocket upgrade failed", "tournament_id", tournamentID, "err", err)
		return
	}

	client := realtime.NewClient(h.hub, conn, realtime.RoomID(tournamentID))
	if !h.hub.Subscribe(client) {
		h.logger.Warn("hub stopped, dropping websocket client", "tournament_id", tournamentID)
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("client subscribed", "room", client.Room)
}

// HealthHandler handles GET /healthz
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

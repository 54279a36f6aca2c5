package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for the drawing feed
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleDrawingConnection upgrades a feed connection. The optional drawing_id
// query parameter narrows the feed to one drawing.
func (h *WebSocketHandler) HandleDrawingConnection(w http.ResponseWriter, r *http.Request) {
	drawingID := r.URL.Query().Get("drawing_id")

	if err := h.connectionManager.UpgradeConnection(w, r, drawingID); err != nil {
		// the upgrader already replied with an HTTP error
		log.Error().
			Err(err).
			Str("drawing_id", drawingID).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to write connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/drawings", h.HandleDrawingConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}

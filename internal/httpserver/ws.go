// apps/go-server/internal/httpserver/ws.go
//
// Live trip stream. A client opens GET /game/{id}/ws and receives the trip
// state right away, then again after every accepted move and when the trip
// ends. The stream is read-only; moves still go through POST /game/move.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/overland/apps/go-server/internal/store"
)

// Event types sent over WebSocket.
const (
	EventState    = "state"
	EventMoved    = "moved"
	EventFinished = "finished"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second
	maxMsgSize  = 512
	sendBufSize = 32
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	Data   any    `json:"data"`
}

type wsConn struct {
	conn   *websocket.Conn
	gameID string
	send   chan []byte
}

// Hub tracks WebSocket subscribers per trip.
type Hub struct {
	mu    sync.RWMutex
	games map[string]map[*wsConn]struct{}
}

func NewHub() *Hub {
	return &Hub{games: make(map[string]map[*wsConn]struct{})}
}

func (h *Hub) register(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.games[c.gameID] == nil {
		h.games[c.gameID] = make(map[*wsConn]struct{})
	}
	h.games[c.gameID][c] = struct{}{}
}

func (h *Hub) unregister(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.games[c.gameID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.games, c.gameID)
	}
	close(c.send)
}

// BroadcastToGame sends an event to every subscriber of a trip. Slow
// subscribers drop messages instead of blocking the mover.
func (h *Hub) BroadcastToGame(gameID string, event WSEvent) {
	h.mu.RLock()
	n := len(h.games[gameID])
	h.mu.RUnlock()
	if n == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("marshal ws event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.games[gameID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("gameId", gameID).Msg("dropping ws message, buffer full")
		}
	}
}

// Subscribers is the number of open streams for a trip.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == s.cfg.ClientOrigin
		},
	}
}

// handleWS upgrades to a WebSocket subscribed to one trip.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("ws upgrade failed")
		return
	}
	c := &wsConn{conn: conn, gameID: id, send: make(chan []byte, sendBufSize)}

	first, _ := json.Marshal(WSEvent{Type: EventState, GameID: id, Data: s.present(v)})
	c.send <- first
	s.hub.register(c)

	go s.writePump(c)
	go s.readPump(c)
	log.Debug().Str("gameId", id).Int("subscribers", s.hub.Subscribers(id)).Msg("ws connected")
}

// readPump only services control frames; client messages are ignored.
func (s *Server) readPump(c *wsConn) {
	defer func() {
		s.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("gameId", c.gameID).Msg("ws unexpected close")
			}
			return
		}
	}
}

func (s *Server) writePump(c *wsConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

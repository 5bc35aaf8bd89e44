package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsClient struct {
	gameID string
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

type wsMessage struct {
	Type   string `json:"type"`
	Column *int   `json:"column,omitempty"`
}

// handleWS streams one game: the client sends {"type":"move","column":N}
// and gets back a state or error message.
func (s *Server) handleWS(c *gin.Context) {
	id := c.Query("game")
	snap, err := s.manager.Get(id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "game", id, "err", err)
		return
	}
	client := &wsClient{
		gameID: id,
		conn:   conn,
		send:   make(chan []byte, 8),
		server: s,
	}
	client.sendJSON(gin.H{"type": "state", "game": newGameView(snap)})

	go client.writePump()
	go client.readPump()
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *wsClient) readPump() {
	defer close(c.send)
	s := c.server
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			s.logger.Debug("websocket closed", "game", c.gameID, "err", err)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendJSON(gin.H{"type": "error", "message": "invalid message"})
			continue
		}
		if msg.Type != "move" || msg.Column == nil {
			c.sendJSON(gin.H{"type": "error", "message": "expected a move with a column"})
			continue
		}

		snap, err := s.move(context.Background(), c.gameID, *msg.Column)
		if err != nil {
			c.sendJSON(gin.H{"type": "error", "message": err.Error()})
			continue
		}
		c.sendJSON(gin.H{"type": "state", "game": newGameView(snap)})
	}
}

func (c *wsClient) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		c.server.logger.Warn("websocket send buffer full", "game", c.gameID)
	}
}

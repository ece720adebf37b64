package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is checked by middleware.WebSocketCORSCheck
	},
}

// WSMessage is a client message.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type AimData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type frameMessage struct {
	Type string `json:"type"`
	game.Snapshot
}

// Client is one play socket bound to one session.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	input     *game.InputQueue
	manager   *game.SessionManager
	frames    <-chan game.Snapshot
	send      chan []byte
}

// Handler serves play sockets for a SessionManager.
type Handler struct {
	manager *game.SessionManager
	secret  string
}

func NewHandler(manager *game.SessionManager, secret string) *Handler {
	return &Handler{manager: manager, secret: secret}
}

// HandleSession upgrades GET /sessions/:id/ws?pt=<player token>.
func (h *Handler) HandleSession(c *gin.Context) {
	sessionID := c.Param("id")
	playerToken := c.Query("pt")
	if playerToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pt required"})
		return
	}

	sid, err := auth.ParsePlayerToken(h.secret, playerToken)
	if err != nil || sid != sessionID {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid player token"})
		return
	}

	input, err := h.manager.Input(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	frames, unsubscribe, err := h.manager.Subscribe(sessionID)
	if errors.Is(err, game.ErrSessionOver) {
		c.JSON(http.StatusGone, gin.H{"error": "session is over"})
		return
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		unsubscribe()
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:      conn,
		sessionID: sessionID,
		input:     input,
		manager:   h.manager,
		frames:    frames,
		send:      make(chan []byte, 16),
	}
	log.Printf("[WS] Player connected to session %s", sessionID)

	if snap, err := h.manager.Snapshot(sessionID); err == nil {
		client.queueFrame(snap)
	}

	go client.writePump()
	go client.readPump(unsubscribe)
}

func (c *Client) queueFrame(snap game.Snapshot) {
	data, err := json.Marshal(frameMessage{Type: "frame", Snapshot: snap})
	if err != nil {
		log.Printf("[WS] Error marshaling frame for session %s: %v", c.sessionID, err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump turns client messages into input edges until the socket closes.
func (c *Client) readPump(unsubscribe func()) {
	defer func() {
		unsubscribe()
		c.conn.Close()
		log.Printf("[WS] Player disconnected from session %s", c.sessionID)
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for session %s: %v", c.sessionID, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg WSMessage) {
	c.manager.Touch(c.sessionID)

	switch msg.Type {
	case "aim":
		var data AimData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid aim data")
			return
		}
		c.input.Aim(game.Vec2{X: data.X, Y: data.Y})

	case string(game.EdgeTriggerDown):
		c.input.Press()

	case string(game.EdgeTriggerUp):
		c.input.ReleaseTrigger()

	case "quit":
		c.input.Quit()

	default:
		c.sendError("Unknown message type")
	}
}

// writePump forwards frames and queued messages, pinging while idle. It
// exits when the frame channel is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case snap, ok := <-c.frames:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				for pending := len(c.send); pending > 0; pending-- {
					if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
						return
					}
				}
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			c.queueFrame(snap)

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for session %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	select {
	case c.send <- data:
	default:
	}
}

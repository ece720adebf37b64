package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/redis/go-redis/v9"
)

type spectator struct {
	conn      *websocket.Conn
	sessionID string // empty follows every session
	send      chan []byte
}

// EventRelay fans the Redis events channel out to spectator sockets, so
// watchers see pots and outcomes from every server instance.
type EventRelay struct {
	rdb *redis.Client

	mu         sync.RWMutex
	spectators map[*spectator]struct{}
}

func NewEventRelay(rdb *redis.Client) *EventRelay {
	return &EventRelay{
		rdb:        rdb,
		spectators: make(map[*spectator]struct{}),
	}
}

// Run subscribes to game.EventsChannel until ctx is done.
func (r *EventRelay) Run(ctx context.Context) error {
	if r.rdb == nil {
		log.Println("[WS] Redis client not set; event relay not started")
		<-ctx.Done()
		return nil
	}

	pubsub := r.rdb.Subscribe(ctx, game.EventsChannel)
	defer pubsub.Close()
	ch := pubsub.Channel()
	log.Printf("[WS] %s subscriber started", game.EventsChannel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.relay([]byte(msg.Payload))
		}
	}
}

func (r *EventRelay) relay(payload []byte) {
	var ev game.SessionEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return
	}
	data, err := json.Marshal(map[string]interface{}{
		"type":  "event",
		"event": ev,
	})
	if err != nil {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for s := range r.spectators {
		if s.sessionID != "" && s.sessionID != ev.SessionID {
			continue
		}
		select {
		case s.send <- data:
		default:
			log.Printf("[WS] spectator buffer full, dropping %s event for session %s", ev.Type, ev.SessionID)
		}
	}
}

func (r *EventRelay) add(s *spectator) {
	r.mu.Lock()
	r.spectators[s] = struct{}{}
	r.mu.Unlock()
}

func (r *EventRelay) remove(s *spectator) {
	r.mu.Lock()
	if _, ok := r.spectators[s]; ok {
		delete(r.spectators, s)
		close(s.send)
	}
	r.mu.Unlock()
}

// HandleEvents upgrades GET /events[?session=<id>] to a spectator socket.
func (r *EventRelay) HandleEvents(c *gin.Context) {
	if r.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event relay disabled"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}
	s := &spectator{
		conn:      conn,
		sessionID: c.Query("session"),
		send:      make(chan []byte, 32),
	}
	r.add(s)

	go r.writeSpectator(s)
	go func() {
		defer func() {
			r.remove(s)
			conn.Close()
		}()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (r *EventRelay) writeSpectator(s *spectator) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/models"
	"github.com/playmatatu/billiards/internal/store"
)

// SessionHistory reads the persisted shot ledger.
type SessionHistory interface {
	GetSession(ctx context.Context, id string) (*models.BilliardsSession, error)
	ListShots(ctx context.Context, sessionID string) ([]models.BilliardsShot, error)
}

// CreateSession starts a session and returns the player token for its socket
func CreateSession(m *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.Create()
		if err != nil {
			log.Printf("[ERROR] CreateSession - %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		ttl := time.Duration(cfg.PlayerTokenMin) * time.Minute
		token, err := auth.IssuePlayerToken(cfg.JWTSecret, id, ttl)
		if err != nil {
			log.Printf("[ERROR] CreateSession - token for %s: %v", id, err)
			m.Remove(id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		c.Header("X-Session-ID", id)
		c.JSON(http.StatusCreated, gin.H{
			"session_id":   id,
			"player_token": token,
			"ws_url":       "/api/v1/sessions/" + id + "/ws?pt=" + token,
			"expires_in":   int(ttl.Seconds()),
		})
	}
}

// GetSession returns the latest snapshot. Sessions that are no longer live
// in this process are served from the Redis cache when available.
func GetSession(m *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		snap, err := m.Snapshot(id)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"live": true, "snapshot": snap})
			return
		}

		snap, err = m.CachedSnapshot(c.Request.Context(), id)
		if errors.Is(err, game.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			log.Printf("[REDIS] GetSession %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"live": false, "snapshot": snap})
	}
}

// ListShots returns the persisted session record and its shots
func ListShots(history SessionHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		if history == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shot ledger disabled"})
			return
		}
		id := c.Param("id")
		ctx := c.Request.Context()

		sess, err := history.GetSession(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			log.Printf("[DB] ListShots - session %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			return
		}

		shots, err := history.ListShots(ctx, id)
		if err != nil {
			log.Printf("[DB] ListShots - shots for %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shots"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"session": sess, "shots": shots})
	}
}

// RemoveSession ends a live session (admin only)
func RemoveSession(m *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := m.Remove(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		log.Printf("[ADMIN] Session %s removed", id)
		c.JSON(http.StatusOK, gin.H{"removed": id})
	}
}

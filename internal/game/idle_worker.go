package game

import (
	"context"
	"log"
	"time"
)

// StartIdleWorker expires sessions that have seen no input for the session TTL.
func StartIdleWorker(ctx context.Context, m *SessionManager, interval time.Duration) {
	if m == nil || m.opts.SessionTTL <= 0 {
		log.Println("[IDLE] Session TTL disabled; idle worker not started")
		return
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case now := <-ticker.C:
				if n := m.ExpireIdle(now); n > 0 {
					log.Printf("[IDLE] Expired %d idle sessions, %d live", n, m.Count())
				}
			}
		}
	}()
}

package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionOver     = errors.New("session is over")
)

// EventsChannel is the Redis pub/sub channel for pot, respawn and outcome events.
const EventsChannel = "billiards_events"

// SnapshotKey is the Redis key holding a session's latest snapshot.
func SnapshotKey(sessionID string) string {
	return "billiards:session:" + sessionID + ":state"
}

// ShotRecorder persists session history. Calls are made from the tick loop
// and must not block.
type ShotRecorder interface {
	SessionStarted(sessionID string, startedAt time.Time)
	ShotTaken(sessionID string, shot ShotRecord)
	SessionEnded(sessionID string, outcome Outcome, potted []int)
}

// Options configures a SessionManager.
type Options struct {
	Settings Settings
	Table    *Table
	FrameHz  float64

	SessionTTL  time.Duration
	SnapshotTTL time.Duration
	// Minimum gap between two Redis snapshot writes for one session.
	CacheInterval time.Duration
}

type liveSession struct {
	mu        sync.Mutex
	session   *Session
	input     *InputQueue
	stepper   *Stepper
	subs      map[int]chan Snapshot
	nextSub   int
	last      Snapshot
	createdAt time.Time
	touched   time.Time
	cachedAt  time.Time
	ended     bool
}

// SessionManager owns every live session and ticks them on one goroutine.
type SessionManager struct {
	opts     Options
	rdb      *redis.Client
	recorder ShotRecorder

	mu       sync.RWMutex
	sessions map[string]*liveSession

	outbox chan outboxItem
}

type outboxItem struct {
	snap  *Snapshot
	event *SessionEvent
}

// SessionEvent is published on EventsChannel.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	Type      string    `json:"type"`
	BallID    int       `json:"ball_id,omitempty"`
	Outcome   *Outcome  `json:"outcome,omitempty"`
	At        time.Time `json:"at"`
}

// NewSessionManager creates a manager. rdb and recorder may be nil.
func NewSessionManager(opts Options, rdb *redis.Client, recorder ShotRecorder) *SessionManager {
	if opts.Table == nil {
		opts.Table = NewStandardTable(opts.Settings)
	}
	if opts.FrameHz <= 0 {
		opts.FrameHz = 60
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = time.Hour
	}
	if opts.CacheInterval <= 0 {
		opts.CacheInterval = 250 * time.Millisecond
	}
	return &SessionManager{
		opts:     opts,
		rdb:      rdb,
		recorder: recorder,
		sessions: make(map[string]*liveSession),
		outbox:   make(chan outboxItem, 256),
	}
}

// Create starts a new session and returns its id.
func (m *SessionManager) Create() (string, error) {
	id := uuid.NewString()
	sess, err := NewSession(id, m.opts.Table, m.opts.Settings)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	now := time.Now()
	ls := &liveSession{
		session:   sess,
		input:     NewInputQueue(),
		stepper:   NewStepper(m.opts.Settings),
		subs:      make(map[int]chan Snapshot),
		last:      sess.Snapshot(),
		createdAt: now,
		touched:   now,
	}

	m.mu.Lock()
	m.sessions[id] = ls
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.SessionStarted(id, now)
	}
	log.Printf("[SESSION] Created session %s", id)
	return id, nil
}

func (m *SessionManager) get(id string) (*liveSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ls, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

// Snapshot returns the state after the session's most recent frame.
func (m *SessionManager) Snapshot(id string) (Snapshot, error) {
	ls, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.last, nil
}

// Input returns the session's input queue and marks it active.
func (m *SessionManager) Input(id string) (*InputQueue, error) {
	ls, err := m.get(id)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	ls.touched = time.Now()
	ls.mu.Unlock()
	return ls.input, nil
}

// Touch marks a session active so the idle worker leaves it alone.
func (m *SessionManager) Touch(id string) {
	if ls, err := m.get(id); err == nil {
		ls.mu.Lock()
		ls.touched = time.Now()
		ls.mu.Unlock()
	}
}

// Subscribe registers for per-frame snapshots. Slow subscribers miss frames
// rather than stall the loop. The channel is closed when the session goes away.
func (m *SessionManager) Subscribe(id string) (<-chan Snapshot, func(), error) {
	ls, err := m.get(id)
	if err != nil {
		return nil, nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.session.Done() {
		return nil, nil, ErrSessionOver
	}
	ch := make(chan Snapshot, 8)
	key := ls.nextSub
	ls.nextSub++
	ls.subs[key] = ch
	ls.touched = time.Now()

	cancel := func() {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		if c, ok := ls.subs[key]; ok {
			delete(ls.subs, key)
			close(c)
		}
	}
	return ch, cancel, nil
}

// Remove ends a session immediately.
func (m *SessionManager) Remove(id string) error {
	m.mu.Lock()
	ls, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	ls.mu.Lock()
	m.finish(ls)
	ls.mu.Unlock()
	log.Printf("[SESSION] Removed session %s", id)
	return nil
}

// finish closes subscribers and records the end once. ls.mu must be held.
func (m *SessionManager) finish(ls *liveSession) {
	for key, ch := range ls.subs {
		delete(ls.subs, key)
		close(ch)
	}
	if !ls.ended {
		ls.ended = true
		if m.recorder != nil {
			m.recorder.SessionEnded(ls.session.ID, ls.session.Outcome(), ls.session.Potted())
		}
	}
}

// Count is the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Tick advances every session by elapsed wall time.
func (m *SessionManager) Tick(elapsed time.Duration) {
	m.mu.RLock()
	live := make([]*liveSession, 0, len(m.sessions))
	for _, ls := range m.sessions {
		live = append(live, ls)
	}
	m.mu.RUnlock()

	var done []string
	for _, ls := range live {
		if m.tickSession(ls, elapsed) {
			done = append(done, ls.session.ID)
		}
	}
	for _, id := range done {
		if err := m.Remove(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			log.Printf("[SESSION] Failed to remove finished session %s: %v", id, err)
		}
	}
}

// tickSession runs one frame and reports whether the session quit.
func (m *SessionManager) tickSession(ls *liveSession, elapsed time.Duration) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	n := ls.stepper.Advance(elapsed)
	if n == 0 {
		return false
	}
	sess := ls.session
	wasTerminal := sess.Outcome().Terminal()

	RunFrame(sess, ls.input.Drain(), n)

	snap := sess.Snapshot()
	snap.Events = sess.DrainEvents()
	ls.last = snap

	for _, shot := range sess.DrainShots() {
		if m.recorder != nil {
			m.recorder.ShotTaken(sess.ID, shot)
		}
	}
	for _, ev := range snap.Events {
		if ev.Type == EventPocket || ev.Type == EventRespawn {
			m.enqueue(outboxItem{event: &SessionEvent{SessionID: sess.ID, Type: ev.Type, BallID: ev.BallID, At: time.Now()}})
		}
	}
	if !wasTerminal && sess.Outcome().Terminal() {
		out := sess.Outcome()
		m.enqueue(outboxItem{event: &SessionEvent{SessionID: sess.ID, Type: "outcome", Outcome: &out, At: time.Now()}})
		if m.recorder != nil {
			m.recorder.SessionEnded(sess.ID, out, sess.Potted())
		}
		ls.ended = true
	}

	for _, ch := range ls.subs {
		select {
		case ch <- snap:
		default:
		}
	}

	if now := time.Now(); now.Sub(ls.cachedAt) >= m.opts.CacheInterval || len(snap.Events) > 0 {
		ls.cachedAt = now
		cached := snap
		m.enqueue(outboxItem{snap: &cached})
	}

	return sess.Done()
}

func (m *SessionManager) enqueue(item outboxItem) {
	if m.rdb == nil {
		return
	}
	select {
	case m.outbox <- item:
	default:
		log.Printf("[REDIS] Outbox full; dropping write")
	}
}

// ExpireIdle removes sessions with no input or subscriber activity for the TTL.
func (m *SessionManager) ExpireIdle(now time.Time) int {
	if m.opts.SessionTTL <= 0 {
		return 0
	}
	m.mu.RLock()
	var stale []string
	for id, ls := range m.sessions {
		ls.mu.Lock()
		idle := now.Sub(ls.touched) >= m.opts.SessionTTL && len(ls.subs) == 0
		ls.mu.Unlock()
		if idle {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if err := m.Remove(id); err == nil {
			log.Printf("[IDLE] Session %s expired", id)
			removed++
		}
	}
	return removed
}

// Run ticks all sessions at the frame rate until ctx is cancelled.
func (m *SessionManager) Run(ctx context.Context) error {
	go m.drainOutbox(ctx)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / m.opts.FrameHz))
	defer ticker.Stop()

	log.Printf("[SESSION] Tick loop started at %.0f Hz (physics %.0f Hz)", m.opts.FrameHz, m.opts.Settings.StepHz)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Println("[SESSION] Tick loop stopping")
			return ctx.Err()
		case now := <-ticker.C:
			m.Tick(now.Sub(last))
			last = now
		}
	}
}

// drainOutbox performs Redis writes off the tick goroutine.
func (m *SessionManager) drainOutbox(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-m.outbox:
			if item.snap != nil {
				if err := m.cacheSnapshot(ctx, *item.snap); err != nil {
					log.Printf("[REDIS] Failed to cache snapshot for %s: %v", item.snap.SessionID, err)
				}
			}
			if item.event != nil {
				if err := m.publishEvent(ctx, *item.event); err != nil {
					log.Printf("[REDIS] Failed to publish %s event for %s: %v", item.event.Type, item.event.SessionID, err)
				}
			}
		}
	}
}

func (m *SessionManager) cacheSnapshot(ctx context.Context, snap Snapshot) error {
	if m.rdb == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return m.rdb.SetEx(ctx, SnapshotKey(snap.SessionID), data, m.opts.SnapshotTTL).Err()
}

func (m *SessionManager) publishEvent(ctx context.Context, ev SessionEvent) error {
	if m.rdb == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return m.rdb.Publish(ctx, EventsChannel, data).Err()
}

// CachedSnapshot loads the last snapshot written to Redis, for sessions that
// are no longer live in this process.
func (m *SessionManager) CachedSnapshot(ctx context.Context, id string) (Snapshot, error) {
	if m.rdb == nil {
		return Snapshot{}, ErrSessionNotFound
	}
	data, err := m.rdb.Get(ctx, SnapshotKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrSessionNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load cached snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, nil
}

package game

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeRecorder struct {
	mu      sync.Mutex
	started []string
	shots   []ShotRecord
	ended   map[string]Outcome
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{ended: make(map[string]Outcome)}
}

func (f *fakeRecorder) SessionStarted(id string, _ time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, id)
}

func (f *fakeRecorder) ShotTaken(_ string, shot ShotRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shots = append(f.shots, shot)
}

func (f *fakeRecorder) SessionEnded(id string, out Outcome, _ []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended[id] = out
}

func newTestManager(rec ShotRecorder) *SessionManager {
	return NewSessionManager(Options{Settings: DefaultSettings(), SessionTTL: time.Minute}, nil, rec)
}

func TestManagerCreateAndSnapshot(t *testing.T) {
	rec := newFakeRecorder()
	m := newTestManager(rec)

	id, err := m.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Count() != 1 || len(rec.started) != 1 || rec.started[0] != id {
		t.Fatalf("session not registered: count=%d started=%v", m.Count(), rec.started)
	}

	snap, err := m.Snapshot(id)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.SessionID != id || snap.Phase != PhaseAiming || len(snap.Balls) != 16 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	if _, err := m.Snapshot("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestManagerTickAppliesInput(t *testing.T) {
	m := newTestManager(nil)
	id, _ := m.Create()

	q, err := m.Input(id)
	if err != nil {
		t.Fatal(err)
	}
	q.Aim(NewVec2(398, 339))
	q.Press()

	frames, cancel, err := m.Subscribe(id)
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	m.Tick(20 * time.Millisecond)

	select {
	case snap := <-frames:
		if snap.Phase != PhaseCharging || snap.Step != 2 {
			t.Errorf("expected charging after 2 steps, got %s at step %d", snap.Phase, snap.Step)
		}
		if !snap.ChargeVisible || snap.ChargeBars != 1 {
			t.Errorf("expected one visible charge bar, got %d", snap.ChargeBars)
		}
	default:
		t.Fatal("subscriber got no frame")
	}
}

func TestManagerRecordsShots(t *testing.T) {
	rec := newFakeRecorder()
	m := newTestManager(rec)
	id, _ := m.Create()
	q, _ := m.Input(id)

	q.Press()
	m.Tick(10 * time.Millisecond)
	q.ReleaseTrigger()
	m.Tick(10 * time.Millisecond)

	for i := 0; i < 3000; i++ {
		m.Tick(10 * time.Millisecond)
		rec.mu.Lock()
		n := len(rec.shots)
		rec.mu.Unlock()
		if n > 0 {
			break
		}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.shots) != 1 || rec.shots[0].Number != 1 {
		t.Fatalf("expected one recorded shot, got %+v", rec.shots)
	}
}

func TestManagerQuitRemovesSession(t *testing.T) {
	rec := newFakeRecorder()
	m := newTestManager(rec)
	id, _ := m.Create()

	frames, _, err := m.Subscribe(id)
	if err != nil {
		t.Fatal(err)
	}
	q, _ := m.Input(id)
	q.Quit()
	m.Tick(10 * time.Millisecond)

	if m.Count() != 0 {
		t.Fatal("quit session still live")
	}
	if _, ok := rec.ended[id]; !ok {
		t.Error("session end not recorded")
	}
	// drain the final frame, then the channel must be closed
	for range frames {
	}
	if err := m.Remove(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	m := newTestManager(nil)
	idle, _ := m.Create()
	busy, _ := m.Create()
	_, cancel, err := m.Subscribe(busy)
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	if n := m.ExpireIdle(time.Now()); n != 0 {
		t.Fatalf("fresh sessions expired: %d", n)
	}
	if n := m.ExpireIdle(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expected one expiry, got %d", n)
	}
	if _, err := m.Snapshot(idle); !errors.Is(err, ErrSessionNotFound) {
		t.Error("idle session survived")
	}
	if _, err := m.Snapshot(busy); err != nil {
		t.Error("subscribed session expired")
	}
}

func TestCachedSnapshotWithoutRedis(t *testing.T) {
	m := newTestManager(nil)
	if _, err := m.CachedSnapshot(t.Context(), "x"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

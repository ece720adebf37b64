package game

import "sync"

// InputQueue collects input from a transport or render goroutine until the
// simulation loop drains it once per frame.
type InputQueue struct {
	mu     sync.Mutex
	aim    Vec2
	hasAim bool
	edges  []Edge
	quit   bool
}

func NewInputQueue() *InputQueue {
	return &InputQueue{}
}

// Aim records the latest pointer position; older unread positions are dropped.
func (q *InputQueue) Aim(p Vec2) {
	q.mu.Lock()
	q.aim = p
	q.hasAim = true
	q.mu.Unlock()
}

func (q *InputQueue) Press() {
	q.push(EdgeTriggerDown)
}

func (q *InputQueue) ReleaseTrigger() {
	q.push(EdgeTriggerUp)
}

// Push queues a trigger edge. Unknown edges are dropped.
func (q *InputQueue) Push(e Edge) {
	switch e {
	case EdgeTriggerDown, EdgeTriggerUp:
		q.push(e)
	}
}

func (q *InputQueue) push(e Edge) {
	q.mu.Lock()
	q.edges = append(q.edges, e)
	q.mu.Unlock()
}

// Quit is sticky; every later Drain reports it.
func (q *InputQueue) Quit() {
	q.mu.Lock()
	q.quit = true
	q.mu.Unlock()
}

// Drain returns the pending input and clears the edges and the aim flag.
func (q *InputQueue) Drain() Input {
	q.mu.Lock()
	defer q.mu.Unlock()

	in := Input{
		Aim:    q.aim,
		HasAim: q.hasAim,
		Edges:  q.edges,
		Quit:   q.quit,
	}
	q.hasAim = false
	q.edges = nil
	return in
}

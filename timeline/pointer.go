package timeline

import "sync"

// PointerSource delivers window-level pointer events. Subscribe registers
// move and up handlers and returns the function that removes them.
type PointerSource interface {
	Subscribe(onMove, onUp func(y float64)) (unsubscribe func())
}

// PointerBus is an in-process PointerSource. Move and Up fan out to the
// current subscribers synchronously.
type PointerBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]pointerSub
}

type pointerSub struct {
	onMove func(float64)
	onUp   func(float64)
}

func NewPointerBus() *PointerBus {
	return &PointerBus{subs: map[int]pointerSub{}}
}

func (b *PointerBus) Subscribe(onMove, onUp func(y float64)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = pointerSub{onMove: onMove, onUp: onUp}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Move dispatches a pointer-move at vertical position y.
func (b *PointerBus) Move(y float64) {
	for _, s := range b.snapshot() {
		if s.onMove != nil {
			s.onMove(y)
		}
	}
}

// Up dispatches a pointer-up at vertical position y.
func (b *PointerBus) Up(y float64) {
	for _, s := range b.snapshot() {
		if s.onUp != nil {
			s.onUp(y)
		}
	}
}

// Listeners returns the number of active subscriptions.
func (b *PointerBus) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *PointerBus) snapshot() []pointerSub {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]pointerSub, 0, len(b.subs))
	for _, s := range b.subs {
		out = append(out, s)
	}
	return out
}

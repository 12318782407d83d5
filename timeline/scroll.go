package timeline

import (
	"sync"
	"time"
)

// Direction is a vertical or horizontal step of one unit.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

// Scroller drives the explicit up/down controls of the time window,
// including the press-and-hold mode that advances one hour per tick until
// released.
type Scroller struct {
	view     *ViewState
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewScroller(view *ViewState, interval time.Duration) *Scroller {
	if interval <= 0 {
		interval = DefaultGrid().ScrollInterval
	}
	return &Scroller{view: view, interval: interval}
}

// Step scrolls a day's window by a single hour.
func (s *Scroller) Step(day int, dir Direction) int {
	h, _ := s.view.Scroll(day, int(dir))
	return h
}

// Hold scrolls immediately and keeps scrolling one hour per tick until
// Release or Close. The hold ends by itself once the window hits the edge of
// the day. A new Hold replaces a running one.
func (s *Scroller) Hold(day int, dir Direction) int {
	s.Release()

	h, moved := s.view.Scroll(day, int(dir))
	if !moved {
		return h
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.mu.Lock()
	s.stop, s.done = stop, done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, moved := s.view.Scroll(day, int(dir)); !moved {
					return
				}
			}
		}
	}()
	return h
}

// Holding reports whether a press-and-hold timer is running.
func (s *Scroller) Holding() bool {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Release stops a running hold and waits for its timer to exit.
func (s *Scroller) Release() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Close releases the timer; the scroller must not be used afterwards.
func (s *Scroller) Close() {
	s.Release()
}

// Package debouncetest provee un reloj manual para testear código que usa
// debounce sin dormir.
package debouncetest

import (
	"sync"
	"time"

	"baby-care-log/internal/core/debounce"
)

// Scheduler es un debounce.Scheduler que solo avanza con Advance.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers []*timer
}

var _ debounce.Scheduler = (*Scheduler)(nil)

func New() *Scheduler {
	return &Scheduler{}
}

type timer struct {
	s     *Scheduler
	id    int
	at    time.Duration
	f     func()
	armed bool
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	was := t.armed
	t.armed = false
	return was
}

func (s *Scheduler) AfterFunc(d time.Duration, f func()) debounce.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t := &timer{s: s, id: s.nextID, at: s.now + d, f: f, armed: true}
	s.timers = append(s.timers, t)
	return t
}

// Advance mueve el reloj d hacia adelante y ejecuta, en orden, los timers
// que vencen. Los callbacks corren sin el lock, así pueden re-armar timers;
// un timer armado durante Advance que vence dentro del rango también corre.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		next.armed = false
		s.now = next.at
		s.mu.Unlock()
		next.f()
		s.mu.Lock()
	}
	s.now = target
	s.compact()
	s.mu.Unlock()
}

// Now devuelve el tiempo transcurrido desde New.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Armed devuelve cuántos timers siguen pendientes.
func (s *Scheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if t.armed {
			n++
		}
	}
	return n
}

func (s *Scheduler) nextDue(target time.Duration) *timer {
	var best *timer
	for _, t := range s.timers {
		if !t.armed || t.at > target {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.id < best.id) {
			best = t
		}
	}
	return best
}

func (s *Scheduler) compact() {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if t.armed {
			kept = append(kept, t)
		}
	}
	s.timers = kept
}

// Package debounce agrupa llamadas rápidas sucesivas en una sola llamada
// diferida: gana la última, y cada llamada reinicia la ventana.
package debounce

import (
	"sync"
	"time"
)

// Timer es lo mínimo que necesitamos de un timer armado.
type Timer interface {
	Stop() bool
}

// Scheduler arma callbacks diferidos. En producción es time.AfterFunc; en
// tests se usa debouncetest.Scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler usa el reloj del sistema.
func RealScheduler() Scheduler { return realScheduler{} }

// Debouncer[T] invoca fn con los argumentos de la última Call, una vez que
// pasó window sin llamadas nuevas.
//
// Todos los métodos son seguros para uso concurrente. fn nunca se invoca con
// el lock tomado.
type Debouncer[T any] struct {
	mu     sync.Mutex
	window time.Duration
	fn     func(T)
	sched  Scheduler

	timer   Timer
	pending bool
	args    T
	seq     uint64 // invalida callbacks de timers que perdieron contra Cancel/Call
}

// New crea un debouncer. sched nil usa el reloj real.
func New[T any](window time.Duration, fn func(T), sched Scheduler) *Debouncer[T] {
	if sched == nil {
		sched = RealScheduler()
	}
	return &Debouncer[T]{
		window: window,
		fn:     fn,
		sched:  sched,
	}
}

// Window devuelve la ventana de espera configurada.
func (d *Debouncer[T]) Window() time.Duration { return d.window }

// Call programa fn(args) para dentro de window, descartando cualquier llamada
// programada anterior.
func (d *Debouncer[T]) Call(args T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	current := d.seq
	d.pending = true
	d.args = args

	d.timer = d.sched.AfterFunc(d.window, func() {
		d.fire(current)
	})
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if !d.pending || d.seq != seq {
		d.mu.Unlock()
		return
	}
	args := d.take()
	d.mu.Unlock()

	d.fn(args)
}

// Cancel descarta la llamada programada, si la hay. Una llamada que ya
// empezó a ejecutarse no se interrumpe.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
	var zero T
	d.args = zero
}

// Flush ejecuta ya la llamada pendiente, si existe. Devuelve si ejecutó algo.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	args := d.take()
	d.mu.Unlock()

	d.fn(args)
	return true
}

// Pending indica si hay una llamada programada que todavía no se ejecutó.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// take limpia el estado pendiente y devuelve los args (lock tomado).
func (d *Debouncer[T]) take() T {
	args := d.args
	var zero T
	d.args = zero
	d.pending = false
	d.timer = nil
	return args
}

// Package optimistic superpone las ediciones en vuelo sobre la última lista
// canónica de eventos, hasta que el próximo refresh traiga la verdad.
package optimistic

import (
	"slices"
	"sync"

	"baby-care-log/internal/domain/events"

	"github.com/oklog/ulid/v2"
)

// PendingMutation es una llamada de edición emitida y todavía sin completar.
type PendingMutation struct {
	EventID string
	Fields  events.Fields

	// Group agrupa llamadas del mismo tipo. Las ediciones van bajo
	// ActionEditGenericEvent; los borrados bajo su propia acción.
	Group     events.Action
	OriginKey string
}

// Tracker es el registro vivo de llamadas en vuelo.
type Tracker struct {
	mu      sync.Mutex
	pending []PendingMutation
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin registra una llamada y devuelve su clave de origen (ULID) y la
// función que la da por terminada. done es idempotente y debe llamarse
// siempre, haya salido bien o mal la llamada.
func (t *Tracker) Begin(group events.Action, eventID string, fields events.Fields) (string, func()) {
	key := ulid.Make().String()

	t.mu.Lock()
	t.pending = append(t.pending, PendingMutation{
		EventID:   eventID,
		Fields:    fields.Clone(),
		Group:     group,
		OriginKey: key,
	})
	t.mu.Unlock()

	var once sync.Once
	return key, func() {
		once.Do(func() { t.end(key) })
	}
}

func (t *Tracker) end(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = slices.DeleteFunc(t.pending, func(p PendingMutation) bool {
		return p.OriginKey == key
	})
}

// Pending devuelve una copia de las llamadas en vuelo, en orden de emisión.
func (t *Tracker) Pending() []PendingMutation {
	return t.snapshot("")
}

// Edits es Pending filtrado a las ediciones: lo que se superpone a la lista.
func (t *Tracker) Edits() []PendingMutation {
	return t.snapshot(events.ActionEditGenericEvent)
}

func (t *Tracker) snapshot(group events.Action) []PendingMutation {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]PendingMutation, 0, len(t.pending))
	for _, p := range t.pending {
		if group != "" && p.Group != group {
			continue
		}
		p.Fields = p.Fields.Clone()
		out = append(out, p)
	}
	return out
}

// Len devuelve cuántas llamadas siguen en vuelo.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

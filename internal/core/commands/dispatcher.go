// Package commands arma y envía las mutaciones de eventos al endpoint de
// comandos, registrándolas en el tracker optimista mientras están en vuelo.
package commands

import (
	"context"
	"strings"

	"baby-care-log/internal/core/formdata"
	"baby-care-log/internal/core/optimistic"
	"baby-care-log/internal/domain/events"
	"baby-care-log/internal/platform/logger"
)

// Runner es el transporte del endpoint de comandos.
type Runner interface {
	RunCommand(ctx context.Context, payload events.Fields) error
}

// SettledFunc se invoca cuando una llamada terminó (bien o mal), antes de
// sacarla del tracker. Es el disparador del refresh de la lista canónica.
type SettledFunc func(eventID string, action events.Action, err error)

type Dispatcher struct {
	runner    Runner
	tracker   *optimistic.Tracker
	log       logger.Logger
	onSettled SettledFunc
}

type Option func(*Dispatcher)

func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

func WithOnSettled(fn SettledFunc) Option {
	return func(d *Dispatcher) { d.onSettled = fn }
}

// NewDispatcher crea un dispatcher. tracker nil crea uno propio.
func NewDispatcher(runner Runner, tracker *optimistic.Tracker, opts ...Option) *Dispatcher {
	if tracker == nil {
		tracker = optimistic.NewTracker()
	}
	d := &Dispatcher{
		runner:  runner,
		tracker: tracker,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Tracker() *optimistic.Tracker { return d.tracker }

// Update envía UPDATE_<KIND>_EVENT con id y los campos cambiados, podado.
// Bloquea hasta que la llamada termina. Devuelve false sin enviar nada si el
// kind no tiene acción de update o el id está vacío; los errores de transporte
// se loguean y no se propagan.
func (d *Dispatcher) Update(ctx context.Context, kind events.Kind, id string, changed events.Fields) bool {
	call, ok := d.PrepareUpdate(kind, id, changed)
	if !ok {
		return false
	}
	call.Send(ctx)
	return true
}

// PrepareUpdate arma el payload de Update y lo registra ya en el tracker,
// sin enviarlo. El overlay queda visible desde este momento; el llamador debe
// invocar Send exactamente una vez.
func (d *Dispatcher) PrepareUpdate(kind events.Kind, id string, changed events.Fields) (*Call, bool) {
	action, ok := events.UpdateAction(kind)
	if !ok || strings.TrimSpace(id) == "" {
		d.log.Debug("update skipped", map[string]any{"kind": string(kind), "id": id})
		return nil, false
	}

	payload := changed.Clone()
	payload[events.ActionKey] = string(action)
	payload[events.FieldID] = id
	return d.begin(events.ActionEditGenericEvent, id, action, formdata.Prune(payload)), true
}

// Remove envía REMOVE_<KIND>_EVENT con solo el id.
func (d *Dispatcher) Remove(ctx context.Context, kind events.Kind, id string) bool {
	action, ok := events.RemoveAction(kind)
	if !ok || strings.TrimSpace(id) == "" {
		d.log.Debug("remove skipped", map[string]any{"kind": string(kind), "id": id})
		return false
	}

	d.begin(action, id, action, events.Fields{
		events.ActionKey: string(action),
		events.FieldID:   id,
	}).Send(ctx)
	return true
}

// Call es una mutación registrada en el tracker y todavía sin enviar.
type Call struct {
	d       *Dispatcher
	id      string
	action  events.Action
	payload events.Fields
	log     logger.Logger
	done    func()
}

func (d *Dispatcher) begin(group events.Action, id string, action events.Action, payload events.Fields) *Call {
	key, done := d.tracker.Begin(group, id, payload)
	return &Call{
		d:       d,
		id:      id,
		action:  action,
		payload: payload,
		log:     d.log.With(map[string]any{"action": string(action), "event_id": id, "origin": key}),
		done:    done,
	}
}

// Send hace la llamada y bloquea hasta que termina. La entrada del tracker
// sigue viva mientras corre el hook de settled: un refresh sincrónico ahí
// todavía ve la fila con la edición superpuesta.
func (c *Call) Send(ctx context.Context) {
	defer c.done()

	c.log.Debug("command sent", nil)
	err := c.d.runner.RunCommand(ctx, c.payload)
	if err != nil {
		// Sin reintento: el próximo refresh muestra la verdad canónica.
		c.log.Warn("command failed", map[string]any{"error": err})
	}
	if c.d.onSettled != nil {
		c.d.onSettled(c.id, c.action, err)
	}
}

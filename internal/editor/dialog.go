package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"baby-care-log/internal/core/commands"
	"baby-care-log/internal/core/debounce"
	"baby-care-log/internal/core/suggest"
	"baby-care-log/internal/domain/events"
	"baby-care-log/internal/platform/logger"
)

var ErrFieldNotForKind = errors.New("field not valid for event kind")

type DialogConfig struct {
	// Suggestions habilita el autocomplete de recetas (solo MEDICINE).
	Suggestions suggest.Source
	Scheduler   debounce.Scheduler
	Logger      logger.Logger
	OnChange    func()
}

// Dialog edita todos los campos de un evento y los envía juntos en Submit.
// No hay debounce: el envío es inmediato.
type Dialog struct {
	disp     *commands.Dispatcher
	original events.Event
	draft    events.Fields
	fetcher  *suggest.Fetcher
}

func NewDialog(disp *commands.Dispatcher, e events.Event, cfg DialogConfig) *Dialog {
	d := &Dialog{
		disp:     disp,
		original: e,
		draft:    events.Encode(e),
	}
	if cfg.Suggestions != nil && e.Kind() == events.KindMedicine {
		d.fetcher = suggest.New(cfg.Suggestions, e.ProfileID, suggest.Config{
			Scheduler: cfg.Scheduler,
			Logger:    cfg.Logger,
			OnChange:  cfg.OnChange,
		})
	}
	return d
}

func (d *Dialog) Kind() events.Kind { return d.original.Kind() }

// Draft devuelve el evento tal como quedaría con los cambios del formulario.
func (d *Dialog) Draft() (events.Event, error) {
	return events.Apply(d.original, d.draft)
}

func (d *Dialog) set(field string, v any) error {
	if !events.HasField(d.Kind(), field) {
		return fmt.Errorf("%w: %s on %s", ErrFieldNotForKind, field, d.Kind())
	}
	d.draft[field] = v
	return nil
}

func durationValue(v *time.Duration) any {
	if v == nil {
		return nil
	}
	return v.Milliseconds()
}

func floatValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (d *Dialog) SetTime(t time.Time) error { return d.set(events.FieldTime, events.FormatTime(t)) }
func (d *Dialog) SetComment(s string) error { return d.set(events.FieldComment, s) }

func (d *Dialog) SetDuration(v *time.Duration) error {
	return d.set(events.FieldDuration, durationValue(v))
}

func (d *Dialog) SetVolume(ml float64) error { return d.set(events.FieldVolume, ml) }

func (d *Dialog) SetFormulaMilkVolume(ml *float64) error {
	return d.set(events.FieldFormulaMilkVolume, floatValue(ml))
}

func (d *Dialog) SetLeftDuration(v *time.Duration) error {
	return d.set(events.FieldLeftDuration, durationValue(v))
}

func (d *Dialog) SetRightDuration(v *time.Duration) error {
	return d.set(events.FieldRightDuration, durationValue(v))
}

func (d *Dialog) SetPee(v bool) error  { return d.set(events.FieldPee, v) }
func (d *Dialog) SetPoop(v bool) error { return d.set(events.FieldPoop, v) }

func (d *Dialog) SetHeight(cm *float64) error { return d.set(events.FieldHeight, floatValue(cm)) }
func (d *Dialog) SetWeight(kg *float64) error { return d.set(events.FieldWeight, floatValue(kg)) }

func (d *Dialog) SetPrescription(s string) error { return d.set(events.FieldPrescription, s) }

func (d *Dialog) SetPurpose(p events.NotePurpose) error {
	return d.set(events.FieldPurpose, string(p))
}

func (d *Dialog) SetTitle(s string) error       { return d.set(events.FieldTitle, s) }
func (d *Dialog) SetDestination(s string) error { return d.set(events.FieldDestination, s) }

func (d *Dialog) SetEndTime(t *time.Time) error {
	if t == nil {
		return d.set(events.FieldEndTime, nil)
	}
	return d.set(events.FieldEndTime, events.FormatTime(*t))
}

// PrescriptionInput reenvía lo tipeado en el campo de receta al fetcher de
// sugerencias. Sin fetcher es un no-op.
func (d *Dialog) PrescriptionInput(text string, reason suggest.Reason) {
	if d.fetcher != nil {
		d.fetcher.Input(text, reason)
	}
}

func (d *Dialog) PrescriptionOptions(input string) []suggest.Choice {
	if d.fetcher == nil {
		return nil
	}
	return d.fetcher.Options(input)
}

func (d *Dialog) SuggestionState() suggest.State {
	if d.fetcher == nil {
		return suggest.Idle
	}
	return d.fetcher.State()
}

// ChoosePrescription fija la receta desde una opción del autocomplete
// (existente o texto libre).
func (d *Dialog) ChoosePrescription(c suggest.Choice) error {
	return d.SetPrescription(suggest.Choose(c))
}

// Submit envía time, comment y los campos del kind, podados. Devuelve false
// si no se envió nada (kind desconocido).
func (d *Dialog) Submit(ctx context.Context) bool {
	fields := events.Fields{}
	keys := append([]string{events.FieldTime, events.FieldComment}, events.FieldsOf(d.Kind())...)
	for _, k := range keys {
		if v, ok := d.draft[k]; ok {
			fields[k] = v
		}
	}
	return d.disp.Update(ctx, d.Kind(), d.original.ID, fields)
}

// Remove envía REMOVE_<KIND>_EVENT con solo el id.
func (d *Dialog) Remove(ctx context.Context) bool {
	return d.disp.Remove(ctx, d.Kind(), d.original.ID)
}

// Close libera el fetcher de sugerencias.
func (d *Dialog) Close() {
	if d.fetcher != nil {
		d.fetcher.Close()
	}
}

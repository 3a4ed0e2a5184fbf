package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnknownKind  = errors.New("unknown event kind")
)

// Fields es la forma plana (wire) de un evento completo o parcial:
// nombre de campo -> valor. Tiempos viajan como string RFC3339 y duraciones
// como milisegundos enteros.
type Fields map[string]any

func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	return maps.Clone(f)
}

// wireEvent es el struct auxiliar para decodificar Fields reutilizando tags JSON
// (tolera int/float indistintamente en los números).
type wireEvent struct {
	ID        string  `json:"id"`
	ProfileID string  `json:"profileId"`
	Kind      string  `json:"kind"`
	Time      string  `json:"time"`
	Comment   *string `json:"comment"`

	Volume            *float64 `json:"volume"`
	FormulaMilkVolume *float64 `json:"formulaMilkVolume"`
	Duration          *int64   `json:"duration"`
	LeftDuration      *int64   `json:"leftDuration"`
	RightDuration     *int64   `json:"rightDuration"`
	Pee               *bool    `json:"pee"`
	Poop              *bool    `json:"poop"`
	Height            *float64 `json:"height"`
	Weight            *float64 `json:"weight"`
	Prescription      *string  `json:"prescription"`
	Purpose           *string  `json:"purpose"`
	Title             *string  `json:"title"`
	Destination       *string  `json:"destination"`
	EndTime           *string  `json:"endTime"`
}

// Encode serializa el evento a su forma plana. No incluye hash.
func Encode(e Event) Fields {
	f := Fields{}
	if e.ID != "" {
		f[FieldID] = e.ID
	}
	if e.ProfileID != "" {
		f[FieldProfileID] = e.ProfileID
	}
	if k := e.Kind(); k != "" {
		f[FieldKind] = string(k)
	}
	if !e.Time.IsZero() {
		f[FieldTime] = FormatTime(e.Time)
	}
	if e.Comment != "" {
		f[FieldComment] = e.Comment
	}

	switch d := e.Details.(type) {
	case BottleFeed:
		f[FieldVolume] = d.Volume
		putFloat(f, FieldFormulaMilkVolume, d.FormulaMilkVolume)
		putDuration(f, FieldDuration, d.Duration)
	case Pumping:
		f[FieldVolume] = d.Volume
		putDuration(f, FieldDuration, d.Duration)
	case Nursing:
		putDuration(f, FieldLeftDuration, d.LeftDuration)
		putDuration(f, FieldRightDuration, d.RightDuration)
	case DiaperChange:
		f[FieldPee] = d.Pee
		f[FieldPoop] = d.Poop
	case Play:
		putDuration(f, FieldDuration, d.Duration)
	case Sleep:
		putDuration(f, FieldDuration, d.Duration)
	case Bath:
		putDuration(f, FieldDuration, d.Duration)
	case Measurement:
		putFloat(f, FieldHeight, d.Height)
		putFloat(f, FieldWeight, d.Weight)
	case Medicine:
		if d.Prescription != "" {
			f[FieldPrescription] = d.Prescription
		}
	case Note:
		if d.Purpose != NotePurposeGeneric {
			f[FieldPurpose] = string(d.Purpose)
		}
		if d.Title != "" {
			f[FieldTitle] = d.Title
		}
	case Travel:
		if d.Destination != "" {
			f[FieldDestination] = d.Destination
		}
		if d.EndTime != nil {
			f[FieldEndTime] = FormatTime(*d.EndTime)
		}
	}
	return f
}

// Decode construye un Event desde su forma plana. Los campos que no pertenecen
// al kind se ignoran. El hash entrante (si viene) se descarta: siempre se recalcula.
func Decode(f Fields) (Event, error) {
	b, err := json.Marshal(map[string]any(f))
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return w.event()
}

// Apply superpone fields sobre e (merge superficial, gana fields).
// id, kind, profileId, hash y la acción nunca se sobreescriben.
func Apply(e Event, fields Fields) (Event, error) {
	base := Encode(e)
	for k, v := range fields {
		switch k {
		case FieldID, FieldKind, FieldProfileID, FieldHash, ActionKey:
			continue
		}
		if !HasField(e.Kind(), k) {
			continue
		}
		base[k] = v
	}
	return Decode(base)
}

func (e Event) MarshalJSON() ([]byte, error) {
	f := Encode(e)
	f[FieldHash] = e.Hash()
	return json.Marshal(map[string]any(f))
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	ev, err := w.event()
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

// FormatTime es el formato de tiempos en el wire.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime acepta RFC3339 con o sin fracción de segundos.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time must be RFC3339", ErrInvalidInput)
	}
	return t, nil
}

func (w wireEvent) event() (Event, error) {
	kind := Kind(strings.TrimSpace(w.Kind))
	if !kind.Known() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, w.Kind)
	}

	e := Event{
		ID:        strings.TrimSpace(w.ID),
		ProfileID: strings.TrimSpace(w.ProfileID),
	}
	if w.Comment != nil {
		e.Comment = *w.Comment
	}
	if strings.TrimSpace(w.Time) != "" {
		t, err := ParseTime(w.Time)
		if err != nil {
			return Event{}, err
		}
		e.Time = t
	}

	switch kind {
	case KindBottleFeed:
		if w.Volume == nil {
			return Event{}, fmt.Errorf("%w: volume required", ErrInvalidInput)
		}
		e.Details = BottleFeed{
			Volume:            *w.Volume,
			FormulaMilkVolume: w.FormulaMilkVolume,
			Duration:          millis(w.Duration),
		}
	case KindPumping:
		if w.Volume == nil {
			return Event{}, fmt.Errorf("%w: volume required", ErrInvalidInput)
		}
		e.Details = Pumping{Volume: *w.Volume, Duration: millis(w.Duration)}
	case KindNursing:
		e.Details = Nursing{
			LeftDuration:  millis(w.LeftDuration),
			RightDuration: millis(w.RightDuration),
		}
	case KindDiaperChange:
		e.Details = DiaperChange{Pee: deref(w.Pee), Poop: deref(w.Poop)}
	case KindPlay:
		e.Details = Play{Duration: millis(w.Duration)}
	case KindSleep:
		e.Details = Sleep{Duration: millis(w.Duration)}
	case KindBath:
		e.Details = Bath{Duration: millis(w.Duration)}
	case KindMeasurement:
		e.Details = Measurement{Height: w.Height, Weight: w.Weight}
	case KindMedicine:
		e.Details = Medicine{Prescription: deref(w.Prescription)}
	case KindNote:
		purpose := NotePurpose(deref(w.Purpose))
		switch purpose {
		case NotePurposeGeneric, NotePurposeMemory, NotePurposeFoodFirstTry:
		default:
			return Event{}, fmt.Errorf("%w: unknown note purpose %q", ErrInvalidInput, purpose)
		}
		e.Details = Note{Purpose: purpose, Title: deref(w.Title)}
	case KindTravel:
		d := Travel{Destination: deref(w.Destination)}
		if w.EndTime != nil && strings.TrimSpace(*w.EndTime) != "" {
			t, err := ParseTime(*w.EndTime)
			if err != nil {
				return Event{}, err
			}
			d.EndTime = &t
		}
		e.Details = d
	}
	return e, nil
}

func putFloat(f Fields, name string, v *float64) {
	if v != nil {
		f[name] = *v
	}
}

func putDuration(f Fields, name string, d *time.Duration) {
	if d != nil {
		f[name] = d.Milliseconds()
	}
}

func millis(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

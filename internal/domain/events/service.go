package events

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

var (
	ErrKindMismatch = errors.New("event kind mismatch")
)

const (
	DefaultSuggestionLimit = 10
	suggestionCacheTTL     = 30 * time.Second
)

// Service es el handler de comandos del lado servidor: el único que crea,
// actualiza y borra eventos canónicos.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string

	prescriptions *ttlcache.Cache[string, []string]
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
		prescriptions: ttlcache.New[string, []string](
			ttlcache.WithTTL[string, []string](suggestionCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, []string](),
		),
	}
}

// Create registra un evento nuevo. fields trae los campos del kind; id y
// profileId del payload se ignoran.
func (s *Service) Create(ctx context.Context, profileID string, kind Kind, fields Fields) (Event, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return Event{}, ErrInvalidInput
	}
	if !kind.Known() {
		return Event{}, ErrUnknownKind
	}

	f := fields.Clone()
	delete(f, FieldID)
	f[FieldKind] = string(kind)
	f[FieldProfileID] = profileID

	e, err := Decode(f)
	if err != nil {
		return Event{}, err
	}
	if e.Time.IsZero() {
		e.Time = s.now()
	}
	if err := validate(e); err != nil {
		return Event{}, err
	}
	e.ID = s.newID()

	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	s.invalidate(e)
	return e, nil
}

// Update aplica un payload parcial: campo ausente = no tocar.
// El kind de la acción debe coincidir con el del evento guardado.
func (s *Service) Update(ctx context.Context, id string, kind Kind, fields Fields) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if current.Kind() != kind {
		return Event{}, fmt.Errorf("%w: event is %s, action is for %s", ErrKindMismatch, current.Kind(), kind)
	}

	updated, err := Apply(current, fields)
	if err != nil {
		return Event{}, err
	}
	if err := validate(updated); err != nil {
		return Event{}, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return Event{}, err
	}
	s.invalidate(updated)
	return updated, nil
}

// Remove borra el evento y devuelve su último estado.
func (s *Service) Remove(ctx context.Context, id string, kind Kind) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if current.Kind() != kind {
		return Event{}, fmt.Errorf("%w: event is %s, action is for %s", ErrKindMismatch, current.Kind(), kind)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return Event{}, err
	}
	s.invalidate(current)
	return current, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByProfile(ctx context.Context, profileID string, filter ListFilter) ([]Event, error) {
	return s.repo.ListByProfile(ctx, profileID, filter)
}

// TopPrescriptions alimenta el autocomplete de recetas. Cacheado por
// (perfil, texto) hasta la próxima escritura de un MEDICINE.
func (s *Service) TopPrescriptions(ctx context.Context, profileID, searchText string) ([]string, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, ErrInvalidInput
	}
	key := profileID + "\x00" + strings.ToLower(strings.TrimSpace(searchText))

	if item := s.prescriptions.Get(key); item != nil {
		return slices.Clone(item.Value()), nil
	}

	out, err := s.repo.TopPrescriptions(ctx, profileID, strings.TrimSpace(searchText), DefaultSuggestionLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	s.prescriptions.Set(key, slices.Clone(out), ttlcache.DefaultTTL)
	return out, nil
}

func (s *Service) invalidate(e Event) {
	if e.Kind() == KindMedicine {
		s.prescriptions.DeleteAll()
	}
}

func validate(e Event) error {
	if e.Time.IsZero() {
		return fmt.Errorf("%w: time required", ErrInvalidInput)
	}

	negative := func(name string, v *float64) error {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must be >= 0", ErrInvalidInput, name)
		}
		return nil
	}
	negDuration := func(name string, d *time.Duration) error {
		if d != nil && *d < 0 {
			return fmt.Errorf("%w: %s must be >= 0", ErrInvalidInput, name)
		}
		return nil
	}

	switch d := e.Details.(type) {
	case BottleFeed:
		return errors.Join(
			negative(FieldVolume, &d.Volume),
			negative(FieldFormulaMilkVolume, d.FormulaMilkVolume),
			negDuration(FieldDuration, d.Duration),
		)
	case Pumping:
		return errors.Join(negative(FieldVolume, &d.Volume), negDuration(FieldDuration, d.Duration))
	case Nursing:
		return errors.Join(negDuration(FieldLeftDuration, d.LeftDuration), negDuration(FieldRightDuration, d.RightDuration))
	case Play:
		return negDuration(FieldDuration, d.Duration)
	case Sleep:
		return negDuration(FieldDuration, d.Duration)
	case Bath:
		return negDuration(FieldDuration, d.Duration)
	case Measurement:
		return errors.Join(negative(FieldHeight, d.Height), negative(FieldWeight, d.Weight))
	case Travel:
		if d.EndTime != nil && d.EndTime.Before(e.Time) {
			return fmt.Errorf("%w: endTime before time", ErrInvalidInput)
		}
	case nil:
		return ErrUnknownKind
	}
	return nil
}

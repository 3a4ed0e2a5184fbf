package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name        string
	Nickname    string
	Gender      Gender
	DateOfBirth *time.Time
	Notes       string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Profile, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" || strings.TrimSpace(in.Name) == "" {
		return Profile{}, ErrInvalidInput
	}

	gender := in.Gender
	if gender == "" {
		gender = GenderUnknown
	}
	if !gender.valid() {
		return Profile{}, ErrInvalidInput
	}

	now := s.now()
	p := Profile{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Nickname:    strings.TrimSpace(in.Nickname),
		Gender:      gender,
		DateOfBirth: in.DateOfBirth,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Profile, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// Authorize devuelve el perfil si userID es su dueño.
// Lo usan los handlers de eventos sin importar este paquete más allá del servicio.
func (s *Service) Authorize(ctx context.Context, profileID, userID string) (Profile, error) {
	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return Profile{}, err
	}
	if p.OwnerUserID != strings.TrimSpace(userID) {
		return Profile{}, ErrForbidden
	}
	return p, nil
}

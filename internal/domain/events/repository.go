package events

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound lo devuelven los repositorios cuando el evento no existe.
var ErrNotFound = errors.New("event not found")

type Repository interface {
	Create(ctx context.Context, e Event) error
	Update(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	ListByProfile(ctx context.Context, profileID string, filter ListFilter) ([]Event, error)
	Delete(ctx context.Context, id string) error

	// TopPrescriptions devuelve las recetas distintas de eventos MEDICINE del perfil
	// que contienen searchText (case-insensitive), más frecuentes primero.
	TopPrescriptions(ctx context.Context, profileID, searchText string, limit int) ([]string, error)
}

type ListFilter struct {
	Kinds []Kind
	From  *time.Time
	To    *time.Time
	Query string
	Limit int
}

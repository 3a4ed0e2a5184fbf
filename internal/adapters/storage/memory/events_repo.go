package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"

	"baby-care-log/internal/domain/events"
)

type eventRepo struct {
	mu   sync.RWMutex
	byID map[string]events.Event
}

func NewEventRepo() events.Repository {
	return &eventRepo{
		byID: make(map[string]events.Event),
	}
}

func (r *eventRepo) Create(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("event already exists")
	}

	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) Update(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[e.ID]; !ok {
		return events.ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return e, nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return events.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *eventRepo) ListByProfile(ctx context.Context, profileID string, filter events.ListFilter) ([]events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	q := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]events.Event, 0)
	for _, e := range r.byID {
		if e.ProfileID != profileID {
			continue
		}
		if len(filter.Kinds) > 0 && !slices.Contains(filter.Kinds, e.Kind()) {
			continue
		}
		if filter.From != nil && e.Time.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Time.After(*filter.To) {
			continue
		}
		if q != "" && !strings.Contains(events.SearchText(e), q) {
			continue
		}
		out = append(out, e)
	}

	// Más reciente primero; a igual time, por id para que el orden sea estable.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.After(out[j].Time)
		}
		return out[i].ID < out[j].ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *eventRepo) TopPrescriptions(ctx context.Context, profileID, searchText string, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(searchText))
	counts := make(map[string]int)
	for _, e := range r.byID {
		if e.ProfileID != profileID {
			continue
		}
		m, ok := e.Details.(events.Medicine)
		if !ok || m.Prescription == "" || events.IsUnspecified(m.Prescription) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(m.Prescription), needle) {
			continue
		}
		counts[m.Prescription]++
	}

	type entry struct {
		name  string
		count int
	}
	ranked := make([]entry, 0, len(counts))
	for name, n := range counts {
		ranked = append(ranked, entry{name, n})
	}
	slices.SortFunc(ranked, func(a, b entry) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	out := make([]string, 0, min(limit, len(ranked)))
	for _, e := range ranked {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, e.name)
	}
	return out, nil
}

package events

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Event

	topCalls int
	top      []string
	topErr   error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Event{}}
}

func (r *testRepo) Create(ctx context.Context, e Event) error {
	if e.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *testRepo) Update(ctx context.Context, e Event) error {
	if _, ok := r.byID[e.ID]; !ok {
		return ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Event, error) {
	e, ok := r.byID[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return e, nil
}

func (r *testRepo) ListByProfile(ctx context.Context, profileID string, filter ListFilter) ([]Event, error) {
	out := make([]Event, 0)
	for _, e := range r.byID {
		if e.ProfileID == profileID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) TopPrescriptions(ctx context.Context, profileID, searchText string, limit int) ([]string, error) {
	r.topCalls++
	return r.top, r.topErr
}

// -------------------------
// Helpers
// -------------------------

func newTestService(repo *testRepo) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return at }
	n := 0
	s.newID = func() string {
		n++
		return "ev-" + strconv.Itoa(n)
	}
	return s
}

// -------------------------
// Tests
// -------------------------

func TestService_Create(t *testing.T) {
	repo := newTestRepo()
	s := newTestService(repo)
	ctx := context.Background()

	e, err := s.Create(ctx, "p-1", KindSleep, Fields{
		FieldID:       "client-chosen",
		FieldDuration: 3600000,
	})
	require.NoError(t, err)
	assert.Equal(t, "ev-1", e.ID)
	assert.Equal(t, "p-1", e.ProfileID)
	assert.Equal(t, at, e.Time, "time defaults to now")
	assert.Equal(t, time.Hour, *e.Details.(Sleep).Duration)
	assert.Contains(t, repo.byID, "ev-1")

	_, err = s.Create(ctx, " ", KindSleep, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Create(ctx, "p-1", Kind("TELEPORT"), nil)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = s.Create(ctx, "p-1", KindMeasurement, Fields{FieldWeight: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Create(ctx, "p-1", KindTravel, Fields{
		FieldTime:    "2024-03-02T00:00:00Z",
		FieldEndTime: "2024-03-01T00:00:00Z",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Len(t, repo.byID, 1)
}

func TestService_Update(t *testing.T) {
	repo := newTestRepo()
	s := newTestService(repo)
	ctx := context.Background()

	e, err := s.Create(ctx, "p-1", KindNursing, Fields{FieldLeftDuration: 60000, FieldComment: "izq"})
	require.NoError(t, err)

	// Solo el campo presente cambia.
	out, err := s.Update(ctx, e.ID, KindNursing, Fields{FieldRightDuration: 120000})
	require.NoError(t, err)
	d := out.Details.(Nursing)
	assert.Equal(t, time.Minute, *d.LeftDuration)
	assert.Equal(t, 2*time.Minute, *d.RightDuration)
	assert.Equal(t, "izq", out.Comment)
	assert.NotEqual(t, e.Hash(), out.Hash())
	assert.Equal(t, out, repo.byID[e.ID])

	_, err = s.Update(ctx, e.ID, KindSleep, Fields{FieldDuration: 1})
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = s.Update(ctx, "missing", KindNursing, Fields{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update(ctx, "", KindNursing, Fields{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Update(ctx, e.ID, KindNursing, Fields{FieldLeftDuration: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, out, repo.byID[e.ID], "rejected update leaves stored event intact")
}

func TestService_Remove(t *testing.T) {
	repo := newTestRepo()
	s := newTestService(repo)
	ctx := context.Background()

	e, err := s.Create(ctx, "p-1", KindBath, nil)
	require.NoError(t, err)

	_, err = s.Remove(ctx, e.ID, KindPlay)
	assert.ErrorIs(t, err, ErrKindMismatch)

	got, err := s.Remove(ctx, e.ID, KindBath)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Empty(t, repo.byID)

	_, err = s.Remove(ctx, e.ID, KindBath)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_TopPrescriptions_Cache(t *testing.T) {
	repo := newTestRepo()
	repo.top = []string{"Ibuprofen"}
	s := newTestService(repo)
	ctx := context.Background()

	for range 3 {
		out, err := s.TopPrescriptions(ctx, "p-1", " IBU ")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ibuprofen"}, out)
	}
	assert.Equal(t, 1, repo.topCalls, "same profile and text hit the cache")

	_, err := s.TopPrescriptions(ctx, "p-1", "ibu")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.topCalls, "search text is case-insensitive")

	// Una escritura que no es MEDICINE no invalida.
	_, err = s.Create(ctx, "p-1", KindSleep, nil)
	require.NoError(t, err)
	_, _ = s.TopPrescriptions(ctx, "p-1", "ibu")
	assert.Equal(t, 1, repo.topCalls)

	_, err = s.Create(ctx, "p-1", KindMedicine, Fields{FieldPrescription: "Ibuprofen"})
	require.NoError(t, err)
	_, _ = s.TopPrescriptions(ctx, "p-1", "ibu")
	assert.Equal(t, 2, repo.topCalls)

	_, err = s.TopPrescriptions(ctx, "", "ibu")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_TopPrescriptions_ErrorNotCached(t *testing.T) {
	repo := newTestRepo()
	repo.topErr = errors.New("db down")
	s := newTestService(repo)
	ctx := context.Background()

	_, err := s.TopPrescriptions(ctx, "p-1", "a")
	require.Error(t, err)

	repo.topErr = nil
	repo.top = nil
	out, err := s.TopPrescriptions(ctx, "p-1", "a")
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, 2, repo.topCalls)
}

func TestSearchText(t *testing.T) {
	e := Event{Comment: "Antes de DORMIR", Details: Medicine{Prescription: "Paracetamol"}}
	got := SearchText(e)
	assert.True(t, strings.Contains(got, "dormir"))
	assert.True(t, strings.Contains(got, "paracetamol"))
}

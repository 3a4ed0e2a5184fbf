package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"baby-care-log/internal/core/debounce/debouncetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type query struct {
	profileID string
	search    string
}

type fakeSource struct {
	mu      sync.Mutex
	queries []query
	results map[string][]string
	err     error

	// gate, si no es nil, bloquea cada consulta hasta recibir un valor o cancelación.
	gate map[string]chan struct{}
}

func (s *fakeSource) TopPrescriptions(ctx context.Context, profileID, search string) ([]string, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query{profileID, search})
	ch := s.gate[search]
	res, err := s.results[search], s.err
	s.mu.Unlock()

	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return res, err
}

func (s *fakeSource) seen() []query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]query(nil), s.queries...)
}

func newTestFetcher(src Source) (*Fetcher, *debouncetest.Scheduler) {
	clock := debouncetest.New()
	return New(src, "p1", Config{Scheduler: clock}), clock
}

func TestFetcher_TypingCoalescesIntoOneQuery(t *testing.T) {
	src := &fakeSource{results: map[string][]string{"amoxicillin": {"amoxicillin 250mg"}}}
	f, clock := newTestFetcher(src)
	defer f.Close()

	f.Input("amox", ReasonInput)
	clock.Advance(200 * time.Millisecond)
	f.Input("amoxicillin", ReasonInput)
	clock.Advance(500 * time.Millisecond)
	f.Wait()

	assert.Equal(t, []query{{"p1", "amoxicillin"}}, src.seen())
	assert.Equal(t, []string{"amoxicillin 250mg"}, f.Suggestions())
	assert.Equal(t, Idle, f.State())
}

func TestFetcher_ResetAndClearIgnored(t *testing.T) {
	src := &fakeSource{}
	f, clock := newTestFetcher(src)
	defer f.Close()

	f.Input("amoxicillin", ReasonReset)
	f.Input("", ReasonClear)
	clock.Advance(time.Second)
	f.Wait()

	assert.Empty(t, src.seen())
}

func TestFetcher_StaleResponseDiscarded(t *testing.T) {
	slow := make(chan struct{})
	src := &fakeSource{
		results: map[string][]string{"a": {"aspirin"}, "ab": {"abacavir"}},
		gate:    map[string]chan struct{}{"a": slow},
	}
	f, clock := newTestFetcher(src)
	defer f.Close()

	f.Input("a", ReasonInput)
	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, Loading, f.State())

	f.Input("ab", ReasonInput)
	clock.Advance(500 * time.Millisecond)
	close(slow)
	f.Wait()

	assert.Equal(t, []string{"abacavir"}, f.Suggestions())
	assert.Equal(t, Idle, f.State())
	require.Len(t, src.seen(), 2)
}

func TestFetcher_ErrorKeepsStaleList(t *testing.T) {
	src := &fakeSource{results: map[string][]string{"par": {"paracetamol"}}}
	f, clock := newTestFetcher(src)
	defer f.Close()

	f.Input("par", ReasonInput)
	clock.Advance(500 * time.Millisecond)
	f.Wait()
	require.Equal(t, []string{"paracetamol"}, f.Suggestions())

	src.mu.Lock()
	src.err = errors.New("offline")
	src.mu.Unlock()

	f.Input("para", ReasonInput)
	clock.Advance(500 * time.Millisecond)
	f.Wait()

	assert.Equal(t, Idle, f.State())
	assert.Equal(t, []string{"paracetamol"}, f.Suggestions())
}

func TestFetcher_CloseCancelsPendingAndInFlight(t *testing.T) {
	src := &fakeSource{gate: map[string]chan struct{}{"x": make(chan struct{})}}
	f, clock := newTestFetcher(src)

	f.Input("x", ReasonInput)
	clock.Advance(500 * time.Millisecond)
	f.Input("y", ReasonInput)
	f.Close()
	clock.Advance(time.Second)
	f.Wait()

	assert.Equal(t, []query{{"p1", "x"}}, src.seen())
	assert.Equal(t, Idle, f.State())
}

func TestFetcher_Options(t *testing.T) {
	src := &fakeSource{results: map[string][]string{"": {"Amoxicillin", "Ibuprofen"}}}
	f, clock := newTestFetcher(src)
	defer f.Close()

	f.Input("", ReasonInput)
	clock.Advance(500 * time.Millisecond)
	f.Wait()

	opts := f.Options("amox")
	require.Len(t, opts, 2)
	assert.Equal(t, Choice{Label: "Amoxicillin", Value: "Amoxicillin"}, opts[0])
	assert.True(t, opts[1].Synthetic)
	assert.Equal(t, `Add "amox"`, opts[1].Label)
	assert.Equal(t, "amox", Choose(opts[1]))

	exact := f.Options("Ibuprofen")
	require.Len(t, exact, 1)
	assert.False(t, exact[0].Synthetic)

	assert.Len(t, f.Options(""), 2)
}

package commandapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"baby-care-log/internal/adapters/auth/static"
	"baby-care-log/internal/adapters/commandapi"
	"baby-care-log/internal/core/commands"
	"baby-care-log/internal/core/optimistic"
	"baby-care-log/internal/domain/events"
	"baby-care-log/internal/platform/httpclient"
	"baby-care-log/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts router.Options) string {
	t.Helper()
	h, err := router.NewRouter(opts)
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestClient_DispatcherRoundTrip(t *testing.T) {
	url := newServer(t, router.Options{})
	ctx := context.Background()

	c, err := commandapi.New(commandapi.Options{BaseURL: url, DebugUserID: "owner-1"})
	require.NoError(t, err)

	p, err := c.CreateProfile(ctx, commandapi.CreateProfileInput{Name: "Lucía", DateOfBirth: "2024-01-31"})
	require.NoError(t, err)
	require.NotNil(t, p.DateOfBirth)

	var created events.Event
	require.NoError(t, c.Execute(ctx, events.Fields{
		events.ActionKey: "CREATE_NURSING_EVENT",
		"profileId":      p.ID,
		"time":           "2024-03-01T08:00:00Z",
		"leftDuration":   60000,
		"comment":        "izq",
	}, &created))
	require.NotEmpty(t, created.ID)

	var settled []error
	d := commands.NewDispatcher(c, optimistic.NewTracker(), commands.WithOnSettled(func(_ string, _ events.Action, err error) {
		settled = append(settled, err)
	}))

	// Ocho minutos en ms; el comentario vacío se poda y queda el guardado.
	require.True(t, d.Update(ctx, events.KindNursing, created.ID, events.Fields{
		"leftDuration": int64(480000),
		"comment":      "",
	}))
	require.Equal(t, []error{nil}, settled)

	got, err := c.FindEvent(ctx, p.ID, created.ID)
	require.NoError(t, err)
	d0 := got.Details.(events.Nursing)
	assert.Equal(t, int64(480000), d0.LeftDuration.Milliseconds())
	assert.Equal(t, "izq", got.Comment)

	// Kind equivocado: el server responde 400 y el dispatcher lo informa.
	require.True(t, d.Update(ctx, events.KindSleep, created.ID, events.Fields{"duration": int64(1)}))
	require.Len(t, settled, 2)
	assert.Equal(t, http.StatusBadRequest, httpclient.StatusCode(settled[1]))

	require.True(t, d.Remove(ctx, events.KindNursing, created.ID))
	assert.NoError(t, settled[2])
	_, err = c.FindEvent(ctx, p.ID, created.ID)
	assert.ErrorIs(t, err, events.ErrNotFound)
}

func TestClient_ListAndSuggestions(t *testing.T) {
	url := newServer(t, router.Options{})
	ctx := context.Background()

	c, err := commandapi.New(commandapi.Options{BaseURL: url, DebugUserID: "owner-1"})
	require.NoError(t, err)
	p, err := c.CreateProfile(ctx, commandapi.CreateProfileInput{Name: "Tomás"})
	require.NoError(t, err)

	for _, payload := range []events.Fields{
		{events.ActionKey: "CREATE_MEDICINE_EVENT", "profileId": p.ID, "prescription": "Ibuprofen", "time": "2024-03-01T08:00:00Z"},
		{events.ActionKey: "CREATE_MEDICINE_EVENT", "profileId": p.ID, "prescription": "Ibuprofen", "time": "2024-03-01T09:00:00Z"},
		{events.ActionKey: "CREATE_SLEEP_EVENT", "profileId": p.ID, "comment": "siesta larga", "time": "2024-03-01T10:00:00Z"},
	} {
		require.NoError(t, c.RunCommand(ctx, payload))
	}

	list, err := c.ListEvents(ctx, p.ID, events.ListFilter{Kinds: []events.Kind{events.KindMedicine}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 9, list[0].Time.Hour())

	list, err = c.ListEvents(ctx, p.ID, events.ListFilter{Query: "siesta"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, events.KindSleep, list[0].Kind())

	top, err := c.TopPrescriptions(ctx, p.ID, "ibu")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ibuprofen"}, top)

	profs, err := c.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profs, 1)
	assert.Equal(t, "Tomás", profs[0].Name)

	// Otro usuario no ve el perfil.
	other, err := commandapi.New(commandapi.Options{BaseURL: url, DebugUserID: "stranger"})
	require.NoError(t, err)
	_, err = other.ListEvents(ctx, p.ID, events.ListFilter{})
	assert.Equal(t, http.StatusForbidden, httpclient.StatusCode(err))
}

func TestClient_BearerToken(t *testing.T) {
	url := newServer(t, router.Options{AuthVerifier: static.NewVerifier(map[string]string{"s3cret": "owner-1"})})
	ctx := context.Background()

	c, err := commandapi.New(commandapi.Options{BaseURL: url, Token: "s3cret", DebugUserID: "ignored"})
	require.NoError(t, err)
	_, err = c.CreateProfile(ctx, commandapi.CreateProfileInput{Name: "Lucía"})
	require.NoError(t, err)

	anon, err := commandapi.New(commandapi.Options{BaseURL: url})
	require.NoError(t, err)
	_, err = anon.ListProfiles(ctx)
	assert.Equal(t, http.StatusUnauthorized, httpclient.StatusCode(err))

	_, err = commandapi.New(commandapi.Options{})
	assert.Error(t, err)
}

func TestClient_FindEvent_BeyondListLimit(t *testing.T) {
	url := newServer(t, router.Options{})
	ctx := context.Background()

	c, err := commandapi.New(commandapi.Options{BaseURL: url, DebugUserID: "owner-1"})
	require.NoError(t, err)
	p, err := c.CreateProfile(ctx, commandapi.CreateProfileInput{Name: "Lucía"})
	require.NoError(t, err)
	other, err := c.CreateProfile(ctx, commandapi.CreateProfileInput{Name: "Tomás"})
	require.NoError(t, err)

	var oldest events.Event
	require.NoError(t, c.Execute(ctx, events.Fields{
		events.ActionKey: "CREATE_SLEEP_EVENT",
		"profileId":      p.ID,
		"time":           "2020-01-01T00:00:00Z",
		"duration":       60000,
	}, &oldest))

	// Más eventos nuevos que el tope de la lista.
	for i := 0; i < 500; i++ {
		require.NoError(t, c.RunCommand(ctx, events.Fields{
			events.ActionKey: "CREATE_PUMPING_EVENT",
			"profileId":      p.ID,
			"volume":         float64(i),
		}))
	}
	list, err := c.ListEvents(ctx, p.ID, events.ListFilter{Limit: 500})
	require.NoError(t, err)
	require.Len(t, list, 500)
	assert.NotEqual(t, oldest.ID, list[len(list)-1].ID)

	got, err := c.FindEvent(ctx, p.ID, oldest.ID)
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, got.ID)
	assert.Equal(t, events.KindSleep, got.Kind())

	_, err = c.FindEvent(ctx, other.ID, oldest.ID)
	assert.ErrorIs(t, err, events.ErrNotFound, "event of another profile")

	stranger, err := commandapi.New(commandapi.Options{BaseURL: url, DebugUserID: "stranger-1"})
	require.NoError(t, err)
	_, err = stranger.FindEvent(ctx, p.ID, oldest.ID)
	assert.ErrorIs(t, err, httpclient.ErrForbidden)
}

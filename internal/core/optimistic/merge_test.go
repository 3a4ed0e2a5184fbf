package optimistic

import (
	"testing"
	"time"

	"baby-care-log/internal/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func fp(v float64) *float64 { return &v }

func canonicalList() []events.Event {
	return []events.Event{
		{ID: "e1", ProfileID: "p1", Time: t0, Details: events.BottleFeed{Volume: 90}},
		{ID: "e2", ProfileID: "p1", Time: t0.Add(time.Hour), Comment: "after nap", Details: events.Measurement{Height: fp(60), Weight: fp(5.4)}},
	}
}

func TestMerge_EmptyPending_Identity(t *testing.T) {
	in := canonicalList()
	out := Merge(in, nil)
	assert.Equal(t, in, out)
}

func TestMerge_OverlaysPendingFields(t *testing.T) {
	in := canonicalList()
	pending := []PendingMutation{{
		EventID: "e1",
		Fields:  events.Fields{events.ActionKey: "UPDATE_BOTTLE_FEED_EVENT", "id": "e1", "volume": 120.0},
	}}

	out := Merge(in, pending)

	require.Len(t, out, 2)
	bf, ok := out[0].Details.(events.BottleFeed)
	require.True(t, ok)
	assert.Equal(t, 120.0, bf.Volume)
	assert.Equal(t, t0, out[0].Time)
	assert.Equal(t, in[1], out[1])

	// entrada intacta
	assert.Equal(t, 90.0, in[0].Details.(events.BottleFeed).Volume)
}

func TestMerge_OnlyPayloadFieldsChange(t *testing.T) {
	in := canonicalList()
	pending := []PendingMutation{{EventID: "e2", Fields: events.Fields{"id": "e2", "weight": 5.6}}}

	out := Merge(in, pending)

	m := out[1].Details.(events.Measurement)
	require.NotNil(t, m.Weight)
	assert.Equal(t, 5.6, *m.Weight)
	assert.Equal(t, 60.0, *m.Height)
	assert.Equal(t, "after nap", out[1].Comment)
	assert.Equal(t, in[1].Time, out[1].Time)
}

func TestMerge_UnknownIDIgnored(t *testing.T) {
	in := canonicalList()
	out := Merge(in, []PendingMutation{{EventID: "ghost", Fields: events.Fields{"volume": 1.0}}})
	assert.Equal(t, in, out)
}

func TestMerge_LaterMutationWins(t *testing.T) {
	in := canonicalList()
	out := Merge(in, []PendingMutation{
		{EventID: "e1", Fields: events.Fields{"volume": 100.0}},
		{EventID: "e1", Fields: events.Fields{"volume": 110.0}},
	})
	assert.Equal(t, 110.0, out[0].Details.(events.BottleFeed).Volume)
}

func TestMerge_UndecodableOverlaySkipped(t *testing.T) {
	in := canonicalList()
	out := Merge(in, []PendingMutation{{EventID: "e1", Fields: events.Fields{"volume": "lots"}}})
	assert.Equal(t, in, out)
}

func TestRemountKey(t *testing.T) {
	in := canonicalList()
	pending := []PendingMutation{{EventID: "e1", Fields: events.Fields{"volume": 120.0}}}
	merged := Merge(in, pending)

	assert.Equal(t, merged[0].Hash(), RemountKey(merged[0], pending))
	assert.NotEqual(t, in[0].Hash(), RemountKey(merged[0], pending))
	assert.Equal(t, "e2", RemountKey(merged[1], pending))
	assert.Equal(t, "e1", RemountKey(in[0], nil))
}

func TestTracker_BeginDone(t *testing.T) {
	tr := NewTracker()

	k1, done1 := tr.Begin(events.ActionEditGenericEvent, "e1", events.Fields{"volume": 1.0})
	k2, done2 := tr.Begin("REMOVE_PUMPING_EVENT", "e2", events.Fields{"volume": 2.0})
	require.NotEqual(t, k1, k2)

	p := tr.Pending()
	require.Len(t, p, 2)
	assert.Equal(t, "e1", p[0].EventID)
	assert.Equal(t, k1, p[0].OriginKey)
	assert.Equal(t, "e2", p[1].EventID)

	edits := tr.Edits()
	require.Len(t, edits, 1, "removes are not overlaid")
	assert.Equal(t, "e1", edits[0].EventID)
	assert.Equal(t, events.ActionEditGenericEvent, edits[0].Group)

	done1()
	done1()
	assert.Equal(t, 1, tr.Len())

	done2()
	assert.Empty(t, tr.Pending())
}

func TestTracker_PendingIsSnapshot(t *testing.T) {
	tr := NewTracker()
	fields := events.Fields{"volume": 1.0}
	_, done := tr.Begin(events.ActionEditGenericEvent, "e1", fields)
	defer done()

	fields["volume"] = 99.0
	p := tr.Pending()
	p[0].Fields["volume"] = 50.0

	assert.Equal(t, 1.0, tr.Pending()[0].Fields["volume"])
}

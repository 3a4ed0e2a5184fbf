package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier(t *testing.T) {
	v := NewVerifier(map[string]string{
		" tok-1 ": "owner-1",
		"tok-2":   " ",
		"":        "owner-3",
	})
	require.False(t, v.Empty())

	c, err := v.Verify(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", c.UserID)

	_, err = v.Verify(context.Background(), "tok-2")
	assert.ErrorIs(t, err, ErrUnauthorized, "entries without user are dropped")

	_, err = v.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}

func TestVerifier_Empty(t *testing.T) {
	assert.True(t, NewVerifier(nil).Empty())

	var v *Verifier
	assert.True(t, v.Empty())
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

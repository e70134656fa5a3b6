package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/config"
)

func newTestLinks(now time.Time) *Links {
	l := NewLinks(&config.Config{SecretKey: "secret", LinkTTL: time.Hour})
	l.now = func() time.Time { return now }
	return l
}

func TestLinksRoundTrip(t *testing.T) {
	l := newTestLinks(time.Now())

	uid, tok, err := l.Make(PurposeActivation, 42, "hash|false")
	require.NoError(t, err)

	id, err := DecodeUID(uid)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.NoError(t, l.Verify(PurposeActivation, 42, "hash|false", tok))
}

func TestLinksRejects(t *testing.T) {
	now := time.Now()
	l := newTestLinks(now)
	_, tok, err := l.Make(PurposePasswordReset, 7, "hash|true")
	require.NoError(t, err)

	assert.ErrorIs(t, l.Verify(PurposeActivation, 7, "hash|true", tok), ErrInvalid, "purpose")
	assert.ErrorIs(t, l.Verify(PurposePasswordReset, 8, "hash|true", tok), ErrInvalid, "user")
	assert.ErrorIs(t, l.Verify(PurposePasswordReset, 7, "rotated|true", tok), ErrInvalid, "state")
	assert.ErrorIs(t, l.Verify(PurposePasswordReset, 7, "hash|true", tok+"x"), ErrInvalid, "tampered")

	later := newTestLinks(now.Add(2 * time.Hour))
	assert.ErrorIs(t, later.Verify(PurposePasswordReset, 7, "hash|true", tok), ErrInvalid, "expired")
}

func TestDecodeUIDInvalid(t *testing.T) {
	_, err := DecodeUID("!!!")
	assert.Error(t, err)

	_, err = DecodeUID(EncodeUID(0) + "x")
	assert.Error(t, err)
}

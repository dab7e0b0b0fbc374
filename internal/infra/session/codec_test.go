package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec(testSecret, time.Hour)

	token, err := codec.Encode("session-1")
	require.NoError(t, err)

	id, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
	assert.Equal(t, time.Hour, codec.TTL())
}

func TestCodecRejectsForeignSignature(t *testing.T) {
	token, err := NewCodec("another-secret-another-secret-xx", time.Hour).Encode("session-1")
	require.NoError(t, err)

	_, err = NewCodec(testSecret, time.Hour).Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodecRejectsExpired(t *testing.T) {
	codec := NewCodec(testSecret, -time.Minute)
	token, err := codec.Encode("session-1")
	require.NoError(t, err)

	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodecRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &tokenClaims{SessionID: "session-1"})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewCodec(testSecret, time.Hour).Decode(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodecRejectsGarbage(t *testing.T) {
	_, err := NewCodec(testSecret, time.Hour).Decode("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

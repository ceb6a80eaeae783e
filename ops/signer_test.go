package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trac-network/tap-authority/keys"
)

func TestSignDigest(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	digest := DigestBytes([]byte("test canonical payload"))

	t.Run("RoundTrip", func(t *testing.T) {
		sig, err := SignDigest(digest, kp)
		require.NoError(t, err)

		assert.LessOrEqual(t, sig.V, uint8(1), "recovery id must be in compact {0,1} form")
		assert.Len(t, sig.R, 66)
		assert.Len(t, sig.S, 66)
		assert.True(t, VerifyDigest(digest, sig, kp.PublicKey()))

		recovered, err := RecoverSigner(digest, sig)
		require.NoError(t, err)
		assert.Equal(t, kp.PublicKey(), recovered)
	})

	t.Run("Deterministic", func(t *testing.T) {
		sig1, err := SignDigest(digest, kp)
		require.NoError(t, err)
		sig2, err := SignDigest(digest, kp)
		require.NoError(t, err)
		assert.Equal(t, sig1, sig2, "same digest and key must yield the same signature")
	})

	t.Run("DistinctDigestsDistinctSignatures", func(t *testing.T) {
		other := DigestBytes([]byte("a different canonical payload"))

		sig1, err := SignDigest(digest, kp)
		require.NoError(t, err)
		sig2, err := SignDigest(other, kp)
		require.NoError(t, err)
		assert.NotEqual(t, sig1, sig2)
	})

	t.Run("NilKeyPairRejected", func(t *testing.T) {
		_, err := SignDigest(digest, nil)
		require.ErrorIs(t, err, ErrInvalidPrivateKey)
	})
}

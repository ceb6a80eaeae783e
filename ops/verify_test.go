package ops

import (
	"strings"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trac-network/tap-authority/keys"
)

func TestVerifyDigest(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)
	digest := DigestBytes([]byte("payload"))
	sig, err := SignDigest(digest, kp)
	require.NoError(t, err)

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, VerifyDigest(digest, sig, kp.PublicKey()))
	})

	t.Run("WrongDigest", func(t *testing.T) {
		other := DigestBytes([]byte("other payload"))
		assert.False(t, VerifyDigest(other, sig, kp.PublicKey()))
	})

	t.Run("WrongSigner", func(t *testing.T) {
		stranger, err := keys.Generate()
		require.NoError(t, err)
		assert.False(t, VerifyDigest(digest, sig, stranger.PublicKey()))
	})

	t.Run("MalformedSignatureReturnsFalse", func(t *testing.T) {
		bad := sig
		bad.R = "0xzz" + bad.R[4:]
		assert.False(t, VerifyDigest(digest, bad, kp.PublicKey()))

		short := sig
		short.S = "0x00"
		assert.False(t, VerifyDigest(digest, short, kp.PublicKey()))
	})

	t.Run("PointNotOnCurveReturnsFalse", func(t *testing.T) {
		notAPoint := append([]byte{0x02}, make([]byte, 32)...)
		assert.False(t, VerifyDigest(digest, sig, notAPoint))
	})
}

func TestRecoverSigner(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)
	digest := DigestBytes([]byte("payload"))
	sig, err := SignDigest(digest, kp)
	require.NoError(t, err)

	t.Run("RecoversSigner", func(t *testing.T) {
		recovered, err := RecoverSigner(digest, sig)
		require.NoError(t, err)
		assert.Equal(t, kp.PublicKey(), recovered)
	})

	t.Run("AcceptsEVMRecoveryID", func(t *testing.T) {
		evm := sig
		evm.V += 27
		recovered, err := RecoverSigner(digest, evm)
		require.NoError(t, err)
		assert.Equal(t, kp.PublicKey(), recovered)
	})

	t.Run("InvalidRecoveryID", func(t *testing.T) {
		bad := sig
		bad.V = 9
		_, err := RecoverSigner(digest, bad)
		require.ErrorIs(t, err, ErrRecoveryFailed)
	})

	t.Run("ROutOfRange", func(t *testing.T) {
		bad := sig
		bad.R = "0x" + strings.Repeat("ff", 32)
		_, err := RecoverSigner(digest, bad)
		require.ErrorIs(t, err, ErrRecoveryFailed)
	})
}

func TestVerifyTamperSensitivity(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	t.Run("TokenMintFields", func(t *testing.T) {
		build := func() *TokenMint {
			op, report, err := BuildTokenMint(kp, "tok", apd.New(1000, 0), "bc1qaddr", "0.1")
			require.NoError(t, err)
			require.True(t, report.Valid)
			return op
		}

		mutations := map[string]func(*TokenMint){
			"ticker":  func(op *TokenMint) { op.Ticker = "kot" },
			"amount":  func(op *TokenMint) { op.Amount = "1001" },
			"address": func(op *TokenMint) { op.Private.Address = "bc1qother" },
			"salt":    func(op *TokenMint) { op.Private.Salt = "0.2" },
		}
		for name, mutate := range mutations {
			t.Run(name, func(t *testing.T) {
				op := build()
				mutate(op)
				report, err := Verify(op, kp.PublicKey())
				require.NoError(t, err)
				assert.False(t, report.Valid, "mutated %s must not verify", name)
			})
		}
	})

	t.Run("ProvenanceFields", func(t *testing.T) {
		build := func() *ProvenanceVerification {
			op, report, err := BuildProvenanceVerification(kp, "auth", "col", "deadbeef", 7, "bc1qaddr", "s")
			require.NoError(t, err)
			require.True(t, report.Valid)
			return op
		}

		mutations := map[string]func(*ProvenanceVerification){
			"sequence":     func(op *ProvenanceVerification) { op.Sequence = 8 },
			"collection":   func(op *ProvenanceVerification) { op.Collection = "loc" },
			"content hash": func(op *ProvenanceVerification) { op.ContentHash = "feedface" },
		}
		for name, mutate := range mutations {
			t.Run(name, func(t *testing.T) {
				op := build()
				mutate(op)
				report, err := Verify(op, kp.PublicKey())
				require.NoError(t, err)
				assert.False(t, report.Valid, "mutated %s must not verify", name)
			})
		}
	})

	t.Run("EmbeddedHashMismatch", func(t *testing.T) {
		op, _, err := BuildTokenMint(kp, "tok", apd.New(1, 0), "bc1qaddr", "0.1")
		require.NoError(t, err)

		op.Private.Hash = "0x" + strings.Repeat("00", 32)
		report, err := Verify(op, kp.PublicKey())
		require.NoError(t, err)
		assert.False(t, report.Valid)
	})
}

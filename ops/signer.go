package ops

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/trac-network/tap-authority/keys"
)

// SignDigest signs a canonical digest with the authority's private scalar and
// returns a recoverable signature with V in compact {0,1} form.
//
// The underlying primitive derives its nonce deterministically from the
// digest and the scalar, so the same (digest, key) pair always yields the
// same signature and nonces are never reused across digests.
func SignDigest(digest [sha256.Size]byte, kp *keys.KeyPair) (Signature, error) {
	if kp == nil {
		return Signature{}, ErrInvalidPrivateKey
	}
	key := kp.PrivateKey()
	// The keys package never hands out an out-of-range scalar; checked again
	// here because a forged signature would only surface at indexer
	// re-validation, long after the op is immutably published.
	if key == nil || key.D == nil || key.D.Sign() == 0 || key.D.Cmp(crypto.S256().Params().N) >= 0 {
		return Signature{}, ErrInvalidPrivateKey
	}

	compact, err := crypto.Sign(digest[:], key)
	if err != nil {
		return Signature{}, errors.Wrap(err, "sign digest")
	}
	return newSignature(compact), nil
}

package ops

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// VerifyDigest reports whether sig is a valid signature over digest by the
// holder of the given 33-byte compressed public point. It never fails:
// malformed signatures, points off the curve and plain mismatches all return
// false.
func VerifyDigest(digest [sha256.Size]byte, sig Signature, publicKey []byte) bool {
	compact, err := sig.compact()
	if err != nil {
		return false
	}
	return crypto.VerifySignature(publicKey, digest[:], compact[:64])
}

// RecoverSigner reconstructs the compressed public point from the digest and
// the recoverable signature alone.
func RecoverSigner(digest [sha256.Size]byte, sig Signature) ([]byte, error) {
	compact, err := sig.compact()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecoveryFailed, err)
	}
	pub, err := crypto.SigToPub(digest[:], compact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecoveryFailed, err)
	}
	return crypto.CompressPubkey(pub), nil
}

// Verify re-derives the digest from the assembled op's own fields and checks
// the embedded signature three ways: the digest stored in the op matches the
// re-derived one, the signature verifies against the claimed signer, and
// public-key recovery yields that same signer.
//
// Every builder runs this before emitting an op; it closes the loop against
// encoder or assembly bugs that would otherwise only surface at third-party
// re-validation, after the op is immutably published. Indexer-style
// re-checks of already-published ops can call it directly.
func Verify(op Op, signerPublicKey []byte) (*VerificationReport, error) {
	raw, err := op.SigningBytes()
	if err != nil {
		return nil, fmt.Errorf("re-derive canonical bytes: %w", err)
	}
	digest := DigestBytes(raw)

	sig, hash := op.proof()
	recovered, err := RecoverSigner(digest, sig)
	if err != nil {
		return nil, err
	}

	valid := hash == digestHex(digest) &&
		VerifyDigest(digest, sig, signerPublicKey) &&
		bytes.Equal(recovered, signerPublicKey)

	return &VerificationReport{
		Valid:              valid,
		SignerPublicKey:    signerPublicKey,
		RecoveredPublicKey: recovered,
	}, nil
}

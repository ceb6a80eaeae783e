// Package keys supplies the secp256k1 key material used to sign TAP ops.
//
// A KeyPair holds the authority's private scalar together with its 33-byte
// compressed public point. Keys are either freshly generated from the
// process's CSPRNG or parsed from caller-supplied hex; custody and storage
// of the private scalar remain the caller's responsibility.
package keys

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidKeyEncoding is returned by FromHex when the supplied key material
// is malformed: bad hex, wrong length, or a public point that does not belong
// to the private scalar.
var ErrInvalidKeyEncoding = errors.New("invalid key encoding")

const (
	privateKeyLen = 32
	publicKeyLen  = 33

	// maxScalarDraws bounds the retry loop in Generate. A uniformly random
	// 32-byte draw is outside [1, n-1] with probability < 2^-128, so hitting
	// this bound means the randomness source is broken.
	maxScalarDraws = 64
)

// KeyPair is an authority's signing identity: a secp256k1 private scalar and
// its compressed public point. Never mutated after construction.
type KeyPair struct {
	privateKey *ecdsa.PrivateKey
	publicKey  []byte
}

// Generate draws random 32-byte candidates until one is a valid secp256k1
// scalar, then derives the compressed public point.
func Generate() (*KeyPair, error) {
	var key *ecdsa.PrivateKey

	draw := func() error {
		buf := make([]byte, privateKeyLen)
		if _, err := rand.Read(buf); err != nil {
			return backoff.Permanent(fmt.Errorf("read randomness source: %w", err))
		}
		candidate, err := crypto.ToECDSA(buf)
		if err != nil {
			// Out-of-range scalar, draw again.
			return err
		}
		key = candidate
		return nil
	}

	if err := backoff.Retry(draw, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxScalarDraws)); err != nil {
		return nil, fmt.Errorf("generate private scalar: %w", err)
	}

	return &KeyPair{
		privateKey: key,
		publicKey:  crypto.CompressPubkey(&key.PublicKey),
	}, nil
}

// FromHex parses a caller-supplied key pair from hex. privHex must decode to
// 32 bytes and publicHex to a 33-byte compressed point; the public point must
// match the one derived from the private scalar.
func FromHex(privHex, publicHex string) (*KeyPair, error) {
	privBytes, err := decodeHexField(privHex, privateKeyLen, "private key")
	if err != nil {
		return nil, err
	}
	pubBytes, err := decodeHexField(publicHex, publicKeyLen, "public key")
	if err != nil {
		return nil, err
	}

	key, err := crypto.ToECDSA(privBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: private scalar out of range", ErrInvalidKeyEncoding)
	}

	derived := crypto.CompressPubkey(&key.PublicKey)
	if !bytes.Equal(derived, pubBytes) {
		return nil, fmt.Errorf("%w: public point does not match private scalar", ErrInvalidKeyEncoding)
	}

	return &KeyPair{privateKey: key, publicKey: derived}, nil
}

// PrivateKey returns the underlying ECDSA private key for signing. Callers
// must treat it as read-only.
func (kp *KeyPair) PrivateKey() *ecdsa.PrivateKey {
	return kp.privateKey
}

// PublicKey returns the 33-byte compressed public point. The returned slice
// is a copy and safe to retain.
func (kp *KeyPair) PublicKey() []byte {
	out := make([]byte, len(kp.publicKey))
	copy(out, kp.publicKey)
	return out
}

// PrivateKeyHex returns the private scalar as 64 lowercase hex characters.
func (kp *KeyPair) PrivateKeyHex() string {
	return hex.EncodeToString(crypto.FromECDSA(kp.privateKey))
}

// PublicKeyHex returns the compressed public point as 66 lowercase hex characters.
func (kp *KeyPair) PublicKeyHex() string {
	return hex.EncodeToString(kp.publicKey)
}

func decodeHexField(s string, wantLen int, what string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid hex", ErrInvalidKeyEncoding, what)
	}
	if len(raw) != wantLen {
		return nil, fmt.Errorf("%w: %s must be %d bytes, got %d", ErrInvalidKeyEncoding, what, wantLen, len(raw))
	}
	return raw, nil
}

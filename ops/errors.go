package ops

import "errors"

var (
	// ErrInvalidPrivateKey is returned when a signing key's scalar is nil,
	// zero, or not below the curve order. The keys package never produces
	// such a key; this is a defensive boundary check.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrSequenceOutOfRange is returned when a provenance-verification
	// sequence falls outside [0, 2^53-1]. Consumers re-derive the canonical
	// string in environments limited to 53-bit integer precision, so larger
	// values cannot round-trip.
	ErrSequenceOutOfRange = errors.New("sequence out of range")

	// ErrRecoveryFailed is returned when a (digest, signature) pair does not
	// yield a valid public point.
	ErrRecoveryFailed = errors.New("public key recovery failed")

	// ErrEncodingPrecondition is returned when a field would make the
	// hyphen-joined canonical string ambiguous or empty.
	ErrEncodingPrecondition = errors.New("canonical encoding precondition violated")
)

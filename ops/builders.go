package ops

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/trac-network/tap-authority/keys"
)

// MaxSequence is the largest provenance-verification sequence the protocol
// supports. Consumers re-derive canonical strings in environments limited to
// 53-bit integer precision, so larger values cannot round-trip.
const MaxSequence = int64(1)<<53 - 1

// BuildAuthorityDeclaration signs an arbitrary authority message. message may
// be a map[string]any or any struct; structs are normalized into a string-keyed
// map honoring json tags before the canonical JSON rendering.
//
// The caller must guarantee (message, salt) is unique for this authority:
// a duplicate digest is treated by consumers as already processed and ignored.
func BuildAuthorityDeclaration(kp *keys.KeyPair, message any, salt string) (*AuthorityDeclaration, *VerificationReport, error) {
	if salt == "" {
		return nil, nil, fmt.Errorf("%w: salt must not be empty", ErrEncodingPrecondition)
	}
	msg, err := normalizeMessage(message)
	if err != nil {
		return nil, nil, err
	}

	raw, err := declarationBytes(msg, salt)
	if err != nil {
		return nil, nil, err
	}
	sig, digest, err := signCanonical(raw, kp)
	if err != nil {
		return nil, nil, err
	}

	op := &AuthorityDeclaration{
		Protocol: ProtocolMarker,
		Op:       OpTagPrivilegeAuth,
		Sig:      sig,
		Hash:     digest,
		Salt:     salt,
		Message:  msg,
	}
	return finishBuild(op, kp)
}

// BuildTokenMint signs a delegation to mint amount units of ticker to address.
func BuildTokenMint(kp *keys.KeyPair, ticker string, amount *apd.Decimal, address, salt string) (*TokenMint, *VerificationReport, error) {
	if err := requireFields(map[string]string{
		"ticker":  ticker,
		"address": address,
		"salt":    salt,
	}); err != nil {
		return nil, nil, err
	}
	if err := requireSeparatorSafe("ticker", ticker); err != nil {
		return nil, nil, err
	}
	amt, err := canonicalAmount(amount)
	if err != nil {
		return nil, nil, err
	}

	raw := tokenMintBytes(ticker, amt, address, salt)
	sig, digest, err := signCanonical(raw, kp)
	if err != nil {
		return nil, nil, err
	}

	op := &TokenMint{
		Protocol: ProtocolMarker,
		Op:       OpTagTokenMint,
		Ticker:   ticker,
		Amount:   amt,
		Private: MintProof{
			Sig:     sig,
			Hash:    digest,
			Address: address,
			Salt:    salt,
		},
	}
	return finishBuild(op, kp)
}

// BuildDmtMint signs a delegation to mint a DMT element bound to block and
// its dependency inscription. The ticker participates in the canonical string
// lower-cased, so "NAT" and "nat" yield the same digest.
func BuildDmtMint(kp *keys.KeyPair, ticker string, block uint64, dependency, address, salt string) (*DmtMint, *VerificationReport, error) {
	if err := requireFields(map[string]string{
		"ticker":     ticker,
		"dependency": dependency,
		"address":    address,
		"salt":       salt,
	}); err != nil {
		return nil, nil, err
	}
	if err := requireSeparatorSafe("ticker", ticker); err != nil {
		return nil, nil, err
	}

	raw := dmtMintBytes(ticker, block, dependency, address, salt)
	sig, digest, err := signCanonical(raw, kp)
	if err != nil {
		return nil, nil, err
	}

	op := &DmtMint{
		Protocol:   ProtocolMarker,
		Op:         OpTagDmtMint,
		Ticker:     ticker,
		Block:      block,
		Dependency: dependency,
		Private: MintProof{
			Sig:     sig,
			Hash:    digest,
			Address: address,
			Salt:    salt,
		},
	}
	return finishBuild(op, kp)
}

// BuildProvenanceVerification signs an attestation that contentHash belongs
// to collection at the given sequence, for the named authority and address.
func BuildProvenanceVerification(kp *keys.KeyPair, authority, collection, contentHash string, sequence int64, address, salt string) (*ProvenanceVerification, *VerificationReport, error) {
	if err := requireFields(map[string]string{
		"authority":    authority,
		"collection":   collection,
		"content hash": contentHash,
		"address":      address,
		"salt":         salt,
	}); err != nil {
		return nil, nil, err
	}
	if sequence < 0 || sequence > MaxSequence {
		return nil, nil, fmt.Errorf("%w: sequence %d not in [0, %d]", ErrSequenceOutOfRange, sequence, MaxSequence)
	}

	raw := provenanceBytes(authority, collection, contentHash, sequence, address, salt)
	sig, digest, err := signCanonical(raw, kp)
	if err != nil {
		return nil, nil, err
	}

	op := &ProvenanceVerification{
		Protocol:    ProtocolMarker,
		Op:          OpTagPrivilegeAuth,
		Sig:         sig,
		Hash:        digest,
		Authority:   authority,
		Collection:  collection,
		ContentHash: contentHash,
		Sequence:    sequence,
		Address:     address,
		Salt:        salt,
	}
	return finishBuild(op, kp)
}

// signCanonical runs the shared encode-digest-sign leg of the pipeline.
func signCanonical(raw []byte, kp *keys.KeyPair) (Signature, string, error) {
	digest := DigestBytes(raw)
	sig, err := SignDigest(digest, kp)
	if err != nil {
		return Signature{}, "", err
	}
	return sig, digestHex(digest), nil
}

// finishBuild runs the mandatory self-verification post-condition on the
// assembled op. The report is diagnostic either way; only a recovery fault
// aborts the build.
func finishBuild[T Op](op T, kp *keys.KeyPair) (T, *VerificationReport, error) {
	report, err := Verify(op, kp.PublicKey())
	if err != nil {
		var zero T
		return zero, nil, errors.Wrap(err, "self-verify assembled op")
	}
	return op, report, nil
}

func requireFields(fields map[string]string) error {
	empty := lo.PickBy(fields, func(_ string, v string) bool { return v == "" })
	if len(empty) > 0 {
		return fmt.Errorf("%w: %v must not be empty", ErrEncodingPrecondition, lo.Keys(empty))
	}
	return nil
}

// requireSeparatorSafe rejects values that would make the hyphen-joined
// canonical string ambiguous. Only enforced for tickers; free-text fields
// such as addresses and dependencies are a documented caller precondition.
func requireSeparatorSafe(name, value string) error {
	if strings.Contains(value, canonicalSeparator) {
		return fmt.Errorf("%w: %s must not contain %q", ErrEncodingPrecondition, name, canonicalSeparator)
	}
	return nil
}

// canonicalAmount renders a mint amount in the fixed decimal notation shared
// by the signing and re-verification paths.
func canonicalAmount(amount *apd.Decimal) (string, error) {
	if amount == nil || amount.Form != apd.Finite {
		return "", fmt.Errorf("%w: amount must be a finite decimal", ErrEncodingPrecondition)
	}
	if amount.Negative {
		return "", fmt.Errorf("%w: amount must not be negative", ErrEncodingPrecondition)
	}
	return amount.Text('f'), nil
}

// normalizeMessage flattens the caller's message payload into the
// string-keyed map the canonical JSON rendering expects.
func normalizeMessage(message any) (map[string]any, error) {
	if message == nil {
		return nil, fmt.Errorf("%w: declaration message must not be nil", ErrEncodingPrecondition)
	}
	if m, ok := message.(map[string]any); ok {
		return m, nil
	}

	var out map[string]any
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &out,
	})
	if err != nil {
		return nil, errors.Wrap(err, "build message decoder")
	}
	if err := dec.Decode(message); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingPrecondition, err)
	}
	return out, nil
}

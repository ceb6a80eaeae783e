package ops

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Protocol marker and op tags. These appear verbatim in every emitted op and
// in the hyphen-joined canonical strings; changing them breaks every consumer.
const (
	ProtocolMarker = "tap"

	OpTagPrivilegeAuth = "privilege-auth"
	OpTagTokenMint     = "token-mint"
	OpTagDmtMint       = "dmt-mint"
)

// Signature is a recoverable ECDSA signature over a canonical digest.
// R and S are 0x-prefixed 32-byte hex strings; V selects which of the two
// candidate public points recovery yields.
type Signature struct {
	V uint8  `json:"v"`
	R string `json:"r"`
	S string `json:"s"`
}

// newSignature converts a 65-byte [R || S || V] compact signature into its
// rendered form. V is expected in compact {0,1} form.
func newSignature(compact []byte) Signature {
	return Signature{
		V: compact[64],
		R: "0x" + hex.EncodeToString(compact[:32]),
		S: "0x" + hex.EncodeToString(compact[32:64]),
	}
}

// compact rebuilds the 65-byte [R || S || V] form consumed by the secp256k1
// primitives. Recovery IDs in EVM form {27,28} are normalized to {0,1}.
func (s Signature) compact() ([]byte, error) {
	r, err := decodeSignatureWord(s.R)
	if err != nil {
		return nil, fmt.Errorf("decode r: %w", err)
	}
	sWord, err := decodeSignatureWord(s.S)
	if err != nil {
		return nil, fmt.Errorf("decode s: %w", err)
	}
	v, err := toCompactRecoveryID(s.V)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 65)
	copy(out[:32], r)
	copy(out[32:64], sWord)
	out[64] = v
	return out, nil
}

func decodeSignatureWord(s string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, err
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("signature word must be 32 bytes, got %d", len(raw))
	}
	return raw, nil
}

func toCompactRecoveryID(v uint8) (uint8, error) {
	switch {
	case v <= 1:
		return v, nil
	case v >= 27 && v <= 34:
		return (v - 27) & 1, nil
	default:
		return 0, fmt.Errorf("invalid recovery id %d", v)
	}
}

// VerificationReport is the builder-side diagnostic produced by the mandatory
// self-verification step. It accompanies every built op and is never
// published.
type VerificationReport struct {
	Valid              bool
	SignerPublicKey    []byte
	RecoveredPublicKey []byte
}

// Op is one signed TAP protocol message. The concrete types are
// AuthorityDeclaration, TokenMint, DmtMint and ProvenanceVerification.
type Op interface {
	// SigningBytes re-derives the canonical byte string from the op's own
	// assembled fields, not from any cached intermediate.
	SigningBytes() ([]byte, error)
	// Encode renders the op as its publishable JSON text. Field order follows
	// the struct declaration; the rendering is never re-hashed.
	Encode() ([]byte, error)

	proof() (Signature, string)
}

// AuthorityDeclaration attests an arbitrary authority message. The signature
// and digest sit at the top level of the record.
type AuthorityDeclaration struct {
	Protocol string         `json:"p"`
	Op       string         `json:"op"`
	Sig      Signature      `json:"sig"`
	Hash     string         `json:"hash"`
	Salt     string         `json:"salt"`
	Message  map[string]any `json:"message"`
}

func (o *AuthorityDeclaration) SigningBytes() ([]byte, error) {
	return declarationBytes(o.Message, o.Salt)
}

func (o *AuthorityDeclaration) Encode() ([]byte, error) { return json.Marshal(o) }

func (o *AuthorityDeclaration) proof() (Signature, string) { return o.Sig, o.Hash }

// MintProof carries the signature, digest, recipient address and salt of a
// mint op, nested under the "prv" key as the protocol mandates for mints.
type MintProof struct {
	Sig     Signature `json:"sig"`
	Hash    string    `json:"hash"`
	Address string    `json:"address"`
	Salt    string    `json:"salt"`
}

// TokenMint delegates a mint of Amount units of Ticker to the address named
// in the nested proof. Amount is kept in its canonical decimal form.
type TokenMint struct {
	Protocol string    `json:"p"`
	Op       string    `json:"op"`
	Ticker   string    `json:"tick"`
	Amount   string    `json:"amt"`
	Private  MintProof `json:"prv"`
}

func (o *TokenMint) SigningBytes() ([]byte, error) {
	return tokenMintBytes(o.Ticker, o.Amount, o.Private.Address, o.Private.Salt), nil
}

func (o *TokenMint) Encode() ([]byte, error) { return json.Marshal(o) }

func (o *TokenMint) proof() (Signature, string) { return o.Private.Sig, o.Private.Hash }

// DmtMint delegates a DMT element mint bound to a block and a dependency
// inscription. The ticker is lower-cased in the canonical string but emitted
// as supplied.
type DmtMint struct {
	Protocol   string    `json:"p"`
	Op         string    `json:"op"`
	Ticker     string    `json:"tick"`
	Block      uint64    `json:"blk"`
	Dependency string    `json:"dep"`
	Private    MintProof `json:"prv"`
}

func (o *DmtMint) SigningBytes() ([]byte, error) {
	return dmtMintBytes(o.Ticker, o.Block, o.Dependency, o.Private.Address, o.Private.Salt), nil
}

func (o *DmtMint) Encode() ([]byte, error) { return json.Marshal(o) }

func (o *DmtMint) proof() (Signature, string) { return o.Private.Sig, o.Private.Hash }

// ProvenanceVerification attests that a content hash belongs to a collection
// at a given sequence. It reuses the privilege-auth op tag; indexers
// distinguish it by the presence of the verify/col/seq/prv fields.
type ProvenanceVerification struct {
	Protocol    string    `json:"p"`
	Op          string    `json:"op"`
	Sig         Signature `json:"sig"`
	Hash        string    `json:"hash"`
	Authority   string    `json:"prv"`
	Collection  string    `json:"col"`
	ContentHash string    `json:"verify"`
	Sequence    int64     `json:"seq"`
	Address     string    `json:"address"`
	Salt        string    `json:"salt"`
}

func (o *ProvenanceVerification) SigningBytes() ([]byte, error) {
	return provenanceBytes(o.Authority, o.Collection, o.ContentHash, o.Sequence, o.Address, o.Salt), nil
}

func (o *ProvenanceVerification) Encode() ([]byte, error) { return json.Marshal(o) }

func (o *ProvenanceVerification) proof() (Signature, string) { return o.Sig, o.Hash }

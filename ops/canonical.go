package ops

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// canonicalSeparator joins the fields of the hyphen-encoded op kinds. Field
// values are folded in without escaping: a value that itself contains a
// hyphen makes the string ambiguous, which is a documented protocol-level
// precondition on callers, not something the encoder repairs.
const canonicalSeparator = "-"

// declarationBytes canonicalizes an authority declaration: the whitespace-free
// JSON rendering of the message map with the salt appended directly. Go's map
// marshaling sorts keys, which is the stable serialization consumers rely on.
func declarationBytes(message map[string]any, salt string) ([]byte, error) {
	blob, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("serialize declaration message: %w", err)
	}
	return append(blob, salt...), nil
}

// tokenMintBytes canonicalizes a token mint. amount must already be in its
// canonical decimal form.
func tokenMintBytes(ticker, amount, address, salt string) []byte {
	return joinCanonical(ProtocolMarker, OpTagTokenMint, ticker, amount, address, salt)
}

// dmtMintBytes canonicalizes a DMT mint. The ticker is lower-cased here, on
// both the signing and the re-verification path.
func dmtMintBytes(ticker string, block uint64, dependency, address, salt string) []byte {
	return joinCanonical(ProtocolMarker, OpTagDmtMint, strings.ToLower(ticker),
		strconv.FormatUint(block, 10), dependency, address, salt)
}

// provenanceBytes canonicalizes a provenance verification. The protocol
// marker does not participate; the string starts with the authority id.
func provenanceBytes(authority, collection, contentHash string, sequence int64, address, salt string) []byte {
	return joinCanonical(authority, collection, contentHash,
		strconv.FormatInt(sequence, 10), address, salt)
}

func joinCanonical(fields ...string) []byte {
	return []byte(strings.Join(fields, canonicalSeparator))
}

// DigestBytes computes the sha256 digest that gets signed. No truncation, no
// additional salting beyond what the canonical string already folded in.
func DigestBytes(raw []byte) [sha256.Size]byte {
	return sha256.Sum256(raw)
}

func digestHex(digest [sha256.Size]byte) string {
	return "0x" + hex.EncodeToString(digest[:])
}

// Package ops builds the signed TAP protocol messages ("ops") that an
// authority publishes to delegate or attest permissions.
//
// Every builder runs the same pipeline:
// 1. Canonicalize the op's signable fields into an exact byte string
// 2. Digest the bytes with sha256
// 3. Sign the digest with the authority's secp256k1 key (recoverable ECDSA)
// 4. Assemble the op record with the signature and digest embedded
// 5. Re-derive the digest from the assembled op and self-verify before emission
//
// Key components:
// - Canonical encoders: per-kind byte strings whose layout is a protocol contract
// - SignDigest / VerifyDigest / RecoverSigner: the recoverable-signature kernel
// - Build* functions: one per op kind, all-or-nothing
// - VerificationReport: builder-side diagnostic, not published
//
// The canonical byte string is the only thing covered by the signature; the
// JSON rendering of an op is for publication and never re-hashed.
package ops

// Package session persists the client-held proof of login.
//
// A session is a denormalized snapshot of the authenticated account,
// serialized as an HS256-signed token and written to a single fixed key in
// durable key-value storage. One key per storage scope means the last
// writer wins; there is no merge or conflict detection.
//
// # Trust model
//
// The signature only protects against blob tampering and corruption. The
// snapshot's role is never authoritative after restore: callers must
// re-resolve the account from the directory and rewrite the record.
//
// # Architecture boundaries
//
// This package owns the record shape, its codec, and the storage round
// trip. It knows nothing about credential checks, role resolution, or the
// allowlist override; those live in the root package.
package session

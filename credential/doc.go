// Package credential verifies stored account secrets.
//
// # Dual-mode policy
//
// Directories seeded for development carry plaintext secrets next to
// bcrypt-hashed production records. A stored secret with a recognized
// bcrypt prefix ($2a$, $2b$, $2y$) is always verified with bcrypt.
// Anything else is compared as plaintext equality, and only when the
// verifier was built with AllowPlaintext, otherwise verification fails.
// The two modes never coexist for a single record.
//
// # What this package must NOT do
//
//   - Perform I/O; it sees only the candidate and the stored secret.
//   - Distinguish "unknown hash format" from "wrong password" in its
//     result: both are a non-match.
package credential

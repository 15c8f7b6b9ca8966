// Package pgdir implements the account directory on PostgreSQL. Schema
// management runs through goose with embedded migrations; queries go
// through a pgx connection pool.
//
// Deployments that outgrow the Redis directory point the session manager
// here without touching any other wiring: both packages satisfy the same
// [authsession.Directory] contract, including exact-match email lookups.
package pgdir

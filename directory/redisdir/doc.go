// Package redisdir implements the account directory on Redis. Records
// live as JSON blobs in a hash keyed by account id, with a secondary
// hash mapping email to id for login lookups.
//
// Email lookups are exact string matches against the stored address;
// callers wanting case-insensitive resolution retry with a normalized
// address, which matches how the session manager performs its lookup
// chain.
package redisdir

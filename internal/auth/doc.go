// Package auth issues and verifies bearer tokens and resolves them into
// principals that gate write operations.
//
// Every verification failure, whether the token is expired, forged or
// malformed, surfaces as model.ErrUnauthenticated so callers cannot probe
// the token format.
package auth

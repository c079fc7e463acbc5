// Package client talks to the journal backend.
//
// GRPCClient implements Client over the journal.v1.Journal service. It keeps
// the session tokens, injects the access token into every authenticated call,
// refreshes it when it is missing or expired, and maps gRPC status codes to
// the sentinel errors of package common.
//
// InitDatabase opens the local SQLite database and applies the embedded
// goose migrations.
package client

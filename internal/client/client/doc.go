// Package client contains the CLI's transport and local storage bootstrap.
//
// Client is the contract the CLI services program against. GRPCClient
// implements it over the VaultShare gRPC API: it attaches the access token
// to every call through an interceptor and turns gRPC statuses back into
// the sentinel errors from internal/common, so callers can keep using
// errors.Is across the wire.
//
// InitDatabase opens the local SQLite database and applies the embedded
// goose migrations.
package client

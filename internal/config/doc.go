// Package config loads, merges and validates configuration for the fin-keeper
// client and record server.
//
// Sources are merged with dario.cat/mergo in this precedence order (earlier
// wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults
//
// [GetServerConfig] is the entry point for cmd/server. [GetClientConfig]
// projects the client-relevant subset into a [ClientConfig].
package config

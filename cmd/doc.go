// Package cmd implements the command-line interface of miniDB.
//
// The root command runs the server:
//
//	minidb <port> <path> [flags]
//
// The package is organized into several subpackages:
//
//   - serve: flags and startup of the server (used by the root command)
//   - kv: client commands talking to a running server (post, get, delete, raw, perf)
//   - util: shared utilities for command-line processing and configuration (internal use)
//
// See minidb --help for a list of all commands.
package cmd

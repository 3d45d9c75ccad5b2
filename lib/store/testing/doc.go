// Package testing provides a reusable test suite for store.IStore implementations.
// Each implementation calls RunStoreTests from its own _test.go file so all backends
// are held to the same behaviour.
package testing

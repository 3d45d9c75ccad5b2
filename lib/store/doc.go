// Package store provides the interface for the in-memory key-value mapping that backs
// the miniDB server. It defines the contract every store implementation fulfills and
// leaves persistence to the snapshot package.
//
// The package focuses on:
//   - A unified interface (IStore) for the three protocol operations (set, get, delete)
//   - Iteration (Range) and size (Len) queries used by the snapshot writer and metrics
//   - A Factory type so the server can be configured with different backends
//
// Implementations:
//
//	The package includes two implementations of the IStore interface:
//
//	- Local Store (lstore): A plain Go map without any synchronization. It is owned by
//	  the single event loop goroutine and is the default backend.
//	  Available in the "github.com/ValentinKolb/minidb/lib/store/lstore" package.
//
//	- Concurrent Store (cstore): A store based on xsync.MapOf. All methods are safe for
//	  concurrent use, at the cost of a slightly higher per-operation overhead.
//	  Available in the "github.com/ValentinKolb/minidb/lib/store/cstore" package.
//
// Both implementations are checked by the shared test suite in
// "github.com/ValentinKolb/minidb/lib/store/testing".
package store

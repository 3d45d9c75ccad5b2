// Package lstore implements a local, in-memory key-value store based on the
// store.IStore interface. Data is kept in a plain Go map and is not persisted by the
// store itself; see the snapshot package for loading and saving.
//
// Thread Safety:
//
//	The local store performs no locking. It must only be accessed from one goroutine,
//	which in the miniDB server is the event loop that dispatches all commands.
//
// Usage Example:
//
//	s := lstore.NewLocalStore()
//	s.Set("foo", "bar")
//	value, ok := s.Get("foo")
package lstore

package store

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Factory is a function type that creates a new, empty store.
// It is used to abstract the creation of the store from the server implementation.
type Factory func() IStore

// IStore is the interface for the in-memory key–value mapping served by miniDB.
// Keys and values are plain strings without embedded whitespace. A store performs no I/O
// and has no failure modes, so none of the methods return an error.
type IStore interface {
	// Set inserts or updates a key–value pair.
	Set(key, value string)
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(key string) (value string, loaded bool)
	// Delete removes a key–value pair. The boolean return value indicates whether the key existed.
	Delete(key string) (deleted bool)
	// Range calls fn for every entry in the store in no particular order.
	// Iteration stops as soon as fn returns false.
	Range(fn func(key, value string) bool)
	// Len returns the number of entries in the store.
	Len() int
}

// --------------------------------------------------------------------------
// Implementations
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMap   Implementation = "map"   // lstore: plain Go map, owned by the event loop
	ImplXsync Implementation = "xsync" // cstore: xsync.MapOf, safe for concurrent access
)

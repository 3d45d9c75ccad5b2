// Package snapshot loads and saves the complete content of a store.IStore as a plain
// text file. The format is line based, one "key value" record per line, without a
// header or escaping. Keys and values therefore must not contain whitespace.
//
// The snapshot is read once at startup and written once at orderly shutdown; there is
// no write-ahead log and no crash durability.
package snapshot

package command

import (
	"github.com/ValentinKolb/minidb/lib/store"
)

// Observer is notified after every dispatched line.
// cmd.Verb is empty for lines that did not parse.
type Observer func(cmd Command, resp Response)

// Dispatcher executes protocol lines against a store.
//
// Thread-safety: a Dispatcher is as safe as the store it wraps. The server only calls it
// from the event loop goroutine.
type Dispatcher struct {
	store    store.IStore
	observer Observer
}

// NewDispatcher creates a dispatcher for the given store.
// The observer is optional and may be nil.
func NewDispatcher(s store.IStore, observer Observer) *Dispatcher {
	return &Dispatcher{
		store:    s,
		observer: observer,
	}
}

// Dispatch parses and executes a single line (without its trailing newline)
// and returns the newline terminated response line.
// Malformed lines never fail; they are answered with StatusInvalid.
func (d *Dispatcher) Dispatch(line []byte) []byte {
	var resp Response

	cmd, err := Parse(string(line))
	if err != nil {
		resp = Response{Status: StatusInvalid}
	} else {
		resp = Execute(cmd, d.store)
	}

	if d.observer != nil {
		d.observer(cmd, resp)
	}
	return resp.Bytes()
}

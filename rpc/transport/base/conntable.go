package base

// ConnTable maps an open connection (identified by K, e.g. a file descriptor) to its
// inbound LineBuffer.
//
// An identifier is present iff the connection is open and owned by the transport.
// The table is not synchronized; it belongs to the event loop goroutine.
type ConnTable[K comparable] struct {
	conns      map[K]*LineBuffer
	bufferSize int
}

// NewConnTable creates an empty table; new buffers start with bufferSize capacity
func NewConnTable[K comparable](bufferSize int) *ConnTable[K] {
	return &ConnTable[K]{
		conns:      make(map[K]*LineBuffer),
		bufferSize: bufferSize,
	}
}

// Add registers a connection with an empty buffer and returns the buffer.
// An existing entry for the same id is replaced.
func (t *ConnTable[K]) Add(id K) *LineBuffer {
	buf := NewLineBuffer(t.bufferSize)
	t.conns[id] = buf
	return buf
}

// Get returns the buffer of an open connection
func (t *ConnTable[K]) Get(id K) (*LineBuffer, bool) {
	buf, ok := t.conns[id]
	return buf, ok
}

// Remove drops a connection. It reports whether the connection was registered.
func (t *ConnTable[K]) Remove(id K) bool {
	if _, ok := t.conns[id]; !ok {
		return false
	}
	delete(t.conns, id)
	return true
}

// Len returns the number of open connections
func (t *ConnTable[K]) Len() int {
	return len(t.conns)
}

// IDs returns the identifiers of all open connections in no particular order
func (t *ConnTable[K]) IDs() []K {
	ids := make([]K, 0, len(t.conns))
	for id := range t.conns {
		ids = append(ids, id)
	}
	return ids
}

package lstore

import (
	"github.com/ValentinKolb/minidb/lib/store"
)

type storeImpl struct {
	data map[string]string
}

// NewLocalStore creates a new local store instance backed by a plain Go map.
// The store is not safe for concurrent use: it is meant to be owned by the single
// event loop goroutine that dispatches all commands.
func NewLocalStore() store.IStore {
	return &storeImpl{
		data: make(map[string]string),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key, value string) {
	s.data[key] = value
}

func (s *storeImpl) Get(key string) (string, bool) {
	val, ok := s.data[key]
	return val, ok
}

func (s *storeImpl) Delete(key string) bool {
	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	return true
}

func (s *storeImpl) Range(fn func(key, value string) bool) {
	for k, v := range s.data {
		if !fn(k, v) {
			return
		}
	}
}

func (s *storeImpl) Len() int {
	return len(s.data)
}

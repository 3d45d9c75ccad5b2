package cstore

import (
	"github.com/ValentinKolb/minidb/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
)

type storeImpl struct {
	data *xsync.MapOf[string, string]
}

// NewConcurrentStore creates a new store backed by a xsync.MapOf.
// In contrast to the lstore package all methods are safe for concurrent use,
// which allows readers outside the event loop (e.g. status handlers) to inspect the store.
func NewConcurrentStore() store.IStore {
	return &storeImpl{
		data: xsync.NewMapOf[string, string](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key, value string) {
	s.data.Store(key, value)
}

func (s *storeImpl) Get(key string) (string, bool) {
	return s.data.Load(key)
}

func (s *storeImpl) Delete(key string) bool {
	_, loaded := s.data.LoadAndDelete(key)
	return loaded
}

func (s *storeImpl) Range(fn func(key, value string) bool) {
	s.data.Range(fn)
}

func (s *storeImpl) Len() int {
	return s.data.Size()
}

package testing

import (
	"fmt"
	"sort"
	"testing"

	"github.com/ValentinKolb/minidb/lib/store"
)

// RunStoreTests runs a comprehensive test suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory store.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Range", func(t *testing.T) {
			testRange(t, factory())
		})

		t.Run("RangeStop", func(t *testing.T) {
			testRangeStop(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, s store.IStore) {
	s.Set("test-key", "test-value1")

	result, exists := s.Get("test-key")
	if !exists {
		t.Errorf("Expected key %s to exist after Set", "test-key")
	}
	if result != "test-value1" {
		t.Errorf("Expected value %s, got %s", "test-value1", result)
	}

	// overwrite
	s.Set("test-key", "test-value2")

	result, exists = s.Get("test-key")
	if !exists {
		t.Errorf("Expected key %s to exist after Set", "test-key")
	}
	if result != "test-value2" {
		t.Errorf("Expected value %s, got %s", "test-value2", result)
	}

	if s.Len() != 1 {
		t.Errorf("Expected exactly one entry after overwrite, got %d", s.Len())
	}

	if _, exists = s.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}
}

func testDelete(t *testing.T, s store.IStore) {
	s.Set("delete-key", "value")

	if !s.Delete("delete-key") {
		t.Errorf("Expected Delete to report an existing key")
	}
	if _, exists := s.Get("delete-key"); exists {
		t.Errorf("Expected key to be gone after Delete")
	}
	if s.Delete("delete-key") {
		t.Errorf("Expected second Delete to report a missing key")
	}
	if s.Delete("never-set") {
		t.Errorf("Expected Delete of unknown key to return false")
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d entries", s.Len())
	}
}

func testRange(t *testing.T, s store.IStore) {
	want := map[string]string{}
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("range-key-%d", i)
		value := fmt.Sprintf("range-value-%d", i)
		want[key] = value
		s.Set(key, value)
	}

	got := map[string]string{}
	s.Range(func(key, value string) bool {
		if _, dup := got[key]; dup {
			t.Errorf("Range visited key %s twice", key)
		}
		got[key] = value
		return true
	})

	if len(got) != len(want) {
		t.Fatalf("Range visited %d entries, expected %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Range returned %s=%s, expected %s", k, got[k], v)
		}
	}
}

func testRangeStop(t *testing.T, s store.IStore) {
	for i := 0; i < 10; i++ {
		s.Set(fmt.Sprintf("k%d", i), "v")
	}

	visited := 0
	s.Range(func(_, _ string) bool {
		visited++
		return visited < 3
	})

	if visited != 3 {
		t.Errorf("Expected Range to stop after 3 entries, visited %d", visited)
	}
}

func testEdgeCases(t *testing.T, s store.IStore) {
	// empty key and value are valid map entries, even though the protocol never produces them
	s.Set("", "")
	if v, ok := s.Get(""); !ok || v != "" {
		t.Errorf("Expected empty key to be stored, got ok=%v value=%q", ok, v)
	}

	longKey := make([]byte, 64*1024)
	for i := range longKey {
		longKey[i] = 'k'
	}
	s.Set(string(longKey), "long")
	if v, ok := s.Get(string(longKey)); !ok || v != "long" {
		t.Errorf("Expected long key to be stored")
	}

	s.Set("unicode-ключ", "値")
	if v, ok := s.Get("unicode-ключ"); !ok || v != "値" {
		t.Errorf("Expected unicode key to be stored, got %q", v)
	}
}

func testRealisticUsage(t *testing.T, s store.IStore) {
	for i := 0; i < 1000; i++ {
		s.Set(fmt.Sprintf("user:%d", i), fmt.Sprintf("name-%d", i))
	}
	for i := 0; i < 1000; i += 2 {
		s.Delete(fmt.Sprintf("user:%d", i))
	}
	for i := 1; i < 1000; i += 4 {
		s.Set(fmt.Sprintf("user:%d", i), "updated")
	}

	if s.Len() != 500 {
		t.Fatalf("Expected 500 entries, got %d", s.Len())
	}

	var keys []string
	s.Range(func(key, _ string) bool {
		keys = append(keys, key)
		return true
	})
	sort.Strings(keys)
	if len(keys) != 500 {
		t.Fatalf("Range returned %d keys, expected 500", len(keys))
	}

	if v, _ := s.Get("user:1"); v != "updated" {
		t.Errorf("Expected user:1 to be updated, got %s", v)
	}
	if v, _ := s.Get("user:3"); v != "name-3" {
		t.Errorf("Expected user:3 to be unchanged, got %s", v)
	}
	if _, ok := s.Get("user:0"); ok {
		t.Errorf("Expected user:0 to be deleted")
	}
}

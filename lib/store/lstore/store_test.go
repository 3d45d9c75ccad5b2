package lstore

import (
	"testing"

	storetesting "github.com/ValentinKolb/minidb/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "LocalStore", NewLocalStore)
}

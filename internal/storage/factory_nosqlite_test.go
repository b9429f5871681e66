//go:build !sqlite

package storage

import (
	"strings"
	"testing"
)

func TestNewStoreSQLiteWithoutTag(t *testing.T) {
	_, err := NewStore("sqlite", "verdane.db")
	if err == nil {
		t.Fatal("expected error for sqlite backend without the sqlite tag")
	}
	if !strings.Contains(err.Error(), "-tags sqlite") {
		t.Fatalf("error %q does not point at the build tag", err)
	}
}

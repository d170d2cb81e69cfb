package xid

import (
	"strings"
	"testing"
	"time"
)

func TestNewAtKeepsPrefixAndOrder(t *testing.T) {
	first := NewAt("sale", time.Date(2024, 3, 12, 12, 2, 10, 0, time.UTC))
	second := NewAt("sale", time.Date(2024, 3, 12, 12, 20, 45, 0, time.UTC))

	if !strings.HasPrefix(first, "sale-20240312T120210") {
		t.Fatalf("unexpected id %q", first)
	}
	if first >= second {
		t.Fatalf("expected %q to sort before %q", first, second)
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := New("sale")
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

package uuid

import (
	"strings"
	"testing"
)

func TestGenUUID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		uuid := GenUUID()
		if len(uuid) != UUID_LENGTH {
			t.Fatalf("GenUUID: bad length %q", uuid)
		}
		if strings.ContainsAny(uuid, "/+.=") {
			t.Fatalf("GenUUID: %q is not url safe", uuid)
		}
		if seen[uuid] {
			t.Fatalf("GenUUID: duplicate %q", uuid)
		}
		seen[uuid] = true
	}
}

func TestGenRef(t *testing.T) {
	ref := GenRef("item")
	if !strings.HasPrefix(ref, "item-") || len(ref) != len("item-")+UUID_LENGTH {
		t.Errorf("GenRef: bad ref %q", ref)
	}
	if len(GenRef("")) != UUID_LENGTH {
		t.Errorf("GenRef: empty prefix should give a bare uuid")
	}
}

func BenchmarkGenUUID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenUUID()
	}
}

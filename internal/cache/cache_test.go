package cache

import "testing"

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db := DB{Entries: map[string]string{"a.go": Hash([]byte("package a"))}}
	if err := Save(dir, db); err != nil {
		t.Fatal(err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Entries["a.go"] != db.Entries["a.go"] {
		t.Fatalf("entry mismatch: %q", got.Entries["a.go"])
	}
}

func TestHashStable(t *testing.T) {
	if Hash([]byte("x")) != Hash([]byte("x")) {
		t.Fatal("hash not deterministic")
	}
	if Hash([]byte("x")) == Hash([]byte("y")) {
		t.Fatal("hash collision on trivial inputs")
	}
	if len(Hash([]byte("anything"))) != 16 {
		t.Fatal("expected 16 hex digits")
	}
	if Hash(nil) != "0000000000000000" {
		t.Fatal("empty content sentinel changed")
	}
}

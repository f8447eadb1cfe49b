package stash

import (
	"testing"
)

func TestStash_IdsIncrease(t *testing.T) {
	s := New()
	a := s.Put([]byte("a"))
	b := s.Put([]byte("b"))

	if a == 0 {
		t.Error("first id must not be zero")
	}
	if b <= a {
		t.Errorf("ids not increasing: %d then %d", a, b)
	}
}

func TestStash_TakeOnce(t *testing.T) {
	s := New()
	id := s.Put([]byte("payload"))

	got, ok := s.Take(id)
	if !ok || string(got) != "payload" {
		t.Fatalf("Take() = %q, %v; want payload, true", got, ok)
	}
	if _, ok := s.Take(id); ok {
		t.Error("second Take() should miss")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStash_Pull(t *testing.T) {
	tests := []struct {
		name string
		want string
		n    int
	}{
		{name: "shorter than available", n: 3, want: "hel"},
		{name: "exact", n: 5, want: "hello"},
		{name: "longer than available", n: 64, want: "hello"},
		{name: "zero", n: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			id := s.Put([]byte("hello"))
			if got := string(s.Pull(id, tt.n)); got != tt.want {
				t.Errorf("Pull(%d) = %q, want %q", tt.n, got, tt.want)
			}
			if s.Len() != 0 {
				t.Error("Pull must evict the entry")
			}
		})
	}
}

func TestStash_PullMissing(t *testing.T) {
	s := New()
	if got := s.Pull(42, 10); got != nil {
		t.Errorf("Pull(missing) = %q, want nil", got)
	}
}

func TestStash_ResetKeepsCounter(t *testing.T) {
	s := New()
	first := s.Put(nil)
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d", s.Len())
	}
	if next := s.Put(nil); next <= first {
		t.Errorf("id reused after Reset: %d <= %d", next, first)
	}
}

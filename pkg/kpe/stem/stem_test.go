package stem

import (
	"sync"
	"testing"
)

func TestSnowballEnglish(t *testing.T) {
	s, err := NewSnowball("English")
	if err != nil {
		t.Fatalf("NewSnowball: %v", err)
	}
	if s.Language != "english" {
		t.Errorf("Language = %q", s.Language)
	}

	tests := map[string]string{
		"learning": "learn",
		"networks": "network",
		"running":  "run",
	}
	for in, want := range tests {
		if got := s.Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSnowballUnsupportedLanguage(t *testing.T) {
	if _, err := NewSnowball("klingon"); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestIdentity(t *testing.T) {
	if got := (Identity{}).Stem("Networks"); got != "Networks" {
		t.Errorf("Identity.Stem = %q", got)
	}
}

type countingStemmer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingStemmer) Stem(word string) string {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return word + "!"
}

func TestCachedMemoizes(t *testing.T) {
	inner := &countingStemmer{}
	c := NewCached(inner, 0)

	for i := 0; i < 3; i++ {
		if got := c.Stem("word"); got != "word!" {
			t.Fatalf("Stem = %q", got)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}

	c.Stem("other")
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCachedConcurrent(t *testing.T) {
	c := NewCached(&countingStemmer{}, 0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := c.Stem("shared"); got != "shared!" {
				t.Errorf("Stem = %q", got)
			}
		}()
	}
	wg.Wait()
}

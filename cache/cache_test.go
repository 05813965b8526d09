package cache

import (
	"context"
	"testing"
)

type entry struct {
	Name string `json:"name"`
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var got entry
	if hit, err := m.Get(ctx, PlaylistsListKey(), &got); hit || err != nil {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}

	if err := m.Set(ctx, PlaylistsListKey(), entry{Name: "Caboclo"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	hit, err := m.Get(ctx, PlaylistsListKey(), &got)
	if !hit || err != nil {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if got.Name != "Caboclo" {
		t.Errorf("unexpected value %+v", got)
	}
}

func TestMemoryInvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, key := range []string{PlaylistsListKey(), PlaylistKey("a"), PontosListKey("all"), HistoriaLatest} {
		_ = m.Set(ctx, key, entry{Name: key})
	}

	if err := m.Invalidate(ctx, PlaylistsPrefix, PontosPrefix); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("expected only historia to survive, %d keys left", m.Len())
	}
	var got entry
	if hit, _ := m.Get(ctx, HistoriaLatest, &got); !hit {
		t.Error("historia entry should not be invalidated")
	}
}

func TestNoopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var s Store = Noop{}
	_ = s.Set(ctx, "k", entry{Name: "x"})
	var got entry
	if hit, _ := s.Get(ctx, "k", &got); hit {
		t.Error("noop store must never hit")
	}
}

func TestMemorySetIfGeneration(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	gen := m.Generation()
	if err := m.Invalidate(ctx, PlaylistsPrefix); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if m.Generation() == gen {
		t.Fatal("invalidate should advance the generation")
	}

	ok, err := m.SetIfGeneration(ctx, PlaylistsListKey(), entry{Name: "velho"}, gen)
	if err != nil || ok {
		t.Fatalf("expected write from an older generation to be skipped, ok=%v err=%v", ok, err)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty cache, got %d keys", m.Len())
	}

	ok, err = m.SetIfGeneration(ctx, PlaylistsListKey(), entry{Name: "novo"}, m.Generation())
	if err != nil || !ok {
		t.Fatalf("expected current-generation write, ok=%v err=%v", ok, err)
	}
}

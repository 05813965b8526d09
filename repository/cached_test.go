package repository

import (
	"context"
	"testing"

	"simpleink/cache"
	"simpleink/model"
)

func TestCachedPlaylistWriteIsVisible(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	store := cache.NewMemory()
	var hits, misses int
	observe := func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}
	repo := NewCachedPlaylistRepository(NewSQLPlaylistRepository(pool, stepClock()), store, observe)

	if list, _ := repo.List(ctx); len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
	if list, _ := repo.List(ctx); len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}

	id, err := repo.Create(ctx, &model.Playlist{Titulo: "Nova"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	list, _ := repo.List(ctx)
	if len(list) != 1 || list[0].ID != id {
		t.Fatalf("created playlist not visible after create: %+v", list)
	}

	patch := mustPatch(t, model.ParsePlaylistPatch, map[string]string{"titulo": `"Renomeada"`})
	_, _ = repo.Get(ctx, id)
	if err := repo.Update(ctx, id, patch); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repo.Get(ctx, id)
	if got.Titulo != "Renomeada" {
		t.Errorf("stale cached playlist after update: %s", got.Titulo)
	}
}

func TestCachedPontoCreateRefreshesPlaylistCount(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	store := cache.NewMemory()
	clock := stepClock()
	playlists := NewCachedPlaylistRepository(NewSQLPlaylistRepository(pool, clock), store, nil)
	pontos := NewCachedPontoRepository(NewSQLPontoRepository(pool, clock), store, nil)

	id, _ := playlists.Create(ctx, &model.Playlist{Titulo: "A"})
	_, _ = playlists.Get(ctx, id)
	if _, err := pontos.Create(ctx, &model.Ponto{Titulo: "x", PlaylistID: &id}); err != nil {
		t.Fatalf("create ponto: %v", err)
	}

	got, _ := playlists.Get(ctx, id)
	if got.NumPontos != 1 {
		t.Errorf("expected num_pontos 1, got %d", got.NumPontos)
	}
}

func TestLookupDropsValueLoadedBeforeInvalidation(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	key := cache.PlaylistsListKey()

	// a write lands while the read is still loading the old rows
	stale, err := lookup(ctx, store, key, nil, func() ([]string, error) {
		invalidate(ctx, store, cache.PlaylistsPrefix)
		return []string{"antiga"}, nil
	})
	if err != nil || len(stale) != 1 {
		t.Fatalf("lookup: %v %v", stale, err)
	}
	if store.Len() != 0 {
		t.Fatalf("stale rows were cached after the invalidation")
	}

	fresh, _ := lookup(ctx, store, key, nil, func() ([]string, error) {
		return []string{"nova"}, nil
	})
	var cached []string
	if hit, _ := store.Get(ctx, key, &cached); !hit || cached[0] != "nova" || fresh[0] != "nova" {
		t.Errorf("expected fresh rows cached, got hit=%v %v", hit, cached)
	}
}

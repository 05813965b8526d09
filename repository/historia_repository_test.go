package repository

import (
	"context"
	"errors"
	"testing"

	"simpleink/db"
	"simpleink/model"
)

func newHistoriaRepo(t *testing.T) *GormHistoriaRepository {
	t.Helper()
	gdb, err := db.OpenGorm(newTestPool(t))
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return NewGormHistoriaRepository(gdb, stepClock())
}

func TestHistoriaLatest(t *testing.T) {
	ctx := context.Background()
	repo := newHistoriaRepo(t)

	if _, err := repo.Latest(ctx); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty table, got %v", err)
	}

	first, err := repo.Create(ctx, &model.Historia{Conteudo: "primeira versão"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, &model.Historia{Conteudo: "segunda versão"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	latest, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Conteudo != "segunda versão" {
		t.Errorf("expected newest content, got %q", latest.Conteudo)
	}

	old, err := repo.Get(ctx, first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if old.Conteudo != "primeira versão" {
		t.Errorf("unexpected content %q", old.Conteudo)
	}
}

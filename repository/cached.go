package repository

import (
	"context"

	"simpleink/cache"
	"simpleink/logger"
	"simpleink/model"
)

// HitObserver is told about every cache lookup.
type HitObserver func(hit bool)

func lookup[T any](ctx context.Context, store cache.Store, key string, observe HitObserver, load func() (T, error)) (T, error) {
	var cached T
	hit, err := store.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("Cache read failed", logger.String("key", key), logger.ErrorField(err))
		hit = false
	}
	if observe != nil {
		observe(hit)
	}
	if hit {
		return cached, nil
	}

	gen := store.Generation()
	value, err := load()
	if err != nil {
		return value, err
	}
	if _, err := store.SetIfGeneration(ctx, key, value, gen); err != nil {
		logger.Warn("Cache write failed", logger.String("key", key), logger.ErrorField(err))
	}
	return value, nil
}

// invalidate 在写操作成功后调用，写入结果对随后的读取立即可见
func invalidate(ctx context.Context, store cache.Store, prefixes ...string) {
	if err := store.Invalidate(ctx, prefixes...); err != nil {
		logger.Error("Cache invalidation failed", logger.Any("prefixes", prefixes), logger.ErrorField(err))
	}
}

// CachedPlaylistRepository 为歌单读取加上读穿缓存
type CachedPlaylistRepository struct {
	PlaylistRepository
	store   cache.Store
	observe HitObserver
}

func NewCachedPlaylistRepository(next PlaylistRepository, store cache.Store, observe HitObserver) *CachedPlaylistRepository {
	return &CachedPlaylistRepository{PlaylistRepository: next, store: store, observe: observe}
}

func (r *CachedPlaylistRepository) List(ctx context.Context) ([]*model.Playlist, error) {
	return lookup(ctx, r.store, cache.PlaylistsListKey(), r.observe, func() ([]*model.Playlist, error) {
		return r.PlaylistRepository.List(ctx)
	})
}

func (r *CachedPlaylistRepository) Get(ctx context.Context, id string) (*model.Playlist, error) {
	return lookup(ctx, r.store, cache.PlaylistKey(id), r.observe, func() (*model.Playlist, error) {
		return r.PlaylistRepository.Get(ctx, id)
	})
}

func (r *CachedPlaylistRepository) Create(ctx context.Context, p *model.Playlist) (string, error) {
	id, err := r.PlaylistRepository.Create(ctx, p)
	if err == nil {
		invalidate(ctx, r.store, cache.PlaylistsPrefix)
	}
	return id, err
}

func (r *CachedPlaylistRepository) Update(ctx context.Context, id string, patch model.Patch) error {
	err := r.PlaylistRepository.Update(ctx, id, patch)
	if err == nil {
		invalidate(ctx, r.store, cache.PlaylistsPrefix)
	}
	return err
}

func (r *CachedPlaylistRepository) Delete(ctx context.Context, id string) error {
	err := r.PlaylistRepository.Delete(ctx, id)
	if err == nil {
		invalidate(ctx, r.store, cache.PlaylistsPrefix, cache.PontosPrefix)
	}
	return err
}

func (r *CachedPlaylistRepository) Follow(ctx context.Context, id string) error {
	err := r.PlaylistRepository.Follow(ctx, id)
	if err == nil {
		invalidate(ctx, r.store, cache.PlaylistsPrefix)
	}
	return err
}

// CachedPontoRepository caches filtered ponto lists. Single pontos are read directly.
type CachedPontoRepository struct {
	PontoRepository
	store   cache.Store
	observe HitObserver
}

func NewCachedPontoRepository(next PontoRepository, store cache.Store, observe HitObserver) *CachedPontoRepository {
	return &CachedPontoRepository{PontoRepository: next, store: store, observe: observe}
}

func (r *CachedPontoRepository) List(ctx context.Context, filter model.PontoFilter) ([]*model.Ponto, error) {
	return lookup(ctx, r.store, cache.PontosListKey(filter.Key()), r.observe, func() ([]*model.Ponto, error) {
		return r.PontoRepository.List(ctx, filter)
	})
}

// pontos 变化会影响歌单的 num_pontos，所以两类键都要失效
func (r *CachedPontoRepository) changed(ctx context.Context, err error) error {
	if err == nil {
		invalidate(ctx, r.store, cache.PontosPrefix, cache.PlaylistsPrefix)
	}
	return err
}

func (r *CachedPontoRepository) Create(ctx context.Context, p *model.Ponto) (string, error) {
	id, err := r.PontoRepository.Create(ctx, p)
	return id, r.changed(ctx, err)
}

func (r *CachedPontoRepository) Update(ctx context.Context, id string, patch model.Patch) error {
	return r.changed(ctx, r.PontoRepository.Update(ctx, id, patch))
}

func (r *CachedPontoRepository) Delete(ctx context.Context, id string) error {
	return r.changed(ctx, r.PontoRepository.Delete(ctx, id))
}

func (r *CachedPontoRepository) Detach(ctx context.Context, id string) error {
	return r.changed(ctx, r.PontoRepository.Detach(ctx, id))
}

// CachedHistoriaRepository caches the latest história row.
type CachedHistoriaRepository struct {
	HistoriaRepository
	store   cache.Store
	observe HitObserver
}

func NewCachedHistoriaRepository(next HistoriaRepository, store cache.Store, observe HitObserver) *CachedHistoriaRepository {
	return &CachedHistoriaRepository{HistoriaRepository: next, store: store, observe: observe}
}

func (r *CachedHistoriaRepository) Latest(ctx context.Context) (*model.Historia, error) {
	return lookup(ctx, r.store, cache.HistoriaLatest, r.observe, func() (*model.Historia, error) {
		return r.HistoriaRepository.Latest(ctx)
	})
}

func (r *CachedHistoriaRepository) Create(ctx context.Context, h *model.Historia) (string, error) {
	id, err := r.HistoriaRepository.Create(ctx, h)
	if err == nil {
		invalidate(ctx, r.store, cache.HistoriaLatest)
	}
	return id, err
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"simpleink/db"
	"simpleink/logger"
	"simpleink/model"

	"github.com/google/uuid"
)

// PlaylistRepository 定义歌单相关的数据库操作接口
type PlaylistRepository interface {
	// List 返回所有歌单，按创建时间倒序
	List(ctx context.Context) ([]*model.Playlist, error)

	// Get 根据ID获取歌单，不存在时返回 model.ErrNotFound
	Get(ctx context.Context, id string) (*model.Playlist, error)

	// Create 创建新歌单并返回生成的ID
	Create(ctx context.Context, p *model.Playlist) (string, error)

	// Update 按 patch 修改歌单的部分字段
	Update(ctx context.Context, id string, patch model.Patch) error

	// Delete 删除歌单，并把其中的 pontos 解除归属
	Delete(ctx context.Context, id string) error

	// Follow 关注数加一
	Follow(ctx context.Context, id string) error
}

// SQLPlaylistRepository is the database/sql implementation of PlaylistRepository.
type SQLPlaylistRepository struct {
	pool *db.Pool
	now  Clock
}

// NewSQLPlaylistRepository 创建歌单仓库，now 为 nil 时使用当前 UTC 时间
func NewSQLPlaylistRepository(pool *db.Pool, now Clock) *SQLPlaylistRepository {
	if now == nil {
		now = utcNow
	}
	return &SQLPlaylistRepository{pool: pool, now: now}
}

const playlistSelect = `
	SELECT p.id, p.titulo, p.subtitulo, p.compositor, p.imagem_url,
		(SELECT COUNT(*) FROM pontos WHERE pontos.playlist_id = p.id) AS num_pontos,
		p.num_followers, p.num_downloads, p.created_at
	FROM playlists p`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (*model.Playlist, error) {
	var p model.Playlist
	var subtitulo, compositor, imagemURL sql.NullString
	err := row.Scan(&p.ID, &p.Titulo, &subtitulo, &compositor, &imagemURL,
		&p.NumPontos, &p.NumFollowers, &p.NumDownloads, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Subtitulo = nullableString(subtitulo)
	p.Compositor = nullableString(compositor)
	p.ImagemURL = nullableString(imagemURL)
	return &p, nil
}

// List 返回所有歌单
func (r *SQLPlaylistRepository) List(ctx context.Context) ([]*model.Playlist, error) {
	playlists := []*model.Playlist{}
	err := r.pool.Run(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, playlistSelect+" ORDER BY p.created_at DESC")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPlaylist(rows)
			if err != nil {
				return err
			}
			playlists = append(playlists, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	return playlists, nil
}

// Get 根据ID获取歌单
func (r *SQLPlaylistRepository) Get(ctx context.Context, id string) (*model.Playlist, error) {
	var playlist *model.Playlist
	err := r.pool.Run(ctx, func(conn *sql.Conn) error {
		p, err := scanPlaylist(conn.QueryRowContext(ctx, playlistSelect+" WHERE p.id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		playlist = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return playlist, nil
}

// Create 创建新歌单，计数器从 0 开始
func (r *SQLPlaylistRepository) Create(ctx context.Context, p *model.Playlist) (string, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = r.now()
	p.NumPontos, p.NumFollowers, p.NumDownloads = 0, 0, 0

	_, err := r.pool.Execute(ctx, `
		INSERT INTO playlists (id, titulo, subtitulo, compositor, imagem_url, num_followers, num_downloads, created_at)
		VALUES (?, ?, ?, ?, ?, 0, 0, ?)`,
		p.ID, p.Titulo, deref(p.Subtitulo), deref(p.Compositor), deref(p.ImagemURL), p.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create playlist: %w", err)
	}
	return p.ID, nil
}

// Update 修改歌单。行存在但值未变化时仍视为成功
func (r *SQLPlaylistRepository) Update(ctx context.Context, id string, patch model.Patch) error {
	if patch.Empty() {
		return model.ErrEmptyUpdate
	}
	set, args := patch.SetClause()
	args = append(args, id)

	return r.pool.Run(ctx, func(conn *sql.Conn) error {
		if err := ensureExists(ctx, conn, "playlists", id, ""); err != nil {
			return err
		}
		_, err := conn.ExecContext(ctx, "UPDATE playlists SET "+set+" WHERE id = ?", args...)
		return err
	})
}

// Delete 在同一事务中解除 pontos 归属并删除歌单
func (r *SQLPlaylistRepository) Delete(ctx context.Context, id string) error {
	return r.pool.Tx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, "playlists", id, r.pool.LockClause()); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, "UPDATE pontos SET playlist_id = NULL WHERE playlist_id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to detach pontos: %w", err)
		}
		detached, _ := res.RowsAffected()

		res, err = tx.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete playlist: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return model.ErrNotFound
		}

		logger.Info("Playlist deleted", logger.String("id", id), logger.Int64("detachedPontos", detached))
		return nil
	})
}

// Follow 关注数加一
func (r *SQLPlaylistRepository) Follow(ctx context.Context, id string) error {
	res, err := r.pool.Execute(ctx, "UPDATE playlists SET num_followers = num_followers + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

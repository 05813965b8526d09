package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"simpleink/db"
	"simpleink/model"

	"github.com/google/uuid"
)

// PontoRepository 定义 ponto 相关的数据库操作接口
type PontoRepository interface {
	// List 返回满足过滤条件的 pontos，按创建时间倒序
	List(ctx context.Context, filter model.PontoFilter) ([]*model.Ponto, error)

	// Get 根据ID获取 ponto，不存在时返回 model.ErrNotFound
	Get(ctx context.Context, id string) (*model.Ponto, error)

	// Create 创建新 ponto 并返回生成的ID
	Create(ctx context.Context, p *model.Ponto) (string, error)

	// Update 按 patch 修改 ponto 的部分字段
	Update(ctx context.Context, id string, patch model.Patch) error

	// Delete 删除 ponto
	Delete(ctx context.Context, id string) error

	// Detach 把 ponto 从所属歌单中移出
	Detach(ctx context.Context, id string) error
}

// SQLPontoRepository is the database/sql implementation of PontoRepository.
type SQLPontoRepository struct {
	pool *db.Pool
	now  Clock
}

// NewSQLPontoRepository 创建 ponto 仓库
func NewSQLPontoRepository(pool *db.Pool, now Clock) *SQLPontoRepository {
	if now == nil {
		now = utcNow
	}
	return &SQLPontoRepository{pool: pool, now: now}
}

const pontoSelect = `SELECT id, playlist_id, titulo, compositor, audio_url, duracao, created_at FROM pontos`

var errUnknownPlaylist = &model.ValidationError{Field: "playlist_id", Reason: "não corresponde a nenhuma playlist"}

func scanPonto(row rowScanner) (*model.Ponto, error) {
	var p model.Ponto
	var playlistID, compositor, audioURL sql.NullString
	var duracao sql.NullInt64

	err := row.Scan(&p.ID, &playlistID, &p.Titulo, &compositor, &audioURL, &duracao, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.PlaylistID = nullableString(playlistID)
	p.Compositor = nullableString(compositor)
	p.AudioURL = nullableString(audioURL)
	p.Duracao = nullableInt(duracao)
	return &p, nil
}

// List 返回 pontos。filter 为空时返回全部
func (r *SQLPontoRepository) List(ctx context.Context, filter model.PontoFilter) ([]*model.Ponto, error) {
	query := pontoSelect
	var args []any
	switch {
	case filter.Unassigned:
		query += " WHERE playlist_id IS NULL"
	case filter.PlaylistID != nil:
		query += " WHERE playlist_id = ?"
		args = append(args, *filter.PlaylistID)
	}
	query += " ORDER BY created_at DESC"

	pontos := []*model.Ponto{}
	err := r.pool.Run(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPonto(rows)
			if err != nil {
				return err
			}
			pontos = append(pontos, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pontos: %w", err)
	}
	return pontos, nil
}

// Get 根据ID获取 ponto
func (r *SQLPontoRepository) Get(ctx context.Context, id string) (*model.Ponto, error) {
	var ponto *model.Ponto
	err := r.pool.Run(ctx, func(conn *sql.Conn) error {
		p, err := scanPonto(conn.QueryRowContext(ctx, pontoSelect+" WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		ponto = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return ponto, nil
}

// Create 创建 ponto。playlist_id 必须指向已存在的歌单
func (r *SQLPontoRepository) Create(ctx context.Context, p *model.Ponto) (string, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = r.now()

	err := r.pool.Run(ctx, func(conn *sql.Conn) error {
		if p.PlaylistID != nil {
			if err := ensureExists(ctx, conn, "playlists", *p.PlaylistID, ""); err != nil {
				if errors.Is(err, model.ErrNotFound) {
					return errUnknownPlaylist
				}
				return err
			}
		}
		_, err := conn.ExecContext(ctx, `
			INSERT INTO pontos (id, playlist_id, titulo, compositor, audio_url, duracao, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, deref(p.PlaylistID), p.Titulo, deref(p.Compositor), deref(p.AudioURL), deref(p.Duracao), p.CreatedAt,
		)
		return err
	})
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// Update 修改 ponto。playlist_id 显式为 null 时解除归属
func (r *SQLPontoRepository) Update(ctx context.Context, id string, patch model.Patch) error {
	if patch.Empty() {
		return model.ErrEmptyUpdate
	}
	set, args := patch.SetClause()
	args = append(args, id)

	return r.pool.Run(ctx, func(conn *sql.Conn) error {
		if err := ensureExists(ctx, conn, "pontos", id, ""); err != nil {
			return err
		}
		for _, a := range patch {
			if a.Column != "playlist_id" || a.Value == nil {
				continue
			}
			if err := ensureExists(ctx, conn, "playlists", a.Value.(string), ""); err != nil {
				if errors.Is(err, model.ErrNotFound) {
					return errUnknownPlaylist
				}
				return err
			}
		}
		_, err := conn.ExecContext(ctx, "UPDATE pontos SET "+set+" WHERE id = ?", args...)
		return err
	})
}

// Delete 删除 ponto
func (r *SQLPontoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Execute(ctx, "DELETE FROM pontos WHERE id = ?", id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Detach 把 ponto 从所属歌单中移出
func (r *SQLPontoRepository) Detach(ctx context.Context, id string) error {
	return r.Update(ctx, id, model.Patch{{Column: "playlist_id", Value: nil}})
}

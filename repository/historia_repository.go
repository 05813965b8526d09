package repository

import (
	"context"
	"errors"
	"fmt"

	"simpleink/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoriaRepository 读写“história”页面内容
type HistoriaRepository interface {
	// Latest 返回最新的一条内容，没有内容时返回 model.ErrNotFound
	Latest(ctx context.Context) (*model.Historia, error)
	Get(ctx context.Context, id string) (*model.Historia, error)
	// Create 追加一条新内容，旧内容保留
	Create(ctx context.Context, h *model.Historia) (string, error)
}

// GormHistoriaRepository 基于 GORM 的实现
type GormHistoriaRepository struct {
	db  *gorm.DB
	now Clock
}

// NewGormHistoriaRepository 创建 história 仓库
func NewGormHistoriaRepository(gdb *gorm.DB, now Clock) *GormHistoriaRepository {
	if now == nil {
		now = utcNow
	}
	return &GormHistoriaRepository{db: gdb, now: now}
}

func (r *GormHistoriaRepository) Latest(ctx context.Context) (*model.Historia, error) {
	var h model.Historia
	err := r.db.WithContext(ctx).Order("created_at DESC").Take(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load historia: %w", err)
	}
	return &h, nil
}

func (r *GormHistoriaRepository) Get(ctx context.Context, id string) (*model.Historia, error) {
	var h model.Historia
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load historia: %w", err)
	}
	return &h, nil
}

func (r *GormHistoriaRepository) Create(ctx context.Context, h *model.Historia) (string, error) {
	h.ID = uuid.NewString()
	h.CreatedAt = r.now()
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return "", fmt.Errorf("failed to create historia: %w", err)
	}
	return h.ID, nil
}

package repository

import (
	"context"
	"errors"

	"wavechat/internal/domain/call"
	wave_errors "wavechat/pkg/errors"

	"gorm.io/gorm"
)

type PostgresCallRepository struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) CallRepository {
	return &PostgresCallRepository{db: db}
}

func (r *PostgresCallRepository) Create(ctx context.Context, c *call.Call) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return wave_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresCallRepository) GetByID(ctx context.Context, id string) (call.Call, error) {
	var c call.Call
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return call.Call{}, wave_errors.ErrNotFound
		}
		return call.Call{}, err
	}
	return c, nil
}

func (r *PostgresCallRepository) Update(ctx context.Context, c call.Call) error {
	res := r.db.WithContext(ctx).Save(&c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return wave_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresCallRepository) GetConversationCalls(ctx context.Context, conversationID string, page, limit int) ([]call.Call, int64, error) {
	var calls []call.Call
	var total int64

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := r.db.WithContext(ctx).Model(&call.Call{}).Where("conversation_id = ?", conversationID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("started_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&calls).Error
	if err != nil {
		return nil, 0, err
	}
	return calls, total, nil
}

func (r *PostgresCallRepository) RecordQualityMetric(ctx context.Context, m *call.CallQualityMetric) error {
	return r.db.WithContext(ctx).Create(m).Error
}

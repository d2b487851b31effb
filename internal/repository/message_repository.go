package repository

import (
	"context"
	"errors"

	"wavechat/internal/domain/message"
	wave_errors "wavechat/pkg/errors"

	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

// Create writes the message and its attachments in one transaction so a
// failed attachment insert never leaves a partial message behind.
func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(m).Error
	})
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id string) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Preload("Attachments").Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, wave_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) GetConversationMessages(ctx context.Context, conversationID string, page, limit int) ([]message.Message, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var total int64
	q := r.db.WithContext(ctx).Model(&message.Message{}).Where("conversation_id = ?", conversationID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []message.Message
	err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

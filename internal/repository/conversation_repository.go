package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"wavechat/internal/domain/conversation"
	wave_errors "wavechat/pkg/errors"

	"gorm.io/gorm"
)

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return wave_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id string) (conversation.Conversation, error) {
	var c conversation.Conversation
	err := r.db.WithContext(ctx).Preload("Members").Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.Conversation{}, wave_errors.ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) Update(ctx context.Context, c conversation.Conversation) error {
	res := r.db.WithContext(ctx).Omit("Members").Save(&c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return wave_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&conversation.Member{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&conversation.Conversation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return wave_errors.ErrNotFound
		}
		return nil
	})
}

func (r *PostgresConversationRepository) GetUserConversationIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&conversation.Member{}).
		Where("user_id = ?", userID).
		Pluck("conversation_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresConversationRepository) GetUserConversations(ctx context.Context, userID string, page, limit int) ([]conversation.Conversation, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	sub := r.db.Model(&conversation.Member{}).Select("conversation_id").Where("user_id = ?", userID)

	var total int64
	q := r.db.WithContext(ctx).Model(&conversation.Conversation{}).Where("id IN (?)", sub)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var convs []conversation.Conversation
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("id IN (?)", sub).
		Order("last_message_at DESC NULLS LAST").
		Offset((page - 1) * limit).Limit(limit).
		Find(&convs).Error
	if err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}

func (r *PostgresConversationRepository) GetDirectConversation(ctx context.Context, userID1, userID2 string) (conversation.Conversation, error) {
	var c conversation.Conversation
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("is_group = false").
		Where("id IN (?)", r.db.Model(&conversation.Member{}).Select("conversation_id").Where("user_id = ?", userID1)).
		Where("id IN (?)", r.db.Model(&conversation.Member{}).Select("conversation_id").Where("user_id = ?", userID2)).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.Conversation{}, wave_errors.ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GroupNameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("is_group = true AND name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresConversationRepository) AddMember(ctx context.Context, m *conversation.Member) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return wave_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) RemoveMember(ctx context.Context, conversationID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Delete(&conversation.Member{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return wave_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) UpdateMemberRole(ctx context.Context, conversationID, userID, role string) error {
	res := r.db.WithContext(ctx).
		Model(&conversation.Member{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return wave_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) UpdateLastMessage(ctx context.Context, conversationID, preview string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message":    sql.NullString{String: preview, Valid: preview != ""},
			"last_message_at": sql.NullTime{Time: at, Valid: true},
		}).Error
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wavechat/internal/domain/message"
	"wavechat/internal/repository"
	wave_errors "wavechat/pkg/errors"
)

// FileStore persists message attachments and returns a public URL.
type FileStore interface {
	Upload(ctx context.Context, key, mimeType string, data []byte) (string, error)
}

// MessageService persists messages for the gateway's sendMessage flow and
// the REST surface. Creation is atomic: attachments upload first, then the
// message and attachment rows are written in one transaction, so a
// newMessage broadcast can never reference a half-written message.
type MessageService struct {
	repo     repository.MessageRepository
	convRepo repository.ConversationRepository
	files    FileStore
}

func NewMessageService(repo repository.MessageRepository, convRepo repository.ConversationRepository, files FileStore) *MessageService {
	return &MessageService{repo: repo, convRepo: convRepo, files: files}
}

// CreateMessage implements the gateway's message persistence collaborator.
func (s *MessageService) CreateMessage(ctx context.Context, conversationID string, in message.CreateMessageInput, files []message.FileUpload) (message.Message, error) {
	if conversationID == "" || in.SenderID == "" {
		return message.Message{}, wave_errors.ErrInvalidInput
	}
	if in.Content == "" && len(files) == 0 {
		return message.Message{}, wave_errors.ErrInvalidInput
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return message.Message{}, err
	}
	if !conv.HasMember(in.SenderID) {
		return message.Message{}, wave_errors.ErrForbidden
	}

	msg := message.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		CreatedAt:      time.Now(),
	}

	for _, f := range files {
		if len(f.Data) == 0 {
			return message.Message{}, fmt.Errorf("empty file %q: %w", f.FileName, wave_errors.ErrInvalidInput)
		}
		key := fmt.Sprintf("messages/%s/%s/%s", conversationID, msg.ID, f.FileName)
		url, err := s.files.Upload(ctx, key, f.MimeType, f.Data)
		if err != nil {
			return message.Message{}, fmt.Errorf("upload %q: %w", f.FileName, err)
		}
		msg.Attachments = append(msg.Attachments, message.Attachment{
			ID:        uuid.New().String(),
			MessageID: msg.ID,
			FileName:  f.FileName,
			MimeType:  f.MimeType,
			SizeBytes: int64(len(f.Data)),
			URL:       url,
		})
	}

	if err := s.repo.Create(ctx, &msg); err != nil {
		return message.Message{}, err
	}

	preview := msg.Content
	if preview == "" && len(msg.Attachments) > 0 {
		preview = msg.Attachments[0].FileName
	}
	if err := s.convRepo.UpdateLastMessage(ctx, conversationID, preview, msg.CreatedAt); err != nil {
		// The message itself is durable; a stale summary is tolerable.
		return msg, nil
	}

	return msg, nil
}

func (s *MessageService) GetConversationMessages(ctx context.Context, conversationID string, page, limit int) ([]message.Message, int64, error) {
	return s.repo.GetConversationMessages(ctx, conversationID, page, limit)
}

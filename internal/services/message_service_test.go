package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavechat/internal/domain/message"
	wave_errors "wavechat/pkg/errors"
)

type fakeMessageRepo struct {
	messages []message.Message
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *message.Message) error {
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, id string) (message.Message, error) {
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return message.Message{}, wave_errors.ErrNotFound
}

func (f *fakeMessageRepo) GetConversationMessages(ctx context.Context, conversationID string, page, limit int) ([]message.Message, int64, error) {
	var out []message.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

type fakeFileStore struct {
	uploads []string
	err     error
}

func (f *fakeFileStore) Upload(ctx context.Context, key, mimeType string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, key)
	return fmt.Sprintf("https://cdn.example.com/%s", key), nil
}

func newTestMessageService(t *testing.T) (*MessageService, *fakeMessageRepo, *fakeFileStore, string) {
	t.Helper()
	convRepo := newFakeConversationRepo()
	conversations := NewConversationService(convRepo, nil)
	conv, err := conversations.CreateDirect(context.Background(), "alice", "bob")
	require.NoError(t, err)

	repo := &fakeMessageRepo{}
	files := &fakeFileStore{}
	return NewMessageService(repo, convRepo, files), repo, files, conv.ID
}

func TestCreateMessagePersists(t *testing.T) {
	svc, repo, _, convID := newTestMessageService(t)

	msg, err := svc.CreateMessage(context.Background(), convID, message.CreateMessageInput{
		SenderID: "alice",
		Content:  "hello",
	}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
	require.Len(t, repo.messages, 1)
	assert.Equal(t, "hello", repo.messages[0].Content)
}

func TestCreateMessageRequiresMembership(t *testing.T) {
	svc, repo, _, convID := newTestMessageService(t)

	_, err := svc.CreateMessage(context.Background(), convID, message.CreateMessageInput{
		SenderID: "mallory",
		Content:  "hi there",
	}, nil)
	assert.ErrorIs(t, err, wave_errors.ErrForbidden)
	assert.Empty(t, repo.messages)
}

func TestCreateMessageRequiresContentOrFiles(t *testing.T) {
	svc, _, _, convID := newTestMessageService(t)

	_, err := svc.CreateMessage(context.Background(), convID, message.CreateMessageInput{
		SenderID: "alice",
	}, nil)
	assert.ErrorIs(t, err, wave_errors.ErrInvalidInput)
}

func TestCreateMessageUploadsAttachments(t *testing.T) {
	svc, repo, files, convID := newTestMessageService(t)

	msg, err := svc.CreateMessage(context.Background(), convID, message.CreateMessageInput{
		SenderID: "alice",
	}, []message.FileUpload{
		{FileName: "photo.png", MimeType: "image/png", Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)

	require.Len(t, msg.Attachments, 1)
	att := msg.Attachments[0]
	assert.Equal(t, "photo.png", att.FileName)
	assert.Equal(t, int64(3), att.SizeBytes)
	assert.Contains(t, att.URL, "photo.png")

	require.Len(t, files.uploads, 1)
	assert.Equal(t, fmt.Sprintf("messages/%s/%s/photo.png", convID, msg.ID), files.uploads[0])
	require.Len(t, repo.messages, 1)
}

func TestCreateMessageUploadFailureAborts(t *testing.T) {
	svc, repo, files, convID := newTestMessageService(t)
	files.err = errors.New("bucket unavailable")

	_, err := svc.CreateMessage(context.Background(), convID, message.CreateMessageInput{
		SenderID: "alice",
	}, []message.FileUpload{
		{FileName: "photo.png", MimeType: "image/png", Data: []byte{1}},
	})
	require.Error(t, err)
	assert.Empty(t, repo.messages)
}

func TestCreateMessageRejectsEmptyFile(t *testing.T) {
	svc, repo, _, convID := newTestMessageService(t)

	_, err := svc.CreateMessage(context.Background(), convID, message.CreateMessageInput{
		SenderID: "alice",
	}, []message.FileUpload{
		{FileName: "ghost.bin", MimeType: "application/octet-stream"},
	})
	assert.ErrorIs(t, err, wave_errors.ErrInvalidInput)
	assert.Empty(t, repo.messages)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavechat/internal/domain/contact"
	wave_errors "wavechat/pkg/errors"
)

type fakeContactRepo struct {
	contacts map[string]contact.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[string]contact.Contact)}
}

func (f *fakeContactRepo) Create(ctx context.Context, c *contact.Contact) error {
	f.contacts[c.ID] = *c
	return nil
}

func (f *fakeContactRepo) GetByID(ctx context.Context, id string) (contact.Contact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return contact.Contact{}, wave_errors.ErrNotFound
	}
	return c, nil
}

func (f *fakeContactRepo) Update(ctx context.Context, c contact.Contact) error {
	if _, ok := f.contacts[c.ID]; !ok {
		return wave_errors.ErrNotFound
	}
	f.contacts[c.ID] = c
	return nil
}

func (f *fakeContactRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.contacts[id]; !ok {
		return wave_errors.ErrNotFound
	}
	delete(f.contacts, id)
	return nil
}

func (f *fakeContactRepo) GetPendingBetween(ctx context.Context, senderID, receiverID string) (contact.Contact, error) {
	for _, c := range f.contacts {
		if c.Status != contact.StatusPending {
			continue
		}
		if (c.SenderID == senderID && c.ReceiverID == receiverID) ||
			(c.SenderID == receiverID && c.ReceiverID == senderID) {
			return c, nil
		}
	}
	return contact.Contact{}, wave_errors.ErrNotFound
}

func (f *fakeContactRepo) GetUserContacts(ctx context.Context, userID string) ([]contact.Contact, error) {
	var out []contact.Contact
	for _, c := range f.contacts {
		if c.SenderID == userID || c.ReceiverID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestContactService() (*ContactService, *fakeContactRepo, *recordingNotifier) {
	repo := newFakeContactRepo()
	notifier := &recordingNotifier{}
	conversations := NewConversationService(newFakeConversationRepo(), notifier)
	return NewContactService(repo, conversations, notifier), repo, notifier
}

func TestContactRequestRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestContactService()

	_, err := svc.Request(context.Background(), "alice", "bob")
	require.NoError(t, err)

	_, err = svc.Request(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, wave_errors.ErrAlreadyExists)

	// The mirrored direction is the same pending pair.
	_, err = svc.Request(context.Background(), "bob", "alice")
	assert.ErrorIs(t, err, wave_errors.ErrAlreadyExists)
}

func TestContactRequestRejectsSelf(t *testing.T) {
	svc, _, _ := newTestContactService()
	_, err := svc.Request(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, wave_errors.ErrInvalidInput)
}

func TestAcceptCreatesConversationAndNotifies(t *testing.T) {
	svc, repo, notifier := newTestContactService()

	ct, err := svc.Request(context.Background(), "alice", "bob")
	require.NoError(t, err)

	accepted, err := svc.Accept(context.Background(), ct.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, contact.StatusAccepted, accepted.Status)
	assert.Equal(t, contact.StatusAccepted, repo.contacts[ct.ID].Status)

	require.Len(t, notifier.accepted, 1)
	assert.Equal(t, ct.ID, notifier.accepted[0].ID)

	// Both parties now share a direct conversation.
	conv, err := svc.conversations.repo.GetDirectConversation(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.False(t, conv.IsGroup)
}

func TestAcceptOnlyByReceiver(t *testing.T) {
	svc, _, _ := newTestContactService()

	ct, err := svc.Request(context.Background(), "alice", "bob")
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), ct.ID, "alice")
	assert.ErrorIs(t, err, wave_errors.ErrForbidden)
}

func TestRejectThenAcceptRefused(t *testing.T) {
	svc, _, notifier := newTestContactService()

	ct, err := svc.Request(context.Background(), "alice", "bob")
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), ct.ID, "bob")
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), ct.ID, "bob")
	assert.ErrorIs(t, err, wave_errors.ErrInvalidState)
	assert.Empty(t, notifier.accepted)
}

func TestCancelOnlyBySender(t *testing.T) {
	svc, repo, _ := newTestContactService()

	ct, err := svc.Request(context.Background(), "alice", "bob")
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), ct.ID, "bob")
	assert.ErrorIs(t, err, wave_errors.ErrForbidden)

	require.NoError(t, svc.Cancel(context.Background(), ct.ID, "alice"))
	assert.NotContains(t, repo.contacts, ct.ID)
}

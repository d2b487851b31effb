package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wavechat/internal/domain/contact"
	"wavechat/internal/repository"
	wave_errors "wavechat/pkg/errors"
)

// ContactService manages friendship requests. Accepting a request also
// creates the direct conversation and pushes acceptRequestContact to both
// parties' personal rooms.
type ContactService struct {
	repo          repository.ContactRepository
	conversations *ConversationService
	notifier      Notifier
}

func NewContactService(repo repository.ContactRepository, conversations *ConversationService, notifier Notifier) *ContactService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ContactService{repo: repo, conversations: conversations, notifier: notifier}
}

// SetNotifier wires the realtime fan-out after construction.
func (s *ContactService) SetNotifier(n Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// Request creates a pending contact request from sender to receiver.
func (s *ContactService) Request(ctx context.Context, senderID, receiverID string) (contact.Contact, error) {
	if senderID == "" || receiverID == "" || senderID == receiverID {
		return contact.Contact{}, wave_errors.ErrInvalidInput
	}

	if _, err := s.repo.GetPendingBetween(ctx, senderID, receiverID); err == nil {
		return contact.Contact{}, wave_errors.ErrAlreadyExists
	} else if !errors.Is(err, wave_errors.ErrNotFound) {
		return contact.Contact{}, err
	}

	ct := contact.Contact{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     contact.StatusPending,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, &ct); err != nil {
		return contact.Contact{}, err
	}
	return ct, nil
}

// Accept marks the request accepted, creates the direct conversation
// between the two parties and notifies both of them.
func (s *ContactService) Accept(ctx context.Context, contactID, actorID string) (contact.Contact, error) {
	ct, err := s.repo.GetByID(ctx, contactID)
	if err != nil {
		return contact.Contact{}, err
	}
	if ct.ReceiverID != actorID {
		return contact.Contact{}, wave_errors.ErrForbidden
	}
	if ct.Status != contact.StatusPending {
		return contact.Contact{}, fmt.Errorf("accept contact in status %s: %w", ct.Status, wave_errors.ErrInvalidState)
	}

	ct.Status = contact.StatusAccepted
	ct.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, ct); err != nil {
		return contact.Contact{}, err
	}

	conv, err := s.conversations.CreateDirect(ctx, ct.SenderID, ct.ReceiverID)
	if err != nil {
		return contact.Contact{}, err
	}

	s.notifier.NotifyContactAccepted(ct, conv)
	return ct, nil
}

// Reject marks the request rejected. The realtime rejectRequestContact
// relay is a socket event from the rejecting client, not emitted here.
func (s *ContactService) Reject(ctx context.Context, contactID, actorID string) (contact.Contact, error) {
	ct, err := s.repo.GetByID(ctx, contactID)
	if err != nil {
		return contact.Contact{}, err
	}
	if ct.ReceiverID != actorID {
		return contact.Contact{}, wave_errors.ErrForbidden
	}
	if ct.Status != contact.StatusPending {
		return contact.Contact{}, fmt.Errorf("reject contact in status %s: %w", ct.Status, wave_errors.ErrInvalidState)
	}

	ct.Status = contact.StatusRejected
	ct.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, ct); err != nil {
		return contact.Contact{}, err
	}
	return ct, nil
}

// Cancel withdraws a pending request from the sender's side.
func (s *ContactService) Cancel(ctx context.Context, contactID, actorID string) error {
	ct, err := s.repo.GetByID(ctx, contactID)
	if err != nil {
		return err
	}
	if ct.SenderID != actorID {
		return wave_errors.ErrForbidden
	}
	if ct.Status != contact.StatusPending {
		return fmt.Errorf("cancel contact in status %s: %w", ct.Status, wave_errors.ErrInvalidState)
	}
	return s.repo.Delete(ctx, contactID)
}

func (s *ContactService) GetUserContacts(ctx context.Context, userID string) ([]contact.Contact, error) {
	return s.repo.GetUserContacts(ctx, userID)
}

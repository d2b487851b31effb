package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"wavechat/internal/domain/conversation"
	"wavechat/internal/repository"
	wave_errors "wavechat/pkg/errors"
)

// ConversationService guards the conversation invariants: a direct
// conversation keeps exactly its two original members with no roles; a
// group needs a non-empty name unique among groups and at least one admin
// at all times. Every successful mutation is pushed to the gateway.
type ConversationService struct {
	repo     repository.ConversationRepository
	notifier Notifier
}

func NewConversationService(repo repository.ConversationRepository, notifier Notifier) *ConversationService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ConversationService{repo: repo, notifier: notifier}
}

// SetNotifier wires the realtime fan-out after construction. The gateway
// router needs the service first, so the cycle is closed here.
func (s *ConversationService) SetNotifier(n Notifier) {
	if n != nil {
		s.notifier = n
	}
}

func (s *ConversationService) GetByID(ctx context.Context, id string) (conversation.Conversation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ConversationService) GetUserConversations(ctx context.Context, userID string, page, limit int) ([]conversation.Conversation, int64, error) {
	return s.repo.GetUserConversations(ctx, userID, page, limit)
}

// GetConversationIDsForUser implements the gateway's conversation lookup.
func (s *ConversationService) GetConversationIDsForUser(ctx context.Context, userID string) ([]string, error) {
	return s.repo.GetUserConversationIDs(ctx, userID)
}

// GetConversationByID implements the gateway's conversation lookup.
func (s *ConversationService) GetConversationByID(ctx context.Context, id string) (conversation.Conversation, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateDirect creates (or returns) the one direct conversation between two
// users. Direct conversations carry no name and no admin.
func (s *ConversationService) CreateDirect(ctx context.Context, userID1, userID2 string) (conversation.Conversation, error) {
	if userID1 == "" || userID2 == "" || userID1 == userID2 {
		return conversation.Conversation{}, wave_errors.ErrInvalidInput
	}

	existing, err := s.repo.GetDirectConversation(ctx, userID1, userID2)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, wave_errors.ErrNotFound) {
		return conversation.Conversation{}, err
	}

	conv := conversation.Conversation{
		ID:      uuid.New().String(),
		IsGroup: false,
		Members: []conversation.Member{
			{UserID: userID1, Role: conversation.RoleMember},
			{UserID: userID2, Role: conversation.RoleMember},
		},
	}
	for i := range conv.Members {
		conv.Members[i].ConversationID = conv.ID
	}
	if err := s.repo.Create(ctx, &conv); err != nil {
		return conversation.Conversation{}, err
	}
	return conv, nil
}

type CreateGroupInput struct {
	Name      string   `json:"name"`
	Picture   string   `json:"picture"`
	CreatorID string   `json:"creatorId"`
	MemberIDs []string `json:"memberIds"`
}

// CreateGroup creates a group conversation with the creator as admin and
// notifies every member through their personal room.
func (s *ConversationService) CreateGroup(ctx context.Context, in CreateGroupInput) (conversation.Conversation, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.CreatorID == "" {
		return conversation.Conversation{}, wave_errors.ErrInvalidInput
	}

	taken, err := s.repo.GroupNameExists(ctx, name)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if taken {
		return conversation.Conversation{}, fmt.Errorf("group name %q: %w", name, wave_errors.ErrAlreadyExists)
	}

	conv := conversation.Conversation{
		ID:      uuid.New().String(),
		Name:    sql.NullString{String: name, Valid: true},
		Picture: sql.NullString{String: in.Picture, Valid: in.Picture != ""},
		IsGroup: true,
	}
	conv.Members = append(conv.Members, conversation.Member{
		ConversationID: conv.ID,
		UserID:         in.CreatorID,
		Role:           conversation.RoleAdmin,
	})
	for _, id := range in.MemberIDs {
		if id == in.CreatorID {
			continue
		}
		conv.Members = append(conv.Members, conversation.Member{
			ConversationID: conv.ID,
			UserID:         id,
			Role:           conversation.RoleMember,
		})
	}

	if err := s.repo.Create(ctx, &conv); err != nil {
		return conversation.Conversation{}, err
	}

	s.notifier.NotifyGroupCreated(conv)
	return conv, nil
}

type UpdateConversationInput struct {
	Name    *string `json:"name"`
	Picture *string `json:"picture"`
}

// Update renames or re-pictures a group conversation.
func (s *ConversationService) Update(ctx context.Context, id, actorID string, in UpdateConversationInput) (conversation.Conversation, error) {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !conv.IsGroup {
		return conversation.Conversation{}, fmt.Errorf("update direct conversation: %w", wave_errors.ErrInvalidState)
	}
	if !conv.HasMember(actorID) {
		return conversation.Conversation{}, wave_errors.ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return conversation.Conversation{}, wave_errors.ErrInvalidInput
		}
		if name != conv.Name.String {
			taken, err := s.repo.GroupNameExists(ctx, name)
			if err != nil {
				return conversation.Conversation{}, err
			}
			if taken {
				return conversation.Conversation{}, fmt.Errorf("group name %q: %w", name, wave_errors.ErrAlreadyExists)
			}
		}
		conv.Name = sql.NullString{String: name, Valid: true}
	}
	if in.Picture != nil {
		conv.Picture = sql.NullString{String: *in.Picture, Valid: *in.Picture != ""}
	}

	if err := s.repo.Update(ctx, conv); err != nil {
		return conversation.Conversation{}, err
	}

	s.notifier.NotifyConversationUpdated(conv)
	return conv, nil
}

// AddMember puts a user into a group conversation. The new member learns
// about it through their personal room; they join the conversation room on
// their next login or an explicit join event.
func (s *ConversationService) AddMember(ctx context.Context, conversationID, actorID, userID string) (conversation.Conversation, error) {
	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !conv.IsGroup {
		return conversation.Conversation{}, fmt.Errorf("add member to direct conversation: %w", wave_errors.ErrInvalidState)
	}
	if !conv.IsAdmin(actorID) {
		return conversation.Conversation{}, wave_errors.ErrForbidden
	}
	if conv.HasMember(userID) {
		return conversation.Conversation{}, wave_errors.ErrAlreadyExists
	}

	member := conversation.Member{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           conversation.RoleMember,
	}
	if err := s.repo.AddMember(ctx, &member); err != nil {
		return conversation.Conversation{}, err
	}
	conv.Members = append(conv.Members, member)

	s.notifier.NotifyConversationUpdated(conv)
	return conv, nil
}

// RemoveMember takes a user out of a group. Only the removed member is
// told directly; their personal room gets removedGroupByAdmin.
func (s *ConversationService) RemoveMember(ctx context.Context, conversationID, actorID, userID string) error {
	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsGroup {
		return fmt.Errorf("remove member from direct conversation: %w", wave_errors.ErrInvalidState)
	}
	if !conv.IsAdmin(actorID) {
		return wave_errors.ErrForbidden
	}
	if !conv.HasMember(userID) {
		return wave_errors.ErrNotFound
	}
	if conv.IsAdmin(userID) && conv.AdminCount() == 1 {
		return fmt.Errorf("remove last admin: %w", wave_errors.ErrInvalidState)
	}

	if err := s.repo.RemoveMember(ctx, conversationID, userID); err != nil {
		return err
	}

	s.notifier.NotifyMemberRemoved(userID, conversationID)
	return nil
}

// ChangeAdmin flips a member's role. A group must keep at least one admin,
// so demoting the last admin is refused.
func (s *ConversationService) ChangeAdmin(ctx context.Context, conversationID, actorID, userID, role string) (conversation.Conversation, error) {
	if role != conversation.RoleAdmin && role != conversation.RoleMember {
		return conversation.Conversation{}, wave_errors.ErrInvalidInput
	}

	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !conv.IsGroup {
		return conversation.Conversation{}, fmt.Errorf("change role in direct conversation: %w", wave_errors.ErrInvalidState)
	}
	if !conv.IsAdmin(actorID) {
		return conversation.Conversation{}, wave_errors.ErrForbidden
	}
	if !conv.HasMember(userID) {
		return conversation.Conversation{}, wave_errors.ErrNotFound
	}
	if role == conversation.RoleMember && conv.IsAdmin(userID) && conv.AdminCount() == 1 {
		return conversation.Conversation{}, fmt.Errorf("demote last admin: %w", wave_errors.ErrInvalidState)
	}

	if err := s.repo.UpdateMemberRole(ctx, conversationID, userID, role); err != nil {
		return conversation.Conversation{}, err
	}
	for i := range conv.Members {
		if conv.Members[i].UserID == userID {
			conv.Members[i].Role = role
		}
	}

	s.notifier.NotifyConversationUpdated(conv)
	return conv, nil
}

// Dissolve deletes a group conversation and tells everyone, both through
// the conversation room and each member's personal room.
func (s *ConversationService) Dissolve(ctx context.Context, conversationID, actorID string) error {
	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsGroup {
		return fmt.Errorf("dissolve direct conversation: %w", wave_errors.ErrInvalidState)
	}
	if !conv.IsAdmin(actorID) {
		return wave_errors.ErrForbidden
	}

	if err := s.repo.Delete(ctx, conversationID); err != nil {
		return err
	}

	s.notifier.NotifyGroupDissolved(conv, actorID)
	return nil
}

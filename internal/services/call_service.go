package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wavechat/internal/domain/call"
	"wavechat/internal/repository"
	wave_errors "wavechat/pkg/errors"
)

// CallService owns the call lifecycle:
//
//	WAITING -> ONGOING -> FINISHED
//	WAITING -> CANCELLED
//	WAITING -> REJECTED
//
// CANCELLED, REJECTED and FINISHED are terminal; an operation against a
// terminal call fails with ErrInvalidState and never mutates the stored
// record. The gateway relays signaling only; every state change comes
// through here.
//
// There is no server-side ring timeout: cancellation is always
// client-initiated, so a caller that vanishes mid-ring leaves the call
// WAITING until some client cancels it.
type CallService struct {
	repo repository.CallRepository
	now  func() time.Time
}

func NewCallService(repo repository.CallRepository) *CallService {
	return &CallService{repo: repo, now: time.Now}
}

type InitiateCallInput struct {
	CallerID       string   `json:"callerId"`
	ReceiverIDs    []string `json:"receiverIds"`
	ConversationID string   `json:"conversationId"`
	Type           string   `json:"type"`
}

// Initiate creates a call in WAITING with the caller as the only current
// participant.
func (s *CallService) Initiate(ctx context.Context, in InitiateCallInput) (call.Call, error) {
	if in.CallerID == "" || in.ConversationID == "" {
		return call.Call{}, wave_errors.ErrInvalidInput
	}
	callType := in.Type
	if callType == "" {
		callType = call.TypeAudio
	}

	c := call.Call{
		ID:                  uuid.New().String(),
		ConversationID:      in.ConversationID,
		CallerID:            in.CallerID,
		ReceiverIDs:         in.ReceiverIDs,
		Type:                callType,
		Status:              call.StatusWaiting,
		StartedAt:           s.now(),
		CurrentParticipants: []string{in.CallerID},
		CreatedAt:           s.now(),
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return call.Call{}, err
	}
	return c, nil
}

func (s *CallService) GetByID(ctx context.Context, id string) (call.Call, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CallService) GetConversationCalls(ctx context.Context, conversationID string, page, limit int) ([]call.Call, int64, error) {
	return s.repo.GetConversationCalls(ctx, conversationID, page, limit)
}

// Cancel ends a ringing call from the caller's side.
func (s *CallService) Cancel(ctx context.Context, id string) (call.Call, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return call.Call{}, err
	}
	if c.Status == call.StatusCancelled || c.Status == call.StatusFinished {
		return call.Call{}, fmt.Errorf("cancel call %s in status %s: %w", id, c.Status, wave_errors.ErrInvalidState)
	}

	c.Status = call.StatusCancelled
	if err := s.repo.Update(ctx, c); err != nil {
		return call.Call{}, err
	}
	return c, nil
}

// Accept moves the call to ONGOING. The start time is reset to the moment
// of acceptance so the recorded duration covers talk time, not ring time.
// Only the caller enters the durable participants history, and only once;
// acceptors are tracked in CurrentParticipants while they stay on the call.
func (s *CallService) Accept(ctx context.Context, id, userID string) (call.Call, error) {
	if userID == "" {
		return call.Call{}, wave_errors.ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return call.Call{}, err
	}
	if c.IsTerminal() {
		return call.Call{}, fmt.Errorf("accept call %s in status %s: %w", id, c.Status, wave_errors.ErrInvalidState)
	}

	if c.Status == call.StatusWaiting {
		c.StartedAt = s.now()
	}
	c.Status = call.StatusOngoing
	if !c.HasParticipant(c.CallerID) {
		c.Participants = append(c.Participants, c.CallerID)
	}
	if !c.HasCurrentParticipant(userID) {
		c.CurrentParticipants = append(c.CurrentParticipants, userID)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return call.Call{}, err
	}
	return c, nil
}

// Reject declines a ringing call. Rejecting a call that is no longer
// WAITING is a no-op, not an error: the race against accept/cancel is
// expected.
func (s *CallService) Reject(ctx context.Context, id string) (call.Call, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return call.Call{}, err
	}
	if c.Status != call.StatusWaiting {
		return c, nil
	}

	now := s.now()
	c.Status = call.StatusRejected
	c.EndedAt = sql.NullTime{Time: now, Valid: true}
	c.DurationSeconds = durationSeconds(c.StartedAt, now)

	if err := s.repo.Update(ctx, c); err != nil {
		return call.Call{}, err
	}
	return c, nil
}

// End removes a leaving participant. With more than two people on the call
// the call survives without the leaver; at two or fewer the whole call
// finishes.
func (s *CallService) End(ctx context.Context, id, userID string) (call.Call, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return call.Call{}, err
	}
	if c.Status == call.StatusCancelled || c.Status == call.StatusFinished {
		return call.Call{}, fmt.Errorf("end call %s in status %s: %w", id, c.Status, wave_errors.ErrInvalidState)
	}

	if len(c.CurrentParticipants) > 2 {
		remaining := make([]string, 0, len(c.CurrentParticipants)-1)
		for _, pid := range c.CurrentParticipants {
			if pid != userID {
				remaining = append(remaining, pid)
			}
		}
		c.CurrentParticipants = remaining
		if err := s.repo.Update(ctx, c); err != nil {
			return call.Call{}, err
		}
		return c, nil
	}

	now := s.now()
	c.Status = call.StatusFinished
	c.EndedAt = sql.NullTime{Time: now, Valid: true}
	c.DurationSeconds = durationSeconds(c.StartedAt, now)

	if err := s.repo.Update(ctx, c); err != nil {
		return call.Call{}, err
	}
	return c, nil
}

// SetRecordingURL attaches a recording to a call after the fact.
func (s *CallService) SetRecordingURL(ctx context.Context, id, url string) (call.Call, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return call.Call{}, err
	}
	c.RecordingURL = sql.NullString{String: url, Valid: url != ""}
	if err := s.repo.Update(ctx, c); err != nil {
		return call.Call{}, err
	}
	return c, nil
}

// RecordQualityMetric stores one quality sample for a participant.
func (s *CallService) RecordQualityMetric(ctx context.Context, m *call.CallQualityMetric) error {
	if m.CallID == "" || m.UserID == "" {
		return wave_errors.ErrInvalidInput
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = s.now()
	}
	return s.repo.RecordQualityMetric(ctx, m)
}

// durationSeconds is end minus start in whole seconds, truncated.
func durationSeconds(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Second)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavechat/internal/domain/call"
	wave_errors "wavechat/pkg/errors"
)

type fakeCallRepo struct {
	calls   map[string]call.Call
	metrics []call.CallQualityMetric
}

func newFakeCallRepo() *fakeCallRepo {
	return &fakeCallRepo{calls: make(map[string]call.Call)}
}

func (f *fakeCallRepo) Create(ctx context.Context, c *call.Call) error {
	f.calls[c.ID] = *c
	return nil
}

func (f *fakeCallRepo) GetByID(ctx context.Context, id string) (call.Call, error) {
	c, ok := f.calls[id]
	if !ok {
		return call.Call{}, wave_errors.ErrNotFound
	}
	return c, nil
}

func (f *fakeCallRepo) Update(ctx context.Context, c call.Call) error {
	if _, ok := f.calls[c.ID]; !ok {
		return wave_errors.ErrNotFound
	}
	f.calls[c.ID] = c
	return nil
}

func (f *fakeCallRepo) GetConversationCalls(ctx context.Context, conversationID string, page, limit int) ([]call.Call, int64, error) {
	var out []call.Call
	for _, c := range f.calls {
		if c.ConversationID == conversationID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCallRepo) RecordQualityMetric(ctx context.Context, m *call.CallQualityMetric) error {
	f.metrics = append(f.metrics, *m)
	return nil
}

// testClock advances manually so durations are deterministic.
type testClock struct {
	now time.Time
}

func (tc *testClock) Now() time.Time {
	return tc.now
}

func (tc *testClock) Advance(d time.Duration) {
	tc.now = tc.now.Add(d)
}

func newTestCallService() (*CallService, *fakeCallRepo, *testClock) {
	repo := newFakeCallRepo()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewCallService(repo)
	svc.now = clock.Now
	return svc, repo, clock
}

func initiate(t *testing.T, svc *CallService) call.Call {
	t.Helper()
	c, err := svc.Initiate(context.Background(), InitiateCallInput{
		CallerID:       "alice",
		ReceiverIDs:    []string{"bob"},
		ConversationID: "conv-1",
		Type:           call.TypeVideo,
	})
	require.NoError(t, err)
	return c
}

func TestInitiateStartsWaiting(t *testing.T) {
	svc, _, _ := newTestCallService()
	c := initiate(t, svc)

	assert.Equal(t, call.StatusWaiting, c.Status)
	assert.Equal(t, []string{"alice"}, c.CurrentParticipants)
	assert.Equal(t, call.TypeVideo, c.Type)
}

func TestAcceptResetsStartForTalkTime(t *testing.T) {
	svc, _, clock := newTestCallService()
	c := initiate(t, svc)

	// 10 seconds of ringing must not count toward the duration.
	clock.Advance(10 * time.Second)
	accepted, err := svc.Accept(context.Background(), c.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, call.StatusOngoing, accepted.Status)
	assert.Equal(t, clock.Now(), accepted.StartedAt)
	assert.Contains(t, accepted.Participants, "alice")
	assert.Contains(t, accepted.CurrentParticipants, "bob")

	clock.Advance(5 * time.Second)
	ended, err := svc.End(context.Background(), c.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, call.StatusFinished, ended.Status)
	assert.Equal(t, int64(5), ended.DurationSeconds)
}

func TestDurationTruncatesSubSecond(t *testing.T) {
	svc, _, clock := newTestCallService()
	c := initiate(t, svc)

	_, err := svc.Accept(context.Background(), c.ID, "bob")
	require.NoError(t, err)

	clock.Advance(125*time.Second + 999*time.Millisecond)
	ended, err := svc.End(context.Background(), c.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(125), ended.DurationSeconds)
}

func TestTerminalCallRefusesFurtherTransitions(t *testing.T) {
	svc, repo, _ := newTestCallService()
	c := initiate(t, svc)

	_, err := svc.Cancel(context.Background(), c.ID)
	require.NoError(t, err)

	before := repo.calls[c.ID]

	_, err = svc.Accept(context.Background(), c.ID, "bob")
	assert.ErrorIs(t, err, wave_errors.ErrInvalidState)

	_, err = svc.Cancel(context.Background(), c.ID)
	assert.ErrorIs(t, err, wave_errors.ErrInvalidState)

	_, err = svc.End(context.Background(), c.ID, "bob")
	assert.ErrorIs(t, err, wave_errors.ErrInvalidState)

	// A refused transition must not touch the stored record.
	assert.Equal(t, before, repo.calls[c.ID])
}

func TestRejectAfterAcceptIsNoop(t *testing.T) {
	svc, _, _ := newTestCallService()
	c := initiate(t, svc)

	_, err := svc.Accept(context.Background(), c.ID, "bob")
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, call.StatusOngoing, rejected.Status)
}

func TestRejectWaitingCall(t *testing.T) {
	svc, _, clock := newTestCallService()
	c := initiate(t, svc)

	clock.Advance(3 * time.Second)
	rejected, err := svc.Reject(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, call.StatusRejected, rejected.Status)
	assert.True(t, rejected.EndedAt.Valid)
	assert.Equal(t, int64(3), rejected.DurationSeconds)
}

func TestSecondAcceptDoesNotDuplicateCaller(t *testing.T) {
	svc, _, _ := newTestCallService()
	c := initiate(t, svc)

	_, err := svc.Accept(context.Background(), c.ID, "bob")
	require.NoError(t, err)
	after, err := svc.Accept(context.Background(), c.ID, "carol")
	require.NoError(t, err)

	assert.Equal(t, []string{"alice"}, after.Participants)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, after.CurrentParticipants)
}

func TestGroupCallSurvivesLeaverAboveTwo(t *testing.T) {
	svc, _, _ := newTestCallService()
	c := initiate(t, svc)

	_, err := svc.Accept(context.Background(), c.ID, "bob")
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), c.ID, "carol")
	require.NoError(t, err)

	// Three on the call: bob leaving keeps it ONGOING.
	after, err := svc.End(context.Background(), c.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, call.StatusOngoing, after.Status)
	assert.NotContains(t, after.CurrentParticipants, "bob")

	// Down to two: the next leave finishes the call for everyone.
	final, err := svc.End(context.Background(), c.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, call.StatusFinished, final.Status)
}

func TestOperationsOnUnknownCall(t *testing.T) {
	svc, _, _ := newTestCallService()

	_, err := svc.Accept(context.Background(), "nope", "bob")
	assert.ErrorIs(t, err, wave_errors.ErrNotFound)

	_, err = svc.End(context.Background(), "nope", "bob")
	assert.ErrorIs(t, err, wave_errors.ErrNotFound)
}

func TestRecordQualityMetricFillsDefaults(t *testing.T) {
	svc, repo, clock := newTestCallService()

	m := call.CallQualityMetric{CallID: "call-1", UserID: "alice", JitterMs: 2.5}
	require.NoError(t, svc.RecordQualityMetric(context.Background(), &m))

	require.Len(t, repo.metrics, 1)
	assert.NotEmpty(t, repo.metrics[0].ID)
	assert.Equal(t, clock.Now(), repo.metrics[0].RecordedAt)
}

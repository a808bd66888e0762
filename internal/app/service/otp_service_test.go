package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/internal/db"
	"github.com/eatsplorer/eatsplorer-backend/internal/notification"
	"github.com/eatsplorer/eatsplorer-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	messages []notification.Message
	err      error
}

func (d *fakeDispatcher) Enqueue(_ context.Context, msg notification.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.messages = append(d.messages, msg)
	return nil
}

func (d *fakeDispatcher) Close() error { return nil }

func (d *fakeDispatcher) sent() []notification.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notification.Message(nil), d.messages...)
}

func TestOTPService_IssueAndVerify(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc := NewOTPService(util.NewMemoryOTPStore(), dispatcher, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, PurposeRegistration, "alice@example.com", "123456"))

	sent := dispatcher.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.KindRegistrationOTP, sent[0].Kind)
	assert.Equal(t, "alice@example.com", sent[0].To)
	assert.Contains(t, sent[0].HTML, "123456")

	// codes are scoped by purpose and consumed on success
	assert.ErrorIs(t, svc.Verify(ctx, PurposePasswordReset, "alice@example.com", "123456"), ErrInvalidOTP)
	assert.ErrorIs(t, svc.Verify(ctx, PurposeRegistration, "alice@example.com", "000000"), ErrInvalidOTP)
	assert.NoError(t, svc.Verify(ctx, PurposeRegistration, "alice@example.com", "123456"))
	assert.ErrorIs(t, svc.Verify(ctx, PurposeRegistration, "alice@example.com", "123456"), ErrInvalidOTP)
}

func TestOTPService_AddressIsCaseInsensitive(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc := NewOTPService(util.NewMemoryOTPStore(), dispatcher, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, PurposeRegistration, " Alice@Example.com", "123456"))
	assert.Equal(t, "Alice@Example.com", dispatcher.sent()[0].To)
	assert.NoError(t, svc.Verify(ctx, PurposeRegistration, "alice@example.com", "123456"))
}

func TestOTPService_QueueFailureDoesNotFailIssue(t *testing.T) {
	dispatcher := &fakeDispatcher{err: notification.ErrQueueFull}
	svc := NewOTPService(util.NewMemoryOTPStore(), dispatcher, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, PurposePasswordReset, "bob@example.com", "654321"))
	assert.NoError(t, svc.Verify(ctx, PurposePasswordReset, "bob@example.com", "654321"))
}

func TestOTPService_UnknownPurpose(t *testing.T) {
	svc := NewOTPService(util.NewMemoryOTPStore(), &fakeDispatcher{}, time.Minute)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Issue(ctx, "bogus", "a@example.com", "1"), ErrUnknownPurpose)
	assert.ErrorIs(t, svc.Verify(ctx, "bogus", "a@example.com", "1"), ErrUnknownPurpose)
}

func TestOTPService_GenerateDigits(t *testing.T) {
	svc := NewOTPService(util.NewMemoryOTPStore(), &fakeDispatcher{}, time.Minute)
	for i := 0; i < 50; i++ {
		n, err := svc.GenerateDigits()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestAnnouncementService_Send(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	for _, a := range []model.Account{
		{Username: "a", Email: "a@example.com"},
		{Username: "b", Email: ""},
		{Username: "c", Email: "c@example.com"},
	} {
		a := a
		require.NoError(t, testDB.Create(&a).Error)
	}
	ctx := context.Background()

	dispatcher := &fakeDispatcher{}
	svc := NewAnnouncementService(repository.NewAccountRepository(testDB), dispatcher)

	got, err := svc.Send(ctx, "Free dessert today", RecipientEveryone)
	require.NoError(t, err)
	assert.Equal(t, AnnouncementResult{Queued: 2, Failed: 0}, got)
	sent := dispatcher.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "a@example.com", sent[0].To)
	assert.Equal(t, "c@example.com", sent[1].To)

	got, err = svc.Send(ctx, "Hello", "solo@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Queued)

	// padded keyword still fans out instead of mailing "everyone "
	got, err = svc.Send(ctx, "Padded", "  Everyone ")
	require.NoError(t, err)
	assert.Equal(t, AnnouncementResult{Queued: 2, Failed: 0}, got)
	for _, msg := range dispatcher.sent()[3:] {
		assert.Contains(t, msg.To, "@example.com")
	}

	failing := NewAnnouncementService(repository.NewAccountRepository(testDB), &fakeDispatcher{err: errors.New("down")})
	got, err = failing.Send(ctx, "Hello", RecipientEveryone)
	require.NoError(t, err)
	assert.Equal(t, AnnouncementResult{Queued: 0, Failed: 2}, got)
}

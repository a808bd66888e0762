package util

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret"))
	assert.False(t, VerifyPassword("", ""))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestSessionToken(t *testing.T) {
	token, err := GenerateSessionToken(42, "alice", testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{name: "valid", token: token, secret: testSecret},
		{name: "wrong secret", token: token, secret: "other", wantErr: ErrInvalidToken},
		{name: "garbage", token: "abc.def.ghi", secret: testSecret, wantErr: ErrInvalidToken},
		{name: "empty", token: "", secret: testSecret, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateSessionToken(tt.token, tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(42), claims.AccountID)
			assert.Equal(t, "alice", claims.Username)
		})
	}
}

func TestSessionToken_Expired(t *testing.T) {
	token, err := GenerateSessionToken(1, "bob", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestGenerateOTP_Range(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, code, 100000)
		assert.LessOrEqual(t, code, 999999)
	}
}

func TestMemoryOTPStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryOTPStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "register", "a@test.com", "123456", 5*time.Minute))

	ok, err := store.Verify(ctx, "reset", "a@test.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok, "purposes are independent")

	ok, _ = store.Verify(ctx, "register", "a@test.com", "000000")
	assert.False(t, ok)

	ok, _ = store.Verify(ctx, "register", "a@test.com", "123456")
	assert.True(t, ok)

	ok, _ = store.Verify(ctx, "register", "a@test.com", "123456")
	assert.False(t, ok, "codes are single use")
}

func TestMemoryOTPStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryOTPStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "register", "a@test.com", "111111", time.Minute))
	require.NoError(t, store.Save(ctx, "register", "b@test.com", "222222", time.Hour))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.CleanupExpired())

	ok, _ := store.Verify(ctx, "register", "a@test.com", "111111")
	assert.False(t, ok)
	ok, _ = store.Verify(ctx, "register", "b@test.com", "222222")
	assert.True(t, ok)
}

func TestDistanceKm(t *testing.T) {
	// Manila City Hall to Quezon City Hall is just under 10 km.
	d := DistanceKm(14.5896, 120.9810, 14.6469, 121.0497)
	assert.InDelta(t, 9.8, d, 1.0)
	assert.InDelta(t, 0, DistanceKm(10, 10, 10, 10), 1e-9)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(14.6, 121.0))
	assert.False(t, ValidCoordinates(0, 0))
	assert.False(t, ValidCoordinates(91, 10))
	assert.False(t, ValidCoordinates(10, 181))
}

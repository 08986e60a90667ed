package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc := NewService("test-secret", DefaultTTL)

	tests := []struct {
		name  string
		email string
	}{
		{"plain email", "buyer@example.com"},
		{"plus address", "worker+tag@example.com"},
		{"subdomain", "someone@mail.example.co.uk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := svc.Issue(tt.email)
			require.NoError(t, err)
			require.NotEmpty(t, signed)

			email, err := svc.Verify(signed)
			require.NoError(t, err)
			assert.Equal(t, tt.email, email)
		})
	}
}

func TestIssue_MissingEmail(t *testing.T) {
	svc := NewService("test-secret", DefaultTTL)

	for _, email := range []string{"", "   "} {
		_, err := svc.Issue(email)
		assert.ErrorIs(t, err, ErrMissingEmail)
	}
}

func TestVerify_InvalidToken(t *testing.T) {
	svc := NewService("test-secret", DefaultTTL)

	signed, err := svc.Issue("worker@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered", signed + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewService("secret-a", DefaultTTL)
	verifier := NewService("secret-b", DefaultTTL)

	signed, err := issuer.Issue("buyer@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	svc := NewService("test-secret", DefaultTTL)
	svc.now = func() time.Time { return issuedAt }

	signed, err := svc.Issue("worker@example.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{"valid just after issuance", issuedAt.Add(time.Minute), false},
		{"valid at 364 days", issuedAt.Add(364 * 24 * time.Hour), false},
		{"rejected at 366 days", issuedAt.Add(366 * 24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.now = func() time.Time { return tt.at }

			email, err := svc.Verify(signed)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "worker@example.com", email)
			}
		})
	}
}

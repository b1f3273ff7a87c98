package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afsalkalladi/mess-management/internal/pkg/password"
)

func newStaffService() (*StaffService, *fakeStaffRepo, *fakeAuditRepo) {
	staffRepo := newFakeStaffRepo()
	auditRepo := newFakeAuditRepo()
	return NewStaffService(staffRepo, auditRepo), staffRepo, auditRepo
}

func TestIssueAndVerifyStaffToken(t *testing.T) {
	svc, staffRepo, auditRepo := newStaffService()
	ctx := context.Background()

	out, err := svc.Issue(ctx, &IssueInput{Label: "gate-1"}, 7)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Plaintext)
	assert.Equal(t, "gate-1", out.Token.Label)
	assert.True(t, out.Token.Active)

	// Only the hash hits storage
	stored, err := staffRepo.GetByID(ctx, out.Token.ID)
	require.NoError(t, err)
	assert.Equal(t, password.HashToken(out.Plaintext), stored.TokenHash)
	assert.NotEqual(t, out.Plaintext, stored.TokenHash)
	assert.Contains(t, auditRepo.eventTypes(), "staff_token.issued")

	token, err := svc.VerifyToken(ctx, out.Plaintext)
	require.NoError(t, err)
	assert.Equal(t, out.Token.ID, token.ID)

	_, err = svc.VerifyToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrStaffTokenInvalid)
}

func TestVerifyStaffToken_Expired(t *testing.T) {
	svc, _, _ := newStaffService()
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	out, err := svc.Issue(ctx, &IssueInput{Label: "temp", ExpiresAt: &past}, 7)
	require.NoError(t, err)

	_, err = svc.VerifyToken(ctx, out.Plaintext)
	assert.ErrorIs(t, err, ErrStaffTokenInvalid)
}

func TestRevokeStaffToken(t *testing.T) {
	svc, _, auditRepo := newStaffService()
	ctx := context.Background()

	out, err := svc.Issue(ctx, &IssueInput{Label: "gate-2"}, 7)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, out.Token.ID, 7))
	assert.Contains(t, auditRepo.eventTypes(), "staff_token.revoked")

	_, err = svc.VerifyToken(ctx, out.Plaintext)
	assert.ErrorIs(t, err, ErrStaffTokenInvalid)

	assert.ErrorIs(t, svc.Revoke(ctx, 999, 7), ErrStaffTokenNotFound)
}

func TestListStaffTokens(t *testing.T) {
	svc, _, _ := newStaffService()
	ctx := context.Background()

	for _, label := range []string{"gate-1", "gate-2"} {
		_, err := svc.Issue(ctx, &IssueInput{Label: label}, 7)
		require.NoError(t, err)
	}

	tokens, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "gate-1", tokens[0].Label)
	assert.Equal(t, "gate-2", tokens[1].Label)
}

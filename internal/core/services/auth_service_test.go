package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/config"
	"github.com/Afsalkalladi/mess-management/internal/pkg/jwt"
	"github.com/Afsalkalladi/mess-management/internal/pkg/password"
)

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[uint]*models.AdminUser
	nextID uint
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[uint]*models.AdminUser), nextID: 1}
}

func (r *fakeAdminRepo) Create(_ context.Context, a *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	cp := *a
	r.admins[a.ID] = &cp
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id uint) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAdminRepo) GetByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAdminRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.admins)), nil
}

type fakeRefreshRepo struct {
	mu     sync.Mutex
	tokens map[uint]*models.RefreshToken
	nextID uint
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: make(map[uint]*models.RefreshToken), nextID: 1}
}

func (r *fakeRefreshRepo) Create(_ context.Context, t *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	cp := *t
	r.tokens[t.ID] = &cp
	return nil
}

func (r *fakeRefreshRepo) GetByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshRepo) Revoke(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (r *fakeRefreshRepo) RevokeAllForAdmin(_ context.Context, adminID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range r.tokens {
		if t.AdminID == adminID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, t := range r.tokens {
		if t.ExpiresAt.Before(time.Now()) {
			delete(r.tokens, id)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeRefreshRepo) activeCount(adminID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tokens {
		if t.AdminID == adminID && t.RevokedAt == nil {
			count++
		}
	}
	return count
}

type authFixture struct {
	svc      *AuthService
	admins   *fakeAdminRepo
	refresh  *fakeRefreshRepo
	password string
}

func newAuthFixture(t *testing.T) *authFixture {
	f := &authFixture{
		admins:   newFakeAdminRepo(),
		refresh:  newFakeRefreshRepo(),
		password: "admin123456",
	}
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	f.svc = NewAuthService(f.admins, f.refresh, cfg)

	hash, err := password.Hash(f.password)
	require.NoError(t, err)
	require.NoError(t, f.admins.Create(context.Background(), &models.AdminUser{
		Username: "admin",
		Password: hash,
		Role:     "ADMIN",
		IsActive: true,
	}))
	return f
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Login(context.Background(), &LoginInput{Username: "admin", Password: f.password})
	require.NoError(t, err)

	assert.Equal(t, "admin", resp.Admin.Username)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := jwt.ValidateAccessToken(resp.AccessToken, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.AdminID)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), &LoginInput{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), &LoginInput{Username: "nobody", Password: f.password})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveAdmin(t *testing.T) {
	f := newAuthFixture(t)
	f.admins.admins[1].IsActive = false

	_, err := f.svc.Login(context.Background(), &LoginInput{Username: "admin", Password: f.password})
	assert.ErrorIs(t, err, ErrAdminInactive)
}

func TestRefresh_Rotates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, &LoginInput{Username: "admin", Password: f.password})
	require.NoError(t, err)

	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated-out token is dead
	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefresh_ReuseRevokesFamily(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, &LoginInput{Username: "admin", Password: f.password})
	require.NoError(t, err)
	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)

	// Replaying the old token burns every live token for the admin
	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.Zero(t, f.refresh.activeCount(1))

	_, err = f.svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefresh_GarbageToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, &LoginInput{Username: "admin", Password: f.password})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, resp.RefreshToken))
	_, err = f.svc.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Logging out an unknown token is not an error
	assert.NoError(t, f.svc.Logout(ctx, "already-gone"))
}

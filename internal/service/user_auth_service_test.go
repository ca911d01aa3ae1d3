package service

import (
	"context"
	"errors"
	"testing"

	"github.com/picklemart/internal/metrics"
	"github.com/picklemart/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService() (*UserAuthService, *repository.MemoryUserRepository) {
	repo := repository.NewMemoryUserRepository()
	svc := NewUserAuthService(repo, metrics.New(prometheus.NewRegistry()))
	svc.hashCost = bcrypt.MinCost
	return svc, repo
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService()

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: " A@X.com ", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEqual(t, "pw1", user.PasswordHash)

	stored, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored)

	got, err := svc.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.Login(ctx, "a@x.com", "pw2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "a@x.com", "PW1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	before, _ := repo.GetByEmail(ctx, "a@x.com")

	_, err = svc.Register(ctx, RegisterInput{Username: "mallory", Email: "a@x.com", Password: "other"})
	assert.ErrorIs(t, err, ErrEmailExists)

	after, _ := repo.GetByEmail(ctx, "a@x.com")
	assert.Equal(t, before.Username, after.Username)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService()
	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{name: "missing_username", input: RegisterInput{Email: "a@x.com", Password: "pw"}, want: ErrMissingFields},
		{name: "missing_password", input: RegisterInput{Username: "a", Email: "a@x.com"}, want: ErrMissingFields},
		{name: "missing_email", input: RegisterInput{Username: "a", Password: "pw"}, want: ErrMissingFields},
		{name: "invalid_email", input: RegisterInput{Username: "a", Email: "not-an-email", Password: "pw"}, want: ErrInvalidEmail},
		{name: "display_name_email", input: RegisterInput{Username: "a", Email: "Alice <a@x.com>", Password: "pw"}, want: ErrInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("register want %v got %v", tc.want, err)
			}
		})
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	_, err := svc.Login(context.Background(), "nobody@x.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

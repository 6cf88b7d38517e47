package services

import (
	"context"
	"testing"
	"time"

	"ibaclean-backend/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAdminSeedAndLogin(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()
	auth := NewAuthService(store.Customers(), testSecret, time.Hour, newTestLogger())

	require.NoError(t, auth.SeedAdmin(ctx, "Admin@IBA.example", "s3cret-pass", "Site Admin"))
	// seeding twice is a no-op
	require.NoError(t, auth.SeedAdmin(ctx, "admin@iba.example", "other", "Site Admin"))

	resp, err := auth.Login(ctx, LoginRequest{Email: "admin@iba.example", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Customer.Role)
	assert.Equal(t, "Site", resp.Customer.FirstName)
	assert.NotNil(t, resp.Customer.LastLogin)

	token, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.Customer.ID.String(), claims["sub"])
	assert.Equal(t, models.RoleAdmin, claims["role"])

	me, err := auth.Me(ctx, resp.Customer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "admin@iba.example", me.Email)
}

func TestLoginFailures(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	auth := NewAuthService(rig.store.Customers(), testSecret, time.Hour, newTestLogger())
	require.NoError(t, auth.SeedAdmin(ctx, "admin@iba.example", "s3cret-pass", "Admin"))
	_, err := rig.intake.Intake(ctx, validIntakeRequest())
	require.NoError(t, err)

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{name: "wrong password", req: LoginRequest{Email: "admin@iba.example", Password: "nope"}},
		{name: "unknown email", req: LoginRequest{Email: "ghost@iba.example", Password: "s3cret-pass"}},
		{name: "intake customer has no password", req: LoginRequest{Email: "jane@example.com", Password: models.PlaceholderPasswordHash}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Login(ctx, tt.req)
			assert.ErrorIs(t, err, models.ErrInvalidCredentials)
		})
	}
}

func TestSeedAdminSkippedWithoutEmail(t *testing.T) {
	store := newSeededStore(t)
	auth := NewAuthService(store.Customers(), testSecret, time.Hour, newTestLogger())

	require.NoError(t, auth.SeedAdmin(context.Background(), "", "", ""))
	assert.Error(t, auth.SeedAdmin(context.Background(), "admin@iba.example", "", ""))
}

func TestMeUnknownID(t *testing.T) {
	auth := NewAuthService(newSeededStore(t).Customers(), testSecret, time.Hour, newTestLogger())

	_, err := auth.Me(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

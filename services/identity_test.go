package services

import (
	"context"
	"testing"
	"time"

	"ibaclean-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCreatesThenReuses(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()
	resolver := NewIdentityResolver()

	first, created, err := resolver.Resolve(ctx, store.Customers(), ContactDetails{
		Email: "Jane@Example.com ", FirstName: "Jane", LastName: "Doe", Phone: "+44 7700 900123",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "jane@example.com", first.Email)
	assert.Equal(t, "+447700900123", first.Phone)
	assert.Equal(t, models.RoleCustomer, first.Role)
	assert.Equal(t, models.PlaceholderPasswordHash, first.PasswordHash)

	second, created, err := resolver.Resolve(ctx, store.Customers(), ContactDetails{
		Email: "JANE@example.COM", FirstName: "Janet", LastName: "Smith", Phone: "+447700900999",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	// existing records are not updated from the form
	assert.Equal(t, "Jane", second.FirstName)
	assert.Equal(t, "+447700900123", second.Phone)
}

// racingCustomers simulates another request inserting the same email between
// the lookup and the insert.
type racingCustomers struct {
	winner   *models.Customer
	lookups  int
	inserted int
}

func (r *racingCustomers) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, models.ErrNotFound
	}
	return r.winner, nil
}

func (r *racingCustomers) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return r.winner, nil
}

func (r *racingCustomers) InsertIfAbsent(ctx context.Context, customer *models.Customer) (bool, error) {
	r.inserted++
	return false, nil
}

func (r *racingCustomers) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (r *racingCustomers) Count(ctx context.Context) (int64, error) {
	return 1, nil
}

func TestResolveLosingTheRaceReturnsWinner(t *testing.T) {
	winner := &models.Customer{ID: uuid.New(), Email: "jane@example.com", FirstName: "Jane"}
	repo := &racingCustomers{winner: winner}

	customer, created, err := NewIdentityResolver().Resolve(context.Background(), repo, ContactDetails{
		Email: "jane@example.com", FirstName: "Other", LastName: "Person", Phone: "+447700900123",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, customer.ID)
	assert.Equal(t, 2, repo.lookups)
	assert.Equal(t, 1, repo.inserted)
}

func TestResolveRejectsEmptyEmail(t *testing.T) {
	_, _, err := NewIdentityResolver().Resolve(context.Background(), newSeededStore(t).Customers(), ContactDetails{Email: "  "})
	assert.Error(t, err)
}

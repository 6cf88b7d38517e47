package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"ibaclean-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomer(email string) *models.Customer {
	return &models.Customer{Email: email, FirstName: "Jane", LastName: "Doe", Role: models.RoleCustomer, PasswordHash: models.PlaceholderPasswordHash}
}

func newBooking(customerID uuid.UUID) *models.Booking {
	return &models.Booking{
		CustomerID:    customerID,
		PropertyType:  models.PropertyStudio,
		Bedrooms:      1,
		Bathrooms:     1,
		Address:       "1 Test Road",
		Postcode:      "E1 6AN",
		City:          "London",
		ScheduledDate: "2025-03-14",
		ScheduledTime: "10:00",
		BasePrice:     models.Pounds(120),
		TotalPrice:    models.Pounds(120),
	}
}

func TestInsertIfAbsentEnforcesUniqueEmail(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Customers().InsertIfAbsent(ctx, newCustomer("Jane@Example.com"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Customers().InsertIfAbsent(ctx, newCustomer("jane@example.com"))
	require.NoError(t, err)
	assert.False(t, created)

	found, err := store.Customers().FindByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", found.Email)

	count, err := store.Customers().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTransactionRollsBack(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx Store) error {
		customer := newCustomer("jane@example.com")
		if _, err := tx.Customers().InsertIfAbsent(ctx, customer); err != nil {
			return err
		}
		if err := tx.Bookings().Create(ctx, newBooking(customer.ID)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Customers().FindByEmail(ctx, "jane@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
	bookings, err := store.Bookings().List(ctx, BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestTransactionCommits(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var bookingID uint
	err := store.Transaction(ctx, func(tx Store) error {
		customer := newCustomer("jane@example.com")
		if _, err := tx.Customers().InsertIfAbsent(ctx, customer); err != nil {
			return err
		}
		// nested transactions join the outer one
		return tx.Transaction(ctx, func(inner Store) error {
			b := newBooking(customer.ID)
			if err := inner.Bookings().Create(ctx, b); err != nil {
				return err
			}
			bookingID = b.ID
			return nil
		})
	})
	require.NoError(t, err)

	booking, err := store.Bookings().GetByID(ctx, bookingID)
	require.NoError(t, err)
	require.NotNil(t, booking.Customer)
	assert.Equal(t, "jane@example.com", booking.Customer.Email)
}

func TestBookingCreateRequiresCustomer(t *testing.T) {
	store := NewMemoryStore()

	err := store.Bookings().Create(context.Background(), newBooking(uuid.New()))
	assert.ErrorIs(t, err, models.ErrStoreFailure)
}

func TestBookingCreateAndOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tick := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	customer := newCustomer("jane@example.com")
	_, err := store.Customers().InsertIfAbsent(ctx, customer)
	require.NoError(t, err)

	var ids []uint
	for i := 0; i < 3; i++ {
		b := newBooking(customer.ID)
		b.Status = models.BookingStatusCompleted
		require.NoError(t, store.Bookings().Create(ctx, b))
		assert.Equal(t, models.BookingStatusPending, b.Status)
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []uint{1, 2, 3}, ids)

	listed, err := store.Bookings().ListByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, uint(3), listed[0].ID)
	assert.Equal(t, uint(1), listed[2].ID)

	limited, err := store.Bookings().List(ctx, BookingFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestTransitionStatus(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	customer := newCustomer("jane@example.com")
	_, err := store.Customers().InsertIfAbsent(ctx, customer)
	require.NoError(t, err)
	b := newBooking(customer.ID)
	require.NoError(t, store.Bookings().Create(ctx, b))

	updated, err := store.Bookings().TransitionStatus(ctx, b.ID, models.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, updated.Status)

	_, err = store.Bookings().TransitionStatus(ctx, b.ID, models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = store.Bookings().TransitionStatus(ctx, 404, models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAttemptsAreAppendOnly(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := start
	store.now = func() time.Time {
		tick = tick.Add(time.Hour)
		return tick
	}

	for _, outcome := range []models.AttemptOutcome{models.OutcomeFailed, models.OutcomeSent} {
		require.NoError(t, store.Attempts().Append(ctx, &models.NotificationAttempt{
			BookingID: 7, Channel: models.ChannelEmail, Recipient: "jane@example.com", Body: "b", Outcome: outcome,
		}))
	}
	require.NoError(t, store.Attempts().Append(ctx, &models.NotificationAttempt{BookingID: 8, Channel: models.ChannelMessage, Outcome: models.OutcomeSent}))

	attempts, err := store.Attempts().ListByBooking(ctx, 7)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, models.OutcomeFailed, attempts[0].Outcome)
	assert.Equal(t, models.OutcomeSent, attempts[1].Outcome)
	assert.NotEqual(t, attempts[0].ID, attempts[1].ID)

	recent, err := store.Attempts().ListSince(ctx, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestCatalogSeedAndUpdate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rules := []models.PricingRule{{PropertyType: models.PropertyStudio, BasePrice: models.Pounds(120)}}
	addOns := []models.AddOn{{ID: "oven", Name: "Oven Cleaning", Price: models.Pounds(35), IsActive: true}}
	require.NoError(t, store.Catalog().Seed(ctx, rules, addOns))

	require.NoError(t, store.Catalog().UpdateRule(ctx, &models.PricingRule{PropertyType: models.PropertyStudio, BasePrice: models.Pounds(130)}))
	require.NoError(t, store.Catalog().Seed(ctx, rules, addOns))

	rule, err := store.Catalog().GetRule(ctx, models.PropertyStudio)
	require.NoError(t, err)
	assert.Equal(t, models.Pounds(130), rule.BasePrice)

	err = store.Catalog().UpdateRule(ctx, &models.PricingRule{PropertyType: models.PropertyHouse})
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, store.Catalog().CreateAddOn(ctx, &models.AddOn{ID: "oven"}), models.ErrAlreadyExists)

	found, err := store.Catalog().GetAddOns(ctx, []string{"oven", "missing"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "oven", found[0].ID)
}

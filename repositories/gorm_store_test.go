package repositories

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"ibaclean-backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return NewGormStore(db), mock
}

// sqlPattern matches the literal parts in order with anything between them.
func sqlPattern(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(quoted, ".+")
}

func TestGormInsertIfAbsent(t *testing.T) {
	insert := sqlPattern(`INSERT INTO "customers"`, `ON CONFLICT ("email") DO NOTHING`)

	t.Run("inserted", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 1))

		customer := newCustomer(" Jane@Example.com ")
		created, err := store.Customers().InsertIfAbsent(context.Background(), customer)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "jane@example.com", customer.Email)
		assert.NotEqual(t, uuid.Nil, customer.ID)
	})

	t.Run("email taken", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 0))

		created, err := store.Customers().InsertIfAbsent(context.Background(), newCustomer("jane@example.com"))
		require.NoError(t, err)
		assert.False(t, created)
	})
}

func TestGormCreateBooking(t *testing.T) {
	insert := sqlPattern(`INSERT INTO "bookings"`, `RETURNING "id"`)

	t.Run("assigns id and pending status", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(insert).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		booking := newBooking(uuid.New())
		booking.Status = models.BookingStatusCompleted
		require.NoError(t, store.Bookings().Create(context.Background(), booking))
		assert.Equal(t, uint(7), booking.ID)
		assert.Equal(t, models.BookingStatusPending, booking.Status)
		assert.NotNil(t, booking.AddOns)
	})

	t.Run("unknown customer", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(insert).WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})

		err := store.Bookings().Create(context.Background(), newBooking(uuid.New()))
		assert.ErrorIs(t, err, models.ErrStoreFailure)
		assert.Contains(t, err.Error(), "referenced row does not exist")
	})
}

func TestGormCreateAddOnDuplicate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(sqlPattern(`INSERT INTO "add_ons"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := store.Catalog().CreateAddOn(context.Background(), &models.AddOn{ID: "oven", Name: "Oven Cleaning", Price: models.Pounds(35)})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)
}

func TestGormTransitionStatus(t *testing.T) {
	lock := sqlPattern(`SELECT * FROM "bookings"`, `FOR UPDATE`)
	customerID := uuid.New()
	bookingRow := func(status models.BookingStatus) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "customer_id", "status", "total_price"}).
			AddRow(1, customerID.String(), string(status), int64(17500))
	}

	t.Run("allowed", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lock).WillReturnRows(bookingRow(models.BookingStatusPending))
		mock.ExpectExec(sqlPattern(`UPDATE "bookings" SET`)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(sqlPattern(`SELECT * FROM "customers"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(customerID.String(), "jane@example.com"))
		mock.ExpectCommit()

		booking, err := store.Bookings().TransitionStatus(context.Background(), 1, models.BookingStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		require.NotNil(t, booking.Customer)
		assert.Equal(t, "jane@example.com", booking.Customer.Email)
	})

	t.Run("invalid transition rolls back", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lock).WillReturnRows(bookingRow(models.BookingStatusCompleted))
		mock.ExpectRollback()

		_, err := store.Bookings().TransitionStatus(context.Background(), 1, models.BookingStatusCancelled)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	})

	t.Run("missing booking", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lock).WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := store.Bookings().TransitionStatus(context.Background(), 1, models.BookingStatusConfirmed)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestGormTransactionRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(sqlPattern(`INSERT INTO "customers"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlPattern(`INSERT INTO "bookings"`)).WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	err := store.Transaction(context.Background(), func(tx Store) error {
		customer := newCustomer("jane@example.com")
		if _, err := tx.Customers().InsertIfAbsent(context.Background(), customer); err != nil {
			return err
		}
		return tx.Bookings().Create(context.Background(), newBooking(customer.ID))
	})
	assert.ErrorIs(t, err, models.ErrStoreFailure)
}

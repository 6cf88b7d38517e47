package repositories

import (
	"context"
	"errors"

	"ibaclean-backend/models"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Catalog() CatalogRepository { return &catalogRepository{db: s.db} }
func (s *gormStore) Customers() CustomerRepository { return &customerRepository{db: s.db} }
func (s *gormStore) Bookings() BookingRepository { return &bookingRepository{db: s.db} }
func (s *gormStore) Attempts() AttemptRepository { return &attemptRepository{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// AutoMigrate creates or updates the tables the store needs.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.PricingRule{},
		&models.AddOn{},
		&models.Customer{},
		&models.Booking{},
		&models.NotificationAttempt{},
	)
}

func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrAlreadyExists
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return models.StoreError(op, errors.New("referenced row does not exist"))
	}
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidTransition) {
		return err
	}
	return models.StoreError(op, err)
}

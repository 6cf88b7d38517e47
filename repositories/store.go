package repositories

import (
	"context"
	"time"

	"ibaclean-backend/models"

	"github.com/google/uuid"
)

// CatalogRepository holds the pricing rule table and the add-on catalog.
type CatalogRepository interface {
	GetRule(ctx context.Context, propertyType models.PropertyType) (*models.PricingRule, error)
	ListRules(ctx context.Context) ([]models.PricingRule, error)
	UpdateRule(ctx context.Context, rule *models.PricingRule) error
	// GetAddOns returns the add-ons that exist among ids, active or not.
	GetAddOns(ctx context.Context, ids []string) ([]models.AddOn, error)
	ListAddOns(ctx context.Context, activeOnly bool) ([]models.AddOn, error)
	GetAddOn(ctx context.Context, id string) (*models.AddOn, error)
	CreateAddOn(ctx context.Context, addOn *models.AddOn) error
	UpdateAddOn(ctx context.Context, addOn *models.AddOn) error
	// Seed inserts rules and add-ons that are not present yet and leaves existing rows alone.
	Seed(ctx context.Context, rules []models.PricingRule, addOns []models.AddOn) error
}

type CustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	// InsertIfAbsent inserts under the unique email index. created is false
	// when another row already holds the email; nothing is written then.
	InsertIfAbsent(ctx context.Context, customer *models.Customer) (created bool, err error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	// Count returns the number of non-admin customers.
	Count(ctx context.Context) (int64, error)
}

type BookingFilter struct {
	Status     models.BookingStatus
	CustomerID uuid.UUID
	Limit      int
}

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)
	// ListByCustomer returns the customer's bookings, most recent first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	TransitionStatus(ctx context.Context, id uint, next models.BookingStatus) (*models.Booking, error)
	Stats(ctx context.Context) (*models.BookingStats, error)
}

type AttemptRepository interface {
	Append(ctx context.Context, attempt *models.NotificationAttempt) error
	// ListByBooking returns attempts oldest first.
	ListByBooking(ctx context.Context, bookingID uint) ([]models.NotificationAttempt, error)
	// ListSince returns attempts created at or after since, oldest first.
	ListSince(ctx context.Context, since time.Time) ([]models.NotificationAttempt, error)
}

// Store is the persistence boundary. Transaction runs fn against a Store
// bound to one transaction; an error from fn rolls every write back.
type Store interface {
	Catalog() CatalogRepository
	Customers() CustomerRepository
	Bookings() BookingRepository
	Attempts() AttemptRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

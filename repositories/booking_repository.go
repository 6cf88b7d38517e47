package repositories

import (
	"context"
	"fmt"
	"time"

	"ibaclean-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookingRepository struct {
	db *gorm.DB
}

// Create inserts a new booking in pending state. The customer association is
// never written through here; the customer row must already exist.
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = 0
	booking.Status = models.BookingStatusPending
	if booking.AddOns == nil {
		booking.AddOns = models.BookedAddOns{}
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(booking).Error
	return translate("create booking", err)
}

func (r *bookingRepository) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("Customer").First(&booking, id).Error; err != nil {
		return nil, translate("get booking", err)
	}
	return &booking, nil
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Booking, error) {
	return r.List(ctx, BookingFilter{CustomerID: customerID})
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).Preload("Customer")
	if filter.CustomerID != uuid.Nil {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var bookings []models.Booking
	if err := query.Order("created_at DESC, id DESC").Find(&bookings).Error; err != nil {
		return nil, translate("list bookings", err)
	}
	return bookings, nil
}

// TransitionStatus locks the booking row, checks the status machine and applies the change.
func (r *bookingRepository) TransitionStatus(ctx context.Context, id uint, next models.BookingStatus) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, id).Error; err != nil {
			return err
		}
		if !booking.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, booking.Status, next)
		}
		now := time.Now()
		err := tx.Model(&models.Booking{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": next, "updated_at": now}).Error
		if err != nil {
			return err
		}
		booking.Status = next
		booking.UpdatedAt = now
		var customer models.Customer
		if err := tx.First(&customer, "id = ?", booking.CustomerID).Error; err != nil {
			return err
		}
		booking.Customer = &customer
		return nil
	})
	if err != nil {
		return nil, translate("transition booking status", err)
	}
	return &booking, nil
}

func (r *bookingRepository) Stats(ctx context.Context) (*models.BookingStats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.BookingStats{ByStatus: map[models.BookingStatus]int64{}}

	var rows []struct {
		Status models.BookingStatus
		Count  int64
	}
	err := db.Model(&models.Booking{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("count bookings by status", err)
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.TotalBookings += row.Count
	}
	stats.Completed = stats.ByStatus[models.BookingStatusCompleted]

	var revenue int64
	err = db.Model(&models.Booking{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("status = ?", models.BookingStatusCompleted).
		Scan(&revenue).Error
	if err != nil {
		return nil, translate("sum revenue", err)
	}
	stats.Revenue = models.Money(revenue)

	customers, err := (&customerRepository{db: r.db}).Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.Customers = customers
	return stats, nil
}

package repositories

import (
	"context"
	"time"

	"ibaclean-backend/models"

	"gorm.io/gorm"
)

type attemptRepository struct {
	db *gorm.DB
}

func (r *attemptRepository) Append(ctx context.Context, attempt *models.NotificationAttempt) error {
	return translate("append notification attempt", r.db.WithContext(ctx).Create(attempt).Error)
}

func (r *attemptRepository) ListByBooking(ctx context.Context, bookingID uint) ([]models.NotificationAttempt, error) {
	var attempts []models.NotificationAttempt
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, translate("list notification attempts", err)
	}
	return attempts, nil
}

func (r *attemptRepository) ListSince(ctx context.Context, since time.Time) ([]models.NotificationAttempt, error) {
	var attempts []models.NotificationAttempt
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, translate("list recent notification attempts", err)
	}
	return attempts, nil
}

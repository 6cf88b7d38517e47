package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"ibaclean-backend/models"
	"ibaclean-backend/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BookingService struct {
	store      repositories.Store
	dispatcher *Dispatcher
	logger     *logrus.Logger
}

func NewBookingService(store repositories.Store, dispatcher *Dispatcher, logger *logrus.Logger) *BookingService {
	return &BookingService{store: store, dispatcher: dispatcher, logger: logger}
}

// GetByReference returns the booking only when ref matches its reference.
// A wrong or missing reference looks the same as an unknown id.
func (s *BookingService) GetByReference(ctx context.Context, id uint, ref string) (*models.Booking, error) {
	booking, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ref == "" || subtle.ConstantTimeCompare([]byte(ref), []byte(booking.Reference)) != 1 {
		return nil, fmt.Errorf("booking %d: %w", id, models.ErrNotFound)
	}
	return booking, nil
}

func (s *BookingService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Booking, error) {
	return s.store.Bookings().ListByCustomer(ctx, customerID)
}

func (s *BookingService) List(ctx context.Context, filter repositories.BookingFilter) ([]models.Booking, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		verr := &models.ValidationError{}
		verr.Add("status", "must be one of pending confirmed completed cancelled")
		return nil, verr
	}
	return s.store.Bookings().List(ctx, filter)
}

// Transition moves a booking to next if the status machine allows it.
func (s *BookingService) Transition(ctx context.Context, id uint, next models.BookingStatus) (*models.Booking, error) {
	if !next.Valid() {
		verr := &models.ValidationError{}
		verr.Add("status", "must be one of pending confirmed completed cancelled")
		return nil, verr
	}

	booking, err := s.store.Bookings().TransitionStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"booking_id": id,
		"status":     next,
	}).Info("Booking status updated")
	return booking, nil
}

// Cancel cancels a booking on behalf of its owner. Bookings of other
// customers are reported as not found.
func (s *BookingService) Cancel(ctx context.Context, id uint, customerID uuid.UUID) (*models.Booking, error) {
	booking, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, fmt.Errorf("booking %d: %w", id, models.ErrNotFound)
	}
	return s.Transition(ctx, id, models.BookingStatusCancelled)
}

// Notifications lists every delivery attempt made for a booking, oldest first.
func (s *BookingService) Notifications(ctx context.Context, id uint) ([]models.NotificationAttempt, error) {
	if _, err := s.store.Bookings().GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Attempts().ListByBooking(ctx, id)
}

// Resend delivers the confirmation again on channel, or on both channels
// when channel is empty. The latest recorded attempt is reused when it was
// sent or failed for a transient reason; otherwise a fresh confirmation is
// rendered from the booking and the customer's current contact details.
func (s *BookingService) Resend(ctx context.Context, id uint, channel models.Channel) ([]Outcome, error) {
	channels := []models.Channel{models.ChannelMessage, models.ChannelEmail}
	switch channel {
	case "":
	case models.ChannelMessage, models.ChannelEmail:
		channels = []models.Channel{channel}
	default:
		verr := &models.ValidationError{}
		verr.Add("channel", "must be one of message email")
		return nil, verr
	}

	booking, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	attempts, err := s.store.Attempts().ListByBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	latest := make(map[models.Channel]*models.NotificationAttempt)
	for i := range attempts {
		latest[attempts[i].Channel] = &attempts[i]
	}

	outcomes := make([]Outcome, 0, len(channels))
	for _, ch := range channels {
		if previous, ok := latest[ch]; ok && reusable(previous) {
			outcomes = append(outcomes, s.dispatcher.Redeliver(ctx, previous))
			continue
		}
		customer := booking.Customer
		if customer == nil {
			if customer, err = s.store.Customers().GetByID(ctx, booking.CustomerID); err != nil {
				return nil, err
			}
		}
		outcomes = append(outcomes, s.dispatcher.DispatchChannel(ctx, booking, customer, ch))
	}
	return outcomes, nil
}

func reusable(a *models.NotificationAttempt) bool {
	return a.Outcome == models.OutcomeSent || retryable(a.ErrorClass)
}

func (s *BookingService) Analytics(ctx context.Context) (*models.BookingStats, error) {
	return s.store.Bookings().Stats(ctx)
}

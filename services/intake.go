package services

import (
	"context"
	"math"
	"strings"

	"ibaclean-backend/models"
	"ibaclean-backend/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IntakeRequest is the public booking form.
type IntakeRequest struct {
	PropertyType        models.PropertyType `json:"propertyType" binding:"required"`
	Bedrooms            *int                `json:"bedrooms" binding:"required,min=0,max=10"`
	Bathrooms           *int                `json:"bathrooms" binding:"required,min=1,max=10"`
	Address             string              `json:"address" binding:"required,notblank"`
	Postcode            string              `json:"postcode" binding:"required,notblank"`
	City                string              `json:"city" binding:"required,notblank"`
	ScheduledDate       string              `json:"scheduledDate" binding:"required,datetime=2006-01-02"`
	ScheduledTime       string              `json:"scheduledTime" binding:"required,hhmm"`
	ExtraServiceIDs     []string            `json:"extraServiceIds" binding:"omitempty,dive,notblank"`
	Email               string              `json:"email" binding:"required,email"`
	FirstName           string              `json:"firstName" binding:"required,notblank"`
	LastName            string              `json:"lastName" binding:"required,notblank"`
	Phone               string              `json:"phone" binding:"required,notblank"`
	SpecialInstructions string              `json:"specialInstructions" binding:"max=1000"`

	// ExtraServices is the add-on field name older clients send. It is merged
	// into ExtraServiceIDs.
	ExtraServices []string `json:"extraServices,omitempty" binding:"omitempty,dive,notblank"`

	// TotalPrice is what the client computed, in pounds. Older clients send
	// it; the server price always wins.
	TotalPrice *float64 `json:"totalPrice,omitempty"`
}

func (r *IntakeRequest) normalize() {
	r.PropertyType = models.PropertyType(strings.ToLower(strings.TrimSpace(string(r.PropertyType))))
	r.Address = strings.TrimSpace(r.Address)
	r.Postcode = strings.TrimSpace(r.Postcode)
	r.City = strings.TrimSpace(r.City)
	r.ScheduledDate = strings.TrimSpace(r.ScheduledDate)
	r.ScheduledTime = strings.TrimSpace(r.ScheduledTime)
	r.Email = models.NormalizeEmail(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.SpecialInstructions = strings.TrimSpace(r.SpecialInstructions)
	r.ExtraServiceIDs = mergeAddOnIDs(r.ExtraServiceIDs, r.ExtraServices)
	r.ExtraServices = nil
}

// Contact returns the contact details as submitted.
func (r *IntakeRequest) Contact() ContactDetails {
	return ContactDetails{
		Email:     models.NormalizeEmail(r.Email),
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Phone:     strings.TrimSpace(r.Phone),
	}
}

func mergeAddOnIDs(ids, legacy []string) []string {
	if len(ids) == 0 && len(legacy) == 0 {
		return ids
	}
	merged := make([]string, 0, len(ids)+len(legacy))
	for _, id := range append(append([]string{}, ids...), legacy...) {
		merged = append(merged, strings.TrimSpace(id))
	}
	return merged
}

// IntakeService turns a booking request into a priced, persisted booking and
// sends the confirmations.
type IntakeService struct {
	store      repositories.Store
	pricing    *PricingEngine
	identity   *IdentityResolver
	dispatcher *Dispatcher
	logger     *logrus.Logger
}

func NewIntakeService(store repositories.Store, pricing *PricingEngine, identity *IdentityResolver, dispatcher *Dispatcher, logger *logrus.Logger) *IntakeService {
	return &IntakeService{
		store:      store,
		pricing:    pricing,
		identity:   identity,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Intake validates, prices and stores the booking, then notifies the
// customer on both channels. Notification failures do not fail the intake;
// once the booking is committed the call returns it.
func (s *IntakeService) Intake(ctx context.Context, req IntakeRequest) (*models.Booking, error) {
	req.normalize()
	if err := ValidateRequest(&req); err != nil {
		s.logger.WithError(err).Info("Booking request rejected")
		return nil, err
	}

	breakdown, err := s.pricing.ComputeTotal(ctx, req.PropertyType, *req.Bedrooms, *req.Bathrooms, req.ExtraServiceIDs)
	if err != nil {
		s.logger.WithError(err).WithField("property_type", req.PropertyType).Info("Booking request could not be priced")
		return nil, err
	}

	if req.TotalPrice != nil {
		if clientTotal := models.Money(math.Round(*req.TotalPrice * 100)); clientTotal != breakdown.Total {
			s.logger.WithFields(logrus.Fields{
				"client_total": clientTotal.String(),
				"server_total": breakdown.Total.String(),
			}).Info("Ignoring client supplied total")
		}
	}

	booking := &models.Booking{
		Reference:           uuid.NewString(),
		Bedrooms:            *req.Bedrooms,
		Bathrooms:           *req.Bathrooms,
		Address:             req.Address,
		Postcode:            req.Postcode,
		City:                req.City,
		ScheduledDate:       req.ScheduledDate,
		ScheduledTime:       req.ScheduledTime,
		SpecialInstructions: req.SpecialInstructions,
	}
	booking.ApplyBreakdown(breakdown)

	var (
		customer *models.Customer
		created  bool
	)
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		c, isNew, err := s.identity.Resolve(ctx, tx.Customers(), req.Contact())
		if err != nil {
			return err
		}
		booking.CustomerID = c.ID
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}
		customer, created = c, isNew
		return nil
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to store booking")
		return nil, err
	}
	booking.Customer = customer

	entry := s.logger.WithFields(logrus.Fields{
		"booking_id":       booking.ID,
		"customer_id":      customer.ID,
		"customer_created": created,
		"total":            booking.TotalPrice.String(),
	})
	entry.Info("Booking created")

	// the booking is committed, a client disconnect must not cut the sends short
	result := s.dispatcher.Dispatch(context.WithoutCancel(ctx), booking, customer)
	entry.WithFields(logrus.Fields{
		"message_sent": result.Message.Sent,
		"email_sent":   result.Email.Sent,
	}).Info("Booking confirmations dispatched")

	return booking, nil
}

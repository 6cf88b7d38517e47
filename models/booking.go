package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
// Completed and cancelled are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BookedAddOn is the name and price of an add-on as it was when the booking was made.
type BookedAddOn struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

type BookedAddOns []BookedAddOn

func (a BookedAddOns) Value() (driver.Value, error) {
	if a == nil {
		a = BookedAddOns{}
	}
	return json.Marshal(a)
}

func (a *BookedAddOns) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*a = BookedAddOns{}
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, a)
}

type Booking struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	// Reference is handed to the customer and unlocks the public booking view.
	Reference string `gorm:"type:varchar(36);index" json:"reference,omitempty"`

	PropertyType PropertyType `gorm:"type:varchar(20);not null" json:"propertyType"`
	Bedrooms     int          `gorm:"not null" json:"bedrooms"`
	Bathrooms    int          `gorm:"not null" json:"bathrooms"`

	Address  string `gorm:"not null" json:"address"`
	Postcode string `gorm:"type:varchar(20);not null" json:"postcode"`
	City     string `gorm:"not null" json:"city"`

	ScheduledDate string `gorm:"type:varchar(10);index;not null" json:"scheduledDate"` // YYYY-MM-DD
	ScheduledTime string `gorm:"type:varchar(5);not null" json:"scheduledTime"`         // HH:MM

	BasePrice      Money        `gorm:"type:bigint;not null" json:"basePrice"`
	BedroomCharge  Money        `gorm:"type:bigint;not null" json:"bedroomCharge"`
	BathroomCharge Money        `gorm:"type:bigint;not null" json:"bathroomCharge"`
	AddOns         BookedAddOns `gorm:"type:jsonb;not null" json:"addOns"`
	TotalPrice     Money        `gorm:"type:bigint;not null" json:"totalPrice"`

	SpecialInstructions string        `gorm:"type:text" json:"specialInstructions"`
	Status              BookingStatus `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ApplyBreakdown copies a computed price onto the booking.
func (b *Booking) ApplyBreakdown(p *PriceBreakdown) {
	b.PropertyType = p.PropertyType
	b.BasePrice = p.BasePrice
	b.BedroomCharge = p.BedroomCharge
	b.BathroomCharge = p.BathroomCharge
	b.AddOns = append(BookedAddOns{}, p.AddOns...)
	b.TotalPrice = p.Total
}

// Breakdown rebuilds the price breakdown from the stored snapshot.
func (b *Booking) Breakdown() PriceBreakdown {
	var addOnsTotal Money
	for _, a := range b.AddOns {
		addOnsTotal += a.Price
	}
	return PriceBreakdown{
		PropertyType:   b.PropertyType,
		BasePrice:      b.BasePrice,
		BedroomCharge:  b.BedroomCharge,
		BathroomCharge: b.BathroomCharge,
		AddOns:         append([]BookedAddOn{}, b.AddOns...),
		AddOnsTotal:    addOnsTotal,
		Total:          b.TotalPrice,
	}
}

// BookingStats feeds the admin analytics view.
type BookingStats struct {
	TotalBookings int64                   `json:"totalBookings"`
	ByStatus      map[BookingStatus]int64 `json:"byStatus"`
	Completed     int64                   `json:"completed"`
	Revenue       Money                   `json:"revenue"`
	Customers     int64                   `json:"customers"`
}

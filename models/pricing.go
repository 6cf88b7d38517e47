package models

import "time"

type PropertyType string

const (
	PropertyStudio    PropertyType = "studio"
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
)

func (p PropertyType) Valid() bool {
	switch p {
	case PropertyStudio, PropertyApartment, PropertyHouse:
		return true
	}
	return false
}

// PricingRule is the single row of the rule table for one property type.
type PricingRule struct {
	PropertyType  PropertyType `gorm:"type:varchar(20);primaryKey" json:"propertyType"`
	BasePrice     Money        `gorm:"type:bigint;not null" json:"basePrice"`
	BedroomPrice  Money        `gorm:"type:bigint;not null" json:"bedroomPrice"`
	BathroomPrice Money        `gorm:"type:bigint;not null" json:"bathroomPrice"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// AddOn is an optional extra service selectable at booking time.
type AddOn struct {
	ID        string    `gorm:"type:varchar(40);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Price     Money     `gorm:"type:bigint;not null" json:"price"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PriceBreakdown is shared by the public quote and the persisted booking.
type PriceBreakdown struct {
	PropertyType   PropertyType  `json:"propertyType"`
	BasePrice      Money         `json:"basePrice"`
	BedroomCharge  Money         `json:"bedroomCharge"`
	BathroomCharge Money         `json:"bathroomCharge"`
	AddOns         []BookedAddOn `json:"addOns"`
	AddOnsTotal    Money         `json:"addOnsTotal"`
	Total          Money         `json:"total"`
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// PlaceholderPasswordHash marks a customer created by intake whose credential
// has not been set yet. It is not a valid bcrypt hash, so no password matches it.
const PlaceholderPasswordHash = "!invite-pending"

type Customer struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName    string     `gorm:"not null" json:"firstName"`
	LastName     string     `gorm:"not null" json:"lastName"`
	Phone        string     `json:"phone"`
	Role         string     `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	PasswordHash string     `gorm:"not null" json:"-"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Initialize UUID before creating
func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// NormalizeEmail is the key customers are looked up and stored by.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

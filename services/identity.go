package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ibaclean-backend/models"
	"ibaclean-backend/repositories"
	"ibaclean-backend/utils"
)

// maxResolveRounds bounds the lookup/insert loop. A second round only happens
// when a concurrent request inserted the same email between the two steps.
const maxResolveRounds = 3

type ContactDetails struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// IdentityResolver maps a contact email to exactly one customer record.
type IdentityResolver struct{}

func NewIdentityResolver() *IdentityResolver {
	return &IdentityResolver{}
}

// Resolve returns the customer registered under details.Email, creating one
// when none exists. An existing customer is returned untouched, even if the
// submitted name or phone differ. created reports whether a row was inserted.
func (r *IdentityResolver) Resolve(ctx context.Context, customers repositories.CustomerRepository, details ContactDetails) (customer *models.Customer, created bool, err error) {
	email := models.NormalizeEmail(details.Email)
	if email == "" {
		return nil, false, errors.New("resolve customer: empty email")
	}

	for round := 0; round < maxResolveRounds; round++ {
		existing, err := customers.FindByEmail(ctx, email)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, false, fmt.Errorf("resolve customer: %w", err)
		}

		candidate := &models.Customer{
			Email:        email,
			FirstName:    strings.TrimSpace(details.FirstName),
			LastName:     strings.TrimSpace(details.LastName),
			Phone:        utils.NormalizePhone(strings.TrimSpace(details.Phone)),
			Role:         models.RoleCustomer,
			PasswordHash: models.PlaceholderPasswordHash,
		}
		inserted, err := customers.InsertIfAbsent(ctx, candidate)
		if err != nil {
			return nil, false, fmt.Errorf("resolve customer: %w", err)
		}
		if inserted {
			return candidate, true, nil
		}
		// lost the race on the email index, read the winner
	}
	return nil, false, models.StoreError("resolve customer", fmt.Errorf("email %s neither found nor inserted", email))
}

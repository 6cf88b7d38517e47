package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ibaclean-backend/models"
	"ibaclean-backend/repositories"
	"ibaclean-backend/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string           `json:"token"`
	Customer *models.Customer `json:"user"`
}

type AuthService struct {
	customers repositories.CustomerRepository
	secret    string
	expiry    time.Duration
	logger    *logrus.Logger
}

func NewAuthService(customers repositories.CustomerRepository, secret string, expiry time.Duration, logger *logrus.Logger) *AuthService {
	return &AuthService{customers: customers, secret: secret, expiry: expiry, logger: logger}
}

// Login checks the password and issues a token. Customers created by
// booking intake have no usable password and always fail here.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if err := ValidateRequest(&req); err != nil {
		return nil, err
	}

	customer, err := s.customers.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(req.Password, customer.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.secret, s.expiry, customer.ID.String(), customer.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := time.Now()
	if err := s.customers.TouchLogin(ctx, customer.ID, now); err != nil {
		s.logger.WithError(err).WithField("customer_id", customer.ID).Warn("Failed to record last login")
	} else {
		customer.LastLogin = &now
	}

	return &LoginResponse{Token: token, Customer: customer}, nil
}

func (s *AuthService) Me(ctx context.Context, customerID string) (*models.Customer, error) {
	id, err := uuid.Parse(customerID)
	if err != nil {
		return nil, models.ErrNotFound
	}
	return s.customers.GetByID(ctx, id)
}

// SeedAdmin creates the admin account when email is set and no account
// holds it yet. An existing account is never modified.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password, name string) error {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil
	}
	if password == "" {
		return errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}

	existing, err := s.customers.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			s.logger.WithField("email", email).Warn("Admin email belongs to a customer account, not promoting it")
		}
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	admin := &models.Customer{
		Email:        email,
		FirstName:    first,
		LastName:     last,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	}
	if _, err := s.customers.InsertIfAbsent(ctx, admin); err != nil {
		return err
	}
	s.logger.WithField("email", email).Info("Admin account created")
	return nil
}

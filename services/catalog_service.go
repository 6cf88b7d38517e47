package services

import (
	"context"
	"strings"

	"ibaclean-backend/models"
	"ibaclean-backend/repositories"

	"github.com/sirupsen/logrus"
)

// DefaultPricingRules is the rule table a fresh installation starts with.
func DefaultPricingRules() []models.PricingRule {
	return []models.PricingRule{
		{PropertyType: models.PropertyStudio, BasePrice: models.Pounds(120), BedroomPrice: models.Pounds(25), BathroomPrice: models.Pounds(20)},
		{PropertyType: models.PropertyApartment, BasePrice: models.Pounds(150), BedroomPrice: models.Pounds(25), BathroomPrice: models.Pounds(20)},
		{PropertyType: models.PropertyHouse, BasePrice: models.Pounds(180), BedroomPrice: models.Pounds(25), BathroomPrice: models.Pounds(20)},
	}
}

func DefaultAddOns() []models.AddOn {
	return []models.AddOn{
		{ID: "oven", Name: "Oven Cleaning", Price: models.Pounds(35), IsActive: true},
		{ID: "carpet", Name: "Carpet Cleaning", Price: models.Pounds(40), IsActive: true},
		{ID: "windows", Name: "Window Cleaning", Price: models.Pounds(30), IsActive: true},
		{ID: "balcony", Name: "Balcony Cleaning", Price: models.Pounds(25), IsActive: true},
		{ID: "garage", Name: "Garage Cleaning", Price: models.Pounds(45), IsActive: true},
	}
}

// RuleInput carries amounts in pence.
type RuleInput struct {
	BasePrice     *int64 `json:"basePrice" binding:"required,min=0"`
	BedroomPrice  *int64 `json:"bedroomPrice" binding:"required,min=0"`
	BathroomPrice *int64 `json:"bathroomPrice" binding:"required,min=0"`
}

type AddOnInput struct {
	ID       string `json:"id" binding:"omitempty,max=40,slug"`
	Name     string `json:"name" binding:"required,notblank,max=100"`
	Price    *int64 `json:"price" binding:"required,min=0"`
	IsActive *bool  `json:"isActive"`
}

type QuoteRequest struct {
	PropertyType    models.PropertyType `json:"propertyType" binding:"required"`
	Bedrooms        *int                `json:"bedrooms" binding:"required,min=0,max=10"`
	Bathrooms       *int                `json:"bathrooms" binding:"required,min=1,max=10"`
	ExtraServiceIDs []string            `json:"extraServiceIds" binding:"omitempty,dive,notblank"`
	ExtraServices   []string            `json:"extraServices,omitempty" binding:"omitempty,dive,notblank"`
}

// CatalogService manages the pricing rule table and add-ons and serves quotes.
type CatalogService struct {
	catalog repositories.CatalogRepository
	pricing *PricingEngine
	logger  *logrus.Logger
}

func NewCatalogService(catalog repositories.CatalogRepository, pricing *PricingEngine, logger *logrus.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, pricing: pricing, logger: logger}
}

// Seed inserts the default rules and add-ons that are missing.
func (s *CatalogService) Seed(ctx context.Context) error {
	return s.catalog.Seed(ctx, DefaultPricingRules(), DefaultAddOns())
}

func (s *CatalogService) ListRules(ctx context.Context) ([]models.PricingRule, error) {
	return s.catalog.ListRules(ctx)
}

func (s *CatalogService) ListAddOns(ctx context.Context, activeOnly bool) ([]models.AddOn, error) {
	return s.catalog.ListAddOns(ctx, activeOnly)
}

func (s *CatalogService) Quote(ctx context.Context, req QuoteRequest) (*models.PriceBreakdown, error) {
	req.PropertyType = models.PropertyType(strings.ToLower(strings.TrimSpace(string(req.PropertyType))))
	req.ExtraServiceIDs = mergeAddOnIDs(req.ExtraServiceIDs, req.ExtraServices)
	req.ExtraServices = nil
	if err := ValidateRequest(&req); err != nil {
		return nil, err
	}
	return s.pricing.ComputeTotal(ctx, req.PropertyType, *req.Bedrooms, *req.Bathrooms, req.ExtraServiceIDs)
}

// UpdateRule replaces the rates for one property type. Existing bookings
// keep the price they were made at.
func (s *CatalogService) UpdateRule(ctx context.Context, propertyType models.PropertyType, in RuleInput) (*models.PricingRule, error) {
	if !propertyType.Valid() {
		return nil, models.ErrInvalidCategory
	}
	if err := ValidateRequest(&in); err != nil {
		return nil, err
	}

	rule := &models.PricingRule{
		PropertyType:  propertyType,
		BasePrice:     models.Money(*in.BasePrice),
		BedroomPrice:  models.Money(*in.BedroomPrice),
		BathroomPrice: models.Money(*in.BathroomPrice),
	}
	if err := s.catalog.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"property_type": propertyType,
		"base_price":    rule.BasePrice.String(),
	}).Info("Pricing rule updated")
	return rule, nil
}

func (s *CatalogService) CreateAddOn(ctx context.Context, in AddOnInput) (*models.AddOn, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	if err := ValidateRequest(&in); err != nil {
		return nil, err
	}
	if in.ID == "" {
		verr := &models.ValidationError{}
		verr.Add("id", "is required")
		return nil, verr
	}

	addOn := &models.AddOn{
		ID:       in.ID,
		Name:     in.Name,
		Price:    models.Money(*in.Price),
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if err := s.catalog.CreateAddOn(ctx, addOn); err != nil {
		return nil, err
	}
	s.logger.WithField("add_on", addOn.ID).Info("Add-on created")
	return addOn, nil
}

// UpdateAddOn changes name, price and, when given, the active flag. The id is fixed.
func (s *CatalogService) UpdateAddOn(ctx context.Context, id string, in AddOnInput) (*models.AddOn, error) {
	in.ID = ""
	in.Name = strings.TrimSpace(in.Name)
	if err := ValidateRequest(&in); err != nil {
		return nil, err
	}

	addOn, err := s.catalog.GetAddOn(ctx, id)
	if err != nil {
		return nil, err
	}
	addOn.Name = in.Name
	addOn.Price = models.Money(*in.Price)
	if in.IsActive != nil {
		addOn.IsActive = *in.IsActive
	}
	if err := s.catalog.UpdateAddOn(ctx, addOn); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"add_on": addOn.ID,
		"active": addOn.IsActive,
	}).Info("Add-on updated")
	return addOn, nil
}

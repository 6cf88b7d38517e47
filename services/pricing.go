package services

import (
	"context"
	"errors"
	"fmt"

	"ibaclean-backend/models"
	"ibaclean-backend/repositories"
)

// PricingEngine prices a job from the current rule table. Nothing is cached:
// an admin edit applies to the next quote.
type PricingEngine struct {
	catalog repositories.CatalogRepository
}

func NewPricingEngine(catalog repositories.CatalogRepository) *PricingEngine {
	return &PricingEngine{catalog: catalog}
}

// ComputeTotal loads the rule for propertyType and the requested add-ons and
// returns the itemised price.
func (e *PricingEngine) ComputeTotal(ctx context.Context, propertyType models.PropertyType, bedrooms, bathrooms int, addOnIDs []string) (*models.PriceBreakdown, error) {
	if !propertyType.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidCategory, propertyType)
	}

	rule, err := e.catalog.GetRule(ctx, propertyType)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: no pricing rule for %q", models.ErrInvalidCategory, propertyType)
		}
		return nil, err
	}

	ids := uniqueIDs(addOnIDs)
	var addOns []models.AddOn
	if len(ids) > 0 {
		found, err := e.catalog.GetAddOns(ctx, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]models.AddOn, len(found))
		for _, a := range found {
			byID[a.ID] = a
		}
		for _, id := range ids {
			addOn, ok := byID[id]
			if !ok {
				return nil, &models.InvalidAddOnError{ID: id, Reason: "unknown"}
			}
			if !addOn.IsActive {
				return nil, &models.InvalidAddOnError{ID: id, Reason: "inactive"}
			}
			addOns = append(addOns, addOn)
		}
	}

	breakdown, err := CalculateBreakdown(*rule, bedrooms, bathrooms, addOns)
	if err != nil {
		return nil, err
	}
	return &breakdown, nil
}

// CalculateBreakdown applies the pricing formula:
//
//	base + max(0, bedrooms-1)*bedroomPrice + max(0, bathrooms-1)*bathroomPrice + sum(addOns)
//
// The first bedroom and the first bathroom are included in the base price.
// addOns must already be resolved and active.
func CalculateBreakdown(rule models.PricingRule, bedrooms, bathrooms int, addOns []models.AddOn) (models.PriceBreakdown, error) {
	verr := &models.ValidationError{}
	if bedrooms < 0 {
		verr.Add("bedrooms", "must be at least 0")
	}
	if bathrooms < 1 {
		verr.Add("bathrooms", "must be at least 1")
	}
	if err := verr.Err(); err != nil {
		return models.PriceBreakdown{}, err
	}

	breakdown := models.PriceBreakdown{
		PropertyType:   rule.PropertyType,
		BasePrice:      rule.BasePrice,
		BedroomCharge:  rule.BedroomPrice.Times(extraRooms(bedrooms)),
		BathroomCharge: rule.BathroomPrice.Times(extraRooms(bathrooms)),
		AddOns:         make([]models.BookedAddOn, 0, len(addOns)),
	}
	for _, a := range addOns {
		breakdown.AddOns = append(breakdown.AddOns, models.BookedAddOn{ID: a.ID, Name: a.Name, Price: a.Price})
		breakdown.AddOnsTotal += a.Price
	}
	breakdown.Total = breakdown.BasePrice + breakdown.BedroomCharge + breakdown.BathroomCharge + breakdown.AddOnsTotal
	return breakdown, nil
}

func extraRooms(n int) int {
	if n <= 1 {
		return 0
	}
	return n - 1
}

// uniqueIDs drops blanks and repeats, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

package services

import (
	"context"
	"errors"
	"testing"

	"ibaclean-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	engine := NewPricingEngine(newSeededStore(t).Catalog())
	ctx := context.Background()

	tests := []struct {
		name         string
		propertyType models.PropertyType
		bedrooms     int
		bathrooms    int
		addOns       []string
		want         models.Money
	}{
		{name: "apartment two bedrooms one bathroom", propertyType: models.PropertyApartment, bedrooms: 2, bathrooms: 1, want: models.Pounds(175)},
		{name: "house with oven", propertyType: models.PropertyHouse, bedrooms: 4, bathrooms: 3, addOns: []string{"oven"}, want: models.Pounds(330)},
		{name: "studio base only", propertyType: models.PropertyStudio, bedrooms: 1, bathrooms: 1, want: models.Pounds(120)},
		{name: "zero bedrooms charge nothing extra", propertyType: models.PropertyStudio, bedrooms: 0, bathrooms: 1, want: models.Pounds(120)},
		{name: "duplicate add-on counted once", propertyType: models.PropertyStudio, bedrooms: 1, bathrooms: 1, addOns: []string{"carpet", "carpet"}, want: models.Pounds(160)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown, err := engine.ComputeTotal(ctx, tt.propertyType, tt.bedrooms, tt.bathrooms, tt.addOns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, breakdown.Total)
			assert.Equal(t, breakdown.BasePrice+breakdown.BedroomCharge+breakdown.BathroomCharge+breakdown.AddOnsTotal, breakdown.Total)
		})
	}
}

func TestComputeTotalItemises(t *testing.T) {
	engine := NewPricingEngine(newSeededStore(t).Catalog())

	breakdown, err := engine.ComputeTotal(context.Background(), models.PropertyHouse, 4, 3, []string{"oven"})
	require.NoError(t, err)

	assert.Equal(t, models.Pounds(180), breakdown.BasePrice)
	assert.Equal(t, models.Pounds(75), breakdown.BedroomCharge)
	assert.Equal(t, models.Pounds(40), breakdown.BathroomCharge)
	assert.Equal(t, []models.BookedAddOn{{ID: "oven", Name: "Oven Cleaning", Price: models.Pounds(35)}}, breakdown.AddOns)
}

func TestComputeTotalRejects(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()
	garage, err := store.Catalog().GetAddOn(ctx, "garage")
	require.NoError(t, err)
	garage.IsActive = false
	require.NoError(t, store.Catalog().UpdateAddOn(ctx, garage))

	engine := NewPricingEngine(store.Catalog())

	t.Run("unknown category", func(t *testing.T) {
		_, err := engine.ComputeTotal(ctx, "castle", 1, 1, nil)
		assert.ErrorIs(t, err, models.ErrInvalidCategory)
	})

	t.Run("unknown add-on", func(t *testing.T) {
		_, err := engine.ComputeTotal(ctx, models.PropertyStudio, 1, 1, []string{"oven", "jacuzzi"})
		require.ErrorIs(t, err, models.ErrInvalidAddOn)
		var addOnErr *models.InvalidAddOnError
		require.True(t, errors.As(err, &addOnErr))
		assert.Equal(t, "jacuzzi", addOnErr.ID)
	})

	t.Run("inactive add-on", func(t *testing.T) {
		_, err := engine.ComputeTotal(ctx, models.PropertyStudio, 1, 1, []string{"garage"})
		assert.ErrorIs(t, err, models.ErrInvalidAddOn)
	})

	t.Run("negative bedrooms", func(t *testing.T) {
		_, err := engine.ComputeTotal(ctx, models.PropertyStudio, -1, 1, nil)
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "bedrooms", verr.Fields[0].Field)
	})

	t.Run("no bathroom", func(t *testing.T) {
		_, err := engine.ComputeTotal(ctx, models.PropertyStudio, 1, 0, nil)
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "bathrooms", verr.Fields[0].Field)
	})
}

func TestComputeTotalReadsRulesFresh(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()
	engine := NewPricingEngine(store.Catalog())

	before, err := engine.ComputeTotal(ctx, models.PropertyApartment, 2, 1, nil)
	require.NoError(t, err)

	require.NoError(t, store.Catalog().UpdateRule(ctx, &models.PricingRule{
		PropertyType:  models.PropertyApartment,
		BasePrice:     models.Pounds(200),
		BedroomPrice:  models.Pounds(25),
		BathroomPrice: models.Pounds(20),
	}))

	after, err := engine.ComputeTotal(ctx, models.PropertyApartment, 2, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Pounds(175), before.Total)
	assert.Equal(t, models.Pounds(225), after.Total)
}

func TestCalculateBreakdownIsDeterministic(t *testing.T) {
	rule := DefaultPricingRules()[1]
	addOns := DefaultAddOns()[:2]

	first, err := CalculateBreakdown(rule, 3, 2, addOns)
	require.NoError(t, err)
	second, err := CalculateBreakdown(rule, 3, 2, addOns)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, models.Pounds(150+50+20+35+40), first.Total)
}

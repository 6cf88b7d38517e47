package repositories

import (
	"context"
	"time"

	"ibaclean-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogRepository struct {
	db *gorm.DB
}

func (r *catalogRepository) GetRule(ctx context.Context, propertyType models.PropertyType) (*models.PricingRule, error) {
	var rule models.PricingRule
	if err := r.db.WithContext(ctx).First(&rule, "property_type = ?", propertyType).Error; err != nil {
		return nil, translate("get pricing rule", err)
	}
	return &rule, nil
}

func (r *catalogRepository) ListRules(ctx context.Context) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	if err := r.db.WithContext(ctx).Order("base_price ASC").Find(&rules).Error; err != nil {
		return nil, translate("list pricing rules", err)
	}
	return rules, nil
}

func (r *catalogRepository) UpdateRule(ctx context.Context, rule *models.PricingRule) error {
	rule.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&models.PricingRule{}).
		Where("property_type = ?", rule.PropertyType).
		Updates(map[string]interface{}{
			"base_price":     rule.BasePrice,
			"bedroom_price":  rule.BedroomPrice,
			"bathroom_price": rule.BathroomPrice,
			"updated_at":     rule.UpdatedAt,
		})
	if result.Error != nil {
		return translate("update pricing rule", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *catalogRepository) GetAddOns(ctx context.Context, ids []string) ([]models.AddOn, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var addOns []models.AddOn
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&addOns).Error; err != nil {
		return nil, translate("get add-ons", err)
	}
	return addOns, nil
}

func (r *catalogRepository) ListAddOns(ctx context.Context, activeOnly bool) ([]models.AddOn, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var addOns []models.AddOn
	if err := query.Order("name ASC").Find(&addOns).Error; err != nil {
		return nil, translate("list add-ons", err)
	}
	return addOns, nil
}

func (r *catalogRepository) GetAddOn(ctx context.Context, id string) (*models.AddOn, error) {
	var addOn models.AddOn
	if err := r.db.WithContext(ctx).First(&addOn, "id = ?", id).Error; err != nil {
		return nil, translate("get add-on", err)
	}
	return &addOn, nil
}

func (r *catalogRepository) CreateAddOn(ctx context.Context, addOn *models.AddOn) error {
	return translate("create add-on", r.db.WithContext(ctx).Create(addOn).Error)
}

func (r *catalogRepository) UpdateAddOn(ctx context.Context, addOn *models.AddOn) error {
	addOn.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&models.AddOn{}).
		Where("id = ?", addOn.ID).
		Updates(map[string]interface{}{
			"name":       addOn.Name,
			"price":      addOn.Price,
			"is_active":  addOn.IsActive,
			"updated_at": addOn.UpdatedAt,
		})
	if result.Error != nil {
		return translate("update add-on", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *catalogRepository) Seed(ctx context.Context, rules []models.PricingRule, addOns []models.AddOn) error {
	db := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true})
	if len(rules) > 0 {
		if err := db.Create(&rules).Error; err != nil {
			return translate("seed pricing rules", err)
		}
	}
	if len(addOns) > 0 {
		if err := db.Create(&addOns).Error; err != nil {
			return translate("seed add-ons", err)
		}
	}
	return nil
}

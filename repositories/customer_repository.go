package repositories

import (
	"context"
	"time"

	"ibaclean-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type customerRepository struct {
	db *gorm.DB
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&customer).Error
	if err != nil {
		return nil, translate("find customer by email", err)
	}
	return &customer, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, translate("get customer", err)
	}
	return &customer, nil
}

// InsertIfAbsent relies on the unique email index: a concurrent insert of the
// same email waits for the other transaction and then affects zero rows.
func (r *customerRepository) InsertIfAbsent(ctx context.Context, customer *models.Customer) (bool, error) {
	customer.Email = models.NormalizeEmail(customer.Email)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(customer)
	if result.Error != nil {
		return false, translate("insert customer", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *customerRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		Update("last_login", at).Error
	return translate("update last login", err)
}

func (r *customerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("role = ?", models.RoleCustomer).
		Count(&count).Error
	if err != nil {
		return 0, translate("count customers", err)
	}
	return count, nil
}

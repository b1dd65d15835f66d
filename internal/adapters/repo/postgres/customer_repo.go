package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokolane/dukahub/internal/domain"
)

type CustomerRepo struct{ db *gorm.DB }

func NewCustomerRepo(db *gorm.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) Save(ctx context.Context, c *domain.Customer) error {
	if c.Email != "" {
		c.Email = strings.ToLower(c.Email)
	}
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CustomerRepo) FindByPhone(ctx context.Context, storeID uuid.UUID, phone string) (*domain.Customer, error) {
	p := strings.TrimSpace(phone)
	if p == "" {
		return nil, errors.New("empty phone")
	}
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, "store_id = ? AND phone = ?", storeID, p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) Search(ctx context.Context, storeID uuid.UUID, query string, limit int) ([]domain.Customer, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	like := "%" + strings.TrimSpace(query) + "%"
	var list []domain.Customer
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND (LOWER(name) LIKE LOWER(?) OR phone LIKE ? OR LOWER(email) LIKE LOWER(?))",
			storeID, like, like, like).
		Order("order_count desc, name asc").Limit(limit).Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

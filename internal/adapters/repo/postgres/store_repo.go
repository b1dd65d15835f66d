package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokolane/dukahub/internal/domain"
)

type StoreRepo struct{ db *gorm.DB }

func NewStoreRepo(db *gorm.DB) *StoreRepo { return &StoreRepo{db: db} }

func (r *StoreRepo) Save(ctx context.Context, s *domain.Store) error {
	if s.OwnerEmail != "" {
		s.OwnerEmail = strings.ToLower(s.OwnerEmail)
	}
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *StoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Store, error) {
	var s domain.Store
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepo) FindBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	var s domain.Store
	if err := r.db.WithContext(ctx).First(&s, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Store, error) {
	var list []domain.Store
	e := strings.ToLower(strings.TrimSpace(ownerEmail))
	if e == "" {
		return nil, errors.New("empty owner email")
	}
	if err := r.db.WithContext(ctx).Where("owner_email = ?", e).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokolane/dukahub/internal/domain"
)

type FinanceRepo struct{ db *gorm.DB }

func NewFinanceRepo(db *gorm.DB) *FinanceRepo { return &FinanceRepo{db: db} }

func (r *FinanceRepo) SaveAccount(ctx context.Context, a *domain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *FinanceRepo) FindAccountByCode(ctx context.Context, storeID uuid.UUID, code string) (*domain.Account, error) {
	var a domain.Account
	if err := r.db.WithContext(ctx).First(&a, "store_id = ? AND code = ?", storeID, code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *FinanceRepo) ListAccounts(ctx context.Context, storeID uuid.UUID) ([]domain.Account, error) {
	var list []domain.Account
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("code asc").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *FinanceRepo) SaveMethod(ctx context.Context, m *domain.PaymentMethodConfig) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *FinanceRepo) ListMethods(ctx context.Context, storeID uuid.UUID) ([]domain.PaymentMethodConfig, error) {
	var list []domain.PaymentMethodConfig
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("sort_order asc").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *FinanceRepo) FindMethod(ctx context.Context, storeID uuid.UUID, slug string) (*domain.PaymentMethodConfig, error) {
	var m domain.PaymentMethodConfig
	if err := r.db.WithContext(ctx).First(&m, "store_id = ? AND slug = ?", storeID, slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *FinanceRepo) SaveEntry(ctx context.Context, e *domain.JournalEntry) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(e).Error
}

func (r *FinanceRepo) ListEntries(ctx context.Context, storeID uuid.UUID, reference string) ([]domain.JournalEntry, error) {
	var list []domain.JournalEntry
	q := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if reference != "" {
		q = q.Where("reference = ?", reference)
	}
	err := q.Order("posted_at desc").Preload("Lines").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

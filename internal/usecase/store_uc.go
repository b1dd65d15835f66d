package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sokolane/dukahub/internal/domain"
)

type StoreUC struct {
	Stores domain.StoreRepo
}

func (uc *StoreUC) Create(ctx context.Context, s *domain.Store) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: store name required", domain.ErrValidation)
	}
	if s.Slug == "" {
		s.Slug = slugify(s.Name)
	}
	if existing, err := uc.Stores.FindBySlug(ctx, s.Slug); err == nil && existing != nil {
		return fmt.Errorf("%w: slug already taken", domain.ErrConflict)
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Currency == "" {
		s.Currency = "USD"
	}
	return uc.Stores.Save(ctx, s)
}

func (uc *StoreUC) Get(ctx context.Context, id uuid.UUID) (*domain.Store, error) {
	if id == uuid.Nil {
		return nil, errors.New("store id")
	}
	return uc.Stores.FindByID(ctx, id)
}

func (uc *StoreUC) ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Store, error) {
	return uc.Stores.ListByOwner(ctx, ownerEmail)
}

// SettingsPatch holds the allow-listed updatable settings. Nil fields are
// left untouched; the AI config merges field by field so a PATCH carrying
// only the model never wipes a stored API key.
type SettingsPatch struct {
	Name         *string
	Slug         *string
	LogoURL      *string
	Slogan       *string
	BrandColor   *string
	Currency     *string
	Country      *string
	Timezone     *string
	DateFormat   *string
	NumberFormat *string
	Taxes        []domain.TaxRate
	WhatsApp     *domain.WhatsAppConfig
	AIProvider   *string
	AIModel      *string
	AIOpenAIKey  *string
}

func (uc *StoreUC) UpdateSettings(ctx context.Context, id uuid.UUID, patch SettingsPatch) (*domain.Store, error) {
	s, err := uc.Stores.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Slug != nil && *patch.Slug != s.Slug {
		slug := slugify(*patch.Slug)
		if existing, err := uc.Stores.FindBySlug(ctx, slug); err == nil && existing != nil && existing.ID != s.ID {
			return nil, fmt.Errorf("%w: slug already taken", domain.ErrConflict)
		}
		s.Slug = slug
	}
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.LogoURL != nil {
		s.LogoURL = *patch.LogoURL
	}
	if patch.Slogan != nil {
		s.Slogan = *patch.Slogan
	}
	if patch.BrandColor != nil {
		s.BrandColor = *patch.BrandColor
	}
	if patch.Currency != nil {
		s.Currency = strings.ToUpper(*patch.Currency)
	}
	if patch.Country != nil {
		s.Country = *patch.Country
	}
	if patch.Timezone != nil {
		s.Timezone = *patch.Timezone
	}
	if patch.DateFormat != nil {
		s.DateFormat = *patch.DateFormat
	}
	if patch.NumberFormat != nil {
		s.NumberFormat = *patch.NumberFormat
	}
	if patch.Taxes != nil {
		s.Taxes = patch.Taxes
	}
	if patch.WhatsApp != nil {
		s.WhatsApp = *patch.WhatsApp
	}
	if patch.AIProvider != nil {
		s.AI.Provider = *patch.AIProvider
	}
	if patch.AIModel != nil {
		s.AI.Model = *patch.AIModel
	}
	if patch.AIOpenAIKey != nil && *patch.AIOpenAIKey != "" {
		s.AI.OpenAIAPIKey = *patch.AIOpenAIKey
	}
	if err := uc.Stores.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/sokolane/dukahub/internal/domain"
)

type ProductUC struct {
	Products domain.ProductRepo
	Importer domain.PageImporter
	Writer   domain.Copywriter
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Products.List(ctx, f)
}

func (uc *ProductUC) GetBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*domain.Product, error) {
	if slug == "" {
		return nil, errors.New("empty slug")
	}
	return uc.Products.FindBySlug(ctx, storeID, slug)
}

func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name required", domain.ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: negative price", domain.ErrValidation)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	slug, err := uc.uniqueSlug(ctx, p.StoreID, p.Name)
	if err != nil {
		return err
	}
	p.Slug = slug
	return uc.Products.Save(ctx, p)
}

func (uc *ProductUC) Update(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		return errors.New("product id")
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: negative price", domain.ErrValidation)
	}
	return uc.Products.Save(ctx, p)
}

func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("product id")
	}
	return uc.Products.Delete(ctx, id)
}

func (uc *ProductUC) Categories(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	return uc.Products.DistinctCategories(ctx, storeID)
}

func (uc *ProductUC) AddImages(ctx context.Context, productID uuid.UUID, imgs []domain.ProductImage) error {
	return uc.Products.AddImages(ctx, productID, imgs)
}

// --- Options ---

func (uc *ProductUC) SaveOption(ctx context.Context, o *domain.ProductOption) error {
	if o == nil || o.ProductID == uuid.Nil {
		return errors.New("option product id")
	}
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("%w: option name required", domain.ErrValidation)
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return uc.Products.SaveOption(ctx, o)
}

func (uc *ProductUC) DeleteOption(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("option id")
	}
	return uc.Products.DeleteOption(ctx, id)
}

// --- Variants ---

func (uc *ProductUC) SaveVariant(ctx context.Context, v *domain.ProductVariant) error {
	if v == nil || v.ProductID == uuid.Nil {
		return errors.New("variant product id")
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return uc.Products.SaveVariant(ctx, v)
}

func (uc *ProductUC) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("variant id")
	}
	return uc.Products.DeleteVariant(ctx, id)
}

func (uc *ProductUC) ListVariants(ctx context.Context, productID uuid.UUID) ([]domain.ProductVariant, error) {
	if productID == uuid.Nil {
		return nil, errors.New("product id")
	}
	return uc.Products.ListVariants(ctx, productID)
}

// GenerateVariants expands the product's options and replaces all existing
// variants with the result. Overwrite is deliberate: per-variant edits made
// before regeneration (images, price overrides) do not survive.
func (uc *ProductUC) GenerateVariants(ctx context.Context, storeID uuid.UUID, slug string) ([]domain.ProductVariant, error) {
	p, err := uc.Products.FindBySlug(ctx, storeID, slug)
	if err != nil {
		return nil, err
	}
	variants, err := domain.GenerateVariants(p)
	if err != nil {
		return nil, err
	}
	if err := uc.Products.ReplaceVariants(ctx, p.ID, variants); err != nil {
		return nil, err
	}
	return variants, nil
}

func (uc *ProductUC) SearchBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*domain.Product, *domain.ProductVariant, error) {
	s := strings.TrimSpace(sku)
	if s == "" {
		return nil, nil, errors.New("empty sku")
	}
	return uc.Products.FindVariantBySKU(ctx, storeID, s)
}

// --- Assisted content ---

func (uc *ProductUC) ImportFromURL(ctx context.Context, pageURL string) (*domain.ImportedProduct, error) {
	if uc.Importer == nil {
		return nil, errors.New("importer not configured")
	}
	return uc.Importer.Import(ctx, pageURL)
}

func (uc *ProductUC) GenerateDescription(ctx context.Context, name, category, hints string) (string, error) {
	if uc.Writer == nil {
		return "", errors.New("copywriter not configured")
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: product name required", domain.ErrValidation)
	}
	return uc.Writer.ProductDescription(ctx, name, category, hints)
}

func (uc *ProductUC) uniqueSlug(ctx context.Context, storeID uuid.UUID, name string) (string, error) {
	base := slugify(name)
	if base == "" {
		base = uuid.NewString()[:8]
	}
	n, err := uc.Products.CountBySlugPrefix(ctx, storeID, base)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, n+1), nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

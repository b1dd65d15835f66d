// Package memory holds in-memory repository implementations used in tests
// and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sokolane/dukahub/internal/domain"
)

type ProductRepo struct {
	mu       sync.RWMutex
	products map[uuid.UUID]domain.Product
	options  map[uuid.UUID]domain.ProductOption
	variants map[uuid.UUID]domain.ProductVariant
	images   map[uuid.UUID][]domain.ProductImage
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		products: make(map[uuid.UUID]domain.Product),
		options:  make(map[uuid.UUID]domain.ProductOption),
		variants: make(map[uuid.UUID]domain.ProductVariant),
		images:   make(map[uuid.UUID][]domain.ProductImage),
	}
}

func (r *ProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	stored := *p
	stored.Options, stored.Variants, stored.Images = nil, nil, nil
	r.products[p.ID] = stored
	for _, o := range p.Options {
		r.options[o.ID] = o
	}
	for _, v := range p.Variants {
		r.variants[v.ID] = v
	}
	return nil
}

func (r *ProductRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.assemble(p), nil
}

func (r *ProductRepo) FindBySlug(_ context.Context, storeID uuid.UUID, slug string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.StoreID == storeID && p.Slug == slug {
			return r.assemble(p), nil
		}
	}
	return nil, domain.ErrNotFound
}

// assemble attaches child rows; callers must hold the lock.
func (r *ProductRepo) assemble(p domain.Product) *domain.Product {
	for _, o := range r.options {
		if o.ProductID == p.ID {
			p.Options = append(p.Options, o)
		}
	}
	sort.Slice(p.Options, func(i, j int) bool {
		if p.Options[i].Position != p.Options[j].Position {
			return p.Options[i].Position < p.Options[j].Position
		}
		return p.Options[i].CreatedAt.Before(p.Options[j].CreatedAt)
	})
	for _, v := range r.variants {
		if v.ProductID == p.ID {
			p.Variants = append(p.Variants, v)
		}
	}
	sort.Slice(p.Variants, func(i, j int) bool { return p.Variants[i].CreatedAt.Before(p.Variants[j].CreatedAt) })
	p.Images = append(p.Images, r.images[p.ID]...)
	return &p
}

func (r *ProductRepo) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []domain.Product
	for _, p := range r.products {
		if p.StoreID != f.StoreID {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Visible != nil && p.Visibility != *f.Visible {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, int64(len(list)), nil
}

func (r *ProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	for oid, o := range r.options {
		if o.ProductID == id {
			delete(r.options, oid)
		}
	}
	for vid, v := range r.variants {
		if v.ProductID == id {
			delete(r.variants, vid)
		}
	}
	delete(r.images, id)
	return nil
}

func (r *ProductRepo) CountBySlugPrefix(_ context.Context, storeID uuid.UUID, slug string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.products {
		if p.StoreID == storeID && (p.Slug == slug || strings.HasPrefix(p.Slug, slug+"-")) {
			n++
		}
	}
	return n, nil
}

func (r *ProductRepo) DistinctCategories(_ context.Context, storeID uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	var cats []string
	for _, p := range r.products {
		if p.StoreID != storeID || p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			cats = append(cats, p.Category)
		}
	}
	sort.Strings(cats)
	return cats, nil
}

func (r *ProductRepo) SaveOption(_ context.Context, o *domain.ProductOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	r.options[o.ID] = *o
	return nil
}

func (r *ProductRepo) DeleteOption(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.options, id)
	return nil
}

func (r *ProductRepo) SaveVariant(_ context.Context, v *domain.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.UpdatedAt = time.Now()
	r.variants[v.ID] = *v
	return nil
}

func (r *ProductRepo) DeleteVariant(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.variants, id)
	return nil
}

func (r *ProductRepo) ListVariants(_ context.Context, productID uuid.UUID) ([]domain.ProductVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []domain.ProductVariant
	for _, v := range r.variants {
		if v.ProductID == productID {
			list = append(list, v)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *ProductRepo) ReplaceVariants(_ context.Context, productID uuid.UUID, variants []domain.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for vid, v := range r.variants {
		if v.ProductID == productID {
			delete(r.variants, vid)
		}
	}
	now := time.Now()
	for i, v := range variants {
		// Preserve generation order for CreatedAt-sorted reads.
		v.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		v.UpdatedAt = v.CreatedAt
		r.variants[v.ID] = v
	}
	return nil
}

func (r *ProductRepo) FindVariantBySKU(_ context.Context, storeID uuid.UUID, sku string) (*domain.Product, *domain.ProductVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.variants {
		if v.SKU != sku {
			continue
		}
		p, ok := r.products[v.ProductID]
		if !ok || p.StoreID != storeID {
			continue
		}
		variant := v
		return r.assemble(p), &variant, nil
	}
	return nil, nil, domain.ErrNotFound
}

func (r *ProductRepo) AddImages(_ context.Context, productID uuid.UUID, imgs []domain.ProductImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range imgs {
		if imgs[i].ID == uuid.Nil {
			imgs[i].ID = uuid.New()
		}
		imgs[i].ProductID = productID
	}
	r.images[productID] = append(r.images[productID], imgs...)
	return nil
}

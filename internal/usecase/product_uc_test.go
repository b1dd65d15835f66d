package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sokolane/dukahub/internal/adapters/repo/memory"
	"github.com/sokolane/dukahub/internal/domain"
)

func newProductUC() *ProductUC {
	return &ProductUC{Products: memory.NewProductRepo()}
}

func TestCreateAssignsUniqueSlugPerStore(t *testing.T) {
	uc := newProductUC()
	ctx := context.Background()
	storeID := uuid.New()

	a := &domain.Product{StoreID: storeID, Name: "Blue Tee", Price: 10}
	require.NoError(t, uc.Create(ctx, a))
	require.Equal(t, "blue-tee", a.Slug)

	b := &domain.Product{StoreID: storeID, Name: "Blue Tee", Price: 12}
	require.NoError(t, uc.Create(ctx, b))
	require.Equal(t, "blue-tee-2", b.Slug)

	// Same name under a different store keeps the clean slug.
	c := &domain.Product{StoreID: uuid.New(), Name: "Blue Tee", Price: 10}
	require.NoError(t, uc.Create(ctx, c))
	require.Equal(t, "blue-tee", c.Slug)
}

func TestCreateValidation(t *testing.T) {
	uc := newProductUC()
	ctx := context.Background()

	require.ErrorIs(t, uc.Create(ctx, &domain.Product{StoreID: uuid.New()}), domain.ErrValidation)
	require.ErrorIs(t, uc.Create(ctx, &domain.Product{StoreID: uuid.New(), Name: "X", Price: -1}), domain.ErrValidation)
}

func TestGenerateVariantsReplacesExisting(t *testing.T) {
	uc := newProductUC()
	ctx := context.Background()
	storeID := uuid.New()

	p := &domain.Product{StoreID: storeID, Name: "Tee", Price: 20, Quantity: 5, Visibility: true}
	require.NoError(t, uc.Create(ctx, p))
	require.NoError(t, uc.SaveOption(ctx, &domain.ProductOption{ProductID: p.ID, Name: "Size", Values: []string{"S", "M"}, Position: 0}))
	require.NoError(t, uc.SaveOption(ctx, &domain.ProductOption{ProductID: p.ID, Name: "Color", Values: []string{"Red", "Blue"}, Position: 1}))

	// A hand-edited variant with an image that will not survive.
	require.NoError(t, uc.SaveVariant(ctx, &domain.ProductVariant{ProductID: p.ID, Name: "Old", SKU: "OLD-1", ImageURL: "/img/old.jpg", Price: 99}))

	variants, err := uc.GenerateVariants(ctx, storeID, p.Slug)
	require.NoError(t, err)
	require.Len(t, variants, 4)

	stored, err := uc.ListVariants(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	names := make([]string, len(stored))
	for i, v := range stored {
		names[i] = v.Name
		require.Empty(t, v.ImageURL)
		require.Equal(t, 20.0, v.Price)
		require.Equal(t, 5, v.Quantity)
	}
	require.Equal(t, []string{"S / Red", "S / Blue", "M / Red", "M / Blue"}, names)

	// Regenerating again replaces the set wholesale.
	again, err := uc.GenerateVariants(ctx, storeID, p.Slug)
	require.NoError(t, err)
	stored, err = uc.ListVariants(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	require.Equal(t, again[0].ID, stored[0].ID)
}

func TestGenerateVariantsErrors(t *testing.T) {
	uc := newProductUC()
	ctx := context.Background()
	storeID := uuid.New()

	p := &domain.Product{StoreID: storeID, Name: "Plain", Price: 5}
	require.NoError(t, uc.Create(ctx, p))

	_, err := uc.GenerateVariants(ctx, storeID, p.Slug)
	require.ErrorIs(t, err, domain.ErrNoOptions)

	require.NoError(t, uc.SaveOption(ctx, &domain.ProductOption{ProductID: p.ID, Name: "Size", Values: nil}))
	_, err = uc.GenerateVariants(ctx, storeID, p.Slug)
	require.ErrorIs(t, err, domain.ErrOptionWithoutValues)

	_, err = uc.GenerateVariants(ctx, storeID, "no-such-product")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchBySKU(t *testing.T) {
	uc := newProductUC()
	ctx := context.Background()
	storeID := uuid.New()

	p := &domain.Product{StoreID: storeID, Name: "Tee", Price: 20}
	require.NoError(t, uc.Create(ctx, p))
	require.NoError(t, uc.SaveVariant(ctx, &domain.ProductVariant{ProductID: p.ID, Name: "M", SKU: "TEE-M"}))

	gotP, gotV, err := uc.SearchBySKU(ctx, storeID, "TEE-M")
	require.NoError(t, err)
	require.Equal(t, p.ID, gotP.ID)
	require.Equal(t, "TEE-M", gotV.SKU)

	_, _, err = uc.SearchBySKU(ctx, storeID, "NOPE")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = uc.SearchBySKU(ctx, uuid.New(), "TEE-M")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssistedContentUnconfigured(t *testing.T) {
	uc := newProductUC()
	ctx := context.Background()

	_, err := uc.ImportFromURL(ctx, "https://example.com/p/1")
	require.Error(t, err)

	_, err = uc.GenerateDescription(ctx, "Tee", "", "")
	require.Error(t, err)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Blue Tee":        "blue-tee",
		"  Ndizi  Tamu  ": "ndizi-tamu",
		"Café-Crème 250g": "café-crème-250g",
		"!!!":             "",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID     uuid.UUID `gorm:"type:uuid;index" json:"storeId"`
	Slug        string    `gorm:"size:140;index:idx_products_store_slug,unique" json:"slug"`
	Name        string    `gorm:"size:180" json:"name"`
	Category    string    `gorm:"size:100" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(12,2)" json:"price"`
	Quantity    int       `gorm:"type:int;default:0" json:"quantity"`

	Visibility       bool       `gorm:"default:true;index" json:"visibility"`
	SoldOut          bool       `gorm:"default:false" json:"soldOut"`
	TrackQuantity    bool       `gorm:"default:false" json:"trackQuantity"`
	ScheduledLaunch  bool       `gorm:"default:false" json:"scheduledLaunch"`
	LaunchAt         *time.Time `json:"launchAt,omitempty"`
	DailyCapacity    int        `gorm:"type:int;default:0" json:"dailyCapacity"`
	MinOrderQuantity int        `gorm:"type:int;default:0" json:"minOrderQuantity"`
	MaxOrderQuantity int        `gorm:"type:int;default:0" json:"maxOrderQuantity"`

	Images   []ProductImage   `json:"images"`
	Options  []ProductOption  `json:"options"`
	Variants []ProductVariant `json:"variants"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"productId"`
	URL       string    `gorm:"size:255" json:"url"`
	Alt       string    `gorm:"size:140" json:"alt"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductOption is one axis of variation ("Size", "Color"). Values keep
// insertion order; variant generation depends on it.
type ProductOption struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"productId"`
	Name      string    `gorm:"size:100" json:"name"`
	Values    []string  `gorm:"type:jsonb;serializer:json" json:"values"`
	Position  int       `gorm:"type:int;default:0" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

type OptionValue struct {
	OptionID uuid.UUID `json:"optionId"`
	Value    string    `json:"value"`
}

type ProductVariant struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID    uuid.UUID     `gorm:"type:uuid;index" json:"productId"`
	Name         string        `gorm:"size:180" json:"name"`
	OptionValues []OptionValue `gorm:"type:jsonb;serializer:json" json:"optionValues"`
	SKU          string        `gorm:"size:100;index" json:"sku"`
	Price        float64       `gorm:"type:decimal(12,2);default:0" json:"price"`
	Quantity     int           `gorm:"type:int;default:0" json:"quantity"`
	ImageURL     string        `gorm:"size:255" json:"imageUrl"`

	Visibility       bool       `gorm:"default:true" json:"visibility"`
	SoldOut          bool       `gorm:"default:false" json:"soldOut"`
	TrackQuantity    bool       `gorm:"default:false" json:"trackQuantity"`
	ScheduledLaunch  bool       `gorm:"default:false" json:"scheduledLaunch"`
	LaunchAt         *time.Time `json:"launchAt,omitempty"`
	DailyCapacity    int        `gorm:"type:int;default:0" json:"dailyCapacity"`
	MinOrderQuantity int        `gorm:"type:int;default:0" json:"minOrderQuantity"`
	MaxOrderQuantity int        `gorm:"type:int;default:0" json:"maxOrderQuantity"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MaxVariantCombinations caps cartesian expansion so a handful of options
// with many values cannot blow up the variant table.
const MaxVariantCombinations = 1000

// GenerateVariants expands the product's options into the full cartesian
// product of their values, one variant skeleton per combination. Combinations
// come out in nested-iteration order: options[0].Values outermost, then
// options[1].Values, and so on. Price, quantity and the availability flags are
// seeded from the parent product; the caller replaces any existing variants
// wholesale.
func GenerateVariants(p *Product) ([]ProductVariant, error) {
	if p == nil || len(p.Options) == 0 {
		return nil, ErrNoOptions
	}
	total := 1
	for _, opt := range p.Options {
		if len(opt.Values) == 0 {
			return nil, ErrOptionWithoutValues
		}
		total *= len(opt.Values)
		if total > MaxVariantCombinations {
			return nil, ErrTooManyVariants
		}
	}

	combos := expandOptions(p.Options, nil)
	variants := make([]ProductVariant, 0, len(combos))
	for _, combo := range combos {
		names := make([]string, len(combo))
		for i, ov := range combo {
			names[i] = ov.Value
		}
		variants = append(variants, ProductVariant{
			ID:           uuid.New(),
			ProductID:    p.ID,
			Name:         strings.Join(names, " / "),
			OptionValues: combo,
			Price:        p.Price,
			Quantity:     p.Quantity,

			Visibility:       p.Visibility,
			SoldOut:          p.SoldOut,
			TrackQuantity:    p.TrackQuantity,
			ScheduledLaunch:  p.ScheduledLaunch,
			LaunchAt:         p.LaunchAt,
			DailyCapacity:    p.DailyCapacity,
			MinOrderQuantity: p.MinOrderQuantity,
			MaxOrderQuantity: p.MaxOrderQuantity,
		})
	}
	return variants, nil
}

func expandOptions(opts []ProductOption, current []OptionValue) [][]OptionValue {
	if len(opts) == 0 {
		combo := make([]OptionValue, len(current))
		copy(combo, current)
		return [][]OptionValue{combo}
	}
	first, rest := opts[0], opts[1:]
	out := make([][]OptionValue, 0, len(first.Values))
	for _, v := range first.Values {
		out = append(out, expandOptions(rest, append(current, OptionValue{OptionID: first.ID, Value: v}))...)
	}
	return out
}

type ProductFilter struct {
	StoreID  uuid.UUID
	Category string
	Query    string
	Visible  *bool
	Sort     string
	Page     int
	PageSize int
}

package domain

import (
	"context"

	"github.com/google/uuid"
)

type StoreRepo interface {
	Save(ctx context.Context, s *Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	FindBySlug(ctx context.Context, slug string) (*Store, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]Store, error)
}

type ProductRepo interface {
	Save(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountBySlugPrefix(ctx context.Context, storeID uuid.UUID, slug string) (int64, error)
	DistinctCategories(ctx context.Context, storeID uuid.UUID) ([]string, error)

	SaveOption(ctx context.Context, o *ProductOption) error
	DeleteOption(ctx context.Context, id uuid.UUID) error

	SaveVariant(ctx context.Context, v *ProductVariant) error
	DeleteVariant(ctx context.Context, id uuid.UUID) error
	ListVariants(ctx context.Context, productID uuid.UUID) ([]ProductVariant, error)
	ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []ProductVariant) error
	FindVariantBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*Product, *ProductVariant, error)

	AddImages(ctx context.Context, productID uuid.UUID, imgs []ProductImage) error
}

type OrderRepo interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByPaymentRef(ctx context.Context, ref string) (*Order, error)
	List(ctx context.Context, f OrderFilter) ([]Order, int64, error)
	CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error)
	SaveInvoice(ctx context.Context, inv *Invoice) error
	InvoicesByOrder(ctx context.Context, orderID uuid.UUID) ([]Invoice, error)
	SavePayment(ctx context.Context, p *Payment) error
	PaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error)
}

type CustomerRepo interface {
	Save(ctx context.Context, c *Customer) error
	FindByPhone(ctx context.Context, storeID uuid.UUID, phone string) (*Customer, error)
	Search(ctx context.Context, storeID uuid.UUID, query string, limit int) ([]Customer, error)
}

type FinanceRepo interface {
	SaveAccount(ctx context.Context, a *Account) error
	FindAccountByCode(ctx context.Context, storeID uuid.UUID, code string) (*Account, error)
	ListAccounts(ctx context.Context, storeID uuid.UUID) ([]Account, error)

	SaveMethod(ctx context.Context, m *PaymentMethodConfig) error
	ListMethods(ctx context.Context, storeID uuid.UUID) ([]PaymentMethodConfig, error)
	FindMethod(ctx context.Context, storeID uuid.UUID, slug string) (*PaymentMethodConfig, error)

	SaveEntry(ctx context.Context, e *JournalEntry) error
	ListEntries(ctx context.Context, storeID uuid.UUID, reference string) ([]JournalEntry, error)
}

// PaymentGateway initiates an out-of-band payment request (an STK push, a
// hosted checkout) and reports its outcome.
type PaymentGateway interface {
	RequestPayment(ctx context.Context, o *Order, phone string) (string, error)
}

// Notifier delivers order lifecycle messages to the customer.
type Notifier interface {
	OrderCreated(ctx context.Context, store *Store, o *Order) error
	OrderPaid(ctx context.Context, store *Store, o *Order) error
}

// Copywriter produces AI-assisted product copy.
type Copywriter interface {
	ProductDescription(ctx context.Context, name, category, hints string) (string, error)
}

// PageImporter extracts product data from an external product page URL.
type PageImporter interface {
	Import(ctx context.Context, pageURL string) (*ImportedProduct, error)
}

type ImportedProduct struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Images      []string `json:"images"`
}

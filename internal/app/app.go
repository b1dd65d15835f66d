// Package app wires the repositories, use cases and adapters into a running
// dashboard backend.
package app

import (
	"os"
	"strings"

	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/sokolane/dukahub/internal/adapters/ai"
	"github.com/sokolane/dukahub/internal/adapters/httpserver"
	"github.com/sokolane/dukahub/internal/adapters/payments/mpesa"
	"github.com/sokolane/dukahub/internal/adapters/repo/postgres"
	"github.com/sokolane/dukahub/internal/adapters/scraper"
	"github.com/sokolane/dukahub/internal/adapters/whatsapp"
	"github.com/sokolane/dukahub/internal/domain"
	"github.com/sokolane/dukahub/internal/usecase"
)

type App struct {
	DB          *gorm.DB
	StoreUC     *usecase.StoreUC
	ProductUC   *usecase.ProductUC
	OrderUC     *usecase.OrderUC
	FinanceUC   *usecase.FinanceUC
	Customers   domain.CustomerRepo
	OAuthConfig *oauth2.Config
}

func NewApp(db *gorm.DB) (*App, error) {
	storeRepo := postgres.NewStoreRepo(db)
	prodRepo := postgres.NewProductRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	custRepo := postgres.NewCustomerRepo(db)
	finRepo := postgres.NewFinanceRepo(db)

	var gateway domain.PaymentGateway
	if key := os.Getenv("MPESA_CONSUMER_KEY"); key != "" {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		live := appEnv == "production" || appEnv == "prod"
		gateway = mpesa.NewGateway(
			key,
			os.Getenv("MPESA_CONSUMER_SECRET"),
			os.Getenv("MPESA_SHORTCODE"),
			os.Getenv("MPESA_PASSKEY"),
			strings.TrimRight(baseURL(), "/")+"/webhooks/mpesa",
			live,
		)
	}

	var notifier domain.Notifier
	if tok := os.Getenv("WHATSAPP_ACCESS_TOKEN"); tok != "" {
		notifier = whatsapp.NewNotifier(tok)
	}

	var writer domain.Copywriter
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		writer = ai.NewCopywriter(key, os.Getenv("OPENAI_MODEL"))
	}

	var oauthCfg *oauth2.Config
	googleID := os.Getenv("GOOGLE_CLIENT_ID")
	googleSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if googleID != "" && googleSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleID,
			ClientSecret: googleSecret,
			RedirectURL:  strings.TrimRight(baseURL(), "/") + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	return &App{
		DB:          db,
		StoreUC:     &usecase.StoreUC{Stores: storeRepo},
		ProductUC:   &usecase.ProductUC{Products: prodRepo, Importer: scraper.NewPageImporter(), Writer: writer},
		OrderUC:     &usecase.OrderUC{Orders: orderRepo, Customers: custRepo, Finance: finRepo, Notifier: notifier, Gateway: gateway},
		FinanceUC:   &usecase.FinanceUC{Finance: finRepo},
		Customers:   custRepo,
		OAuthConfig: oauthCfg,
	}, nil
}

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.StoreUC, a.ProductUC, a.OrderUC, a.FinanceUC, a.Customers, a.OAuthConfig)
}

func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(
		&domain.Store{}, &domain.Product{}, &domain.ProductImage{}, &domain.ProductOption{}, &domain.ProductVariant{},
		&domain.Order{}, &domain.OrderItem{}, &domain.Invoice{}, &domain.Payment{}, &domain.Customer{},
		&domain.Account{}, &domain.PaymentMethodConfig{}, &domain.JournalEntry{}, &domain.JournalLine{},
	); err != nil {
		return err
	}

	// Columns and indexes added after early deployments; AutoMigrate alone
	// does not retrofit them on live databases.
	_ = a.DB.Exec("ALTER TABLE orders ADD COLUMN IF NOT EXISTS external_payment_ref VARCHAR(100)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_external_payment_ref ON orders(external_payment_ref)").Error
	_ = a.DB.Exec("ALTER TABLE orders ADD COLUMN IF NOT EXISTS adjustment DECIMAL(12,2) DEFAULT 0").Error
	_ = a.DB.Exec("ALTER TABLE accounts ADD COLUMN IF NOT EXISTS description VARCHAR(255)").Error
	_ = a.DB.Exec("ALTER TABLE payment_method_configs ADD COLUMN IF NOT EXISTS coa_code VARCHAR(10)").Error

	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_variants_sku_unique ON product_variants (product_id, sku) WHERE sku IS NOT NULL AND sku <> ''").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_product_variants_product_id ON product_variants (product_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_journal_lines_entry_id ON journal_lines (entry_id)").Error

	return nil
}

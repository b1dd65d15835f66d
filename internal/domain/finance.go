package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountAsset     AccountType = "Asset"
	AccountLiability AccountType = "Liability"
	AccountEquity    AccountType = "Equity"
	AccountRevenue   AccountType = "Revenue"
	AccountExpense   AccountType = "Expense"
)

// Account is one chart-of-accounts ledger account. Codes are unique per
// store; payment methods reference accounts by code.
type Account struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID     uuid.UUID   `gorm:"type:uuid;index:idx_accounts_store_code,unique" json:"storeId"`
	Code        string      `gorm:"size:10;index:idx_accounts_store_code,unique" json:"code"`
	Name        string      `gorm:"size:140" json:"name"`
	Type        AccountType `gorm:"type:varchar(12)" json:"type"`
	Category    string      `gorm:"size:60" json:"category"`
	Description string      `gorm:"size:255" json:"description"`
	Status      string      `gorm:"size:12;default:active" json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Well-known seeded account codes.
const (
	AccountCodeCash       = "1000"
	AccountCodeReceivable = "1200"
	AccountCodePayable    = "2000"
	AccountCodeEquity     = "3000"
	AccountCodeRevenue    = "4000"
	AccountCodeCOGS       = "5000"
)

type PaymentMethodType string

const (
	MethodCash         PaymentMethodType = "Cash"
	MethodCreditCard   PaymentMethodType = "CreditCard"
	MethodBankTransfer PaymentMethodType = "BankTransfer"
	MethodMobileMoney  PaymentMethodType = "MobileMoney"
	MethodCrypto       PaymentMethodType = "Crypto"
	MethodCheque       PaymentMethodType = "Cheque"
	MethodOther        PaymentMethodType = "Other"
)

// PaymentMethodConfig is the authoritative list of payment channels a store
// accepts. Each enabled method maps to a dedicated COA account so payments
// can be journaled per channel. Gateway credentials are write-only.
type PaymentMethodConfig struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID          uuid.UUID         `gorm:"type:uuid;index:idx_methods_store_slug,unique" json:"storeId"`
	Slug             string            `gorm:"size:40;index:idx_methods_store_slug,unique" json:"slug"`
	Name             string            `gorm:"size:100" json:"name"`
	Type             PaymentMethodType `gorm:"type:varchar(14)" json:"type"`
	Enabled          bool              `gorm:"default:false" json:"enabled"`
	COACode          string            `gorm:"size:10" json:"coaCode"`
	Gateway          string            `gorm:"size:40" json:"gateway"`
	GatewayAccountID string            `gorm:"size:100" json:"gatewayAccountId"`
	APIKey           string            `gorm:"size:255" json:"-"`
	PublicKey        string            `gorm:"size:255" json:"publicKey"`
	WebhookSecret    string            `gorm:"size:255" json:"-"`
	Description      string            `gorm:"size:255" json:"description"`
	Icon             string            `gorm:"size:20" json:"icon"`
	SortOrder        int               `gorm:"type:int;default:0" json:"sortOrder"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

type JournalLine struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID     uuid.UUID `gorm:"type:uuid;index" json:"entryId"`
	AccountCode string    `gorm:"size:10;index" json:"accountCode"`
	Debit       float64   `gorm:"type:decimal(12,2);default:0" json:"debit"`
	Credit      float64   `gorm:"type:decimal(12,2);default:0" json:"credit"`
}

type JournalEntry struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID   uuid.UUID     `gorm:"type:uuid;index" json:"storeId"`
	Memo      string        `gorm:"size:255" json:"memo"`
	Reference string        `gorm:"size:60;index" json:"reference"`
	Lines     []JournalLine `json:"lines"`
	PostedAt  time.Time     `json:"postedAt"`
}

// NewJournalEntry validates and assembles a double-entry posting. Every line
// carries either a debit or a credit, both non-negative, and the entry must
// balance to the cent.
func NewJournalEntry(storeID uuid.UUID, memo, reference string, lines []JournalLine) (*JournalEntry, error) {
	if len(lines) < 2 {
		return nil, ErrUnbalancedEntry
	}
	var debits, credits float64
	for _, l := range lines {
		if l.Debit < 0 || l.Credit < 0 {
			return nil, ErrUnbalancedEntry
		}
		if l.Debit > 0 && l.Credit > 0 {
			return nil, ErrUnbalancedEntry
		}
		if l.AccountCode == "" {
			return nil, ErrValidation
		}
		debits += l.Debit
		credits += l.Credit
	}
	if math.Abs(debits-credits) > 0.009 {
		return nil, ErrUnbalancedEntry
	}
	e := &JournalEntry{
		ID:        uuid.New(),
		StoreID:   storeID,
		Memo:      memo,
		Reference: reference,
		PostedAt:  time.Now(),
	}
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].EntryID = e.ID
	}
	e.Lines = lines
	return e, nil
}

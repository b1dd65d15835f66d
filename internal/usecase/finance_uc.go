package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sokolane/dukahub/internal/domain"
)

type FinanceUC struct {
	Finance domain.FinanceRepo
}

var defaultAccounts = []domain.Account{
	{Code: domain.AccountCodeCash, Name: "Cash on Hand", Type: domain.AccountAsset, Category: "Current Asset"},
	{Code: domain.AccountCodeReceivable, Name: "Accounts Receivable", Type: domain.AccountAsset, Category: "Current Asset"},
	{Code: domain.AccountCodePayable, Name: "Accounts Payable", Type: domain.AccountLiability, Category: "Current Liability"},
	{Code: domain.AccountCodeEquity, Name: "Owner's Equity", Type: domain.AccountEquity, Category: "Equity"},
	{Code: domain.AccountCodeRevenue, Name: "Sales Revenue", Type: domain.AccountRevenue, Category: "Operating Revenue"},
	{Code: domain.AccountCodeCOGS, Name: "Cost of Goods Sold", Type: domain.AccountExpense, Category: "Cost of Sales"},
}

var defaultMethods = []domain.PaymentMethodConfig{
	{Slug: "cash", Name: "Cash on Hand", Type: domain.MethodCash, Enabled: true, COACode: "1000", Description: "Physical cash payments received in person", Icon: "💵", SortOrder: 1},
	{Slug: "card", Name: "Credit / Debit Card (Stripe)", Type: domain.MethodCreditCard, Gateway: "Stripe", COACode: "1010", Description: "Card payments via Stripe", Icon: "💳", SortOrder: 2},
	{Slug: "paystack", Name: "Paystack", Type: domain.MethodCreditCard, Gateway: "Paystack", COACode: "1015", Description: "Payments via Paystack", Icon: "🧾", SortOrder: 3},
	{Slug: "bank_transfer", Name: "Bank Transfer", Type: domain.MethodBankTransfer, COACode: "1020", Description: "Direct bank-to-bank transfers", Icon: "🏦", SortOrder: 4},
	{Slug: "mpesa", Name: "M-Pesa Express", Type: domain.MethodMobileMoney, Gateway: "M-Pesa", COACode: "1030", Description: "Lipa na M-Pesa STK push payments", Icon: "📱", SortOrder: 5},
	{Slug: "cheque", Name: "Cheque", Type: domain.MethodCheque, COACode: "1040", Description: "Cheque payments deposited to the business bank account", Icon: "📄", SortOrder: 6},
	{Slug: "crypto", Name: "Cryptocurrency", Type: domain.MethodCrypto, COACode: "1050", Description: "Bitcoin, USDT and other digital currency payments", Icon: "₿", SortOrder: 7},
}

// ListAccounts returns the store's chart of accounts, seeding the standard
// set on first call.
func (uc *FinanceUC) ListAccounts(ctx context.Context, storeID uuid.UUID) ([]domain.Account, error) {
	accounts, err := uc.Finance.ListAccounts(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(accounts) > 0 {
		return accounts, nil
	}
	for _, a := range defaultAccounts {
		a.ID = uuid.New()
		a.StoreID = storeID
		a.Status = "active"
		if err := uc.Finance.SaveAccount(ctx, &a); err != nil {
			return nil, err
		}
	}
	return uc.Finance.ListAccounts(ctx, storeID)
}

func (uc *FinanceUC) CreateAccount(ctx context.Context, a *domain.Account) error {
	if a.Name == "" || a.Type == "" || a.Category == "" {
		return fmt.Errorf("%w: name, type and category required", domain.ErrValidation)
	}
	if a.Code != "" {
		if existing, err := uc.Finance.FindAccountByCode(ctx, a.StoreID, a.Code); err == nil && existing != nil {
			return fmt.Errorf("%w: account code already in use", domain.ErrConflict)
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = "active"
	}
	return uc.Finance.SaveAccount(ctx, a)
}

func (uc *FinanceUC) UpdateAccount(ctx context.Context, a *domain.Account) error {
	if a.ID == uuid.Nil {
		return errors.New("account id")
	}
	if a.Code != "" {
		if existing, err := uc.Finance.FindAccountByCode(ctx, a.StoreID, a.Code); err == nil && existing != nil && existing.ID != a.ID {
			return fmt.Errorf("%w: account code already in use", domain.ErrConflict)
		}
	}
	return uc.Finance.SaveAccount(ctx, a)
}

// ListMethods returns the store's payment method configuration, seeding the
// defaults on first call.
func (uc *FinanceUC) ListMethods(ctx context.Context, storeID uuid.UUID) ([]domain.PaymentMethodConfig, error) {
	methods, err := uc.Finance.ListMethods(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(methods) > 0 {
		return methods, nil
	}
	for _, m := range defaultMethods {
		m.ID = uuid.New()
		m.StoreID = storeID
		if err := uc.Finance.SaveMethod(ctx, &m); err != nil {
			return nil, err
		}
	}
	return uc.Finance.ListMethods(ctx, storeID)
}

// SaveMethod persists a payment method config. Enabling a method guarantees
// its COA account exists so journal routing never dangles.
func (uc *FinanceUC) SaveMethod(ctx context.Context, m *domain.PaymentMethodConfig) error {
	if m.Slug == "" || m.Name == "" {
		return fmt.Errorf("%w: slug and name required", domain.ErrValidation)
	}
	m.Slug = strings.ToLower(strings.TrimSpace(m.Slug))
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if err := uc.Finance.SaveMethod(ctx, m); err != nil {
		return err
	}
	if m.Enabled && m.COACode != "" {
		return uc.ensureAccount(ctx, m)
	}
	return nil
}

func (uc *FinanceUC) ensureAccount(ctx context.Context, m *domain.PaymentMethodConfig) error {
	_, err := uc.Finance.FindAccountByCode(ctx, m.StoreID, m.COACode)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return uc.Finance.SaveAccount(ctx, &domain.Account{
		ID:       uuid.New(),
		StoreID:  m.StoreID,
		Code:     m.COACode,
		Name:     m.Name,
		Type:     domain.AccountAsset,
		Category: "Current Asset",
		Status:   "active",
	})
}

// PostEntry validates and persists a manual journal entry.
func (uc *FinanceUC) PostEntry(ctx context.Context, storeID uuid.UUID, memo, reference string, lines []domain.JournalLine) (*domain.JournalEntry, error) {
	entry, err := domain.NewJournalEntry(storeID, memo, reference, lines)
	if err != nil {
		return nil, err
	}
	if err := uc.Finance.SaveEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (uc *FinanceUC) ListEntries(ctx context.Context, storeID uuid.UUID, reference string) ([]domain.JournalEntry, error) {
	return uc.Finance.ListEntries(ctx, storeID, reference)
}

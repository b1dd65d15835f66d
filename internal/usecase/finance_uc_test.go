package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sokolane/dukahub/internal/adapters/repo/memory"
	"github.com/sokolane/dukahub/internal/domain"
)

func newFinanceUC() *FinanceUC {
	return &FinanceUC{Finance: memory.NewFinanceRepo()}
}

func TestListAccountsSeedsDefaults(t *testing.T) {
	uc := newFinanceUC()
	storeID := uuid.New()

	accounts, err := uc.ListAccounts(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, accounts, 6)

	codes := make([]string, len(accounts))
	for i, a := range accounts {
		codes[i] = a.Code
		require.Equal(t, storeID, a.StoreID)
		require.Equal(t, "active", a.Status)
	}
	require.Equal(t, []string{"1000", "1200", "2000", "3000", "4000", "5000"}, codes)

	// Seeding happens once.
	again, err := uc.ListAccounts(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, again, 6)
}

func TestListMethodsSeedsDefaults(t *testing.T) {
	uc := newFinanceUC()
	storeID := uuid.New()

	methods, err := uc.ListMethods(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, methods, 7)

	var mpesa *domain.PaymentMethodConfig
	for i := range methods {
		if methods[i].Slug == "mpesa" {
			mpesa = &methods[i]
		}
	}
	require.NotNil(t, mpesa)
	require.Equal(t, "1030", mpesa.COACode)
	require.Equal(t, domain.MethodMobileMoney, mpesa.Type)
}

func TestSaveMethodEnsuresCOAAccount(t *testing.T) {
	uc := newFinanceUC()
	storeID := uuid.New()
	ctx := context.Background()

	err := uc.SaveMethod(ctx, &domain.PaymentMethodConfig{
		StoreID: storeID, Slug: "Airtel ", Name: "Airtel Money", COACode: "1060", Enabled: true,
	})
	require.NoError(t, err)

	a, err := uc.Finance.FindAccountByCode(ctx, storeID, "1060")
	require.NoError(t, err)
	require.Equal(t, domain.AccountAsset, a.Type)

	m, err := uc.Finance.FindMethod(ctx, storeID, "airtel")
	require.NoError(t, err)
	require.Equal(t, "airtel", m.Slug)
}

func TestSaveMethodDisabledSkipsAccount(t *testing.T) {
	uc := newFinanceUC()
	storeID := uuid.New()
	ctx := context.Background()

	require.NoError(t, uc.SaveMethod(ctx, &domain.PaymentMethodConfig{StoreID: storeID, Slug: "cheque", Name: "Cheque", COACode: "1070"}))
	_, err := uc.Finance.FindAccountByCode(ctx, storeID, "1070")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateAccountRejectsDuplicateCode(t *testing.T) {
	uc := newFinanceUC()
	storeID := uuid.New()
	ctx := context.Background()

	a := &domain.Account{StoreID: storeID, Code: "1100", Name: "Petty Cash", Type: domain.AccountAsset, Category: "Current Asset"}
	require.NoError(t, uc.CreateAccount(ctx, a))

	dup := &domain.Account{StoreID: storeID, Code: "1100", Name: "Other", Type: domain.AccountAsset, Category: "Current Asset"}
	require.ErrorIs(t, uc.CreateAccount(ctx, dup), domain.ErrConflict)

	// Same code in another store is fine.
	other := &domain.Account{StoreID: uuid.New(), Code: "1100", Name: "Petty Cash", Type: domain.AccountAsset, Category: "Current Asset"}
	require.NoError(t, uc.CreateAccount(ctx, other))
}

func TestPostEntryRejectsUnbalanced(t *testing.T) {
	uc := newFinanceUC()
	storeID := uuid.New()

	_, err := uc.PostEntry(context.Background(), storeID, "memo", "REF", []domain.JournalLine{
		{AccountCode: "1000", Debit: 100},
		{AccountCode: "4000", Credit: 80},
	})
	require.ErrorIs(t, err, domain.ErrUnbalancedEntry)

	entry, err := uc.PostEntry(context.Background(), storeID, "memo", "REF", []domain.JournalLine{
		{AccountCode: "1000", Debit: 100},
		{AccountCode: "4000", Credit: 100},
	})
	require.NoError(t, err)

	list, err := uc.ListEntries(context.Background(), storeID, "REF")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, entry.ID, list[0].ID)
}

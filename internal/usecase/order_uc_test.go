package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sokolane/dukahub/internal/adapters/repo/memory"
	"github.com/sokolane/dukahub/internal/domain"
)

type fakeGateway struct{ ref string }

func (g *fakeGateway) RequestPayment(_ context.Context, _ *domain.Order, _ string) (string, error) {
	return g.ref, nil
}

type fakeNotifier struct {
	created chan string
	paid    chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{created: make(chan string, 4), paid: make(chan string, 4)}
}

func (n *fakeNotifier) OrderCreated(_ context.Context, _ *domain.Store, o *domain.Order) error {
	n.created <- o.OrderNumber
	return nil
}

func (n *fakeNotifier) OrderPaid(_ context.Context, _ *domain.Store, o *domain.Order) error {
	n.paid <- o.OrderNumber
	return nil
}

func testStore() *domain.Store {
	return &domain.Store{ID: uuid.New(), Name: "Duka Moja", Slug: "duka-moja", Currency: "KES"}
}

func newOrderUC() (*OrderUC, *memory.FinanceRepo) {
	fin := memory.NewFinanceRepo()
	return &OrderUC{
		Orders:    memory.NewOrderRepo(),
		Customers: memory.NewCustomerRepo(),
		Finance:   fin,
	}, fin
}

func draft(qty int, price float64) []domain.DraftItem {
	return []domain.DraftItem{{Name: "Soap", Qty: qty, UnitPrice: price}}
}

func TestCreateOrderAssignsSequentialNumbers(t *testing.T) {
	uc, _ := newOrderUC()
	store := testStore()
	ctx := context.Background()

	first, err := uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "Asha", CustomerPhone: "0712000001", Items: draft(1, 100)})
	require.NoError(t, err)
	second, err := uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "Juma", CustomerPhone: "0712000002", Items: draft(2, 50)})
	require.NoError(t, err)

	today := time.Now().Format("20060102")
	require.Equal(t, fmt.Sprintf("ORD-%s-0001", today), first.OrderNumber)
	require.Equal(t, fmt.Sprintf("ORD-%s-0002", today), second.OrderNumber)
}

func TestCreateOrderComputesTotalsAndInvoice(t *testing.T) {
	uc, _ := newOrderUC()
	store := testStore()
	ctx := context.Background()

	o, err := uc.Create(ctx, CreateOrderInput{
		Store:         store,
		CustomerName:  "Asha",
		CustomerPhone: "0712000001",
		Items: []domain.DraftItem{
			{Name: "Soap", Qty: 3, UnitPrice: 10},
			{Name: "Brush", Qty: 1, UnitPrice: 5},
		},
		DiscountType:  domain.DiscountPercent,
		DiscountValue: 10,
		Adjustment:    2,
	})
	require.NoError(t, err)
	require.Equal(t, 35.0, o.Subtotal)
	require.InDelta(t, 3.5, o.DiscountTotal, 1e-9)
	require.InDelta(t, 33.5, o.TotalPayable, 1e-9)
	require.Equal(t, o.TotalPayable, o.AmountDue)
	require.Equal(t, domain.OrderStatusPaymentDue, o.Status)
	require.Equal(t, "KES", o.Currency)
	require.Len(t, o.Items, 2)

	invoices, err := uc.Orders.InvoicesByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.Equal(t, "INV-"+o.OrderNumber, invoices[0].InvoiceNumber)
	require.Equal(t, o.TotalPayable, invoices[0].TotalDue)
}

func TestCreateOrderRejectsClientTotalDrift(t *testing.T) {
	uc, _ := newOrderUC()
	store := testStore()
	ctx := context.Background()

	bad := 95.0
	_, err := uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "A", CustomerPhone: "1", Items: draft(1, 100), ClientTotal: &bad})
	require.ErrorIs(t, err, domain.ErrValidation)

	near := 100.005
	_, err = uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "A", CustomerPhone: "1", Items: draft(1, 100), ClientTotal: &near})
	require.NoError(t, err)
}

func TestCreateOrderValidation(t *testing.T) {
	uc, _ := newOrderUC()
	store := testStore()
	ctx := context.Background()

	_, err := uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "A", CustomerPhone: "1"})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "A", CustomerPhone: "1", Items: draft(0, 10)})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "A", CustomerPhone: "1", Items: draft(1, -5)})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "A", CustomerPhone: "1", Items: draft(1, 10), DiscountValue: -1})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Create(ctx, CreateOrderInput{Store: store, CustomerPhone: "1", Items: draft(1, 10)})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateOrderUpsertsCustomer(t *testing.T) {
	uc, _ := newOrderUC()
	store := testStore()
	ctx := context.Background()

	o1, err := uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "Asha", CustomerPhone: "0712000001", Items: draft(1, 10)})
	require.NoError(t, err)
	o2, err := uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "Asha", CustomerPhone: "0712000001", CustomerEmail: "asha@example.com", Items: draft(1, 10)})
	require.NoError(t, err)

	require.NotNil(t, o1.CustomerID)
	require.NotNil(t, o2.CustomerID)
	require.Equal(t, *o1.CustomerID, *o2.CustomerID)

	c, err := uc.Customers.FindByPhone(ctx, store.ID, "0712000001")
	require.NoError(t, err)
	require.Equal(t, 2, c.OrderCount)
	require.Equal(t, "asha@example.com", c.Email)
}

func TestCreateOrderNotifies(t *testing.T) {
	uc, _ := newOrderUC()
	n := newFakeNotifier()
	uc.Notifier = n
	store := testStore()

	o, err := uc.Create(context.Background(), CreateOrderInput{Store: store, CustomerName: "A", CustomerPhone: "1", Items: draft(1, 10)})
	require.NoError(t, err)

	select {
	case num := <-n.created:
		require.Equal(t, o.OrderNumber, num)
	case <-time.After(2 * time.Second):
		t.Fatal("no creation notification")
	}
}

func TestRecordPaymentPartialThenComplete(t *testing.T) {
	uc, fin := newOrderUC()
	store := testStore()
	ctx := context.Background()

	require.NoError(t, fin.SaveMethod(ctx, &domain.PaymentMethodConfig{
		ID: uuid.New(), StoreID: store.ID, Slug: "mpesa", Name: "M-Pesa", COACode: "1030", Enabled: true,
	}))

	o, err := uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "A", CustomerPhone: "1", Items: draft(1, 100)})
	require.NoError(t, err)

	o, err = uc.RecordPayment(ctx, store, o.ID, "mpesa", 40, "RCPT1")
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPartial, o.PaymentStatus)
	require.Equal(t, 60.0, o.AmountDue)

	o, err = uc.RecordPayment(ctx, store, o.ID, "mpesa", 60, "RCPT2")
	require.NoError(t, err)
	require.Equal(t, domain.PaymentComplete, o.PaymentStatus)
	require.Equal(t, domain.OrderStatusProcessing, o.Status)
	require.Equal(t, 0.0, o.AmountDue)

	// Each payment posts a balanced entry: debit the method's account,
	// credit receivables.
	entries, err := fin.ListEntries(ctx, store.ID, o.OrderNumber)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Len(t, e.Lines, 2)
		require.Equal(t, "1030", e.Lines[0].AccountCode)
		require.Equal(t, domain.AccountCodeReceivable, e.Lines[1].AccountCode)
		require.Equal(t, e.Lines[0].Debit, e.Lines[1].Credit)
	}

	payments, err := uc.Orders.PaymentsByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
}

func TestRecordPaymentRejectsOverpayAndPaidOrders(t *testing.T) {
	uc, _ := newOrderUC()
	store := testStore()
	ctx := context.Background()

	o, err := uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "A", CustomerPhone: "1", Items: draft(1, 50)})
	require.NoError(t, err)

	_, err = uc.RecordPayment(ctx, store, o.ID, "cash", 60, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.RecordPayment(ctx, store, o.ID, "cash", 0, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.RecordPayment(ctx, store, o.ID, "cash", 50, "")
	require.NoError(t, err)

	_, err = uc.RecordPayment(ctx, store, o.ID, "cash", 1, "")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRequestPaymentStoresGatewayRef(t *testing.T) {
	uc, _ := newOrderUC()
	uc.Gateway = &fakeGateway{ref: "ws_CO_0001"}
	store := testStore()
	ctx := context.Background()

	o, err := uc.Create(ctx, CreateOrderInput{Store: store, CustomerName: "A", CustomerPhone: "0712000001", Items: draft(1, 100)})
	require.NoError(t, err)

	ref, err := uc.RequestPayment(ctx, o.ID, "0712000001")
	require.NoError(t, err)
	require.Equal(t, "ws_CO_0001", ref)

	found, err := uc.FindByPaymentRef(ctx, "ws_CO_0001")
	require.NoError(t, err)
	require.Equal(t, o.ID, found.ID)
}

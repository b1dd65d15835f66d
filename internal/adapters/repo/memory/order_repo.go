package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sokolane/dukahub/internal/domain"
)

type OrderRepo struct {
	mu       sync.RWMutex
	orders   map[uuid.UUID]domain.Order
	invoices map[uuid.UUID][]domain.Invoice
	payments map[uuid.UUID][]domain.Payment
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{
		orders:   make(map[uuid.UUID]domain.Order),
		invoices: make(map[uuid.UUID][]domain.Invoice),
		payments: make(map[uuid.UUID][]domain.Payment),
	}
}

func (r *OrderRepo) Save(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	o.UpdatedAt = time.Now()
	stored := *o
	stored.Items = append([]domain.OrderItem(nil), o.Items...)
	r.orders[o.ID] = stored
	return nil
}

func (r *OrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := o
	out.Items = append([]domain.OrderItem(nil), o.Items...)
	return &out, nil
}

func (r *OrderRepo) FindByPaymentRef(_ context.Context, ref string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.ExternalPaymentRef == ref && ref != "" {
			out := o
			out.Items = append([]domain.OrderItem(nil), o.Items...)
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *OrderRepo) List(_ context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []domain.Order
	for _, o := range r.orders {
		if o.StoreID != f.StoreID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Channel != "" && o.Channel != f.Channel {
			continue
		}
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && o.CreatedAt.After(*f.To) {
			continue
		}
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, int64(len(list)), nil
}

func (r *OrderRepo) CountByStore(_ context.Context, storeID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, o := range r.orders {
		if o.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

func (r *OrderRepo) SaveInvoice(_ context.Context, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	r.invoices[inv.OrderID] = append(r.invoices[inv.OrderID], *inv)
	return nil
}

func (r *OrderRepo) InvoicesByOrder(_ context.Context, orderID uuid.UUID) ([]domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Invoice(nil), r.invoices[orderID]...), nil
}

func (r *OrderRepo) SavePayment(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.payments[p.OrderID] = append(r.payments[p.OrderID], *p)
	return nil
}

func (r *OrderRepo) PaymentsByOrder(_ context.Context, orderID uuid.UUID) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Payment(nil), r.payments[orderID]...), nil
}

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

type StoreRepo struct {
	mu     sync.RWMutex
	stores map[uuid.UUID]domain.Store
}

func NewStoreRepo() *StoreRepo {
	return &StoreRepo{stores: make(map[uuid.UUID]domain.Store)}
}

func (r *StoreRepo) Save(_ context.Context, s *domain.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = time.Now()
	r.stores[s.ID] = *s
	return nil
}

func (r *StoreRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *StoreRepo) FindBySlug(_ context.Context, slug string) (*domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.stores {
		if s.Slug == slug {
			out := s
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *StoreRepo) ListByOwner(_ context.Context, ownerEmail string) ([]domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e := strings.ToLower(ownerEmail)
	var list []domain.Store
	for _, s := range r.stores {
		if strings.ToLower(s.OwnerEmail) == e {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

type CustomerRepo struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]domain.Customer
}

func NewCustomerRepo() *CustomerRepo {
	return &CustomerRepo{customers: make(map[uuid.UUID]domain.Customer)}
}

func (r *CustomerRepo) Save(_ context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	r.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) FindByPhone(_ context.Context, storeID uuid.UUID, phone string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if c.StoreID == storeID && c.Phone == phone {
			out := c
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CustomerRepo) Search(_ context.Context, storeID uuid.UUID, query string, limit int) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 10
	}
	q := strings.ToLower(query)
	var list []domain.Customer
	for _, c := range r.customers {
		if c.StoreID != storeID {
			continue
		}
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(c.Phone, query) {
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].OrderCount > list[j].OrderCount })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

type FinanceRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]domain.Account
	methods  map[uuid.UUID]domain.PaymentMethodConfig
	entries  []domain.JournalEntry
}

func NewFinanceRepo() *FinanceRepo {
	return &FinanceRepo{
		accounts: make(map[uuid.UUID]domain.Account),
		methods:  make(map[uuid.UUID]domain.PaymentMethodConfig),
	}
}

func (r *FinanceRepo) SaveAccount(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	r.accounts[a.ID] = *a
	return nil
}

func (r *FinanceRepo) FindAccountByCode(_ context.Context, storeID uuid.UUID, code string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.StoreID == storeID && a.Code == code {
			out := a
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *FinanceRepo) ListAccounts(_ context.Context, storeID uuid.UUID) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []domain.Account
	for _, a := range r.accounts {
		if a.StoreID == storeID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (r *FinanceRepo) SaveMethod(_ context.Context, m *domain.PaymentMethodConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()
	r.methods[m.ID] = *m
	return nil
}

func (r *FinanceRepo) ListMethods(_ context.Context, storeID uuid.UUID) ([]domain.PaymentMethodConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []domain.PaymentMethodConfig
	for _, m := range r.methods {
		if m.StoreID == storeID {
			list = append(list, m)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder })
	return list, nil
}

func (r *FinanceRepo) FindMethod(_ context.Context, storeID uuid.UUID, slug string) (*domain.PaymentMethodConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.methods {
		if m.StoreID == storeID && m.Slug == slug {
			out := m
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *FinanceRepo) SaveEntry(_ context.Context, e *domain.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *e
	stored.Lines = append([]domain.JournalLine(nil), e.Lines...)
	r.entries = append(r.entries, stored)
	return nil
}

func (r *FinanceRepo) ListEntries(_ context.Context, storeID uuid.UUID, reference string) ([]domain.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []domain.JournalEntry
	for _, e := range r.entries {
		if e.StoreID != storeID {
			continue
		}
		if reference != "" && e.Reference != reference {
			continue
		}
		list = append(list, e)
	}
	return list, nil
}

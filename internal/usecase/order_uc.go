package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sokolane/dukahub/internal/domain"
)

type OrderUC struct {
	Orders    domain.OrderRepo
	Customers domain.CustomerRepo
	Finance   domain.FinanceRepo
	Notifier  domain.Notifier
	Gateway   domain.PaymentGateway
}

// CreateOrderInput carries the POS submission. Totals arriving from the
// client are advisory; the server recomputes them and rejects drift beyond a
// cent.
type CreateOrderInput struct {
	Store           *domain.Store
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	Items           []domain.DraftItem
	DiscountType    domain.DiscountType
	DiscountValue   float64
	Adjustment      float64
	Channel         string
	PaymentMethod   string
	Notes           string
	ClientTotal     *float64
}

func (uc *OrderUC) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if in.Store == nil {
		return nil, errors.New("store required")
	}
	if in.CustomerName == "" || in.CustomerPhone == "" {
		return nil, fmt.Errorf("%w: customer name and phone required", domain.ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item", domain.ErrValidation)
	}
	for _, it := range in.Items {
		if it.Qty < 1 {
			return nil, fmt.Errorf("%w: item qty below 1", domain.ErrValidation)
		}
		if it.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: negative unit price", domain.ErrValidation)
		}
	}
	if in.DiscountValue < 0 {
		return nil, fmt.Errorf("%w: negative discount", domain.ErrValidation)
	}
	if in.DiscountType == "" {
		in.DiscountType = domain.DiscountFixed
	}

	totals := domain.ComputeTotals(in.Items, in.DiscountType, in.DiscountValue, in.Adjustment)
	if in.ClientTotal != nil && math.Abs(*in.ClientTotal-totals.TotalPayable) > 0.01 {
		return nil, fmt.Errorf("%w: total mismatch, expected %.2f", domain.ErrValidation, totals.TotalPayable)
	}

	number, err := uc.nextOrderNumber(ctx, in.Store.ID)
	if err != nil {
		return nil, err
	}

	customer, err := uc.upsertCustomer(ctx, in)
	if err != nil {
		log.Warn().Err(err).Msg("customer upsert failed, continuing with snapshot only")
	}

	o := &domain.Order{
		ID:              uuid.New(),
		StoreID:         in.Store.ID,
		OrderNumber:     number,
		Status:          domain.OrderStatusPaymentDue,
		Channel:         in.Channel,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerEmail:   in.CustomerEmail,
		CustomerAddress: in.CustomerAddress,
		Currency:        in.Store.Currency,
		Subtotal:        totals.Subtotal,
		DiscountType:    in.DiscountType,
		DiscountValue:   in.DiscountValue,
		DiscountTotal:   totals.DiscountAmount,
		Adjustment:      in.Adjustment,
		TotalPayable:    totals.TotalPayable,
		AmountDue:       totals.TotalPayable,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   domain.PaymentDue,
		Fulfillment:     domain.FulfillmentPending,
		Notes:           in.Notes,
	}
	if customer != nil {
		o.CustomerID = &customer.ID
	}
	for _, it := range in.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			SKU:       it.SKU,
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
			LineTotal: it.UnitPrice * float64(it.Qty),
			Note:      it.Note,
		})
	}

	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}

	if o.TotalPayable > 0 {
		inv := &domain.Invoice{
			ID:            uuid.New(),
			StoreID:       o.StoreID,
			OrderID:       o.ID,
			InvoiceNumber: "INV-" + o.OrderNumber,
			Currency:      o.Currency,
			TotalDue:      o.TotalPayable,
			PaymentStatus: domain.PaymentDue,
		}
		if err := uc.Orders.SaveInvoice(ctx, inv); err != nil {
			log.Error().Err(err).Str("order", o.OrderNumber).Msg("invoice create failed")
		}
	}

	if uc.Notifier != nil {
		go func(store domain.Store, order domain.Order) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := uc.Notifier.OrderCreated(ctx, &store, &order); err != nil {
				log.Warn().Err(err).Str("order", order.OrderNumber).Msg("order notification failed")
			}
		}(*in.Store, *o)
	}

	return o, nil
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if id == uuid.Nil {
		return nil, errors.New("order id")
	}
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 50
	}
	return uc.Orders.List(ctx, f)
}

// RecordPayment applies a payment to the order and posts the matching journal
// entry: debit the payment method's COA account, credit Accounts Receivable.
func (uc *OrderUC) RecordPayment(ctx context.Context, store *domain.Store, orderID uuid.UUID, methodSlug string, amount float64, reference string) (*domain.Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", domain.ErrValidation)
	}
	o, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == domain.PaymentComplete {
		return nil, fmt.Errorf("%w: order already paid", domain.ErrConflict)
	}
	if amount > o.AmountDue+0.009 {
		return nil, fmt.Errorf("%w: amount exceeds balance due", domain.ErrValidation)
	}

	coaCode := domain.AccountCodeCash
	if uc.Finance != nil && methodSlug != "" {
		if m, err := uc.Finance.FindMethod(ctx, o.StoreID, methodSlug); err == nil && m.COACode != "" {
			coaCode = m.COACode
		}
	}

	p := &domain.Payment{
		ID:        uuid.New(),
		StoreID:   o.StoreID,
		OrderID:   o.ID,
		Method:    methodSlug,
		Amount:    amount,
		Reference: reference,
	}
	if err := uc.Orders.SavePayment(ctx, p); err != nil {
		return nil, err
	}

	o.AmountPaid += amount
	o.AmountDue = o.TotalPayable - o.AmountPaid
	if o.AmountDue <= 0.009 {
		o.AmountDue = 0
		o.PaymentStatus = domain.PaymentComplete
		o.Status = domain.OrderStatusProcessing
	} else {
		o.PaymentStatus = domain.PaymentPartial
	}
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}

	if uc.Finance != nil {
		entry, err := domain.NewJournalEntry(o.StoreID,
			fmt.Sprintf("Payment for %s via %s", o.OrderNumber, methodSlug),
			o.OrderNumber,
			[]domain.JournalLine{
				{AccountCode: coaCode, Debit: amount},
				{AccountCode: domain.AccountCodeReceivable, Credit: amount},
			})
		if err != nil {
			return nil, err
		}
		if err := uc.Finance.SaveEntry(ctx, entry); err != nil {
			log.Error().Err(err).Str("order", o.OrderNumber).Msg("journal posting failed")
		}
	}

	if o.PaymentStatus == domain.PaymentComplete && uc.Notifier != nil && store != nil {
		go func(st domain.Store, order domain.Order) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := uc.Notifier.OrderPaid(ctx, &st, &order); err != nil {
				log.Warn().Err(err).Str("order", order.OrderNumber).Msg("payment notification failed")
			}
		}(*store, *o)
	}

	return o, nil
}

// RequestPayment kicks off an out-of-band gateway charge (M-Pesa STK push).
func (uc *OrderUC) RequestPayment(ctx context.Context, orderID uuid.UUID, phone string) (string, error) {
	if uc.Gateway == nil {
		return "", errors.New("payment gateway not configured")
	}
	o, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o.PaymentStatus == domain.PaymentComplete {
		return "", fmt.Errorf("%w: order already paid", domain.ErrConflict)
	}
	ref, err := uc.Gateway.RequestPayment(ctx, o, phone)
	if err != nil {
		return "", err
	}
	o.ExternalPaymentRef = ref
	if err := uc.Orders.Save(ctx, o); err != nil {
		log.Error().Err(err).Str("order", o.OrderNumber).Msg("saving payment ref failed")
	}
	return ref, nil
}

// FindByPaymentRef resolves the order a gateway callback belongs to.
func (uc *OrderUC) FindByPaymentRef(ctx context.Context, ref string) (*domain.Order, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty payment ref", domain.ErrValidation)
	}
	return uc.Orders.FindByPaymentRef(ctx, ref)
}

func (uc *OrderUC) nextOrderNumber(ctx context.Context, storeID uuid.UUID) (string, error) {
	n, err := uc.Orders.CountByStore(ctx, storeID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102"), n+1), nil
}

func (uc *OrderUC) upsertCustomer(ctx context.Context, in CreateOrderInput) (*domain.Customer, error) {
	if uc.Customers == nil {
		return nil, nil
	}
	c, err := uc.Customers.FindByPhone(ctx, in.Store.ID, in.CustomerPhone)
	if errors.Is(err, domain.ErrNotFound) {
		c = &domain.Customer{
			ID:      uuid.New(),
			StoreID: in.Store.ID,
			Name:    in.CustomerName,
			Phone:   in.CustomerPhone,
			Email:   in.CustomerEmail,
			Address: in.CustomerAddress,
		}
	} else if err != nil {
		return nil, err
	}
	c.OrderCount++
	if in.CustomerEmail != "" {
		c.Email = in.CustomerEmail
	}
	if err := uc.Customers.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPaymentDue OrderStatus = "OrderPaymentDue"
	OrderStatusProcessing OrderStatus = "OrderProcessing"
	OrderStatusDelivered  OrderStatus = "OrderDelivered"
	OrderStatusCancelled  OrderStatus = "OrderCancelled"
)

type PaymentStatus string

const (
	PaymentDue      PaymentStatus = "PaymentDue"
	PaymentPartial  PaymentStatus = "PaymentPartial"
	PaymentComplete PaymentStatus = "PaymentComplete"
)

type FulfillmentStatus string

const (
	FulfillmentPending   FulfillmentStatus = "Pending"
	FulfillmentFulfilled FulfillmentStatus = "Fulfilled"
)

// Order channels as entered on the POS screen.
const (
	ChannelManual   = "Manual"
	ChannelPOS      = "POS"
	ChannelPhone    = "Phone"
	ChannelWhatsApp = "WhatsApp"
	ChannelOnline   = "Online"
)

type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID     uuid.UUID   `gorm:"type:uuid;index:idx_orders_store_number,unique" json:"storeId"`
	OrderNumber string      `gorm:"size:40;index:idx_orders_store_number,unique" json:"orderNumber"`
	Status      OrderStatus `gorm:"type:varchar(30);index" json:"status"`
	Channel     string      `gorm:"size:20;index" json:"channel"`

	CustomerID      *uuid.UUID `gorm:"type:uuid;index" json:"customerId,omitempty"`
	CustomerName    string     `gorm:"size:140" json:"customerName"`
	CustomerPhone   string     `gorm:"size:50" json:"customerPhone"`
	CustomerEmail   string     `gorm:"size:140" json:"customerEmail"`
	CustomerAddress string     `gorm:"size:255" json:"customerAddress"`

	Items []OrderItem `json:"items"`

	Currency      string       `gorm:"size:8" json:"currency"`
	Subtotal      float64      `gorm:"type:decimal(12,2);default:0" json:"subtotal"`
	DiscountType  DiscountType `gorm:"type:varchar(10)" json:"discountType"`
	DiscountValue float64      `gorm:"type:decimal(12,2);default:0" json:"discountValue"`
	DiscountTotal float64      `gorm:"type:decimal(12,2);default:0" json:"discountTotal"`
	Adjustment    float64      `gorm:"type:decimal(12,2);default:0" json:"adjustment"`
	TaxTotal      float64      `gorm:"type:decimal(12,2);default:0" json:"taxTotal"`
	ShippingCost  float64      `gorm:"type:decimal(12,2);default:0" json:"shippingCost"`
	TotalPayable  float64      `gorm:"type:decimal(12,2)" json:"totalPayable"`
	AmountPaid    float64      `gorm:"type:decimal(12,2);default:0" json:"amountPaid"`
	AmountDue     float64      `gorm:"type:decimal(12,2);default:0" json:"amountDue"`
	PaymentMethod string       `gorm:"size:40;index" json:"paymentMethod"`
	// Gateway correlation id (M-Pesa CheckoutRequestID) for webhook matching.
	ExternalPaymentRef string            `gorm:"size:100;index" json:"externalPaymentRef,omitempty"`
	PaymentStatus      PaymentStatus     `gorm:"type:varchar(20);index" json:"paymentStatus"`
	Fulfillment        FulfillmentStatus `gorm:"type:varchar(20)" json:"fulfillmentStatus"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OrderItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID  `gorm:"type:uuid;index" json:"orderId"`
	ProductID *uuid.UUID `gorm:"type:uuid;index" json:"productId,omitempty"`
	VariantID *uuid.UUID `gorm:"type:uuid;index" json:"variantId,omitempty"`
	Name      string     `gorm:"size:180" json:"name"`
	SKU       string     `gorm:"size:100" json:"sku"`
	Qty       int        `gorm:"not null" json:"qty"`
	UnitPrice float64    `gorm:"type:decimal(12,2)" json:"unitPrice"`
	LineTotal float64    `gorm:"type:decimal(12,2)" json:"lineTotal"`
	Note      string     `gorm:"size:255" json:"note"`
}

type Invoice struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID       uuid.UUID     `gorm:"type:uuid;index" json:"storeId"`
	OrderID       uuid.UUID     `gorm:"type:uuid;index" json:"orderId"`
	InvoiceNumber string        `gorm:"size:44" json:"invoiceNumber"`
	Currency      string        `gorm:"size:8" json:"currency"`
	TotalDue      float64       `gorm:"type:decimal(12,2)" json:"totalDue"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20)" json:"paymentStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID   uuid.UUID `gorm:"type:uuid;index" json:"storeId"`
	OrderID   uuid.UUID `gorm:"type:uuid;index" json:"orderId"`
	Method    string    `gorm:"size:40" json:"method"`
	Amount    float64   `gorm:"type:decimal(12,2)" json:"amount"`
	Reference string    `gorm:"size:140" json:"reference"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- Order entry (POS draft) ---

type DiscountType string

const (
	DiscountFixed   DiscountType = "fixed"
	DiscountPercent DiscountType = "percent"
)

// DraftItem is one row of an in-progress order: a catalog product or an
// ad-hoc charge. ProductID is nil for custom items.
type DraftItem struct {
	ID        string     `json:"id"`
	ProductID *uuid.UUID `json:"productId,omitempty"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Name      string     `json:"name"`
	SKU       string     `json:"sku,omitempty"`
	Qty       int        `json:"qty"`
	UnitPrice float64    `json:"unitPrice"`
	Note      string     `json:"note,omitempty"`
}

// AdjustQty shifts the quantity by delta, never going below 1. Removing an
// item is a separate explicit action, not a decrement to zero.
func (i *DraftItem) AdjustQty(delta int) {
	i.Qty += delta
	if i.Qty < 1 {
		i.Qty = 1
	}
}

// Totals is the derived money summary of a draft order. Recomputed from
// scratch on every evaluation; nothing here is stored independently.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	AfterDiscount  float64 `json:"afterDiscount"`
	TotalPayable   float64 `json:"totalPayable"`
	ItemCount      int     `json:"itemCount"`
}

// ComputeTotals folds the line items into a subtotal and item count, then
// applies the discount and the signed flat adjustment. Monetary results are
// clamped at zero; the adjustment itself may be negative. No rounding is done
// here, display formatting owns that.
func ComputeTotals(items []DraftItem, dt DiscountType, discountValue, adjustment float64) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += it.UnitPrice * float64(it.Qty)
		t.ItemCount += it.Qty
	}
	if dt == DiscountPercent {
		t.DiscountAmount = t.Subtotal * (discountValue / 100)
	} else {
		t.DiscountAmount = discountValue
	}
	t.AfterDiscount = math.Max(0, t.Subtotal-t.DiscountAmount)
	t.TotalPayable = math.Max(0, t.AfterDiscount+adjustment)
	return t
}

type OrderFilter struct {
	StoreID  uuid.UUID
	Status   OrderStatus
	Channel  string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

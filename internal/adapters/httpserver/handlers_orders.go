package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/sokolane/dukahub/internal/adapters/payments/mpesa"
	"github.com/sokolane/dukahub/internal/domain"
	"github.com/sokolane/dukahub/internal/metrics"
	"github.com/sokolane/dukahub/internal/usecase"
)

type orderItemPayload struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	Note      string  `json:"note"`
}

func draftItems(items []orderItemPayload) []domain.DraftItem {
	out := make([]domain.DraftItem, 0, len(items))
	for _, it := range items {
		d := domain.DraftItem{ID: it.ID, Name: it.Name, SKU: it.SKU, Qty: it.Qty, UnitPrice: it.UnitPrice, Note: it.Note}
		if it.ProductID != "" {
			if id, err := uuid.Parse(it.ProductID); err == nil {
				d.ProductID = &id
			}
		}
		if it.VariantID != "" {
			if id, err := uuid.Parse(it.VariantID); err == nil {
				d.VariantID = &id
			}
		}
		out = append(out, d)
	}
	return out
}

func (s *Server) apiOrders(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	switch r.Method {
	case http.MethodGet:
		f, err := orderFilterFromQuery(r, store.ID)
		if err != nil {
			writeJSON(w, 400, map[string]string{"error": err.Error()})
			return
		}
		list, total, err := s.orders.List(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list, "total": total, "page": f.Page})
	case http.MethodPost:
		var req struct {
			CustomerName    string             `json:"customerName"`
			CustomerPhone   string             `json:"customerPhone"`
			CustomerEmail   string             `json:"customerEmail"`
			CustomerAddress string             `json:"customerAddress"`
			Items           []orderItemPayload `json:"items"`
			DiscountType    string             `json:"discountType"`
			DiscountValue   float64            `json:"discountValue"`
			Adjustment      float64            `json:"adjustment"`
			Channel         string             `json:"channel"`
			PaymentMethod   string             `json:"paymentMethod"`
			Notes           string             `json:"notes"`
			Total           *float64           `json:"total"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		channel := req.Channel
		if channel == "" {
			channel = domain.ChannelPOS
		}
		o, err := s.orders.Create(r.Context(), usecase.CreateOrderInput{
			Store:           store,
			CustomerName:    strings.TrimSpace(req.CustomerName),
			CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
			CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
			CustomerAddress: req.CustomerAddress,
			Items:           draftItems(req.Items),
			DiscountType:    domain.DiscountType(req.DiscountType),
			DiscountValue:   req.DiscountValue,
			Adjustment:      req.Adjustment,
			Channel:         channel,
			PaymentMethod:   req.PaymentMethod,
			Notes:           req.Notes,
			ClientTotal:     req.Total,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		metrics.OrdersCreated.WithLabelValues(channel).Inc()
		writeJSON(w, 201, o)
	default:
		http.Error(w, "method", 405)
	}
}

// apiOrderPreview recomputes totals for an in-progress draft without
// persisting anything. The POS screen calls it on every cart change.
func (s *Server) apiOrderPreview(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		Items         []orderItemPayload `json:"items"`
		DiscountType  string             `json:"discountType"`
		DiscountValue float64            `json:"discountValue"`
		Adjustment    float64            `json:"adjustment"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	if req.DiscountValue < 0 {
		writeJSON(w, 400, map[string]string{"error": "negative discount"})
		return
	}
	for _, it := range req.Items {
		if it.Qty < 1 || it.UnitPrice < 0 {
			writeJSON(w, 400, map[string]string{"error": "invalid item"})
			return
		}
	}
	totals := domain.ComputeTotals(draftItems(req.Items), domain.DiscountType(req.DiscountType), req.DiscountValue, req.Adjustment)
	writeJSON(w, 200, totals)
}

// apiOrderByID handles /api/orders/{id} plus /payments and /request-payment.
func (s *Server) apiOrderByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/orders/"), "/")
	parts := strings.Split(rest, "/")
	id, err := uuid.Parse(parts[0])
	if err != nil {
		http.Error(w, "order id", 400)
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "payments":
			s.apiOrderPayments(w, r, store, id)
		case "request-payment":
			s.apiOrderRequestPayment(w, r, id)
		default:
			http.NotFound(w, r)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	o, err := s.orders.Get(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	invoices, _ := s.orders.Orders.InvoicesByOrder(r.Context(), o.ID)
	payments, _ := s.orders.Orders.PaymentsByOrder(r.Context(), o.ID)
	writeJSON(w, 200, map[string]any{"order": o, "invoices": invoices, "payments": payments})
}

func (s *Server) apiOrderPayments(w http.ResponseWriter, r *http.Request, store *domain.Store, orderID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		Method    string  `json:"method"`
		Amount    float64 `json:"amount"`
		Reference string  `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	o, err := s.orders.RecordPayment(r.Context(), store, orderID, req.Method, req.Amount, req.Reference)
	if err != nil {
		writeErr(w, err)
		return
	}
	metrics.PaymentsRecorded.WithLabelValues(req.Method).Inc()
	writeJSON(w, 200, o)
}

func (s *Server) apiOrderRequestPayment(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	ref, err := s.orders.RequestPayment(r.Context(), orderID, req.Phone)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "pending", "checkoutRequestId": ref})
}

// webhookMpesa finalizes STK pushes. Daraja retries on non-200, so business
// level failures still answer 200 after being logged.
func (s *Server) webhookMpesa(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	body, _ := io.ReadAll(io.LimitReader(r.Body, 65536))
	cb, err := mpesa.ParseCallback(body)
	if err != nil {
		log.Warn().Err(err).Msg("mpesa callback unparseable")
		w.WriteHeader(200)
		return
	}
	if cb.ResultCode != 0 {
		log.Info().Str("checkout_id", cb.CheckoutRequestID).Str("desc", cb.ResultDesc).Msg("mpesa push declined")
		w.WriteHeader(200)
		return
	}
	o, err := s.orders.FindByPaymentRef(r.Context(), cb.CheckoutRequestID)
	if err != nil {
		log.Error().Err(err).Str("checkout_id", cb.CheckoutRequestID).Msg("no order for mpesa callback")
		w.WriteHeader(200)
		return
	}
	store, err := s.stores.Get(r.Context(), o.StoreID)
	if err != nil {
		log.Error().Err(err).Msg("store lookup for mpesa callback")
		w.WriteHeader(200)
		return
	}
	amount := cb.Amount
	if amount <= 0 || amount > o.AmountDue {
		amount = o.AmountDue
	}
	if _, err := s.orders.RecordPayment(r.Context(), store, o.ID, "mpesa", amount, cb.Receipt); err != nil {
		log.Error().Err(err).Str("order", o.OrderNumber).Msg("recording mpesa payment")
		w.WriteHeader(200)
		return
	}
	metrics.PaymentsRecorded.WithLabelValues("mpesa").Inc()
	w.WriteHeader(200)
}

// apiOrdersExport streams the filtered order list as a spreadsheet.
func (s *Server) apiOrdersExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	f, err := orderFilterFromQuery(r, store.ID)
	if err != nil {
		writeJSON(w, 400, map[string]string{"error": err.Error()})
		return
	}
	f.PageSize = 5000
	list, _, err := s.orders.List(r.Context(), f)
	if err != nil {
		writeErr(w, err)
		return
	}

	x := excelize.NewFile()
	sheet := "Orders"
	x.SetSheetName(x.GetSheetName(0), sheet)
	headers := []string{"Order", "Date", "Customer", "Phone", "Channel", "Status", "Payment", "Items", "Subtotal", "Discount", "Adjustment", "Total", "Paid", "Due"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = x.SetCellValue(sheet, cell, h)
	}
	for row, o := range list {
		itemCount := 0
		for _, it := range o.Items {
			itemCount += it.Qty
		}
		vals := []any{
			o.OrderNumber,
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.CustomerName,
			o.CustomerPhone,
			o.Channel,
			string(o.Status),
			string(o.PaymentStatus),
			itemCount,
			o.Subtotal,
			o.DiscountTotal,
			o.Adjustment,
			o.TotalPayable,
			o.AmountPaid,
			o.AmountDue,
		}
		for col, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = x.SetCellValue(sheet, cell, v)
		}
	}

	name := fmt.Sprintf("orders-%s-%s.xlsx", store.Slug, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := x.Write(w); err != nil {
		log.Error().Err(err).Msg("xlsx write")
	}
}

func orderFilterFromQuery(r *http.Request, storeID uuid.UUID) (domain.OrderFilter, error) {
	qv := r.URL.Query()
	f := domain.OrderFilter{
		StoreID: storeID,
		Status:  domain.OrderStatus(qv.Get("status")),
		Channel: qv.Get("channel"),
	}
	f.Page, _ = strconv.Atoi(qv.Get("page"))
	if f.Page < 1 {
		f.Page = 1
	}
	if raw := qv.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, fmt.Errorf("bad from date")
		}
		f.From = &t
	}
	if raw := qv.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, fmt.Errorf("bad to date")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	return f, nil
}

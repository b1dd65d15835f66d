package httpserver

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sokolane/dukahub/internal/adapters/repo/memory"
	"github.com/sokolane/dukahub/internal/domain"
	"github.com/sokolane/dukahub/internal/usecase"
)

const testAdminKey = "test-admin-key"

func newTestServer(t *testing.T) (http.Handler, *memory.FinanceRepo) {
	t.Helper()
	t.Setenv("ADMIN_API_KEY", testAdminKey)
	t.Setenv("ADMIN_ALLOWED_EMAILS", "owner@example.com")
	t.Setenv("JWT_ADMIN_SECRET", "test-secret")

	fin := memory.NewFinanceRepo()
	customers := memory.NewCustomerRepo()
	storeUC := &usecase.StoreUC{Stores: memory.NewStoreRepo()}
	productUC := &usecase.ProductUC{Products: memory.NewProductRepo()}
	orderUC := &usecase.OrderUC{Orders: memory.NewOrderRepo(), Customers: customers, Finance: fin}
	financeUC := &usecase.FinanceUC{Finance: fin}
	return New(storeUC, productUC, orderUC, financeUC, customers, nil), fin
}

func do(t *testing.T, h http.Handler, method, path, token, storeID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if storeID != "" {
		req.Header.Set("X-Store-ID", storeID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"owner@example.com"}`))
	req.Header.Set("X-Admin-Key", testAdminKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createStore(t *testing.T, h http.Handler, token string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/stores", token, "", map[string]string{
		"name": "Duka Moja", "ownerEmail": "owner@example.com", "currency": "KES",
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var s domain.Store
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s.ID.String()
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/healthz", "", "", nil)
	require.Equal(t, 200, rec.Code)
}

func TestAdminLogin(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{}`))
	req.Header.Set("X-Admin-Key", "wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, 401, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"intruder@example.com"}`))
	req.Header.Set("X-Admin-Key", testAdminKey)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, 403, rec.Code)

	login(t, h)
}

func TestAPIRequiresAuth(t *testing.T) {
	h, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/products", "", "", nil)
	require.Equal(t, 401, rec.Code)
}

func TestStoreScopedEndpointsRequireStoreID(t *testing.T) {
	h, _ := newTestServer(t)
	token := login(t, h)
	rec := do(t, h, http.MethodGet, "/api/products", token, "", nil)
	require.Equal(t, 400, rec.Code)
}

func TestVariantGeneration(t *testing.T) {
	h, _ := newTestServer(t)
	token := login(t, h)
	storeID := createStore(t, h, token)

	rec := do(t, h, http.MethodPost, "/api/products", token, storeID, map[string]any{
		"name": "Tee", "price": 20.0, "quantity": 5,
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var p domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, "tee", p.Slug)

	// Generating before any options exist is the caller's error.
	rec = do(t, h, http.MethodPost, "/api/products/tee/variants/generate", token, storeID, nil)
	require.Equal(t, 422, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/products/tee/options", token, storeID, map[string]any{
		"name": "Size", "values": []string{"S", "M"}, "position": 0,
	})
	require.Equal(t, 200, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, "/api/products/tee/options", token, storeID, map[string]any{
		"name": "Color", "values": []string{"Red", "Blue"}, "position": 1,
	})
	require.Equal(t, 200, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/products/tee/variants/generate", token, storeID, nil)
	require.Equal(t, 200, rec.Code, rec.Body.String())
	var out struct {
		Items []domain.ProductVariant `json:"items"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, 4, out.Count)
	names := make([]string, len(out.Items))
	for i, v := range out.Items {
		names[i] = v.Name
		require.Equal(t, 20.0, v.Price)
		require.Equal(t, 5, v.Quantity)
	}
	require.Equal(t, []string{"S / Red", "S / Blue", "M / Red", "M / Blue"}, names)
}

func TestOrderPreview(t *testing.T) {
	h, _ := newTestServer(t)
	token := login(t, h)

	rec := do(t, h, http.MethodPost, "/api/orders/preview", token, "", map[string]any{
		"items":         []map[string]any{{"name": "Soap", "qty": 3, "unitPrice": 10.0}},
		"discountType":  "percent",
		"discountValue": 10.0,
		"adjustment":    2.0,
	})
	require.Equal(t, 200, rec.Code, rec.Body.String())
	var totals domain.Totals
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	require.Equal(t, 30.0, totals.Subtotal)
	require.InDelta(t, 3.0, totals.DiscountAmount, 1e-9)
	require.InDelta(t, 29.0, totals.TotalPayable, 1e-9)
	require.Equal(t, 3, totals.ItemCount)

	rec = do(t, h, http.MethodPost, "/api/orders/preview", token, "", map[string]any{
		"items":         []map[string]any{{"name": "Soap", "qty": 1, "unitPrice": 10.0}},
		"discountValue": -5.0,
	})
	require.Equal(t, 400, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/orders/preview", token, "", map[string]any{
		"items": []map[string]any{{"name": "Soap", "qty": 0, "unitPrice": 10.0}},
	})
	require.Equal(t, 400, rec.Code)
}

func TestOrderCreateAndPayment(t *testing.T) {
	h, _ := newTestServer(t)
	token := login(t, h)
	storeID := createStore(t, h, token)

	rec := do(t, h, http.MethodPost, "/api/orders", token, storeID, map[string]any{
		"customerName":  "Asha",
		"customerPhone": "0712000001",
		"items":         []map[string]any{{"name": "Soap", "qty": 2, "unitPrice": 50.0}},
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var o domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	require.Equal(t, 100.0, o.TotalPayable)
	require.Equal(t, "POS", o.Channel)
	require.Equal(t, domain.PaymentDue, o.PaymentStatus)

	// A client total that disagrees with the server computation is rejected.
	rec = do(t, h, http.MethodPost, "/api/orders", token, storeID, map[string]any{
		"customerName":  "Juma",
		"customerPhone": "0712000002",
		"items":         []map[string]any{{"name": "Soap", "qty": 1, "unitPrice": 100.0}},
		"total":         90.0,
	})
	require.Equal(t, 400, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/orders/"+o.ID.String()+"/payments", token, storeID, map[string]any{
		"method": "cash", "amount": 100.0,
	})
	require.Equal(t, 200, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	require.Equal(t, domain.PaymentComplete, o.PaymentStatus)
	require.Equal(t, 0.0, o.AmountDue)

	rec = do(t, h, http.MethodGet, "/api/orders/"+o.ID.String(), token, storeID, nil)
	require.Equal(t, 200, rec.Code)
	var detail struct {
		Order    domain.Order     `json:"order"`
		Invoices []domain.Invoice `json:"invoices"`
		Payments []domain.Payment `json:"payments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Equal(t, o.ID, detail.Order.ID)
	require.Len(t, detail.Invoices, 1)
	require.Len(t, detail.Payments, 1)
}

func TestMpesaWebhookAlwaysAcks(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/mpesa", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	declined := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_1","ResultCode":1032,"ResultDesc":"cancelled"}}}`
	req = httptest.NewRequest(http.MethodPost, "/webhooks/mpesa", bytes.NewBufferString(declined))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)
}

func TestMetricsEndpointSingleCompression(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	body := rec.Body.Bytes()
	if rec.Header().Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(bytes.NewReader(body))
		require.NoError(t, err)
		body, err = io.ReadAll(zr)
		require.NoError(t, err)
	}
	// A gzip magic number here would mean the payload was encoded twice.
	require.False(t, bytes.HasPrefix(body, []byte{0x1f, 0x8b}))
	require.Contains(t, string(body), "# HELP")
}

func TestPaymentMethodRenameKeepsCredentials(t *testing.T) {
	h, fin := newTestServer(t)
	token := login(t, h)
	storeID := createStore(t, h, token)

	rec := do(t, h, http.MethodPost, "/api/finance/payment-methods", token, storeID, map[string]any{
		"slug": "paystack", "name": "Paystack", "type": "CreditCard", "enabled": true,
		"coaCode": "1015", "apiKey": "sk_live_1", "webhookSecret": "whs_1",
	})
	require.Equal(t, 200, rec.Code, rec.Body.String())
	var m domain.PaymentMethodConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))

	// Rename the slug without resending the credentials.
	rec = do(t, h, http.MethodPut, "/api/finance/payment-methods", token, storeID, map[string]any{
		"id": m.ID.String(), "slug": "paystack-ke", "name": "Paystack Kenya",
		"type": "CreditCard", "enabled": true, "coaCode": "1015",
	})
	require.Equal(t, 200, rec.Code, rec.Body.String())

	stored, err := fin.FindMethod(context.Background(), uuid.MustParse(storeID), "paystack-ke")
	require.NoError(t, err)
	require.Equal(t, "sk_live_1", stored.APIKey)
	require.Equal(t, "whs_1", stored.WebhookSecret)
}

// Package httpserver exposes the dashboard API: products, variants, POS
// orders, finance and store settings, scoped per store.
package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/sokolane/dukahub/internal/domain"
	"github.com/sokolane/dukahub/internal/usecase"
)

type Server struct {
	mux      *http.ServeMux
	stores   *usecase.StoreUC
	products *usecase.ProductUC
	orders   *usecase.OrderUC
	finance  *usecase.FinanceUC

	customers domain.CustomerRepo
	oauthCfg  *oauth2.Config

	adminAllowed map[string]struct{}
	adminSecret  []byte
}

func New(st *usecase.StoreUC, p *usecase.ProductUC, o *usecase.OrderUC, f *usecase.FinanceUC, customers domain.CustomerRepo, oauthCfg *oauth2.Config) http.Handler {
	s := &Server{
		mux:       http.NewServeMux(),
		stores:    st,
		products:  p,
		orders:    o,
		finance:   f,
		customers: customers,
		oauthCfg:  oauthCfg,
	}

	allowed := map[string]struct{}{}
	if raw := os.Getenv("ADMIN_ALLOWED_EMAILS"); raw != "" {
		for _, e := range strings.Split(raw, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				allowed[e] = struct{}{}
			}
		}
	}
	s.adminAllowed = allowed
	sec := os.Getenv("JWT_ADMIN_SECRET")
	if sec == "" {
		sec = os.Getenv("SECRET_KEY")
	}
	if sec == "" {
		sec = "dev-admin-secret"
	}
	s.adminSecret = []byte(sec)

	s.routes()
	return Chain(s.mux,
		PublicRateLimit(map[string]int{
			"/api/orders":    30,
			"/webhooks/":     30,
			"/auth/":         20,
			"/api/ai/":       10,
			"/api/importer/": 10,
		}),
		RateLimit(120),
		SecurityHeaders,
		Gzip,
		Metrics,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})
	s.mux.Handle("/metrics", promhttp.Handler())

	s.mux.HandleFunc("/auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/google/callback", s.handleGoogleCallback)
	s.mux.HandleFunc("/auth/login", s.handleAdminLogin)

	s.mux.HandleFunc("/api/stores", s.apiStores)
	s.mux.HandleFunc("/api/settings", s.apiSettings)

	s.mux.HandleFunc("/api/products", s.apiProducts)
	s.mux.HandleFunc("/api/products/", s.apiProductBySlug)
	s.mux.HandleFunc("/api/categories", s.apiCategories)
	s.mux.HandleFunc("/api/sku-search", s.apiSKUSearch)
	s.mux.HandleFunc("/api/importer/product", s.apiImportProduct)
	s.mux.HandleFunc("/api/ai/description", s.apiGenerateDescription)

	s.mux.HandleFunc("/api/orders", s.apiOrders)
	s.mux.HandleFunc("/api/orders/preview", s.apiOrderPreview)
	s.mux.HandleFunc("/api/orders/export", s.apiOrdersExport)
	s.mux.HandleFunc("/api/orders/", s.apiOrderByID)
	s.mux.HandleFunc("/api/customers", s.apiCustomers)

	s.mux.HandleFunc("/api/finance/accounts", s.apiAccounts)
	s.mux.HandleFunc("/api/finance/accounts/", s.apiAccountByID)
	s.mux.HandleFunc("/api/finance/payment-methods", s.apiPaymentMethods)
	s.mux.HandleFunc("/api/finance/journal", s.apiJournal)

	s.mux.HandleFunc("/webhooks/mpesa", s.webhookMpesa)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain sentinels to status codes; anything unexpected is a
// logged 500 with a generic body.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, 404, map[string]string{"error": "not found"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, 409, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, 400, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNoOptions),
		errors.Is(err, domain.ErrOptionWithoutValues),
		errors.Is(err, domain.ErrTooManyVariants),
		errors.Is(err, domain.ErrUnbalancedEntry):
		writeJSON(w, 422, map[string]string{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, 500, map[string]string{"error": "internal"})
	}
}

// resolveStore loads the store named by the X-Store-ID header. Every
// store-scoped endpoint goes through here; a missing or unknown id is the
// caller's error.
func (s *Server) resolveStore(w http.ResponseWriter, r *http.Request) *domain.Store {
	raw := r.Header.Get("X-Store-ID")
	if raw == "" {
		raw = r.URL.Query().Get("store")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, 400, map[string]string{"error": "store id required"})
		return nil
	}
	store, err := s.stores.Get(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return nil
	}
	return store
}

// --- Auth ---

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		tok := strings.TrimSpace(auth[7:])
		if _, err := s.verifyAdminToken(tok); err == nil {
			return true
		}
	}
	if c, err := r.Cookie("admin_token"); err == nil && c.Value != "" {
		if _, err := s.verifyAdminToken(c.Value); err == nil {
			return true
		}
	}
	writeJSON(w, 401, map[string]string{"error": "unauthorized"})
	return false
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	cfgKey := os.Getenv("ADMIN_API_KEY")
	if cfgKey == "" {
		log.Error().Msg("ADMIN_API_KEY missing")
		http.Error(w, "config", 500)
		return
	}
	apiKey := r.Header.Get("X-Admin-Key")
	if apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfgKey)) != 1 {
		writeJSON(w, 401, map[string]string{"error": "unauthorized"})
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" && len(s.adminAllowed) == 1 {
		for k := range s.adminAllowed {
			email = k
		}
	}
	if _, ok := s.adminAllowed[email]; !ok {
		writeJSON(w, 403, map[string]string{"error": "forbidden"})
		return
	}
	tok, exp, err := s.issueAdminToken(email, 12*time.Hour)
	if err != nil {
		http.Error(w, "token", 500)
		return
	}
	writeJSON(w, 200, map[string]any{"token": tok, "exp": exp.Unix(), "email": email})
}

func (s *Server) issueAdminToken(email string, dur time.Duration) (string, time.Time, error) {
	head := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	exp := time.Now().Add(dur)
	claims := map[string]any{"sub": email, "email": email, "role": "admin", "exp": exp.Unix(), "iat": time.Now().Unix(), "iss": "dukahub"}
	b, err := json.Marshal(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	unsigned := head + "." + payload
	mac := hmac.New(sha256.New, s.adminSecret)
	mac.Write([]byte(unsigned))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return unsigned + "." + sig, exp, nil
}

func (s *Server) verifyAdminToken(tok string) (string, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return "", errors.New("malformed token")
	}
	unsigned := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, s.adminSecret)
	mac.Write([]byte(unsigned))
	want := mac.Sum(nil)
	got, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil || !hmac.Equal(want, got) {
		return "", errors.New("bad signature")
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", err
	}
	var claims struct {
		Email string `json:"email"`
		Role  string `json:"role"`
		Exp   int64  `json:"exp"`
	}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return "", err
	}
	if claims.Role != "admin" || claims.Email == "" {
		return "", errors.New("bad claims")
	}
	if time.Now().Unix() > claims.Exp {
		return "", errors.New("expired")
	}
	if len(s.adminAllowed) > 0 {
		if _, ok := s.adminAllowed[claims.Email]; !ok {
			return "", errors.New("not allowed")
		}
	}
	return claims.Email, nil
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth not configured", 500)
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", MaxAge: 300, HttpOnly: true})
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline), 302)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth not configured", 500)
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie("oauth_state")
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		http.Error(w, "state", 400)
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("oauth exchange")
		http.Error(w, "oauth", 400)
		return
	}
	client := s.oauthCfg.Client(r.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil || resp.StatusCode != 200 {
		log.Error().Err(err).Msg("userinfo")
		http.Error(w, "userinfo", 400)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	_ = json.Unmarshal(body, &info)
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		http.Error(w, "email", 400)
		return
	}
	if len(s.adminAllowed) > 0 {
		if _, ok := s.adminAllowed[email]; !ok {
			writeJSON(w, 403, map[string]string{"error": "forbidden"})
			return
		}
	}
	jwt, _, err := s.issueAdminToken(email, 12*time.Hour)
	if err != nil {
		http.Error(w, "token", 500)
		return
	}
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{Name: "admin_token", Value: jwt, Path: "/", MaxAge: 60 * 60 * 12, HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode})
	http.Redirect(w, r, "/", 302)
}

// --- Stores ---

func (s *Server) apiStores(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		owner := strings.TrimSpace(r.URL.Query().Get("owner"))
		list, err := s.stores.ListByOwner(r.Context(), owner)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list})
	case http.MethodPost:
		var req struct {
			Name       string `json:"name"`
			Slug       string `json:"slug"`
			OwnerEmail string `json:"ownerEmail"`
			Currency   string `json:"currency"`
			Country    string `json:"country"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		store := &domain.Store{
			Name:       req.Name,
			Slug:       req.Slug,
			OwnerEmail: strings.ToLower(strings.TrimSpace(req.OwnerEmail)),
			Currency:   req.Currency,
			Country:    req.Country,
		}
		if err := s.stores.Create(r.Context(), store); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, store)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiSettings(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, store)
	case http.MethodPatch:
		var req struct {
			Name         *string                `json:"name"`
			Slug         *string                `json:"slug"`
			LogoURL      *string                `json:"logoUrl"`
			Slogan       *string                `json:"slogan"`
			BrandColor   *string                `json:"brandColor"`
			Currency     *string                `json:"currency"`
			Country      *string                `json:"country"`
			Timezone     *string                `json:"timezone"`
			DateFormat   *string                `json:"dateFormat"`
			NumberFormat *string                `json:"numberFormat"`
			Taxes        []domain.TaxRate       `json:"taxes"`
			WhatsApp     *domain.WhatsAppConfig `json:"whatsapp"`
			AIProvider   *string                `json:"aiProvider"`
			AIModel      *string                `json:"aiModel"`
			AIOpenAIKey  *string                `json:"aiOpenaiKey"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		updated, err := s.stores.UpdateSettings(r.Context(), store.ID, usecase.SettingsPatch{
			Name: req.Name, Slug: req.Slug, LogoURL: req.LogoURL, Slogan: req.Slogan,
			BrandColor: req.BrandColor, Currency: req.Currency, Country: req.Country,
			Timezone: req.Timezone, DateFormat: req.DateFormat, NumberFormat: req.NumberFormat,
			Taxes: req.Taxes, WhatsApp: req.WhatsApp,
			AIProvider: req.AIProvider, AIModel: req.AIModel, AIOpenAIKey: req.AIOpenAIKey,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, updated)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiCustomers(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	list, err := s.customers.Search(r.Context(), store.ID, q, 10)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list})
}

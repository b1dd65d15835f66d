package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sokolane/dukahub/internal/domain"
	"github.com/sokolane/dukahub/internal/metrics"
)

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	switch r.Method {
	case http.MethodGet:
		qv := r.URL.Query()
		page, _ := strconv.Atoi(qv.Get("page"))
		if page < 1 {
			page = 1
		}
		f := domain.ProductFilter{
			StoreID:  store.ID,
			Category: qv.Get("category"),
			Query:    qv.Get("q"),
			Sort:     qv.Get("sort"),
			Page:     page,
		}
		if v := qv.Get("visible"); v != "" {
			b := v == "true" || v == "1"
			f.Visible = &b
		}
		list, total, err := s.products.List(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list, "total": total, "page": page})
	case http.MethodPost:
		var req productPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		p := &domain.Product{StoreID: store.ID}
		req.applyTo(p)
		if err := s.products.Create(r.Context(), p); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, p)
	default:
		http.Error(w, "method", 405)
	}
}

// productPayload carries create/update fields; pointers mark which fields a
// PATCH-style update actually sent.
type productPayload struct {
	Name             *string    `json:"name"`
	Category         *string    `json:"category"`
	Description      *string    `json:"description"`
	Price            *float64   `json:"price"`
	Quantity         *int       `json:"quantity"`
	Visibility       *bool      `json:"visibility"`
	SoldOut          *bool      `json:"soldOut"`
	TrackQuantity    *bool      `json:"trackQuantity"`
	ScheduledLaunch  *bool      `json:"scheduledLaunch"`
	LaunchAt         *time.Time `json:"launchAt"`
	DailyCapacity    *int       `json:"dailyCapacity"`
	MinOrderQuantity *int       `json:"minOrderQuantity"`
	MaxOrderQuantity *int       `json:"maxOrderQuantity"`
}

func (req productPayload) applyTo(p *domain.Product) {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.Visibility != nil {
		p.Visibility = *req.Visibility
	}
	if req.SoldOut != nil {
		p.SoldOut = *req.SoldOut
	}
	if req.TrackQuantity != nil {
		p.TrackQuantity = *req.TrackQuantity
	}
	if req.ScheduledLaunch != nil {
		p.ScheduledLaunch = *req.ScheduledLaunch
	}
	if req.LaunchAt != nil {
		p.LaunchAt = req.LaunchAt
	}
	if req.DailyCapacity != nil {
		p.DailyCapacity = *req.DailyCapacity
	}
	if req.MinOrderQuantity != nil {
		p.MinOrderQuantity = *req.MinOrderQuantity
	}
	if req.MaxOrderQuantity != nil {
		p.MaxOrderQuantity = *req.MaxOrderQuantity
	}
}

// apiProductBySlug handles /api/products/{slug} and its nested collections:
// /options[/{id}], /variants[/{id}], /variants/generate, /images.
func (s *Server) apiProductBySlug(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if parts[0] == "" {
		http.Error(w, "slug", 400)
		return
	}
	slug := parts[0]

	if len(parts) > 1 {
		switch parts[1] {
		case "options":
			s.apiProductOptions(w, r, store, slug, parts[2:])
		case "variants":
			s.apiProductVariants(w, r, store, slug, parts[2:])
		case "images":
			s.apiProductImages(w, r, store, slug)
		default:
			http.NotFound(w, r)
		}
		return
	}

	p, err := s.products.GetBySlug(r.Context(), store.ID, slug)
	if err != nil {
		writeErr(w, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, p)
	case http.MethodPut, http.MethodPatch:
		var req productPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		req.applyTo(p)
		if err := s.products.Update(r.Context(), p); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, p)
	case http.MethodDelete:
		if err := s.products.Delete(r.Context(), p.ID); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "ok"})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiProductOptions(w http.ResponseWriter, r *http.Request, store *domain.Store, slug string, rest []string) {
	p, err := s.products.GetBySlug(r.Context(), store.ID, slug)
	if err != nil {
		writeErr(w, err)
		return
	}
	if r.Method == http.MethodDelete && len(rest) == 1 {
		id, err := uuid.Parse(rest[0])
		if err != nil {
			http.Error(w, "option id", 400)
			return
		}
		if err := s.products.DeleteOption(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "ok"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, map[string]any{"items": p.Options})
	case http.MethodPost, http.MethodPut:
		var req struct {
			ID       string   `json:"id"`
			Name     string   `json:"name"`
			Values   []string `json:"values"`
			Position int      `json:"position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		opt := domain.ProductOption{ProductID: p.ID, Name: req.Name, Values: req.Values, Position: req.Position}
		if req.ID != "" {
			if id, err := uuid.Parse(req.ID); err == nil {
				opt.ID = id
			}
		}
		if err := s.products.SaveOption(r.Context(), &opt); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, opt)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiProductVariants(w http.ResponseWriter, r *http.Request, store *domain.Store, slug string, rest []string) {
	// POST /api/products/{slug}/variants/generate
	if len(rest) == 1 && rest[0] == "generate" {
		if r.Method != http.MethodPost {
			http.Error(w, "method", 405)
			return
		}
		variants, err := s.products.GenerateVariants(r.Context(), store.ID, slug)
		if err != nil {
			writeErr(w, err)
			return
		}
		metrics.VariantsGenerated.Observe(float64(len(variants)))
		writeJSON(w, 200, map[string]any{"items": variants, "count": len(variants)})
		return
	}

	p, err := s.products.GetBySlug(r.Context(), store.ID, slug)
	if err != nil {
		writeErr(w, err)
		return
	}
	if r.Method == http.MethodDelete && len(rest) == 1 {
		id, err := uuid.Parse(rest[0])
		if err != nil {
			http.Error(w, "variant id", 400)
			return
		}
		if err := s.products.DeleteVariant(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "ok"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		list, err := s.products.ListVariants(r.Context(), p.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list})
	case http.MethodPost, http.MethodPut:
		var req struct {
			ID       string   `json:"id"`
			Name     string   `json:"name"`
			SKU      string   `json:"sku"`
			Price    *float64 `json:"price"`
			Quantity *int     `json:"quantity"`
			ImageURL string   `json:"imageUrl"`
			SoldOut  *bool    `json:"soldOut"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		v := domain.ProductVariant{ProductID: p.ID, Name: req.Name, SKU: strings.TrimSpace(req.SKU), ImageURL: req.ImageURL, Visibility: true}
		if req.ID != "" {
			if id, err := uuid.Parse(req.ID); err == nil {
				v.ID = id
			}
		}
		if req.Price != nil {
			v.Price = *req.Price
		}
		if req.Quantity != nil {
			v.Quantity = *req.Quantity
		}
		if req.SoldOut != nil {
			v.SoldOut = *req.SoldOut
		}
		if v.Price < 0 || v.Quantity < 0 {
			http.Error(w, "invalid variant", 400)
			return
		}
		if err := s.products.SaveVariant(r.Context(), &v); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, v)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiProductImages(w http.ResponseWriter, r *http.Request, store *domain.Store, slug string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	p, err := s.products.GetBySlug(r.Context(), store.ID, slug)
	if err != nil {
		writeErr(w, err)
		return
	}
	var req struct {
		Images []struct {
			URL string `json:"url"`
			Alt string `json:"alt"`
		} `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Images) == 0 {
		http.Error(w, "json", 400)
		return
	}
	imgs := make([]domain.ProductImage, 0, len(req.Images))
	for _, im := range req.Images {
		if strings.TrimSpace(im.URL) == "" {
			continue
		}
		alt := im.Alt
		if alt == "" {
			alt = p.Name
		}
		imgs = append(imgs, domain.ProductImage{ID: uuid.New(), ProductID: p.ID, URL: im.URL, Alt: alt})
	}
	if err := s.products.AddImages(r.Context(), p.ID, imgs); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok", "added": len(imgs)})
}

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	cats, err := s.products.Categories(r.Context(), store.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": cats})
}

func (s *Server) apiSKUSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	sku := r.URL.Query().Get("sku")
	p, v, err := s.products.SearchBySKU(r.Context(), store.ID, sku)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"product": p, "variant": v})
}

func (s *Server) apiImportProduct(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "json", 400)
		return
	}
	imported, err := s.products.ImportFromURL(r.Context(), req.URL)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, imported)
}

func (s *Server) apiGenerateDescription(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Hints    string `json:"hints"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	text, err := s.products.GenerateDescription(r.Context(), req.Name, req.Category, req.Hints)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"description": text})
}

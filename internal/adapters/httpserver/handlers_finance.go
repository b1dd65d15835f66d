package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sokolane/dukahub/internal/domain"
)

func (s *Server) apiAccounts(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list, err := s.finance.ListAccounts(r.Context(), store.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list})
	case http.MethodPost:
		var req struct {
			Code        string `json:"code"`
			Name        string `json:"name"`
			Type        string `json:"type"`
			Category    string `json:"category"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		a := &domain.Account{
			StoreID:     store.ID,
			Code:        strings.TrimSpace(req.Code),
			Name:        strings.TrimSpace(req.Name),
			Type:        domain.AccountType(req.Type),
			Category:    req.Category,
			Description: req.Description,
		}
		if err := s.finance.CreateAccount(r.Context(), a); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, a)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiAccountByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		http.Error(w, "method", 405)
		return
	}
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/finance/accounts/"))
	if err != nil {
		http.Error(w, "account id", 400)
		return
	}
	var req struct {
		Code        *string `json:"code"`
		Name        *string `json:"name"`
		Type        *string `json:"type"`
		Category    *string `json:"category"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	accounts, err := s.finance.ListAccounts(r.Context(), store.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	var a *domain.Account
	for i := range accounts {
		if accounts[i].ID == id {
			a = &accounts[i]
			break
		}
	}
	if a == nil {
		writeErr(w, domain.ErrNotFound)
		return
	}
	if req.Code != nil {
		a.Code = strings.TrimSpace(*req.Code)
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Type != nil {
		a.Type = domain.AccountType(*req.Type)
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	if err := s.finance.UpdateAccount(r.Context(), a); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, a)
}

func (s *Server) apiPaymentMethods(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list, err := s.finance.ListMethods(r.Context(), store.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list})
	case http.MethodPost, http.MethodPut:
		var req struct {
			ID            string `json:"id"`
			Slug          string `json:"slug"`
			Name          string `json:"name"`
			Type          string `json:"type"`
			Gateway       string `json:"gateway"`
			Enabled       bool   `json:"enabled"`
			COACode       string `json:"coaCode"`
			Description   string `json:"description"`
			Icon          string `json:"icon"`
			SortOrder     int    `json:"sortOrder"`
			APIKey        string `json:"apiKey"`
			WebhookSecret string `json:"webhookSecret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		m := &domain.PaymentMethodConfig{
			StoreID:     store.ID,
			Slug:        req.Slug,
			Name:        req.Name,
			Type:        domain.PaymentMethodType(req.Type),
			Gateway:     req.Gateway,
			Enabled:     req.Enabled,
			COACode:     req.COACode,
			Description: req.Description,
			Icon:        req.Icon,
			SortOrder:   req.SortOrder,
		}
		if req.ID != "" {
			if id, err := uuid.Parse(req.ID); err == nil {
				m.ID = id
			}
		}
		// Credentials are write-only: apply when sent, keep stored values
		// otherwise. Lookup is by id so a slug rename still finds the row.
		if m.ID != uuid.Nil {
			if list, err := s.finance.Finance.ListMethods(r.Context(), store.ID); err == nil {
				for i := range list {
					if list[i].ID == m.ID {
						m.APIKey = list[i].APIKey
						m.WebhookSecret = list[i].WebhookSecret
						break
					}
				}
			}
		}
		if req.APIKey != "" {
			m.APIKey = req.APIKey
		}
		if req.WebhookSecret != "" {
			m.WebhookSecret = req.WebhookSecret
		}
		if err := s.finance.SaveMethod(r.Context(), m); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, m)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiJournal(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	store := s.resolveStore(w, r)
	if store == nil {
		return
	}
	switch r.Method {
	case http.MethodGet:
		ref := r.URL.Query().Get("reference")
		list, err := s.finance.ListEntries(r.Context(), store.ID, ref)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list})
	case http.MethodPost:
		var req struct {
			Memo      string `json:"memo"`
			Reference string `json:"reference"`
			Lines     []struct {
				AccountCode string  `json:"accountCode"`
				Debit       float64 `json:"debit"`
				Credit      float64 `json:"credit"`
			} `json:"lines"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		lines := make([]domain.JournalLine, 0, len(req.Lines))
		for _, l := range req.Lines {
			lines = append(lines, domain.JournalLine{AccountCode: l.AccountCode, Debit: l.Debit, Credit: l.Credit})
		}
		entry, err := s.finance.PostEntry(r.Context(), store.ID, req.Memo, req.Reference, lines)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, entry)
	default:
		http.Error(w, "method", 405)
	}
}

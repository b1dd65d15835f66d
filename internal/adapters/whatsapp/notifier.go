// Package whatsapp sends order lifecycle messages through the WhatsApp
// Cloud API using the per-store templates configured in settings.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sokolane/dukahub/internal/domain"
)

const graphBase = "https://graph.facebook.com/v19.0"

type Notifier struct {
	accessToken string
	httpClient  *http.Client
}

func NewNotifier(accessToken string) *Notifier {
	return &Notifier{accessToken: accessToken, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

const defaultOrderTemplate = "Hi {{customerName}}, we received your order {{orderNumber}} for {{total}}. We'll confirm payment shortly."
const defaultPaidTemplate = "Hi {{customerName}}, payment for {{orderNumber}} is confirmed. Thank you!"

func (n *Notifier) OrderCreated(ctx context.Context, store *domain.Store, o *domain.Order) error {
	tpl := store.WhatsApp.OrderTemplate
	if tpl == "" {
		tpl = defaultOrderTemplate
	}
	return n.send(ctx, store, o, tpl)
}

func (n *Notifier) OrderPaid(ctx context.Context, store *domain.Store, o *domain.Order) error {
	tpl := store.WhatsApp.PaidTemplate
	if tpl == "" {
		tpl = defaultPaidTemplate
	}
	return n.send(ctx, store, o, tpl)
}

func (n *Notifier) send(ctx context.Context, store *domain.Store, o *domain.Order, tpl string) error {
	if store == nil || !store.WhatsApp.Enabled {
		return nil
	}
	if n.accessToken == "" || store.WhatsApp.PhoneNumberID == "" {
		return errors.New("whatsapp not configured (WHATSAPP_ACCESS_TOKEN / phoneNumberId)")
	}
	to := strings.TrimPrefix(strings.TrimSpace(o.CustomerPhone), "+")
	if to == "" {
		return nil
	}

	body, _ := json.Marshal(map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": RenderTemplate(tpl, store, o)},
	})
	url := fmt.Sprintf("%s/%s/messages", graphBase, store.WhatsApp.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.accessToken)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp send failed: %s: %s", resp.Status, string(b))
	}
	log.Debug().Str("order", o.OrderNumber).Msg("whatsapp message sent")
	return nil
}

// RenderTemplate fills the {{customerName}}, {{orderNumber}} and {{total}}
// placeholders a merchant can use in their message templates.
func RenderTemplate(tpl string, store *domain.Store, o *domain.Order) string {
	r := strings.NewReplacer(
		"{{customerName}}", o.CustomerName,
		"{{orderNumber}}", o.OrderNumber,
		"{{total}}", fmt.Sprintf("%s %.2f", store.Currency, o.TotalPayable),
		"{{storeName}}", store.Name,
	)
	return r.Replace(tpl)
}

// Package mpesa implements the Safaricom Daraja STK push flow behind the
// domain.PaymentGateway port.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sokolane/dukahub/internal/domain"
)

const (
	sandboxBase = "https://sandbox.safaricom.co.ke"
	liveBase    = "https://api.safaricom.co.ke"
)

type Gateway struct {
	consumerKey    string
	consumerSecret string
	shortcode      string
	passkey        string
	callbackURL    string
	baseURL        string
	httpClient     *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewGateway(consumerKey, consumerSecret, shortcode, passkey, callbackURL string, live bool) *Gateway {
	base := sandboxBase
	if live {
		base = liveBase
	}
	return &Gateway{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		shortcode:      shortcode,
		passkey:        passkey,
		callbackURL:    callbackURL,
		baseURL:        base,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

type stkPushReq struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResp struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ErrorMessage        string `json:"errorMessage"`
}

// RequestPayment fires an STK push for the order's balance due and returns
// the checkout request id used to correlate the callback.
func (g *Gateway) RequestPayment(ctx context.Context, o *domain.Order, phone string) (string, error) {
	if g.consumerKey == "" || g.consumerSecret == "" {
		return "", errors.New("mpesa credentials missing (MPESA_CONSUMER_KEY / MPESA_CONSUMER_SECRET)")
	}
	if o == nil {
		return "", errors.New("nil order")
	}
	msisdn := normalizeMSISDN(phone)
	if msisdn == "" {
		return "", fmt.Errorf("%w: invalid msisdn", domain.ErrValidation)
	}

	token, err := g.token(ctx)
	if err != nil {
		return "", err
	}

	ts := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(g.shortcode + g.passkey + ts))
	// Daraja takes whole currency units.
	amount := int64(math.Ceil(o.AmountDue))
	if amount < 1 {
		return "", fmt.Errorf("%w: nothing due", domain.ErrValidation)
	}

	body, _ := json.Marshal(stkPushReq{
		BusinessShortCode: g.shortcode,
		Password:          password,
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            msisdn,
		PartyB:            g.shortcode,
		PhoneNumber:       msisdn,
		CallBackURL:       g.callbackURL,
		AccountReference:  o.OrderNumber,
		TransactionDesc:   "Payment for " + o.OrderNumber,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out stkPushResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK || out.ResponseCode != "0" {
		msg := out.ErrorMessage
		if msg == "" {
			msg = out.ResponseDescription
		}
		return "", fmt.Errorf("stk push rejected: %s", msg)
	}
	return out.CheckoutRequestID, nil
}

func (g *Gateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.accessToken != "" && time.Now().Before(g.tokenExpiry) {
		return g.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.consumerKey, g.consumerSecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("mpesa oauth failed: %s: %s", resp.Status, string(b))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", errors.New("mpesa oauth returned empty token")
	}
	g.accessToken = tok.AccessToken
	g.tokenExpiry = time.Now().Add(50 * time.Minute)
	return g.accessToken, nil
}

// Callback is the subset of the STK callback payload the webhook needs.
type Callback struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Amount            float64
	Receipt           string
	AccountReference  string
}

// ParseCallback unpacks Daraja's nested callback envelope.
func ParseCallback(body []byte) (*Callback, error) {
	var env struct {
		Body struct {
			StkCallback struct {
				CheckoutRequestID string `json:"CheckoutRequestID"`
				ResultCode        int    `json:"ResultCode"`
				ResultDesc        string `json:"ResultDesc"`
				CallbackMetadata  struct {
					Item []struct {
						Name  string `json:"Name"`
						Value any    `json:"Value"`
					} `json:"Item"`
				} `json:"CallbackMetadata"`
			} `json:"stkCallback"`
		} `json:"Body"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	cb := &Callback{
		CheckoutRequestID: env.Body.StkCallback.CheckoutRequestID,
		ResultCode:        env.Body.StkCallback.ResultCode,
		ResultDesc:        env.Body.StkCallback.ResultDesc,
	}
	if cb.CheckoutRequestID == "" {
		return nil, errors.New("callback missing CheckoutRequestID")
	}
	for _, item := range env.Body.StkCallback.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			if f, ok := item.Value.(float64); ok {
				cb.Amount = f
			}
		case "MpesaReceiptNumber":
			if s, ok := item.Value.(string); ok {
				cb.Receipt = s
			}
		case "AccountReference":
			if s, ok := item.Value.(string); ok {
				cb.AccountReference = s
			}
		}
	}
	return cb, nil
}

func normalizeMSISDN(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, "+")
	p = strings.ReplaceAll(p, " ", "")
	if strings.HasPrefix(p, "0") && len(p) == 10 {
		p = "254" + p[1:]
	}
	if len(p) < 10 {
		return ""
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return p
}

// internal/domain/settlement/card.go
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// CardAdapter creates hosted checkout sessions on the card-network gateway.
// The customer is redirected to the session URL; the gateway reports the
// outcome via the payment-status webhook.
type CardAdapter struct {
	keyID      string
	keySecret  string
	baseURL    string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

// NewCardAdapter creates a card-network settlement adapter
func NewCardAdapter(cfg *config.Config, httpClient *http.Client) *CardAdapter {
	return &CardAdapter{
		keyID:      cfg.Payments.CardAPIKey,
		keySecret:  cfg.Payments.CardAPISecret,
		baseURL:    cfg.Payments.CardBaseURL,
		successURL: cfg.Payments.SuccessURL,
		cancelURL:  cfg.Payments.CancelURL,
		httpClient: httpClient,
	}
}

// sessionLineItem is the gateway's line item shape
type sessionLineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
	Recurring  bool   `json:"recurring,omitempty"`
	Interval   string `json:"interval,omitempty"`
}

// shippingOption is the gateway's carrier shipping shape, usable only for
// carts without subscription items
type shippingOption struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

type createSessionRequest struct {
	Reference      string            `json:"reference"`
	CustomerEmail  string            `json:"customer_email"`
	Currency       string            `json:"currency"`
	LineItems      []sessionLineItem `json:"line_items"`
	ShippingOption *shippingOption   `json:"shipping_option,omitempty"`
	SuccessURL     string            `json:"success_url"`
	CancelURL      string            `json:"cancel_url"`
	TestMode       bool              `json:"test_mode,omitempty"`
}

type createSessionResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// Settle creates a checkout session. Cart items, add-ons and the processing
// fee are distinct priced line items. Shipping rides as a carrier option for
// plain carts; carts mixing subscription and one-time items get it as a
// plain line item because the gateway rejects shipping options on recurring
// sessions.
func (a *CardAdapter) Settle(ctx context.Context, req *Request) (*Artifact, error) {
	sessionReq := createSessionRequest{
		Reference:     strconv.FormatInt(req.OrderNumber, 10),
		CustomerEmail: req.Email,
		Currency:      req.Currency,
		SuccessURL:    a.successURL,
		CancelURL:     a.cancelURL,
		TestMode:      req.TestOrder,
	}

	for _, item := range req.Items {
		sessionReq.LineItems = append(sessionReq.LineItems, sessionLineItem{
			Name:       item.Name,
			UnitAmount: item.Amount,
			Quantity:   item.Quantity,
			Recurring:  item.Recurring,
			Interval:   item.Interval,
		})
	}

	if req.ShippingAmount > 0 || req.ShippingName != "" {
		if req.HasSubscription {
			sessionReq.LineItems = append(sessionReq.LineItems, sessionLineItem{
				Name:       req.ShippingName,
				UnitAmount: req.ShippingAmount,
				Quantity:   1,
			})
		} else {
			sessionReq.ShippingOption = &shippingOption{
				Name:   req.ShippingName,
				Amount: req.ShippingAmount,
			}
		}
	}

	body, err := a.call(ctx, http.MethodPost, "/checkout/sessions", sessionReq)
	if err != nil {
		return nil, &Error{Method: order.PaymentMethodCard, Err: err}
	}

	var session createSessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, &Error{Method: order.PaymentMethodCard, Err: fmt.Errorf("failed to parse session response: %w", err)}
	}
	if session.ID == "" || session.URL == "" {
		return nil, &Error{Method: order.PaymentMethodCard, Err: fmt.Errorf("gateway returned incomplete session")}
	}

	return &Artifact{
		Reference:     session.ID,
		RedirectURL:   session.URL,
		PaymentStatus: order.PaymentStatusPending,
	}, nil
}

// call makes an authenticated JSON request against the gateway API
func (a *CardAdapter) call(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	var reqBody []byte
	var err error
	if payload != nil {
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(a.keyID, a.keySecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/clothy/internal/models"
)

const (
	sandboxSessionURL    = "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"
	liveSessionURL       = "https://securepay.sslcommerz.com/gwprocess/v4/api.php"
	sandboxValidationURL = "https://sandbox.sslcommerz.com/validator/api/validationserverAPI.php"
	liveValidationURL    = "https://securepay.sslcommerz.com/validator/api/validationserverAPI.php"
)

// SSLCommerzService talks to the SSLCommerz hosted-checkout gateway.
type SSLCommerzService struct {
	storeID       string
	storePassword string
	sessionURL    string
	validationURL string
	client        *http.Client
}

// NewSSLCommerzService builds a gateway client against the sandbox or live
// environment.
func NewSSLCommerzService(storeID, storePassword string, live bool) *SSLCommerzService {
	svc := &SSLCommerzService{
		storeID:       storeID,
		storePassword: storePassword,
		sessionURL:    sandboxSessionURL,
		validationURL: sandboxValidationURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	if live {
		svc.sessionURL = liveSessionURL
		svc.validationURL = liveValidationURL
	}
	return svc
}

// SessionRequest describes one payment session to initialize.
type SessionRequest struct {
	Amount        float64
	Currency      string
	TransactionID string
	SuccessURL    string
	FailURL       string
	CancelURL     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       models.ShippingAddress
}

// SessionResponse is the gateway's answer to a session-init call.
type SessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// InitSession registers a payment session and returns the hosted checkout
// page URL.
func (s *SSLCommerzService) InitSession(ctx context.Context, req SessionRequest) (*SessionResponse, error) {
	form := url.Values{}
	form.Set("store_id", s.storeID)
	form.Set("store_passwd", s.storePassword)
	form.Set("total_amount", fmt.Sprintf("%.2f", req.Amount))
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TransactionID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("shipping_method", "Courier")
	form.Set("product_name", "Clothing Items")
	form.Set("product_category", "Clothing")
	form.Set("product_profile", "general")
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_phone", req.CustomerPhone)
	form.Set("cus_add1", req.Address.Street)
	form.Set("cus_city", req.Address.City)
	form.Set("cus_state", req.Address.State)
	form.Set("cus_postcode", req.Address.PostalCode)
	form.Set("cus_country", req.Address.Country)
	form.Set("ship_name", req.CustomerName)
	form.Set("ship_add1", req.Address.Street)
	form.Set("ship_city", req.Address.City)
	form.Set("ship_state", req.Address.State)
	form.Set("ship_postcode", req.Address.PostalCode)
	form.Set("ship_country", req.Address.Country)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sessionURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz session request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sslcommerz session returned status %d", resp.StatusCode)
	}

	var session SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("sslcommerz session decode: %w", err)
	}

	return &session, nil
}

// ValidationResult is the outcome of a server-side transaction check. Raw
// holds the gateway's full response for record keeping.
type ValidationResult struct {
	Status        string `json:"status"`
	TransactionID string `json:"tran_id"`
	Amount        string `json:"amount"`
	CardType      string `json:"card_type"`
	BankTranID    string `json:"bank_tran_id"`
	Raw           []byte `json:"-"`
}

// Valid reports whether the gateway confirmed the transaction. Only the
// literal VALID status counts; VALIDATED and everything else is rejected.
func (r *ValidationResult) Valid() bool {
	return r.Status == "VALID"
}

// ValidateTransaction asks the gateway's validation API whether the
// transaction identified by valID actually completed. Callback payloads are
// never trusted on their own.
func (s *SSLCommerzService) ValidateTransaction(ctx context.Context, valID string) (*ValidationResult, error) {
	query := url.Values{}
	query.Set("val_id", valID)
	query.Set("store_id", s.storeID)
	query.Set("store_passwd", s.storePassword)
	query.Set("v", "1")
	query.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.validationURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz validation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sslcommerz validation returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result ValidationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("sslcommerz validation decode: %w", err)
	}
	result.Raw = body

	return &result, nil
}

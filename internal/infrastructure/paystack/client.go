// Package paystack wraps the pieces of the Paystack API this service uses:
// the hosted verify-transaction endpoint and webhook signature validation.
package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.paystack.co"

	// SignatureHeader carries the HMAC-SHA512 of the raw webhook body,
	// keyed with the account's secret key.
	SignatureHeader = "x-paystack-signature"
)

type Client struct {
	SecretKey string
	BaseURL   string
	HTTP      *http.Client
}

// TransactionData is the subset of the verify response this service acts on.
// Amount is in kobo.
type TransactionData struct {
	Status          string    `json:"status"`
	Reference       string    `json:"reference"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	GatewayResponse string    `json:"gateway_response"`
	Channel         string    `json:"channel"`
	PaidAt          time.Time `json:"paid_at"`
}

type verifyResp struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    TransactionData `json:"data"`
}

// VerifyTransaction calls GET /transaction/verify/:reference with the secret
// key. The returned data is authoritative for the transaction's own status;
// callers still own the amount/currency cross-check against the local order.
func (c *Client) VerifyTransaction(ctx context.Context, ref string) (*TransactionData, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/transaction/verify/"+ref, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paystack verify: unexpected status %d", resp.StatusCode)
	}
	var out verifyResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack verify: %s", out.Message)
	}
	return &out.Data, nil
}

// Sign computes the webhook signature Paystack would send for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature recomputes the signature over the exact raw body and
// compares in constant time.
func ValidSignature(secret string, body []byte, signature string) bool {
	if strings.TrimSpace(signature) == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// WebhookEvent is the envelope Paystack posts to the webhook URL.
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  TransactionData `json:"data"`
}

// EventChargeSuccess is the only event type that can mark an order paid.
const EventChargeSuccess = "charge.success"

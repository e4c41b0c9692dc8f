// Package cardgate implements the regional card gateway client: redirect
// payment requests, 3-D Secure verify, card-on-file charges and status
// inquiry.
package cardgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"aurum-payment-api/models"
	"aurum-payment-api/types"
)

const (
	SandboxEndpoint    = "https://sandbox.cardgate.example/api/v2"
	ProductionEndpoint = "https://pay.cardgate.example/api/v2"
	RequestTimeout     = 30 * time.Second
)

type Client struct {
	merchantID  string
	terminalID  string
	apiKey      string
	environment string
	baseURL     string // overrides environment endpoints when set (tests)
	client      *http.Client
}

func NewClient(merchantID, terminalID, apiKey, environment string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		merchantID:  merchantID,
		terminalID:  terminalID,
		apiKey:      apiKey,
		environment: environment,
		client: &http.Client{
			Timeout:   RequestTimeout,
			Transport: transport,
		},
	}
}

// WithBaseURL points the client at an explicit endpoint. Used by tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

func (c *Client) getEndpoint() string {
	if c.baseURL != "" {
		return c.baseURL
	}
	if c.environment == "production" {
		return ProductionEndpoint
	}
	return SandboxEndpoint
}

func (c *Client) getAuth() merchantAuth {
	return merchantAuth{
		MerchantID: c.merchantID,
		TerminalID: c.terminalID,
	}
}

// post sends a JSON request and decodes the JSON response into out. The
// gateway occasionally prefixes responses with a UTF-8 BOM.
func (c *Client) post(path string, payload, out interface{}) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling request: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.getEndpoint()+path, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	cleanBody := strings.TrimPrefix(string(respBody), "\uFEFF")

	if err := json.Unmarshal([]byte(cleanBody), out); err != nil {
		return fmt.Errorf("error decoding response: %v, response body: %s", err, cleanBody)
	}

	return nil
}

// RequestPayment registers the top-up with the gateway and returns the token
// plus the 3DS redirect URL for the cardholder.
func (c *Client) RequestPayment(reference, amount, callbackURL string, saveCard bool, payer *types.PayerInfo) (*PaymentInit, error) {
	startTime := time.Now()

	req := paymentRequest{
		Auth:        c.getAuth(),
		Amount:      amount,
		InvoiceRef:  reference,
		CallbackURL: callbackURL,
		SaveCard:    saveCard,
		Payer:       payer,
	}

	log.Printf("Sending payment request to CardGate for topup: %s", reference)

	var resp paymentResponse
	if err := c.post("/payment/request", req, &resp); err != nil {
		return nil, err
	}

	log.Printf("CardGate payment request answered in %v for topup: %s",
		time.Since(startTime), reference)

	if resp.ResultCode != ResultOK {
		return nil, fmt.Errorf("payment request rejected: %s (code %d)", resp.Message, resp.ResultCode)
	}
	if resp.Token == "" || resp.RedirectURL == "" {
		return nil, fmt.Errorf("payment request returned no token or redirect URL")
	}

	return &PaymentInit{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// Verify confirms a 3DS-completed payment. A repeated verify for an already
// settled token comes back as a duplicate success, mirroring how the gateway
// reports it.
func (c *Client) Verify(token string) (*models.VerifyResult, error) {
	startTime := time.Now()

	req := verifyRequest{
		Auth:  c.getAuth(),
		Token: token,
	}

	var resp verifyResponse
	if err := c.post("/payment/verify", req, &resp); err != nil {
		return nil, err
	}

	log.Printf("CardGate verify answered in %v for token: %s", time.Since(startTime), token)

	switch resp.ResultCode {
	case ResultOK:
		return &models.VerifyResult{
			Success:    true,
			GatewayRef: resp.RRN,
			MaskedPAN:  resp.MaskedPAN,
			CardToken:  resp.CardToken,
			Message:    resp.Message,
		}, nil
	case ResultAlreadyVerified:
		log.Printf("Detected duplicate verify for token %s (RRN %s)", token, resp.RRN)
		return &models.VerifyResult{
			Success:     true,
			GatewayRef:  resp.RRN,
			MaskedPAN:   resp.MaskedPAN,
			Message:     "Transaction previously verified",
			IsDuplicate: true,
		}, nil
	default:
		return &models.VerifyResult{
			Success:     false,
			FailureCode: fmt.Sprintf("%d", resp.ResultCode),
			Message:     resp.Message,
		}, nil
	}
}

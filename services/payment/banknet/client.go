// Package banknet implements the bank payment network client: direct-debit
// mandates and mandate debits for recurring billing.
package banknet

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
)

const (
	SandboxEndpoint    = "https://sandbox.banknet.example/v1"
	ProductionEndpoint = "https://api.banknet.example/v1"
	RequestTimeout     = 30 * time.Second
)

type Client struct {
	clientID     string
	clientSecret string
	environment  string
	baseURL      string
	client       *http.Client
}

func NewClient(clientID, clientSecret, environment string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		environment:  environment,
		client: &http.Client{
			Timeout: RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
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

func (c *Client) getAuth() clientAuth {
	return clientAuth{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
	}
}

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

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error decoding response: %v, response body: %s", err, string(respBody))
	}

	return nil
}

// CreateMandate starts the mandate authorization flow for a business. The
// mandate only becomes usable once the BankNet webhook reports it ACTIVE.
func (c *Client) CreateMandate(customerRef, callbackURL string) (*MandateInit, error) {
	req := mandateRequest{
		Auth:        c.getAuth(),
		CustomerRef: customerRef,
		CallbackURL: callbackURL,
	}

	log.Printf("Requesting BankNet mandate for customer: %s", customerRef)

	var resp mandateResponse
	if err := c.post("/mandates", req, &resp); err != nil {
		return nil, err
	}

	if resp.Status != MandatePending && resp.Status != MandateActive {
		return nil, fmt.Errorf("mandate creation rejected: %s (status %s)", resp.Message, resp.Status)
	}
	if resp.MandateRef == "" {
		return nil, fmt.Errorf("mandate creation returned no mandate reference")
	}

	return &MandateInit{
		MandateRef:  resp.MandateRef,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// Debit pulls a recurring charge through an active mandate.
func (c *Client) Debit(mandateRef, amount, invoiceRef string) (*models.ChargeResult, error) {
	startTime := time.Now()

	req := debitRequest{
		Auth:       c.getAuth(),
		MandateRef: mandateRef,
		Amount:     amount,
		InvoiceRef: invoiceRef,
	}

	log.Printf("Sending BankNet debit for invoice: %s", invoiceRef)

	var resp debitResponse
	if err := c.post("/debits", req, &resp); err != nil {
		return nil, err
	}

	log.Printf("BankNet debit answered in %v for invoice: %s",
		time.Since(startTime), invoiceRef)

	if resp.Status != StatusSucceeded {
		return &models.ChargeResult{
			Success:     false,
			FailureCode: resp.Status,
			Message:     resp.Message,
		}, nil
	}

	return &models.ChargeResult{
		Success:    true,
		GatewayRef: resp.DebitRef,
		Message:    resp.Message,
	}, nil
}

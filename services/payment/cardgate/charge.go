package cardgate

import (
	"fmt"
	"log"
	"time"

	"aurum-payment-api/models"
)

// ChargeToken performs a card-on-file charge against a stored card token.
// Used by recurring subscription billing; no 3DS challenge is involved.
func (c *Client) ChargeToken(cardToken, amount, invoiceRef string) (*models.ChargeResult, error) {
	startTime := time.Now()

	req := chargeRequest{
		Auth:       c.getAuth(),
		CardToken:  cardToken,
		Amount:     amount,
		InvoiceRef: invoiceRef,
	}

	log.Printf("Sending card-on-file charge to CardGate for invoice: %s", invoiceRef)

	var resp chargeResponse
	if err := c.post("/payment/charge", req, &resp); err != nil {
		return nil, err
	}

	log.Printf("CardGate charge answered in %v for invoice: %s",
		time.Since(startTime), invoiceRef)

	if resp.ResultCode != ResultOK {
		return &models.ChargeResult{
			Success:     false,
			FailureCode: fmt.Sprintf("%d", resp.ResultCode),
			Message:     resp.Message,
		}, nil
	}

	return &models.ChargeResult{
		Success:    true,
		GatewayRef: resp.RRN,
		Message:    resp.Message,
	}, nil
}

// Inquire asks the gateway what actually happened to a token. The
// reconciliation poller uses this for top-ups stuck in PENDING.
func (c *Client) Inquire(token string) (*InquiryResult, error) {
	req := inquiryRequest{
		Auth:  c.getAuth(),
		Token: token,
	}

	var resp inquiryResponse
	if err := c.post("/payment/inquiry", req, &resp); err != nil {
		return nil, err
	}

	if resp.ResultCode == ResultNotFound {
		// The gateway never saw the token through 3DS; treat as failed.
		return &InquiryResult{State: InquiryStateFailed, Message: resp.Message}, nil
	}
	if resp.ResultCode != ResultOK {
		return nil, fmt.Errorf("inquiry failed: %s (code %d)", resp.Message, resp.ResultCode)
	}

	return &InquiryResult{
		State:     resp.State,
		RRN:       resp.RRN,
		MaskedPAN: resp.MaskedPAN,
		CardToken: resp.CardToken,
		Message:   resp.Message,
	}, nil
}

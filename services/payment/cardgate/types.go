package cardgate

import "aurum-payment-api/types"

// Result codes returned by the CardGate API.
const (
	ResultOK              = 0
	ResultFailed          = 1
	ResultAlreadyVerified = 2 // verify repeated for a settled token
	ResultNotFound        = 3
	ResultCanceled        = 17 // cardholder abandoned the 3DS page
)

type merchantAuth struct {
	MerchantID string `json:"merchantId"`
	TerminalID string `json:"terminalId"`
}

type paymentRequest struct {
	Auth        merchantAuth     `json:"auth"`
	Amount      string           `json:"amount"`
	InvoiceRef  string           `json:"invoiceRef"`
	CallbackURL string           `json:"callbackUrl"`
	SaveCard    bool             `json:"saveCard,omitempty"`
	Payer       *types.PayerInfo `json:"payer,omitempty"`
}

type paymentResponse struct {
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
}

type verifyRequest struct {
	Auth  merchantAuth `json:"auth"`
	Token string       `json:"token"`
}

type verifyResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	RRN        string `json:"rrn"` // retrieval reference number
	MaskedPAN  string `json:"maskedPan"`
	CardBrand  string `json:"cardBrand"`
	CardToken  string `json:"cardToken"` // present when saveCard was requested
	Amount     string `json:"amount"`
}

type chargeRequest struct {
	Auth       merchantAuth `json:"auth"`
	CardToken  string       `json:"cardToken"`
	Amount     string       `json:"amount"`
	InvoiceRef string       `json:"invoiceRef"`
}

type chargeResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	RRN        string `json:"rrn"`
}

type inquiryRequest struct {
	Auth  merchantAuth `json:"auth"`
	Token string       `json:"token"`
}

// Inquiry states as the gateway reports them.
const (
	InquiryStatePending   = "Pending"
	InquiryStateSucceeded = "Succeeded"
	InquiryStateFailed    = "Failed"
)

type inquiryResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	State      string `json:"state"`
	RRN        string `json:"rrn"`
	MaskedPAN  string `json:"maskedPan"`
	CardToken  string `json:"cardToken"`
}

// PaymentInit is the result of a payment request: where to send the
// cardholder, and the token everything downstream is keyed on.
type PaymentInit struct {
	Token       string
	RedirectURL string
}

// InquiryResult is the normalized transaction state for reconciliation.
type InquiryResult struct {
	State     string
	RRN       string
	MaskedPAN string
	CardToken string
	Message   string
}

package banknet

// Status strings used by the BankNet API.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusPending   = "PENDING"

	MandateActive  = "ACTIVE"
	MandatePending = "PENDING"
	MandateRevoked = "REVOKED"
)

type clientAuth struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type mandateRequest struct {
	Auth        clientAuth `json:"auth"`
	CustomerRef string     `json:"customerRef"`
	CallbackURL string     `json:"callbackUrl"`
}

type mandateResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	MandateRef  string `json:"mandateRef"`
	RedirectURL string `json:"redirectUrl"`
}

type debitRequest struct {
	Auth       clientAuth `json:"auth"`
	MandateRef string     `json:"mandateRef"`
	Amount     string     `json:"amount"`
	InvoiceRef string     `json:"invoiceRef"`
}

type debitResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	DebitRef string `json:"debitRef"`
}

// MandateInit is the result of mandate creation: the bank-side reference and
// the page where the account holder authorizes the mandate.
type MandateInit struct {
	MandateRef  string
	RedirectURL string
}

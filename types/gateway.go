// Package types holds gateway-facing value types shared between models,
// handlers and the vendor clients, so the vendor packages never import
// models and vice versa.
package types

// PayerInfo is the optional billing identity forwarded to the card gateway.
type PayerInfo struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	NationalID  string `json:"nationalId,omitempty"`
}

// ThreeDSCallback carries the parameters the cardholder brings back from the
// 3-D Secure challenge page.
type ThreeDSCallback struct {
	Token      string `json:"token"`
	Status     string `json:"status"`
	GatewayRef string `json:"gatewayRef,omitempty"`
}

// WebhookEvent is the normalized shape of a gateway webhook after signature
// verification, before it is handed to the job queue.
type WebhookEvent struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	Gateway    string `json:"gateway"`
	Token      string `json:"token,omitempty"`
	GatewayRef string `json:"gateway_ref,omitempty"`
	MandateRef string `json:"mandate_ref,omitempty"`
	Status     string `json:"status,omitempty"`
}

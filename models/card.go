package models

import "time"

// Card is a tokenized card on file. The PAN never touches our systems; the
// gateway hands back a charge token and the masked digits for display.
type Card struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"business_id"`
	Token      string    `json:"-"`
	MaskedPAN  string    `json:"masked_pan"`
	Brand      string    `json:"brand,omitempty"`
	Expiry     string    `json:"expiry,omitempty"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

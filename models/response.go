package models

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type VerifyResult struct {
	Success     bool   `json:"success"`
	Reference   string `json:"reference"`
	GatewayRef  string `json:"gateway_ref,omitempty"`
	CardToken   string `json:"-"`
	MaskedPAN   string `json:"masked_pan,omitempty"`
	FailureCode string `json:"failure_code,omitempty"`
	Message     string `json:"message,omitempty"`
	IsDuplicate bool   `json:"is_duplicate,omitempty"`
}

type ChargeResult struct {
	Success     bool   `json:"success"`
	GatewayRef  string `json:"gateway_ref,omitempty"`
	FailureCode string `json:"failure_code,omitempty"`
	Message     string `json:"message,omitempty"`
}

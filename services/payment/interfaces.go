package payment

import (
	"aurum-payment-api/models"
	"aurum-payment-api/services/payment/banknet"
	"aurum-payment-api/services/payment/cardgate"
	"aurum-payment-api/types"
)

// CardGateway is what the service needs from the card processor. Satisfied
// by *cardgate.Client; mocked in tests.
type CardGateway interface {
	RequestPayment(reference, amount, callbackURL string, saveCard bool, payer *types.PayerInfo) (*cardgate.PaymentInit, error)
	Verify(token string) (*models.VerifyResult, error)
	ChargeToken(cardToken, amount, invoiceRef string) (*models.ChargeResult, error)
	Inquire(token string) (*cardgate.InquiryResult, error)
}

// BankGateway is what the service needs from the bank payment network.
type BankGateway interface {
	CreateMandate(customerRef, callbackURL string) (*banknet.MandateInit, error)
	Debit(mandateRef, amount, invoiceRef string) (*models.ChargeResult, error)
}

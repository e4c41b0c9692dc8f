package payment

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aurum-payment-api/config"
	"aurum-payment-api/metrics"
	"aurum-payment-api/models"
	"aurum-payment-api/services/payment/banknet"
	"aurum-payment-api/services/payment/cardgate"
	"aurum-payment-api/types"
	"aurum-payment-api/utils"
)

// Service orchestrates both processors. Persistence stays with the callers;
// the service owns validation and gateway conversation only.
type Service struct {
	card    CardGateway
	bank    BankGateway
	metrics *metrics.PaymentMetrics
}

func NewPaymentService(cg config.CardGateConfig, bn config.BankNetConfig) *Service {
	return &Service{
		card: cardgate.NewClient(cg.MerchantID, cg.TerminalID, cg.APIKey, cg.Environment),
		bank: banknet.NewClient(bn.ClientID, bn.ClientSecret, bn.Environment),
	}
}

// NewServiceWithGateways wires explicit gateway implementations. Used by
// tests.
func NewServiceWithGateways(card CardGateway, bank BankGateway) *Service {
	return &Service{card: card, bank: bank}
}

// WithMetrics attaches the Prometheus collectors for gateway call timing.
func (s *Service) WithMetrics(m *metrics.PaymentMetrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) observe(gateway, operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.GatewayRequestDuration.WithLabelValues(gateway, operation).
			Observe(time.Since(start).Seconds())
	}
}

// InitiateTopup validates the amount, registers the payment with CardGate
// and returns the token plus the 3DS redirect URL.
func (s *Service) InitiateTopup(req *models.TopupRequest, reference, callbackURL string, payer *types.PayerInfo) (*cardgate.PaymentInit, error) {
	if err := utils.ValidateTopupAmount(req.Amount); err != nil {
		return nil, err
	}

	log.Printf("Starting topup initiation for reference: %s", reference)

	defer s.observe("cardgate", "request", time.Now())
	init, err := s.card.RequestPayment(reference, utils.FormatAmount(req.Amount), callbackURL, req.SaveCard, payer)
	if err != nil {
		log.Printf("Error requesting payment: %v", err)
		return nil, fmt.Errorf("payment initiation failed: %v", err)
	}

	log.Printf("Topup %s registered with gateway token %s", reference, init.Token)
	return init, nil
}

// VerifyTopup confirms the 3DS outcome with the gateway.
func (s *Service) VerifyTopup(token string) (*models.VerifyResult, error) {
	if token == "" {
		return nil, errors.New("missing gateway token")
	}
	defer s.observe("cardgate", "verify", time.Now())
	return s.card.Verify(token)
}

// InquireTopup asks the gateway for the current state of a token. Used by
// the reconciliation poller.
func (s *Service) InquireTopup(token string) (*cardgate.InquiryResult, error) {
	if token == "" {
		return nil, errors.New("missing gateway token")
	}
	defer s.observe("cardgate", "inquiry", time.Now())
	return s.card.Inquire(token)
}

// ChargeStoredCard runs a card-on-file charge for a subscription invoice.
func (s *Service) ChargeStoredCard(card *models.Card, amount decimal.Decimal, invoiceRef string) (*models.ChargeResult, error) {
	if card == nil || card.Token == "" {
		return nil, errors.New("no stored card token")
	}

	log.Printf("Charging stored card %s for invoice %s", card.MaskedPAN, invoiceRef)
	defer s.observe("cardgate", "charge", time.Now())
	return s.card.ChargeToken(card.Token, utils.FormatAmount(amount), invoiceRef)
}

// DebitMandate pulls a subscription fee through a BankNet direct-debit
// mandate.
func (s *Service) DebitMandate(mandateRef string, amount decimal.Decimal, invoiceRef string) (*models.ChargeResult, error) {
	if mandateRef == "" {
		return nil, errors.New("no mandate reference")
	}

	log.Printf("Debiting mandate %s for invoice %s", mandateRef, invoiceRef)
	defer s.observe("banknet", "debit", time.Now())
	return s.bank.Debit(mandateRef, utils.FormatAmount(amount), invoiceRef)
}

// CreateMandate starts mandate authorization for a business.
func (s *Service) CreateMandate(businessID int64, callbackURL string) (*banknet.MandateInit, error) {
	customerRef := fmt.Sprintf("biz-%d-%s", businessID, uuid.New().String()[:8])
	defer s.observe("banknet", "mandate", time.Now())
	return s.bank.CreateMandate(customerRef, callbackURL)
}

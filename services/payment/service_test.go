package payment

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurum-payment-api/models"
	"aurum-payment-api/services/payment/banknet"
	"aurum-payment-api/services/payment/cardgate"
	"aurum-payment-api/types"
)

type fakeCardGateway struct {
	requestErr   error
	verifyResult *models.VerifyResult
	chargeResult *models.ChargeResult
	lastAmount   string
}

func (f *fakeCardGateway) RequestPayment(reference, amount, callbackURL string, saveCard bool, payer *types.PayerInfo) (*cardgate.PaymentInit, error) {
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	f.lastAmount = amount
	return &cardgate.PaymentInit{Token: "tok-1", RedirectURL: "https://pay.example/tok-1"}, nil
}

func (f *fakeCardGateway) Verify(token string) (*models.VerifyResult, error) {
	return f.verifyResult, nil
}

func (f *fakeCardGateway) ChargeToken(cardToken, amount, invoiceRef string) (*models.ChargeResult, error) {
	f.lastAmount = amount
	return f.chargeResult, nil
}

func (f *fakeCardGateway) Inquire(token string) (*cardgate.InquiryResult, error) {
	return &cardgate.InquiryResult{State: cardgate.InquiryStatePending}, nil
}

type fakeBankGateway struct {
	debitResult *models.ChargeResult
	lastRef     string
}

func (f *fakeBankGateway) CreateMandate(customerRef, callbackURL string) (*banknet.MandateInit, error) {
	f.lastRef = customerRef
	return &banknet.MandateInit{MandateRef: "mnd-1", RedirectURL: "https://bank.example/mnd-1"}, nil
}

func (f *fakeBankGateway) Debit(mandateRef, amount, invoiceRef string) (*models.ChargeResult, error) {
	f.lastRef = mandateRef
	return f.debitResult, nil
}

func TestInitiateTopupValidatesAmount(t *testing.T) {
	svc := NewServiceWithGateways(&fakeCardGateway{}, &fakeBankGateway{})

	_, err := svc.InitiateTopup(&models.TopupRequest{Amount: decimal.NewFromInt(10)},
		"ref-1", "https://cb.example", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")
}

func TestInitiateTopupFormatsWholeRials(t *testing.T) {
	card := &fakeCardGateway{}
	svc := NewServiceWithGateways(card, &fakeBankGateway{})

	init, err := svc.InitiateTopup(&models.TopupRequest{Amount: decimal.NewFromInt(1500000)},
		"ref-1", "https://cb.example", nil)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", init.Token)
	assert.Equal(t, "1500000", card.lastAmount)
}

func TestInitiateTopupWrapsGatewayError(t *testing.T) {
	card := &fakeCardGateway{requestErr: errors.New("gateway down")}
	svc := NewServiceWithGateways(card, &fakeBankGateway{})

	_, err := svc.InitiateTopup(&models.TopupRequest{Amount: decimal.NewFromInt(1500000)},
		"ref-1", "https://cb.example", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment initiation failed")
}

func TestVerifyTopupRequiresToken(t *testing.T) {
	svc := NewServiceWithGateways(&fakeCardGateway{}, &fakeBankGateway{})
	_, err := svc.VerifyTopup("")
	assert.Error(t, err)
}

func TestChargeStoredCardRequiresToken(t *testing.T) {
	svc := NewServiceWithGateways(&fakeCardGateway{}, &fakeBankGateway{})

	_, err := svc.ChargeStoredCard(nil, decimal.NewFromInt(2500000), "inv-1")
	assert.Error(t, err)

	_, err = svc.ChargeStoredCard(&models.Card{}, decimal.NewFromInt(2500000), "inv-1")
	assert.Error(t, err)
}

func TestChargeStoredCard(t *testing.T) {
	card := &fakeCardGateway{chargeResult: &models.ChargeResult{Success: true, GatewayRef: "rrn-1"}}
	svc := NewServiceWithGateways(card, &fakeBankGateway{})

	result, err := svc.ChargeStoredCard(&models.Card{Token: "card-tok"}, decimal.NewFromInt(2500000), "inv-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "2500000", card.lastAmount)
}

func TestDebitMandate(t *testing.T) {
	bank := &fakeBankGateway{debitResult: &models.ChargeResult{Success: true}}
	svc := NewServiceWithGateways(&fakeCardGateway{}, bank)

	result, err := svc.DebitMandate("mnd-1", decimal.NewFromInt(2500000), "inv-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "mnd-1", bank.lastRef)

	_, err = svc.DebitMandate("", decimal.NewFromInt(2500000), "inv-1")
	assert.Error(t, err)
}

func TestCreateMandateCustomerRef(t *testing.T) {
	bank := &fakeBankGateway{}
	svc := NewServiceWithGateways(&fakeCardGateway{}, bank)

	init, err := svc.CreateMandate(42, "https://cb.example")
	require.NoError(t, err)
	assert.Equal(t, "mnd-1", init.MandateRef)
	assert.Contains(t, bank.lastRef, "biz-42-")
}

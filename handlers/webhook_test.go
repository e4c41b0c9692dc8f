package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"aurum-payment-api/metrics"
	"aurum-payment-api/utils"
)

var testMetrics = metrics.NewPaymentMetrics()

func TestCardGateWebhookRejectsBadSignature(t *testing.T) {
	h := NewWebhookHandler(nil, nil, testMetrics, "cardgate-secret", "banknet-secret")

	body := []byte(`{"event_id":"evt-1","token":"tok-1","status":"SUCCEEDED"}`)

	req := httptest.NewRequest("POST", "/api/cardgate/webhook", bytes.NewReader(body))
	req.Header.Set("X-CardGate-Signature", "deadbeef")
	rec := httptest.NewRecorder()

	h.HandleCardGateWebhook(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCardGateWebhookRejectsMissingSignature(t *testing.T) {
	h := NewWebhookHandler(nil, nil, testMetrics, "cardgate-secret", "banknet-secret")

	body := []byte(`{"event_id":"evt-1","token":"tok-1"}`)
	req := httptest.NewRequest("POST", "/api/cardgate/webhook", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleCardGateWebhook(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCardGateWebhookRejectsMalformedBody(t *testing.T) {
	h := NewWebhookHandler(nil, nil, testMetrics, "cardgate-secret", "banknet-secret")

	body := []byte(`not json`)
	req := httptest.NewRequest("POST", "/api/cardgate/webhook", bytes.NewReader(body))
	req.Header.Set("X-CardGate-Signature", utils.SignPayload(body, "cardgate-secret"))
	rec := httptest.NewRecorder()

	h.HandleCardGateWebhook(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCardGateWebhookRejectsMissingFields(t *testing.T) {
	h := NewWebhookHandler(nil, nil, testMetrics, "cardgate-secret", "banknet-secret")

	body := []byte(`{"event_id":"","token":""}`)
	req := httptest.NewRequest("POST", "/api/cardgate/webhook", bytes.NewReader(body))
	req.Header.Set("X-CardGate-Signature", utils.SignPayload(body, "cardgate-secret"))
	rec := httptest.NewRecorder()

	h.HandleCardGateWebhook(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBankNetWebhookRejectsBadSignature(t *testing.T) {
	h := NewWebhookHandler(nil, nil, testMetrics, "cardgate-secret", "banknet-secret")

	body := []byte(`{"event_id":"evt-1","mandate_ref":"mnd-1","status":"ACTIVE"}`)
	req := httptest.NewRequest("POST", "/api/banknet/webhook", bytes.NewReader(body))
	req.Header.Set("X-BankNet-Signature", utils.SignPayload(body, "wrong-secret"))
	rec := httptest.NewRecorder()

	h.HandleBankNetWebhook(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBankNetWebhookRejectsMissingFields(t *testing.T) {
	h := NewWebhookHandler(nil, nil, testMetrics, "cardgate-secret", "banknet-secret")

	body := []byte(`{"event_id":"evt-1","status":"ACTIVE"}`)
	req := httptest.NewRequest("POST", "/api/banknet/webhook", bytes.NewReader(body))
	req.Header.Set("X-BankNet-Signature", utils.SignPayload(body, "banknet-secret"))
	rec := httptest.NewRecorder()

	h.HandleBankNetWebhook(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

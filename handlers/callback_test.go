package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"aurum-payment-api/config"
)

func TestHandleCallbackEscapesReference(t *testing.T) {
	h := NewCallbackHandler(nil, nil, testMetrics, "https://app.example.com/topup/result")

	payload := `"><script>alert(1)</script>`
	req := httptest.NewRequest(http.MethodGet, "/api/cardgate/callback?ref="+
		"%22%3E%3Cscript%3Ealert(1)%3C%2Fscript%3E", nil)
	rec := httptest.NewRecorder()

	h.HandleCallback(rec, req)

	body := rec.Body.String()
	assert.NotContains(t, body, payload, "query input must not reach the page unescaped")
	assert.Contains(t, body, "outcome=invalid")
}

func TestHandleMandateReturnEscapesRef(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{BaseURL: "https://app.example.com"}}
	h := NewMandateHandler(nil, nil, cfg)

	payload := `"><img src=x onerror=alert(1)>`
	req := httptest.NewRequest(http.MethodGet, "/api/banknet/return?mandateRef="+
		"%22%3E%3Cimg%20src%3Dx%20onerror%3Dalert(1)%3E", nil)
	rec := httptest.NewRecorder()

	h.HandleMandateReturn(rec, req)

	body := rec.Body.String()
	assert.NotContains(t, body, payload)
	assert.Contains(t, body, "/mandate/result?ref=")
}

package banknet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("client-1", "secret-1", "sandbox").WithBaseURL(server.URL)
}

func TestCreateMandate(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mandates", r.URL.Path)

		var req mandateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "client-1", req.Auth.ClientID)
		assert.Equal(t, "biz-42", req.CustomerRef)

		json.NewEncoder(w).Encode(mandateResponse{
			Status:      MandatePending,
			MandateRef:  "mnd-100",
			RedirectURL: "https://sandbox.banknet.example/authorize/mnd-100",
		})
	})

	init, err := client.CreateMandate("biz-42", "https://api.example.com/return")
	require.NoError(t, err)
	assert.Equal(t, "mnd-100", init.MandateRef)
	assert.Equal(t, "https://sandbox.banknet.example/authorize/mnd-100", init.RedirectURL)
}

func TestCreateMandateRejected(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(mandateResponse{
			Status:  StatusFailed,
			Message: "account closed",
		})
	})

	_, err := client.CreateMandate("biz-42", "https://api.example.com/return")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account closed")
}

func TestDebit(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/debits", r.URL.Path)

		var req debitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mnd-100", req.MandateRef)
		assert.Equal(t, "2500000", req.Amount)

		json.NewEncoder(w).Encode(debitResponse{
			Status:   StatusSucceeded,
			DebitRef: "dbt-7",
		})
	})

	result, err := client.Debit("mnd-100", "2500000", "inv-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "dbt-7", result.GatewayRef)
}

func TestDebitFailed(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(debitResponse{
			Status:  StatusFailed,
			Message: "mandate revoked",
		})
	})

	result, err := client.Debit("mnd-100", "2500000", "inv-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, StatusFailed, result.FailureCode)
	assert.Equal(t, "mandate revoked", result.Message)
}

package cardgate

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
	return NewClient("merchant-1", "terminal-1", "test-key", "sandbox").WithBaseURL(server.URL)
}

func TestRequestPayment(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/request", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var req paymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "merchant-1", req.Auth.MerchantID)
		assert.Equal(t, "ref-123", req.InvoiceRef)
		assert.Equal(t, "1500000", req.Amount)
		assert.True(t, req.SaveCard)

		json.NewEncoder(w).Encode(paymentResponse{
			ResultCode:  ResultOK,
			Token:       "tok-abc",
			RedirectURL: "https://sandbox.cardgate.example/pay/tok-abc",
		})
	})

	init, err := client.RequestPayment("ref-123", "1500000", "https://api.example.com/cb", true, nil)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", init.Token)
	assert.Equal(t, "https://sandbox.cardgate.example/pay/tok-abc", init.RedirectURL)
}

func TestRequestPaymentRejected(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(paymentResponse{
			ResultCode: ResultFailed,
			Message:    "merchant suspended",
		})
	})

	_, err := client.RequestPayment("ref-123", "1500000", "https://api.example.com/cb", false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merchant suspended")
}

func TestVerifySuccess(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/verify", r.URL.Path)
		json.NewEncoder(w).Encode(verifyResponse{
			ResultCode: ResultOK,
			RRN:        "rrn-777",
			MaskedPAN:  "**** **** **** 1234",
			CardToken:  "card-tok-9",
		})
	})

	result, err := client.Verify("tok-abc")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "rrn-777", result.GatewayRef)
	assert.Equal(t, "card-tok-9", result.CardToken)
	assert.False(t, result.IsDuplicate)
}

func TestVerifyDuplicateIsSuccess(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(verifyResponse{
			ResultCode: ResultAlreadyVerified,
			RRN:        "rrn-777",
		})
	})

	result, err := client.Verify("tok-abc")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.IsDuplicate)
	assert.Equal(t, "rrn-777", result.GatewayRef)
}

func TestVerifyFailureCarriesCode(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(verifyResponse{
			ResultCode: ResultCanceled,
			Message:    "cardholder canceled",
		})
	})

	result, err := client.Verify("tok-abc")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "17", result.FailureCode)
}

func TestVerifyHandlesBOMPrefix(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(verifyResponse{ResultCode: ResultOK, RRN: "rrn-1"})
		w.Write(append([]byte("\uFEFF"), body...))
	})

	result, err := client.Verify("tok-abc")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestChargeToken(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/charge", r.URL.Path)

		var req chargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "card-tok-9", req.CardToken)
		assert.Equal(t, "inv-1", req.InvoiceRef)

		json.NewEncoder(w).Encode(chargeResponse{ResultCode: ResultOK, RRN: "rrn-55"})
	})

	result, err := client.ChargeToken("card-tok-9", "2500000", "inv-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "rrn-55", result.GatewayRef)
}

func TestChargeTokenDeclined(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chargeResponse{
			ResultCode: ResultFailed,
			Message:    "insufficient funds",
		})
	})

	result, err := client.ChargeToken("card-tok-9", "2500000", "inv-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "1", result.FailureCode)
	assert.Equal(t, "insufficient funds", result.Message)
}

func TestInquire(t *testing.T) {
	tests := []struct {
		name      string
		resp      inquiryResponse
		wantState string
	}{
		{
			name:      "settled transaction",
			resp:      inquiryResponse{ResultCode: ResultOK, State: InquiryStateSucceeded, RRN: "rrn-2"},
			wantState: InquiryStateSucceeded,
		},
		{
			name:      "still pending",
			resp:      inquiryResponse{ResultCode: ResultOK, State: InquiryStatePending},
			wantState: InquiryStatePending,
		},
		{
			name:      "unknown token reads as failed",
			resp:      inquiryResponse{ResultCode: ResultNotFound, Message: "no such token"},
			wantState: InquiryStateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.resp)
			})

			result, err := client.Inquire("tok-abc")
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, result.State)
		})
	}
}

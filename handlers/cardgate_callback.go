package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"aurum-payment-api/database"
	"aurum-payment-api/metrics"
	"aurum-payment-api/models"
	"aurum-payment-api/services/payment"
	"aurum-payment-api/types"
)

// CallbackHandler processes the cardholder's return from the 3-D Secure
// challenge. The gateway appends its token and a status hint; the outcome
// that counts is what verify says.
type CallbackHandler struct {
	db             *database.Connection
	paymentService *payment.Service
	metrics        *metrics.PaymentMetrics
	resultPageURL  string
}

func NewCallbackHandler(db *database.Connection, ps *payment.Service, m *metrics.PaymentMetrics, resultPageURL string) *CallbackHandler {
	return &CallbackHandler{
		db:             db,
		paymentService: ps,
		metrics:        m,
		resultPageURL:  resultPageURL,
	}
}

func (h *CallbackHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Printf("Error parsing 3DS callback form: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	cb := types.ThreeDSCallback{
		Token:  r.FormValue("token"),
		Status: r.FormValue("status"),
	}
	if cb.Token == "" {
		cb.Token = r.URL.Query().Get("token")
	}
	reference := r.URL.Query().Get("ref")

	log.Printf("Received 3DS callback for topup %s: token=%s, status=%s", reference, cb.Token, cb.Status)

	outcome := h.settleFromCallback(reference, &cb)

	// Send the cardholder back to the frontend result page either way. The
	// reference is attacker-controlled input and must be escaped before it
	// lands in the redirect URL.
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `
		<!DOCTYPE html>
		<html>
		<head>
			<title>Payment Processing</title>
			<meta http-equiv="refresh" content="0;url=%s?ref=%s&outcome=%s">
		</head>
		<body>
			<p>Processing your payment. Redirecting...</p>
		</body>
		</html>
	`, h.resultPageURL, url.QueryEscape(reference), url.QueryEscape(outcome))
}

// settleFromCallback runs the verify-and-settle path synchronously and
// returns an outcome string for the redirect.
func (h *CallbackHandler) settleFromCallback(reference string, cb *types.ThreeDSCallback) string {
	if reference == "" || cb.Token == "" {
		return "invalid"
	}

	topup, err := h.db.GetTopupByReference(reference)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("Callback for unknown topup %s", reference)
		} else {
			log.Printf("Error loading topup %s: %v", reference, err)
		}
		return "error"
	}

	if topup.Status.IsFinal() {
		log.Printf("Topup %s already settled (status=%s)", reference, topup.Status)
		if topup.Status == models.TopupStatusSucceeded {
			return "succeeded"
		}
		return "failed"
	}

	if topup.GatewayToken != cb.Token {
		log.Printf("Callback token mismatch for topup %s", reference)
		return "invalid"
	}

	locked, err := h.db.LockSettlement(reference)
	if err != nil {
		log.Printf("Error locking topup %s: %v", reference, err)
		return "error"
	}
	if !locked {
		// A webhook beat us to it; the poll endpoint will show the result.
		log.Printf("Topup %s locked by concurrent settlement", reference)
		return "pending"
	}
	defer h.db.ReleaseSettlementLock(reference)

	// A canceled hint still gets verified: some cardholders press back
	// after the charge went through.
	result, err := h.paymentService.VerifyTopup(cb.Token)
	if err != nil {
		log.Printf("Verify failed for topup %s: %v", reference, err)
		return "pending" // reconciliation will pick it up
	}

	if err := h.db.SettleTopup(topup, result); err != nil {
		if err == database.ErrAlreadySettled {
			return "succeeded"
		}
		log.Printf("Error settling topup %s: %v", reference, err)
		return "error"
	}

	if result.Success {
		h.metrics.TopupsSettledTotal.WithLabelValues("succeeded").Inc()
		return "succeeded"
	}
	h.metrics.TopupsSettledTotal.WithLabelValues("failed").Inc()
	return "failed"
}

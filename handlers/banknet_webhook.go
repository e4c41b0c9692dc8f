package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"aurum-payment-api/services/payment/banknet"
	"aurum-payment-api/types"
	"aurum-payment-api/utils"
)

// HandleBankNetWebhook processes mandate lifecycle events from the bank
// payment network. Debit outcomes come back synchronously on the debit call,
// so the webhook's job is mandate activation and revocation.
func (h *WebhookHandler) HandleBankNetWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading BankNet webhook body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-BankNet-Signature")
	if !utils.VerifySignature(body, signature, h.bankNetSecret) {
		log.Printf("Rejected BankNet webhook with bad signature from %s", r.RemoteAddr)
		h.metrics.WebhookEventsTotal.WithLabelValues("banknet", "rejected").Inc()
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var event types.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("Error parsing BankNet webhook: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if event.EventID == "" || event.MandateRef == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	firstDelivery, err := h.db.RecordWebhookEvent(event.EventID, "banknet", event.EventType, body)
	if err != nil {
		log.Printf("Error recording BankNet webhook event %s: %v", event.EventID, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !firstDelivery {
		log.Printf("Duplicate BankNet webhook event %s. Acknowledging.", event.EventID)
		h.metrics.WebhookEventsTotal.WithLabelValues("banknet", "duplicate").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	var status string
	switch event.Status {
	case banknet.MandateActive:
		status = "active"
	case banknet.MandateRevoked:
		status = "revoked"
	default:
		log.Printf("Ignoring BankNet event %s with status %s", event.EventID, event.Status)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.db.UpdateMandateStatus(event.MandateRef, status); err != nil {
		log.Printf("Error updating mandate %s: %v", event.MandateRef, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.metrics.WebhookEventsTotal.WithLabelValues("banknet", "processed").Inc()
	log.Printf("Mandate %s is now %s (event %s)", event.MandateRef, status, event.EventID)
	w.WriteHeader(http.StatusOK)
}

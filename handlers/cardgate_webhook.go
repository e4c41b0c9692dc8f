package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"aurum-payment-api/database"
	"aurum-payment-api/metrics"
	"aurum-payment-api/queue"
	"aurum-payment-api/types"
	"aurum-payment-api/utils"
)

// WebhookHandler receives asynchronous gateway notifications. Both gateways
// sign the raw body with HMAC-SHA256; unsigned or replayed deliveries never
// reach the queue.
type WebhookHandler struct {
	db             *database.Connection
	queue          *queue.Queue
	metrics        *metrics.PaymentMetrics
	cardGateSecret string
	bankNetSecret  string
}

func NewWebhookHandler(db *database.Connection, q *queue.Queue, m *metrics.PaymentMetrics, cardGateSecret, bankNetSecret string) *WebhookHandler {
	return &WebhookHandler{
		db:             db,
		queue:          q,
		metrics:        m,
		cardGateSecret: cardGateSecret,
		bankNetSecret:  bankNetSecret,
	}
}

// HandleCardGateWebhook processes payment notifications from the card
// gateway. The handler answers 200 fast and settles through the job queue.
func (h *WebhookHandler) HandleCardGateWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading CardGate webhook body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-CardGate-Signature")
	if !utils.VerifySignature(body, signature, h.cardGateSecret) {
		log.Printf("Rejected CardGate webhook with bad signature from %s", r.RemoteAddr)
		h.metrics.WebhookEventsTotal.WithLabelValues("cardgate", "rejected").Inc()
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var event types.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("Error parsing CardGate webhook: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if event.EventID == "" || event.Token == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	firstDelivery, err := h.db.RecordWebhookEvent(event.EventID, "cardgate", event.EventType, body)
	if err != nil {
		log.Printf("Error recording CardGate webhook event %s: %v", event.EventID, err)
		// Let the gateway redeliver.
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !firstDelivery {
		log.Printf("Duplicate CardGate webhook event %s. Acknowledging.", event.EventID)
		h.metrics.WebhookEventsTotal.WithLabelValues("cardgate", "duplicate").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)

	topup, err := h.db.GetTopupByGatewayToken(event.Token)
	if err != nil {
		log.Printf("CardGate webhook %s references unknown token", event.EventID)
		return
	}

	err = h.queue.Enqueue(r.Context(), queue.JobTypeVerifyPayment, map[string]interface{}{
		"reference": topup.Reference,
		"event_id":  event.EventID,
	})
	if err != nil {
		log.Printf("Error enqueueing verify job for topup %s: %v", topup.Reference, err)
		return
	}

	h.metrics.WebhookEventsTotal.WithLabelValues("cardgate", "processed").Inc()
	log.Printf("Queued verify job for topup %s (event %s)", topup.Reference, event.EventID)
}

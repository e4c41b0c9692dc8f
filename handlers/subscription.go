package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"aurum-payment-api/database"
	"aurum-payment-api/metrics"
	"aurum-payment-api/middleware"
	"aurum-payment-api/models"
	"aurum-payment-api/queue"
	"aurum-payment-api/services/billing"
	"aurum-payment-api/utils"
)

type SubscriptionHandler struct {
	db      *database.Connection
	queue   *queue.Queue
	metrics *metrics.PaymentMetrics
}

func NewSubscriptionHandler(db *database.Connection, q *queue.Queue, m *metrics.PaymentMetrics) *SubscriptionHandler {
	return &SubscriptionHandler{
		db:      db,
		queue:   q,
		metrics: m,
	}
}

// Subscribe puts the business on a plan. The first subscription of a
// business may carry the plan's grace days; after that, never again.
// PREPAID plans get their first charge enqueued immediately.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	plan, err := h.db.GetPlanByCode(req.PlanCode)
	if err == sql.ErrNoRows {
		utils.SendErrorResponse(w, http.StatusNotFound, "Unknown plan code")
		return
	}
	if err != nil {
		log.Printf("Error loading plan %s: %v", req.PlanCode, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load plan")
		return
	}

	existing, err := h.db.GetCurrentSubscription(user.BusinessID)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("Error checking subscription for business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to check subscription")
		return
	}
	if existing != nil {
		utils.SendErrorResponse(w, http.StatusConflict, "Business already has an active subscription")
		return
	}

	business, err := h.db.GetBusinessByID(user.BusinessID)
	if err != nil {
		log.Printf("Error loading business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load business")
		return
	}

	tx, err := h.db.BeginTransaction()
	if err != nil {
		log.Printf("Error starting transaction: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create subscription")
		return
	}
	defer tx.Rollback()

	grace := billing.ShouldGrantGrace(plan, business)
	if grace {
		// The flag flip is what makes the grant once-only under
		// concurrent subscribe calls.
		granted, err := tx.MarkGraceUsed(user.BusinessID)
		if err != nil {
			log.Printf("Error marking grace used for business %d: %v", user.BusinessID, err)
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create subscription")
			return
		}
		grace = granted
	}

	now := time.Now()
	cycle := billing.ComputeCycle(plan, now, grace)

	sub := &models.Subscription{
		ID:            uuid.New().String(),
		BusinessID:    user.BusinessID,
		PlanID:        plan.ID,
		PlanCode:      plan.Code,
		Status:        models.SubscriptionStatusActive,
		PeriodStart:   cycle.PeriodStart,
		PeriodEnd:     cycle.PeriodEnd,
		NextBillingAt: cycle.NextBillingAt,
		GraceGranted:  grace,
	}

	if err := tx.SaveSubscription(sub); err != nil {
		log.Printf("Error saving subscription for business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create subscription")
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Error committing subscription for business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create subscription")
		return
	}

	if grace {
		h.metrics.GracePeriodsGranted.Inc()
	}
	h.metrics.SubscriptionsByStatus.WithLabelValues(string(models.SubscriptionStatusActive)).Inc()

	if plan.Mode == models.PlanModePrepaid {
		if err := h.queue.Enqueue(r.Context(), queue.JobTypeChargeSubscription, map[string]interface{}{
			"subscription_id": sub.ID,
		}); err != nil {
			// The sweep picks it up on the next pass.
			log.Printf("Error enqueueing first charge for subscription %s: %v", sub.ID, err)
		}
	}

	log.Printf("Business %d subscribed to plan %s (grace=%v, period ends %s)",
		user.BusinessID, plan.Code, grace, utils.FormatDate(sub.PeriodEnd))

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Subscription created",
		Data:    sub,
	})
}

// GetSubscription returns the business's current subscription.
func (h *SubscriptionHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sub, err := h.db.GetCurrentSubscription(user.BusinessID)
	if err == sql.ErrNoRows {
		utils.SendErrorResponse(w, http.StatusNotFound, "No active subscription")
		return
	}
	if err != nil {
		log.Printf("Error loading subscription for business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load subscription")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   sub,
	})
}

// CancelSubscription cancels immediately. Access already paid for runs out
// at the period end; there are no refunds for the remainder.
func (h *SubscriptionHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sub, err := h.db.GetCurrentSubscription(user.BusinessID)
	if err == sql.ErrNoRows {
		utils.SendErrorResponse(w, http.StatusNotFound, "No active subscription")
		return
	}
	if err != nil {
		log.Printf("Error loading subscription for business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load subscription")
		return
	}

	if err := h.db.UpdateSubscriptionStatus(sub.ID, sub.Status, models.SubscriptionStatusCanceled); err != nil {
		log.Printf("Error canceling subscription %s: %v", sub.ID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to cancel subscription")
		return
	}

	h.metrics.SubscriptionsByStatus.WithLabelValues(string(sub.Status)).Dec()
	h.metrics.SubscriptionsByStatus.WithLabelValues(string(models.SubscriptionStatusCanceled)).Inc()

	log.Printf("Business %d canceled subscription %s (access until %s)",
		user.BusinessID, sub.ID, utils.FormatDate(billing.AccessEndsAt(sub)))

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Subscription canceled",
		Data: map[string]interface{}{
			"access_ends_at": billing.AccessEndsAt(sub),
		},
	})
}

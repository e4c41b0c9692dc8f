package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"aurum-payment-api/config"
	"aurum-payment-api/database"
	"aurum-payment-api/metrics"
	"aurum-payment-api/middleware"
	"aurum-payment-api/models"
	"aurum-payment-api/services/payment"
	"aurum-payment-api/types"
	"aurum-payment-api/utils"
)

type TopupHandler struct {
	db             *database.Connection
	paymentService *payment.Service
	metrics        *metrics.PaymentMetrics
	baseURL        string
}

func NewTopupHandler(db *database.Connection, ps *payment.Service, m *metrics.PaymentMetrics, cfg *config.Config) *TopupHandler {
	return &TopupHandler{
		db:             db,
		paymentService: ps,
		metrics:        m,
		baseURL:        cfg.Server.BaseURL,
	}
}

// InitiateTopup creates a PENDING top-up and sends the caller to the
// gateway's 3DS page.
func (h *TopupHandler) InitiateTopup(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.TopupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateTopupAmount(req.Amount); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	business, err := h.db.GetBusinessByID(user.BusinessID)
	if err != nil {
		log.Printf("Error loading business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load business")
		return
	}

	reference := uuid.New().String()
	topup := &models.TopupTransaction{
		Reference:  reference,
		BusinessID: business.ID,
		Amount:     req.Amount,
		Status:     models.TopupStatusPending,
		Gateway:    "cardgate",
		SaveCard:   req.SaveCard,
	}

	if err := h.db.CreateTopup(topup); err != nil {
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create topup")
		return
	}

	callbackURL := fmt.Sprintf("%s/api/cardgate/callback?ref=%s", h.baseURL, reference)
	payer := &types.PayerInfo{
		Email:       business.Email,
		PhoneNumber: business.PhoneNumber,
	}

	init, err := h.paymentService.InitiateTopup(&req, reference, callbackURL, payer)
	if err != nil {
		log.Printf("Error initiating topup %s: %v", reference, err)
		utils.SendErrorResponse(w, http.StatusBadGateway, "Payment gateway unavailable")
		return
	}

	if err := h.db.UpdateTopupGatewayToken(reference, init.Token); err != nil {
		log.Printf("Error storing gateway token for topup %s: %v", reference, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to store gateway token")
		return
	}

	h.metrics.TopupsInitiatedTotal.WithLabelValues("cardgate").Inc()

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Topup initiated",
		Data: models.TopupInitResponse{
			Reference:   reference,
			RedirectURL: init.RedirectURL,
		},
	})
}

// CheckTopupStatus lets the frontend poll while the cardholder is off at the
// 3DS page.
func (h *TopupHandler) CheckTopupStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	reference := r.URL.Query().Get("reference")
	if reference == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Missing reference parameter")
		return
	}

	topup, err := h.db.GetTopupByReference(reference)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.SendErrorResponse(w, http.StatusNotFound, "Topup not found")
			return
		}
		log.Printf("Error loading topup %s: %v", reference, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load topup")
		return
	}

	if topup.BusinessID != user.BusinessID {
		utils.SendErrorResponse(w, http.StatusForbidden, "Topup belongs to another business")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Topup status",
		Data:    topup,
	})
}

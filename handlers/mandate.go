package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"aurum-payment-api/config"
	"aurum-payment-api/database"
	"aurum-payment-api/middleware"
	"aurum-payment-api/models"
	"aurum-payment-api/services/payment"
	"aurum-payment-api/utils"
)

type MandateHandler struct {
	db             *database.Connection
	paymentService *payment.Service
	baseURL        string
}

func NewMandateHandler(db *database.Connection, ps *payment.Service, cfg *config.Config) *MandateHandler {
	return &MandateHandler{
		db:             db,
		paymentService: ps,
		baseURL:        cfg.Server.BaseURL,
	}
}

// CreateMandate registers a direct-debit mandate with the bank network. The
// mandate stays pending until the account holder authorizes it on the bank
// side and the webhook reports it active.
func (h *MandateHandler) CreateMandate(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	existing, err := h.db.GetMandateRef(user.BusinessID)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("Error checking mandate for business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to check mandate")
		return
	}
	if existing != "" {
		utils.SendErrorResponse(w, http.StatusConflict, "Business already has an active mandate")
		return
	}

	callbackURL := fmt.Sprintf("%s/api/banknet/return", h.baseURL)
	init, err := h.paymentService.CreateMandate(user.BusinessID, callbackURL)
	if err != nil {
		log.Printf("Error creating mandate for business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusBadGateway, "Bank network unavailable")
		return
	}

	if err := h.db.CreateMandate(user.BusinessID, init.MandateRef); err != nil {
		log.Printf("Error storing mandate %s: %v", init.MandateRef, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to store mandate")
		return
	}

	log.Printf("Created pending mandate %s for business %d", init.MandateRef, user.BusinessID)

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Mandate created, awaiting authorization",
		Data: map[string]string{
			"mandate_ref":  init.MandateRef,
			"redirect_url": init.RedirectURL,
		},
	})
}

// HandleMandateReturn receives the account holder back from the bank's
// authorization page. Activation itself arrives on the webhook; this just
// sends the browser to the frontend result page.
func (h *MandateHandler) HandleMandateReturn(w http.ResponseWriter, r *http.Request) {
	mandateRef := r.URL.Query().Get("mandateRef")
	log.Printf("Account holder returned from BankNet authorization (mandate=%s)", mandateRef)

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `
		<!DOCTYPE html>
		<html>
		<head>
			<title>Mandate Authorization</title>
			<meta http-equiv="refresh" content="0;url=%s/mandate/result?ref=%s">
		</head>
		<body>
			<p>Processing your authorization. Redirecting...</p>
		</body>
		</html>
	`, h.baseURL, url.QueryEscape(mandateRef))
}

package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"aurum-payment-api/database"
	"aurum-payment-api/middleware"
	"aurum-payment-api/models"
	"aurum-payment-api/utils"
)

type WalletHandler struct {
	db *database.Connection
}

func NewWalletHandler(db *database.Connection) *WalletHandler {
	return &WalletHandler{db: db}
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	wallet, err := h.db.GetWalletByBusiness(user.BusinessID)
	if err == sql.ErrNoRows {
		utils.SendErrorResponse(w, http.StatusNotFound, "Wallet not found")
		return
	}
	if err != nil {
		log.Printf("Error loading wallet for business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load wallet")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   wallet,
	})
}

// ListTransactions pages through the wallet ledger, newest first.
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.db.ListWalletTransactions(user.BusinessID, limit, offset)
	if err != nil {
		log.Printf("Error listing wallet transactions for business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   entries,
	})
}

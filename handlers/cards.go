package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"aurum-payment-api/database"
	"aurum-payment-api/middleware"
	"aurum-payment-api/models"
	"aurum-payment-api/utils"
)

type CardHandler struct {
	db *database.Connection
}

func NewCardHandler(db *database.Connection) *CardHandler {
	return &CardHandler{db: db}
}

// ListCards returns the business's cards on file. Tokens never leave the
// server; the response carries masked PANs only.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	cards, err := h.db.ListCards(user.BusinessID)
	if err != nil {
		log.Printf("Error listing cards for business %d: %v", user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load cards")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   cards,
	})
}

func (h *CardHandler) SetDefaultCard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	cardID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid card id")
		return
	}

	if err := h.db.SetDefaultCard(user.BusinessID, cardID); err != nil {
		log.Printf("Error setting default card %d for business %d: %v", cardID, user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusNotFound, "Card not found")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Default card updated",
	})
}

func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	cardID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid card id")
		return
	}

	if err := h.db.DeleteCard(user.BusinessID, cardID); err != nil {
		log.Printf("Error deleting card %d for business %d: %v", cardID, user.BusinessID, err)
		utils.SendErrorResponse(w, http.StatusNotFound, "Card not found")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Card removed",
	})
}

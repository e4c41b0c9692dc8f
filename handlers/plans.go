package handlers

import (
	"log"
	"net/http"

	"aurum-payment-api/database"
	"aurum-payment-api/models"
	"aurum-payment-api/utils"
)

type PlanHandler struct {
	db *database.Connection
}

func NewPlanHandler(db *database.Connection) *PlanHandler {
	return &PlanHandler{db: db}
}

func (h *PlanHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.db.GetPlans()
	if err != nil {
		log.Printf("Error loading plans: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load plans")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   plans,
	})
}

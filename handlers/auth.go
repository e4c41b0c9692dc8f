package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"aurum-payment-api/models"
	"aurum-payment-api/services/auth"
	"aurum-payment-api/utils"
)

type AuthHandler struct {
	jwtService *auth.JWTService
}

func NewAuthHandler(jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{jwtService: jwtService}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Passphrase == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Email and passphrase are required")
		return
	}

	resp, err := h.jwtService.Authenticate(req.Email, req.Passphrase)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid email or passphrase")
		case errors.Is(err, auth.ErrBusinessInactive):
			utils.SendErrorResponse(w, http.StatusForbidden, "Business account is inactive")
		default:
			log.Printf("Error authenticating %s: %v", req.Email, err)
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Authentication failed")
		}
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   resp,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	resp, err := h.jwtService.Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			utils.SendErrorResponse(w, http.StatusUnauthorized, "Refresh token expired")
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrBusinessInactive):
			utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid refresh token")
		default:
			log.Printf("Error refreshing token: %v", err)
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Token refresh failed")
		}
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   resp,
	})
}

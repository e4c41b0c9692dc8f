package models

type LoginRequest struct {
	Email      string `json:"email"`
	Passphrase string `json:"passphrase"`
}

type AuthUser struct {
	BusinessID int64  `json:"business_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	IsActive   bool   `json:"is_active"`
}

type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	User         AuthUser `json:"user"`
}

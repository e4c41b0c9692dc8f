package models

import "time"

type Business struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	IsActive    bool      `json:"is_active"`
	// GraceUsed flips the first time a grace period is granted and never
	// flips back.
	GraceUsed bool      `json:"grace_used"`
	CreatedAt time.Time `json:"created_at"`
}

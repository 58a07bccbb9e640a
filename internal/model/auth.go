package model

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required,min=8" validate:"required,min=8"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenClaims represents JWT claims carried by the bearer token.
type TokenClaims struct {
	jwt.RegisteredClaims
	PsychologistID uuid.UUID `json:"psychologist_id"`
	Email          string    `json:"email"`
	Approval       string    `json:"approval"`
}

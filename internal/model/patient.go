package model

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

type Patient struct {
	Base
	Name          string      `json:"name"`
	CPF           string      `json:"cpf"`
	Phone         string      `json:"phone"`
	Email         string      `json:"email"`
	DateOfBirth   time.Time   `json:"date_of_birth"`
	Gender        Gender      `json:"gender"`
	Role          string      `json:"role"`
	Expertise     string      `json:"expertise,omitempty"`
	Active        bool        `json:"active"`
	ImageURL      string      `json:"image_url,omitempty"`
	AttachmentIDs []uuid.UUID `json:"attachment_ids,omitempty"`
}

type CreatePatientRequest struct {
	Name        string `json:"name" binding:"required" validate:"required"`
	CPF         string `json:"cpf" binding:"required" validate:"required,cpf"`
	Phone       string `json:"phone" binding:"required" validate:"required"`
	Email       string `json:"email" binding:"required,email" validate:"required,email"`
	DateOfBirth string `json:"date_of_birth" binding:"required" validate:"required"`
	Gender      Gender `json:"gender" binding:"required,oneof=female male other" validate:"required,oneof=female male other"`
	Role        string `json:"role" validate:"omitempty"`
	Expertise   string `json:"expertise"`
}

// UpdatePatientRequest is a partial update; nil fields are left untouched.
type UpdatePatientRequest struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email" validate:"omitempty,email"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	Gender      *Gender `json:"gender,omitempty" binding:"omitempty,oneof=female male other"`
	Expertise   *string `json:"expertise,omitempty"`
	Active      *bool   `json:"active,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// Psychologist is the clinic staff user type. New practitioners start in
// the PENDING approval state and gain full access once approved.
type Psychologist struct {
	Base
	Name      string         `json:"name"`
	CRP       string         `json:"crp"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Expertise string         `json:"expertise,omitempty"`
	Approval  ApprovalStatus `json:"approval"`
	ImageURL  string         `json:"image_url,omitempty"`
}

// Approval is a pending-practitioner entry on the admin approval board.
type Approval struct {
	Base
	PsychologistID uuid.UUID `json:"psychologist_id"`
	Name           string    `json:"name"`
	CRP            string    `json:"crp"`
	Email          string    `json:"email"`
	RequestedAt    time.Time `json:"requested_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "SCHEDULED"
	AppointmentStatusAttending   AppointmentStatus = "ATTENDING"
	AppointmentStatusFinished    AppointmentStatus = "FINISHED"
	AppointmentStatusCanceled    AppointmentStatus = "CANCELED"
	AppointmentStatusNotAttend   AppointmentStatus = "NOT_ATTEND"
	AppointmentStatusRescheduled AppointmentStatus = "RESCHEDULED"
)

// Valid reports whether s is a member of the appointment status enumeration.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusAttending,
		AppointmentStatusFinished, AppointmentStatusCanceled,
		AppointmentStatusNotAttend, AppointmentStatusRescheduled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientID      uuid.UUID         `json:"patient_id"`
	PsychologistID uuid.UUID         `json:"psychologist_id"`
	ScheduledAt    time.Time         `json:"scheduled_at"`
	Status         AppointmentStatus `json:"status"`
	Diagnosis      string            `json:"diagnosis,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	Content        string            `json:"content,omitempty"`
}

// Pending reports whether the appointment can still be started.
func (a *Appointment) Pending() bool {
	return a.Status == AppointmentStatusScheduled || a.Status == AppointmentStatusRescheduled
}

type CreateAppointmentRequest struct {
	PatientID      uuid.UUID `json:"patient_id" binding:"required" validate:"required"`
	PsychologistID uuid.UUID `json:"psychologist_id" binding:"required" validate:"required"`
	ScheduledAt    time.Time `json:"scheduled_at" binding:"required" validate:"required"`
}

type UpdateAppointmentRequest struct {
	ScheduledAt *time.Time         `json:"scheduled_at,omitempty"`
	Status      *AppointmentStatus `json:"status,omitempty"`
	Diagnosis   *string            `json:"diagnosis,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
	Content     *string            `json:"content,omitempty"`
}

// AppointmentFilters narrows GET /appointments.
type AppointmentFilters struct {
	PatientID uuid.UUID
	Status    AppointmentStatus
}

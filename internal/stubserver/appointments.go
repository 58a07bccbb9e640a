package stubserver

import (
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/pkg/errors"
	"github.com/psiclinic/clinic-cli/pkg/httputil"
)

func (s *Server) listAppointments(c *gin.Context) {
	var patientID uuid.UUID
	if raw := c.Query("patientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, errors.NewBadRequest("invalid patientId", err))
			return
		}
		patientID = id
	}

	status := model.AppointmentStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid status", nil))
		return
	}

	httputil.RespondWithSuccess(c, s.store.ListAppointments(patientID, status))
}

func (s *Server) updateAppointment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	a, err := s.store.UpdateAppointment(id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, a)
}

func (s *Server) startSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	session, err := s.store.StartSession(id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, model.StartSessionResponse{
		SessionID:     session.ID,
		AppointmentID: session.AppointmentID,
		StartedAt:     session.StartedAt,
	})
}

func (s *Server) finishSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.FinishSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}
	if utf8.RuneCountInString(req.Notes) > model.MaxSessionNotesLen {
		httputil.RespondWithError(c, errors.NewValidation("notes exceed maximum length", nil))
		return
	}

	session, err := s.store.FinishSession(id, req.Notes)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, session)
}

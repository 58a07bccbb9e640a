package stubserver

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/pkg/errors"
	"github.com/psiclinic/clinic-cli/pkg/httputil"
)

func (s *Server) listPatients(c *gin.Context) {
	q := PatientQuery{
		Name:   c.Query("name"),
		CPF:    c.Query("cpf"),
		Status: c.Query("status"),
	}
	if n, err := strconv.Atoi(c.Query("pageIndex")); err == nil {
		q.PageIndex = n
	}
	if n, err := strconv.Atoi(c.Query("perPage")); err == nil {
		q.PerPage = n
	}

	httputil.RespondWithSuccess(c, s.store.ListPatients(q))
}

func (s *Server) createPatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("date_of_birth must be YYYY-MM-DD", err))
		return
	}

	patient := &model.Patient{
		Name:        req.Name,
		CPF:         digitsOnly(req.CPF),
		Phone:       req.Phone,
		Email:       req.Email,
		DateOfBirth: dob,
		Gender:      req.Gender,
		Role:        req.Role,
		Expertise:   req.Expertise,
	}
	if err := s.store.CreatePatient(patient); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, patient)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid id", err))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) getPatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := s.store.GetPatient(id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (s *Server) updatePatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	p, err := s.store.UpdatePatient(id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (s *Server) deletePatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeletePatient(id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

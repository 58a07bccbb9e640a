package stubserver

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/pkg/errors"
	"github.com/psiclinic/clinic-cli/pkg/httputil"
)

func (s *Server) listApprovals(c *gin.Context) {
	httputil.RespondWithSuccess(c, s.store.ListApprovals())
}

func (s *Server) approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.Approve(id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"approved": id})
}

func (s *Server) listSuggestions(c *gin.Context) {
	httputil.RespondWithSuccess(c, s.store.ListSuggestions())
}

func (s *Server) createSuggestion(c *gin.Context) {
	var req model.CreateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	suggestion := &model.Suggestion{
		AuthorID:    c.MustGet("psychologist_id").(uuid.UUID),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}
	s.store.CreateSuggestion(suggestion)
	httputil.RespondWithCreated(c, suggestion)
}

func (s *Server) likeSuggestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	suggestion, err := s.store.LikeSuggestion(id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, suggestion)
}

func (s *Server) transitionSuggestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Status model.SuggestionStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	suggestion, err := s.store.TransitionSuggestion(id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, suggestion)
}

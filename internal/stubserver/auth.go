package stubserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/pkg/errors"
	"github.com/psiclinic/clinic-cli/pkg/httputil"
)

func (s *Server) issueToken(p *model.Psychologist) (string, error) {
	claims := model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.TokenExpiry)),
		},
		PsychologistID: p.ID,
		Email:          p.Email,
		Approval:       string(p.Approval),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) parseToken(raw string) (*model.TokenClaims, error) {
	var claims model.TokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.Unauthorized(err)
	}
	return &claims, nil
}

// authenticate guards every route behind a bearer token.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if header == "" || len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.Response{
				Success: false,
				Error:   &httputil.Error{Code: http.StatusUnauthorized, Message: "missing or malformed authorization header"},
			})
			return
		}

		claims, err := s.parseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.Response{
				Success: false,
				Error:   &httputil.Error{Code: http.StatusUnauthorized, Message: "invalid token"},
			})
			return
		}

		c.Set("psychologist_id", claims.PsychologistID)
		c.Next()
	}
}

func (s *Server) login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest(err.Error(), err))
		return
	}

	p, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	token, err := s.issueToken(p)
	if err != nil {
		httputil.RespondWithError(c, errors.NewInternal(err))
		return
	}

	httputil.RespondWithSuccess(c, model.TokenResponse{AccessToken: token})
}

func (s *Server) me(c *gin.Context) {
	id := c.MustGet("psychologist_id").(uuid.UUID)
	p, err := s.store.Profile(id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

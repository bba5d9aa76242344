package httpapi

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/authgate"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type identityResponse struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFailure(c, authgate.CodeValidationFailed)
		return
	}

	pair, err := s.engine.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.logFailure(c, "login rejected", err)
		writeEngineFailure(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, pair)
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFailure(c, authgate.CodeValidationFailed)
		return
	}

	pair, err := s.engine.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.logFailure(c, "refresh rejected", err)
		writeEngineFailure(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, pair)
}

func (s *Server) handleMe(c *gin.Context) {
	identity, ok := authgate.IdentityFromContext(c.Request.Context())
	if !ok {
		writeFailure(c, authgate.CodeUnauthorized)
		return
	}

	authorities := identity.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	c.JSON(http.StatusOK, identityResponse{
		Username:    identity.Username,
		Authorities: authorities,
	})
}

func (s *Server) handleAdminPanel(c *gin.Context) {
	identity, _ := authgate.IdentityFromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"message": "admin panel",
		"user":    identity.Username,
	})
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// logFailure records rejected operations. Expected rejections log at debug;
// anything that maps to a 5xx is a server problem and logs at error.
func (s *Server) logFailure(c *gin.Context, msg string, err error) {
	attrs := []any{
		"path", c.Request.URL.Path,
		"trace_id", authgate.TraceIDFromContext(c.Request.Context()),
		"code", authgate.CodeOf(err).Code,
	}
	if authgate.CodeOf(err).Status >= http.StatusInternalServerError && !isExpected(err) {
		s.logger.Error(msg, append(attrs, "error", err)...)
		return
	}
	s.logger.Debug(msg, attrs...)
}

func isExpected(err error) bool {
	return errors.Is(err, authgate.ErrInvalidCredentials) ||
		errors.Is(err, authgate.ErrTokenInvalid) ||
		errors.Is(err, authgate.ErrTokenExpired) ||
		errors.Is(err, authgate.ErrLoginRateLimited) ||
		errors.Is(err, authgate.ErrRefreshRateLimited)
}

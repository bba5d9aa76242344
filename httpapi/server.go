package httpapi

import (
	"io"
	"log/slog"

	"github.com/MrEthical07/authgate"
	"github.com/gin-gonic/gin"
)

// Server wires the authentication engine to its HTTP routes.
type Server struct {
	engine *authgate.Engine
	logger *slog.Logger
	router *gin.Engine
}

// NewServer builds the HTTP surface around a ready engine. A nil logger
// discards log output.
func NewServer(engine *authgate.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		engine: engine,
		logger: logger,
		router: router,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestContext())
	s.router.Use(s.authenticate())

	s.router.GET("/healthz", s.handleHealthz)

	auth := s.router.Group("/auth")
	{
		auth.POST("/login", s.handleLogin)
		auth.POST("/refresh", s.handleRefresh)
	}

	s.router.GET("/me", s.requireAuthenticated(), s.handleMe)

	admin := s.router.Group("/admin", s.requireAuthenticated(), s.requireAuthority("ROLE_ADMIN"))
	{
		admin.GET("/panel", s.handleAdminPanel)
	}

	s.router.NoRoute(func(c *gin.Context) {
		writeFailure(c, authgate.CodeNotFound)
	})
}

// Handler exposes the router for tests and custom http.Server setups.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("http server starting", "addr", addr)
	return s.router.Run(addr)
}

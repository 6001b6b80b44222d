// Package api serves the benchmark leaderboard over HTTP.
package api

import (
	"errors"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/auralab/aura-bench/internal/store"
)

type Server struct {
	router *gin.Engine
	store  *store.Store
}

func NewServer(st *store.Store) (*Server, error) {
	if st == nil {
		return nil, errors.New("api: nil store")
	}

	r := gin.New()
	s := &Server{router: r, store: st}
	s.registerMiddleware()
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}

func (s *Server) registerRoutes() error {
	api := s.router.Group("/api")

	apiKey := strings.TrimSpace(os.Getenv("AURA_API_KEY"))
	if apiKey != "" {
		api.Use(apiKeyAuthMiddleware(apiKey))
	} else if strings.EqualFold(strings.TrimSpace(os.Getenv("AURA_DISABLE_AUTH")), "true") {
		// Explicitly allow unauthenticated access.
	} else {
		return errors.New("api: missing auth configuration: set AURA_API_KEY or set AURA_DISABLE_AUTH=true")
	}

	api.GET("/health", s.handleHealth)
	api.GET("/categories", s.handleCategories)
	api.GET("/leaderboard", s.handleLeaderboard)
	api.GET("/leaderboard/history", s.handleModelHistory)
	api.GET("/runs", s.handleGenerationRuns)
	return nil
}

// Package server exposes the phrase matching workflow as a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/gin-gonic/gin"
	"github.com/phrasefit/phrasefit/internal/match"
	"github.com/phrasefit/phrasefit/internal/openrouter"
)

// LLM is the slice of the OpenRouter client the handlers call directly.
// Text completion goes through the match service instead.
type LLM interface {
	GenerateImage(ctx context.Context, req openrouter.ImageRequest) (*openrouter.ImageResult, error)
	ListModels(ctx context.Context) (*openrouter.ModelCatalog, error)
}

// Server wires the match service, the LLM client and the gin router.
type Server struct {
	conf    Config
	service *match.Service
	llm     LLM
	router  *gin.Engine
}

// New builds the server and its routes. All dependencies are injected so
// tests can swap the LLM for a fake.
func New(conf Config, service *match.Service, llm LLM) *Server {
	gin.SetMode(conf.GinMode)
	s := &Server{
		conf:    conf,
		service: service,
		llm:     llm,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router = gin.New()
	s.router.Use(gin.Recovery())

	s.router.GET("/healthz", s.healthz)

	api := s.router.Group("/api")
	api.Use(s.authenticate)
	{
		api.GET("/postings", s.listPostings)
		api.POST("/postings", s.createPosting)
		api.GET("/postings/:id", s.getPosting)
		api.DELETE("/postings/:id", s.deletePosting)
		api.GET("/postings/:id/summary", s.postingSummary)
		api.POST("/postings/:id/extract", s.extractKeywords)

		api.GET("/postings/:id/keywords", s.listKeywords)
		api.PATCH("/keywords/:id", s.setMatched)
		api.DELETE("/keywords/:id", s.deleteKeyword)
		api.POST("/keywords/:id/draft", s.draftPhrases)

		api.GET("/keywords/:id/phrases", s.listPhrases)
		api.POST("/phrases/:id/adopt", s.adoptPhrase)
		api.DELETE("/phrases/:id", s.deletePhrase)

		api.GET("/models", s.listModels)
		api.POST("/images", s.generateImage)
	}
}

// Handler returns the http handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.conf.Listen,
		Handler: s.router,
	}

	errChan := make(chan error, 1)
	go func() {
		ancli.PrintOK(fmt.Sprintf("listening on %v\n", s.conf.Listen))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down gracefully: %w", err)
	}
	ancli.PrintOK("server stopped\n")
	return nil
}

// authenticate checks the bearer token when an api key is configured.
// With no key configured the API is open, which suits local use.
func (s *Server) authenticate(c *gin.Context) {
	if s.conf.APIKey == "" {
		return
	}
	auth := c.GetHeader("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token != s.conf.APIKey {
		writeError(c, http.StatusUnauthorized, "authentication_error", "invalid or missing api key")
		return
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "phrasefit",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

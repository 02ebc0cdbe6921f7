// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes generation and the draft workflow over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/post-engine/internal/drafts"
	"github.com/pdiddy/post-engine/internal/generate"
	"github.com/pdiddy/post-engine/internal/publish"
	"github.com/pdiddy/post-engine/pkg/types"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8000"

const shutdownTimeout = 30 * time.Second

// PostGenerator produces validated posts.
type PostGenerator interface {
	Generate(ctx context.Context, req types.GenerationRequest) (types.GeneratedPost, error)
}

// DraftStore is the subset of the draft store the API uses.
type DraftStore interface {
	Create(ctx context.Context, nd drafts.NewDraft) (types.Draft, error)
	List(ctx context.Context) ([]types.Draft, error)
	UpdateContent(ctx context.Context, id int64, content string) (types.Draft, error)
	Delete(ctx context.Context, id int64) error
}

// Publisher sends a stored draft.
type Publisher interface {
	Publish(ctx context.Context, id int64) (types.Draft, error)
}

var errPostingDisabled = errors.New("posting is not configured")

// Server wires the handlers. A nil Publisher disables the publish route.
type Server struct {
	gen        PostGenerator
	store      DraftStore
	pub        Publisher
	logger     *zap.Logger
	metrics    *Metrics
	genTimeout time.Duration
}

// New builds a Server.
func New(gen PostGenerator, store DraftStore, pub Publisher, logger *zap.Logger, metrics *Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{gen: gen, store: store, pub: pub, logger: logger, metrics: metrics, genTimeout: generate.DefaultTimeout}
}

// WithGenerationTimeout sets the per-generation timeout the HTTP write
// timeout is derived from. Non-positive values keep the default.
func (s *Server) WithGenerationTimeout(d time.Duration) *Server {
	if d > 0 {
		s.genTimeout = d
	}
	return s
}

// WriteTimeout leaves room for a full generation plus storing the draft.
func (s *Server) WriteTimeout() time.Duration {
	return 2 * s.genTimeout
}

// Router returns the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AccessLog(s.logger), gin.Recovery(), s.metrics.Middleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Post Engine API", "status": "running"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", s.metrics.Handler())

	r.POST("/generate-post", s.generatePost)
	r.PUT("/edit-post/:id", s.editPost)
	r.POST("/publish-post/:id", s.publishPost)
	r.GET("/posts", s.listPosts)
	r.DELETE("/posts/:id", s.deletePost)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.WriteTimeout(),
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

type generateBody struct {
	Topic           string  `json:"topic"`
	Tone            *string `json:"tone"`
	IncludeHashtags *bool   `json:"include_hashtags"`
	TargetAudience  *string `json:"target_audience"`
}

func (b generateBody) request() types.GenerationRequest {
	req := types.NewGenerationRequest(b.Topic)
	if b.Tone != nil {
		req.Tone = *b.Tone
	}
	if b.IncludeHashtags != nil {
		req.IncludeHashtags = *b.IncludeHashtags
	}
	if b.TargetAudience != nil {
		req.TargetAudience = *b.TargetAudience
	}
	return req.WithDefaults()
}

type editBody struct {
	Content string `json:"content"`
}

func (s *Server) generatePost(c *gin.Context) {
	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.metrics.IncGeneration("bad_request", 0)
		badRequest(c, "Invalid request format")
		return
	}
	req := body.request()

	start := time.Now()
	post, err := s.gen.Generate(c.Request.Context(), req)
	s.metrics.IncGeneration(generationOutcome(err), time.Since(start))
	if err != nil {
		s.fail(c, err)
		return
	}

	d, err := s.store.Create(c.Request.Context(), drafts.NewDraft{Content: post.Text, Topic: req.Topic, Tone: req.Tone})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) editPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body editBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	d, err := s.store.UpdateContent(c.Request.Context(), id, body.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) publishPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if s.pub == nil {
		s.metrics.IncPublish("disabled")
		s.fail(c, errPostingDisabled)
		return
	}
	if _, err := s.pub.Publish(c.Request.Context(), id); err != nil {
		s.metrics.IncPublish("error")
		s.fail(c, err)
		return
	}
	s.metrics.IncPublish("ok")
	c.JSON(http.StatusOK, gin.H{"message": "Post published successfully", "post_id": id})
}

func (s *Server) listPosts(c *gin.Context) {
	posts, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if posts == nil {
		posts = []types.Draft{}
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) deletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid post id")
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// fail maps domain errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// StatusFor returns the HTTP status for an error from the pipeline, the
// store or the publisher.
func StatusFor(err error) int {
	var (
		valErr  *generate.ValidationError
		genErr  *generate.GenerationError
		postErr *publish.PostError
	)
	switch {
	case errors.Is(err, generate.ErrInvalidArgument), errors.Is(err, drafts.ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, drafts.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &genErr), errors.As(err, &postErr):
		return http.StatusBadGateway
	case errors.Is(err, errPostingDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func generationOutcome(err error) string {
	var (
		valErr *generate.ValidationError
		genErr *generate.GenerationError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, generate.ErrInvalidArgument):
		return "invalid_argument"
	case errors.As(err, &valErr):
		return "validation_error"
	case errors.As(err, &genErr):
		return "generation_error"
	default:
		return "error"
	}
}

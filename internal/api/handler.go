package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	classifier "github.com/FrenchMajesty/emotion-classifier"
	"github.com/FrenchMajesty/emotion-classifier/pkg/emoji"
)

const (
	// RequestIDHeader carries the request ID in and out.
	RequestIDHeader = "X-Request-ID"

	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 1 << 20

	// DefaultMaxBatch bounds the number of texts in one batch request.
	DefaultMaxBatch = 256

	requestIDKey = "request_id"
)

// Classifier is the part of *classifier.Classifier the handler needs.
type Classifier interface {
	Classify(ctx context.Context, text string) *classifier.Result
	ClassifyBatch(ctx context.Context, texts []string) ([]*classifier.Result, error)
	Classes() []string
	Available() bool
	GetMetrics() classifier.Metrics
}

// Options tunes the handler. Zero values fall back to defaults.
type Options struct {
	MaxBodyBytes int64
	MaxBatch     int
	Logger       *slog.Logger
}

// Handler implements all HTTP endpoints.
type Handler struct {
	clf          Classifier
	maxBodyBytes int64
	maxBatch     int
	logger       *slog.Logger
}

// New creates a Handler serving clf.
func New(clf Classifier, opts Options) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = DefaultMaxBatch
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{
		clf:          clf,
		maxBodyBytes: opts.MaxBodyBytes,
		maxBatch:     opts.MaxBatch,
		logger:       opts.Logger,
	}
}

// Router returns a gin engine with middleware and all routes mounted.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestID(), h.accessLog(), h.limitBody())
	h.Register(r)
	return r
}

// Register mounts routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/classify", h.classify)
		v1.POST("/classify/batch", h.classifyBatch)
		v1.GET("/labels", h.labels)
		v1.GET("/metrics", h.metrics)
	}
}

// ---------- endpoints ----------

type classifyRequest struct {
	Text *string `json:"text"`
}

type batchRequest struct {
	Texts []string `json:"texts"`
}

type batchResponse struct {
	Results []*classifier.Result `json:"results"`
}

type labelEntry struct {
	Label string `json:"label"`
	Glyph string `json:"glyph,omitempty"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ready(c *gin.Context) {
	if !h.clf.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handler) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing field: text"})
		return
	}

	result := h.clf.Classify(c.Request.Context(), *req.Text)
	result.RequestID = c.GetString(requestIDKey)
	c.JSON(statusFor(result.Outcome), result)
}

func (h *Handler) classifyBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if len(req.Texts) > h.maxBatch {
		c.JSON(http.StatusBadRequest, gin.H{"message": "too many texts in batch", "max": h.maxBatch})
		return
	}

	results, err := h.clf.ClassifyBatch(c.Request.Context(), req.Texts)
	if err != nil {
		h.logger.Warn("batch classification aborted", "request_id", c.GetString(requestIDKey), "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
		return
	}

	id := c.GetString(requestIDKey)
	for _, r := range results {
		r.RequestID = id
	}
	c.JSON(http.StatusOK, batchResponse{Results: results})
}

func (h *Handler) labels(c *gin.Context) {
	classes := h.clf.Classes()
	if classes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "model unavailable"})
		return
	}

	entries := make([]labelEntry, len(classes))
	for i, label := range classes {
		entries[i] = labelEntry{Label: label, Glyph: emoji.Annotate(label)}
	}
	c.JSON(http.StatusOK, gin.H{"labels": entries})
}

func (h *Handler) metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.clf.GetMetrics())
}

// statusFor maps a classification outcome onto an HTTP status.
func statusFor(o classifier.Outcome) int {
	switch o {
	case classifier.OutcomeOK, classifier.OutcomeDistributionInvalid:
		return http.StatusOK
	case classifier.OutcomeInvalidInput:
		return http.StatusUnprocessableEntity
	case classifier.OutcomeModelUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "request body too large", "limit": tooLarge.Limit})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body: " + err.Error()})
}

// ---------- middleware ----------

// requestID reuses the caller's X-Request-ID or assigns a new one.
func (h *Handler) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		h.logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"bytes", c.Writer.Size(),
			"duration", time.Since(start),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

func (h *Handler) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
		c.Next()
	}
}

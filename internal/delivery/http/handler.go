package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trendly/backend/internal/domain"
	"github.com/trendly/backend/internal/usecase"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service        *usecase.AnalysisService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(service *usecase.AnalysisService, maxUploadMB int, logger *zap.Logger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: int64(maxUploadMB) << 20,
		logger:         logger.Named("handler"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "trendly-backend",
		"version": Version,
	})
}

// AnalyzeOutfit handles multipart outfit image uploads.
// The optional category query parameter narrows the returned matches.
func (h *Handler) AnalyzeOutfit(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service not configured"})
		return
	}

	if c.Request.ContentLength > h.maxUploadBytes {
		h.tooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded image"})
		return
	}
	defer file.Close()

	result, err := h.service.AnalyzeAndMatch(c.Request.Context(), usecase.ImageFile{
		Reader:   file,
		MIMEType: fileHeader.Header.Get("Content-Type"),
		Name:     fileHeader.Filename,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		result.Matches = usecase.FilterMatchesByCategory(result.Matches, category)
	}

	c.JSON(http.StatusOK, result)
}

// FindMatches matches an already computed analysis against the catalogs.
// An analysis without detected items yields an empty match list.
func (h *Handler) FindMatches(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service not configured"})
		return
	}

	var analysis domain.AnalysisResult
	if err := c.ShouldBindJSON(&analysis); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis payload"})
		return
	}

	matches, err := h.service.FindMatchingProducts(c.Request.Context(), &analysis)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (h *Handler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload size limit"})
}

// respondError maps usecase errors to HTTP responses
func (h *Handler) respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrEmptyImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request processing failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
	}
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trendly/backend/config"
	"github.com/trendly/backend/internal/domain"
	"github.com/trendly/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	// Run tests
	exitCode := m.Run()

	// Exit with the test result code
	os.Exit(exitCode)
}

const whiteTeeAnalysis = `{
  "detectedItems": [
    {
      "category": "tops",
      "description": "white t-shirt",
      "color": "white",
      "style": "casual",
      "confidence": 0.9,
      "attributes": ["short sleeve"]
    }
  ],
  "outfitContext": {"occasion": "casual", "style": "casual", "season": "summer"},
  "modelContext": {}
}`

// pngImage is enough of a PNG file for content sniffing
var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// fakeGenerator is a canned domain.VisionGenerator
type fakeGenerator struct {
	response string
	err      error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

// fakeCatalog is a fixed domain.CatalogRepository
type fakeCatalog struct {
	products []domain.Product
	err      error
}

func (c *fakeCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return c.products, c.err
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{products: []domain.Product{
		{
			ID:          "tee-1",
			Name:        "Classic White T-Shirt",
			Category:    "tops",
			Description: "Casual white cotton t-shirt with short sleeves",
		},
		{
			ID:          "jeans-1",
			Name:        "Slim Blue Jeans",
			Category:    "bottoms",
			Description: "Casual blue denim jeans",
		},
	}}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"https://app.trendly.style", "http://localhost:*"},
			MaxUploadMB:    1,
		},
	}
}

func newTestService(generator domain.VisionGenerator, catalog domain.CatalogRepository) *usecase.AnalysisService {
	logger := zap.NewNop()
	return usecase.NewAnalysisService(
		usecase.NewVisionAnalyzer(generator, logger),
		usecase.NewInternalMatcher(catalog, usecase.DefaultInternalMatchThreshold),
		usecase.NewExternalMatcher(nil, usecase.DefaultExternalMatchThreshold),
		nil,
		usecase.AnalysisServiceConfig{},
		logger,
	)
}

// setupTestRouter creates a test router backed by a canned model and catalog
func setupTestRouter(t *testing.T, generator domain.VisionGenerator, catalog domain.CatalogRepository) *gin.Engine {
	t.Helper()

	cfg := testConfig()
	handler := NewHandler(newTestService(generator, catalog), cfg.Server.MaxUploadMB, zap.NewNop())
	router := SetupRouter(cfg, handler, zap.NewNop())
	require.NotNil(t, router)

	return router
}

func defaultRouter(t *testing.T) *gin.Engine {
	return setupTestRouter(t, &fakeGenerator{response: whiteTeeAnalysis}, testCatalog())
}

// uploadRequest builds a multipart request carrying data in the image field
func uploadRequest(t *testing.T, path string, field string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "outfit.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type outfitResponse struct {
	Analysis domain.AnalysisResult `json:"analysis"`
	Matches  []domain.ProductMatch `json:"matches"`
}

func matchIDs(matches []domain.ProductMatch) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Product.ID)
	}
	return ids
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := defaultRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "trendly-backend", response["service"])
		version, ok := response["version"].(string)
		assert.True(t, ok && strings.TrimSpace(version) != "", "version = %v, want non-empty string", response["version"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := defaultRouter(t)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(method, "/health", nil))

			assert.Equal(t, http.StatusNotFound, w.Code, "method %s", method)
		}
	})
}

// TestAnalyzeOutfitEndpoint tests the multipart analysis endpoint
func TestAnalyzeOutfitEndpoint(t *testing.T) {
	t.Run("returns analysis and matches", func(t *testing.T) {
		router := defaultRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/outfits/analyze", "image", pngImage))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response outfitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		require.Len(t, response.Analysis.DetectedItems, 1)
		assert.Equal(t, "white t-shirt", response.Analysis.DetectedItems[0].Description)

		ids := matchIDs(response.Matches)
		assert.Contains(t, ids, "tee-1")
		assert.Contains(t, ids, "ext-1")
		assert.NotContains(t, ids, "jeans-1")

		for i := 1; i < len(response.Matches); i++ {
			assert.GreaterOrEqual(t, response.Matches[i-1].Confidence, response.Matches[i].Confidence)
		}
	})

	t.Run("filters matches by category", func(t *testing.T) {
		router := defaultRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/outfits/analyze?category=bottoms", "image", pngImage))

		require.Equal(t, http.StatusOK, w.Code)

		var response outfitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Empty(t, response.Matches)
	})

	t.Run("returns fallback analysis when the model fails", func(t *testing.T) {
		router := setupTestRouter(t, &fakeGenerator{err: errors.New("model offline")}, testCatalog())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/outfits/analyze", "image", pngImage))

		require.Equal(t, http.StatusOK, w.Code)

		var response outfitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		require.Len(t, response.Analysis.DetectedItems, 1)
		assert.Equal(t, "Clothing item detected", response.Analysis.DetectedItems[0].Description)
		assert.Equal(t, "everyday", response.Analysis.OutfitContext.Style)
	})

	t.Run("returns 400 without an image field", func(t *testing.T) {
		router := defaultRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/outfits/analyze", "photo", pngImage))

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "image file is required", response["error"])
	})

	t.Run("returns 400 for non-image content", func(t *testing.T) {
		router := defaultRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/outfits/analyze", "image", []byte("plain text, not a photo")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 400 for an empty image", func(t *testing.T) {
		router := defaultRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/outfits/analyze", "image", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 413 above the upload limit", func(t *testing.T) {
		router := defaultRouter(t)

		oversized := append(append([]byte{}, pngImage...), bytes.Repeat([]byte{0}, 2<<20)...)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/outfits/analyze", "image", oversized))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("returns 500 when the catalog fails", func(t *testing.T) {
		router := setupTestRouter(t, &fakeGenerator{response: whiteTeeAnalysis}, &fakeCatalog{err: errors.New("db down")})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/outfits/analyze", "image", pngImage))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

// TestFindMatchesEndpoint tests matching a precomputed analysis
func TestFindMatchesEndpoint(t *testing.T) {
	post := func(router *gin.Engine, payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/matches", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("returns matches for an analysis", func(t *testing.T) {
		w := post(defaultRouter(t), whiteTeeAnalysis)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response struct {
			Matches []domain.ProductMatch `json:"matches"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.NotEmpty(t, response.Matches)
		assert.Equal(t, "tee-1", response.Matches[0].Product.ID)
		assert.Equal(t, "High Match", response.Matches[0].Label)
	})

	t.Run("returns 400 for invalid JSON", func(t *testing.T) {
		w := post(defaultRouter(t), `{invalid json}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns an empty list without detected items", func(t *testing.T) {
		w := post(defaultRouter(t), `{"detectedItems":[],"outfitContext":{}}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"matches":[]}`, w.Body.String())
	})

	t.Run("validates HTTP method", func(t *testing.T) {
		router := defaultRouter(t)

		for _, method := range []string{"GET", "PUT", "DELETE", "PATCH"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(method, "/api/v1/matches", nil))
			assert.Equal(t, http.StatusNotFound, w.Code, "method %s", method)
		}
	})
}

// TestUnconfiguredService checks handlers without an analysis service
func TestUnconfiguredService(t *testing.T) {
	cfg := testConfig()
	router := SetupRouter(cfg, NewHandler(nil, cfg.Server.MaxUploadMB, zap.NewNop()), zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches", strings.NewReader(whiteTeeAnalysis))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for the deployed frontend", func(t *testing.T) {
		router := defaultRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://app.trendly.style")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.trendly.style", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("analyze endpoint has CORS for any local dev port", func(t *testing.T) {
		router := defaultRouter(t)

		req := uploadRequest(t, "/api/v1/outfits/analyze", "image", pngImage)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("responses carry a request ID", func(t *testing.T) {
		router := defaultRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.NotEmpty(t, w.Header().Get(headerRequestID))
	})
}

// TestRouterRecovery tests panic recovery on the full router
func TestRouterRecovery(t *testing.T) {
	router := defaultRouter(t)

	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestJSONResponses tests that all responses are valid JSON
func TestJSONResponses(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"POST", "/api/v1/matches"},
		{"POST", "/api/v1/outfits/analyze"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			router := defaultRouter(t)

			req := httptest.NewRequest(endpoint.method, endpoint.path, nil)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

			var response map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		})
	}
}

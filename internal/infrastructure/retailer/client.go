package retailer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/trendly/backend/internal/domain"
)

const (
	maxAttempts      = 3
	defaultRetryBase = 500 * time.Millisecond
)

// Client searches an external retailer's product API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	retryBase   time.Duration
	logger      *zap.Logger
}

// NewClient creates a new retailer API client
func NewClient(apiKey, baseURL string, logger *zap.Logger) *Client {
	// 5 requests per second with a burst of 10
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
		retryBase:   defaultRetryBase,
		logger:      logger.Named("retailer"),
	}
}

// retryDelay returns the wait before the next attempt
func (c *Client) retryDelay(attempt int) time.Duration {
	return time.Duration(attempt) * c.retryBase
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Trendly/1.0")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetailerAPIFailure, err)
	}

	return resp, nil
}

// SearchProducts returns the retailer's products for a category.
// Transport errors, 429 and 5xx responses are retried; an unknown category yields no products.
func (c *Client) SearchProducts(ctx context.Context, category string) ([]domain.Product, error) {
	params := url.Values{}
	params.Add("category", category)
	params.Add("limit", "50")
	reqURL := fmt.Sprintf("%s/v1/products/search?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.logger.Warn("Retailer request failed",
				zap.Int("attempt", attempt),
				zap.String("category", category),
				zap.Error(err))
			lastErr = err
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return []domain.Product{}, nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			c.logger.Warn("Retailer API error",
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode),
				zap.String("category", category))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrRetailerAPIFailure, resp.StatusCode)
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrRetailerAPIFailure, resp.StatusCode, string(body))
		}

		if readErr != nil {
			return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrRetailerAPIFailure, readErr)
		}

		var searchResp SearchResponse
		if err := sonic.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrRetailerAPIFailure, err)
		}

		products := MapToProducts(searchResp.Products)
		c.logger.Debug("Retailer products found",
			zap.String("category", category),
			zap.Int("count", len(products)))

		return products, nil
	}

	c.logger.Error("All retailer retries failed", zap.String("category", category), zap.Error(lastErr))
	return nil, lastErr
}

// wait sleeps before the next attempt unless it was the last one or ctx ends
func (c *Client) wait(ctx context.Context, attempt int) error {
	if attempt == maxAttempts {
		return nil
	}

	timer := time.NewTimer(c.retryDelay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrRetailerAPIFailure, ctx.Err())
	case <-timer.C:
		return nil
	}
}

package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrEmptyImage is returned when an uploaded image has no content
	ErrEmptyImage = errors.New("image is empty")

	// ErrImageRead is returned when the image bytes cannot be read
	ErrImageRead = errors.New("failed to read image")

	// ErrModelResponse is returned when the vision model returns no usable content
	ErrModelResponse = errors.New("vision model returned no usable response")

	// ErrResponseParse is returned when the vision model response holds no valid JSON object
	ErrResponseParse = errors.New("failed to parse vision model response")

	// ErrVisionUnavailable is returned when the vision model cannot be reached
	ErrVisionUnavailable = errors.New("vision model request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrCatalogUnavailable is returned when the product catalog cannot be read
	ErrCatalogUnavailable = errors.New("product catalog unavailable")

	// ErrRetailerAPIFailure is returned when the external retailer API request fails
	ErrRetailerAPIFailure = errors.New("retailer API request failed")

	// ErrMatcherFailed is returned when any catalog matcher fails during matching
	ErrMatcherFailed = errors.New("product matching failed")
)

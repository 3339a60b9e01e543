package ml

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when the backend credentials are missing
	ErrNotConfigured = errors.New("vision model not configured")
	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("no content in model response")
)

// Model represents a vision-capable language model that can read wine labels
type Model interface {
	// Load initializes the model client with its configuration
	Load(ctx context.Context) error
	// Configured reports whether the backend credentials are present
	Configured() bool
	// ProcessImage sends the label prompt and the image (a data URI) to the
	// model and returns its raw text reply
	ProcessImage(ctx context.Context, imageDataURI string) (string, error)
	// Close releases the underlying client
	Close() error
}

// ModelFactory creates a new model instance based on configuration
type ModelFactory interface {
	// CreateModel creates a new model instance
	CreateModel() (Model, error)
}

// NewModel creates a new model instance for the configured provider
func NewModel(cfg Config) (Model, error) {
	var factory ModelFactory

	switch cfg.Provider {
	case ProviderOpenAI, "":
		factory = NewOpenAIModelFactory(cfg.OpenAI)
	case ProviderGoogle:
		factory = NewGoogleModelFactory(cfg.Google)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Provider)
	}
	return factory.CreateModel()
}

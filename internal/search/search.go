// Package search finds bottle photos through the Google Custom Search JSON API.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// ErrNotConfigured is returned when the API key or engine id is missing
var ErrNotConfigured = errors.New("image search not configured")

// Config holds the Custom Search credentials
type Config struct {
	APIKey   string `json:"api_key"`
	EngineID string `json:"engine_id"`
	Endpoint string `json:"endpoint"` // optional API endpoint override
}

// Configured reports whether both the API key and engine id are set
func (c Config) Configured() bool {
	return c.APIKey != "" && c.EngineID != ""
}

// Searcher finds an image for a composed query
type Searcher interface {
	// Configured reports whether searches can be issued
	Configured() bool
	// FirstImage returns the link of the first image result, or "" when
	// the search matched nothing
	FirstImage(ctx context.Context, query string) (string, error)
}

// GoogleSearcher implements Searcher with the Custom Search API
type GoogleSearcher struct {
	config  Config
	service *customsearch.Service
}

// NewGoogleSearcher creates a searcher. Without credentials no client is
// built and the searcher reports itself unconfigured.
func NewGoogleSearcher(ctx context.Context, cfg Config, opts ...option.ClientOption) (*GoogleSearcher, error) {
	s := &GoogleSearcher{config: cfg}
	if !cfg.Configured() {
		slog.Warn("Google image search credentials not set, image search disabled")
		return s, nil
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}
	s.service = service
	return s, nil
}

// Configured reports whether the searcher has credentials
func (s *GoogleSearcher) Configured() bool {
	return s.service != nil
}

// FirstImage runs a single photo search and returns the first result link
func (s *GoogleSearcher) FirstImage(ctx context.Context, query string) (string, error) {
	if s.service == nil {
		return "", ErrNotConfigured
	}

	slog.Debug("searching images", "query", query)

	res, err := s.service.Cse.List().
		Q(query).
		Cx(s.config.EngineID).
		SearchType("image").
		ImgType("photo").
		Num(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	if len(res.Items) == 0 {
		return "", nil
	}
	return res.Items[0].Link, nil
}

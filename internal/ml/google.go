package ml

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// GoogleModel implements the Model interface for Google's Vertex AI
type GoogleModel struct {
	config GoogleConfig
	client *genai.Client
	model  *genai.GenerativeModel
}

// GoogleModelFactory implements ModelFactory for Google models
type GoogleModelFactory struct {
	config GoogleConfig
}

// NewGoogleModelFactory creates a new Google model factory
func NewGoogleModelFactory(config GoogleConfig) *GoogleModelFactory {
	return &GoogleModelFactory{config: config}
}

// CreateModel creates a new Google model instance
func (f *GoogleModelFactory) CreateModel() (Model, error) {
	return &GoogleModel{
		config: f.config,
	}, nil
}

// Load initializes the Vertex AI client. Without a project the model stays
// unconfigured and Load is a no-op.
func (m *GoogleModel) Load(ctx context.Context) error {
	if m.config.ProjectID == "" {
		slog.Warn("Vertex AI project not set, label analysis disabled")
		return nil
	}

	opts := []option.ClientOption{}
	if m.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(m.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, m.config.ProjectID, m.config.Location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	m.client = client
	m.model = client.GenerativeModel(m.config.Model)
	m.model.SetMaxOutputTokens(MaxOutputTokens)
	return nil
}

// Configured reports whether a Vertex AI project was provided
func (m *GoogleModel) Configured() bool {
	return m.config.ProjectID != ""
}

// ProcessImage asks Gemini to describe the wine label in imageDataURI
func (m *GoogleModel) ProcessImage(ctx context.Context, imageDataURI string) (string, error) {
	if m.model == nil {
		return "", ErrNotConfigured
	}

	format, data, err := DecodeDataURI(imageDataURI)
	if err != nil {
		return "", err
	}

	slog.Debug("calling Vertex AI vision model", "model", m.config.Model, "format", format, "image_size", len(data))

	resp, err := m.model.GenerateContent(ctx, genai.Text(labelPrompt), genai.ImageData(format, data))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			texts = append(texts, string(text))
		}
	}
	if len(texts) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.Join(texts, ""), nil
}

// Close releases the Vertex AI client
func (m *GoogleModel) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

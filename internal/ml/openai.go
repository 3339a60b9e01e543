package ml

import (
	"context"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIModel implements the Model interface with OpenAI chat completions
type OpenAIModel struct {
	config OpenAIConfig
	client *openai.Client
}

// OpenAIModelFactory implements ModelFactory for OpenAI models
type OpenAIModelFactory struct {
	config OpenAIConfig
}

// NewOpenAIModelFactory creates a new OpenAI model factory
func NewOpenAIModelFactory(config OpenAIConfig) *OpenAIModelFactory {
	return &OpenAIModelFactory{config: config}
}

// CreateModel creates a new OpenAI model instance
func (f *OpenAIModelFactory) CreateModel() (Model, error) {
	return &OpenAIModel{
		config: f.config,
	}, nil
}

// Load initializes the OpenAI client. Without an API key the model stays
// unconfigured and Load is a no-op.
func (m *OpenAIModel) Load(ctx context.Context) error {
	if m.config.APIKey == "" {
		slog.Warn("OpenAI API key not set, label analysis disabled")
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(m.config.APIKey),
		option.WithMaxRetries(0),
	}
	if m.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(m.config.BaseURL))
	}

	client := openai.NewClient(opts...)
	m.client = &client
	return nil
}

// Configured reports whether an API key was provided
func (m *OpenAIModel) Configured() bool {
	return m.config.APIKey != ""
}

// ProcessImage asks the model to describe the wine label in imageDataURI
func (m *OpenAIModel) ProcessImage(ctx context.Context, imageDataURI string) (string, error) {
	if m.client == nil {
		return "", ErrNotConfigured
	}

	slog.Debug("calling OpenAI vision model", "model", m.config.Model, "image_size", len(imageDataURI))

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(labelPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: imageDataURI,
				}),
			}),
		},
		MaxTokens: openai.Int(MaxOutputTokens),
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	slog.Debug("OpenAI response received",
		"length", len(resp.Choices[0].Message.Content),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the OpenAI client holds no resources
func (m *OpenAIModel) Close() error {
	return nil
}

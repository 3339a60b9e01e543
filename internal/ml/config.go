package ml

const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"

	// MaxOutputTokens caps the generated reply for a label analysis
	MaxOutputTokens = 1000

	defaultOpenAIModel = "gpt-4o"
	defaultGoogleModel = "gemini-1.5-flash"
	defaultLocation    = "us-central1"
)

// Config selects and configures the vision model backend
type Config struct {
	Provider string       `json:"provider"` // "openai" or "google"
	OpenAI   OpenAIConfig `json:"openai"`
	Google   GoogleConfig `json:"google"`
}

// OpenAIConfig holds configuration for the OpenAI model
type OpenAIConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
}

// GoogleConfig holds configuration for the Vertex AI model
type GoogleConfig struct {
	ProjectID       string `json:"project_id"`
	Location        string `json:"location"`
	CredentialsFile string `json:"credentials_file"`
	Model           string `json:"model"`
}

// SetDefaults fills unset model names and locations
func (c *Config) SetDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = defaultOpenAIModel
	}
	if c.Google.Model == "" {
		c.Google.Model = defaultGoogleModel
	}
	if c.Google.Location == "" {
		c.Google.Location = defaultLocation
	}
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/franckalain/winelens/internal/auth"
	"github.com/franckalain/winelens/internal/clientconfig"
	"github.com/franckalain/winelens/internal/logging"
	"github.com/franckalain/winelens/internal/ml"
	"github.com/franckalain/winelens/internal/search"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server struct {
		Port            string `json:"port"`
		PublicURL       string `json:"public_url"`
		ShutdownSeconds int    `json:"shutdown_timeout_seconds"`
		MaxBodyBytes    int64  `json:"max_body_bytes"`
	} `json:"server"`

	Log    logging.Config      `json:"log"`
	Auth   auth.Config         `json:"auth"`
	ML     ml.Config           `json:"ml"`
	Search search.Config       `json:"search"`
	Client clientconfig.Source `json:"client"`
}

// ShutdownTimeout returns the graceful shutdown window
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

// LoadConfig loads configuration from a JSON file, then fills anything the
// file left unset from the environment (including a .env file). A missing
// file is not an error so the service can run from environment alone.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	var config Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(&config)
	setDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// applyEnv falls back to environment variables for values the file did not set
func applyEnv(c *Config) {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.PublicURL, "PUBLIC_URL")
	setInt(&c.Server.ShutdownSeconds, "SHUTDOWN_TIMEOUT_SECONDS")

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	setString(&c.Auth.Mode, "AUTH_MODE")
	setString(&c.Auth.ProjectID, "FIREBASE_PROJECT_ID")
	setString(&c.Auth.CertsURL, "AUTH_CERTS_URL")
	setString(&c.Auth.Secret, "AUTH_JWT_SECRET")
	setString(&c.Auth.Issuer, "AUTH_JWT_ISSUER")
	setString(&c.Auth.Audience, "AUTH_JWT_AUDIENCE")

	setString(&c.ML.Provider, "VISION_PROVIDER")
	setString(&c.ML.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.ML.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.ML.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.ML.Google.ProjectID, "GOOGLE_PROJECT_ID")
	setString(&c.ML.Google.Location, "GOOGLE_LOCATION")
	setString(&c.ML.Google.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	setString(&c.ML.Google.Model, "GOOGLE_MODEL")

	setString(&c.Search.APIKey, "GOOGLE_SEARCH_API_KEY")
	setString(&c.Search.EngineID, "GOOGLE_SEARCH_ENGINE_ID")
	setString(&c.Search.Endpoint, "GOOGLE_SEARCH_ENDPOINT")

	setString(&c.Client.File, "CLIENT_CONFIG_FILE")
	setString(&c.Client.Identity.APIKey, "FIREBASE_API_KEY")
	setString(&c.Client.Identity.AuthDomain, "FIREBASE_AUTH_DOMAIN")
	setString(&c.Client.Identity.ProjectID, "FIREBASE_PROJECT_ID")
	setString(&c.Client.Identity.StorageBucket, "FIREBASE_STORAGE_BUCKET")
	setString(&c.Client.Identity.MessagingSenderID, "FIREBASE_MESSAGING_SENDER_ID")
	setString(&c.Client.Identity.AppID, "FIREBASE_APP_ID")
}

func setDefaults(c *Config) {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = "http://localhost:" + c.Server.Port
	}
	if c.Server.ShutdownSeconds <= 0 {
		c.Server.ShutdownSeconds = 30
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 10 << 20
	}
	if c.Auth.Mode == "" {
		c.Auth.Mode = auth.ModeFirebase
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = c.Server.PublicURL
	}
	if c.Client.Identity.ProjectID == "" {
		c.Client.Identity.ProjectID = c.Auth.ProjectID
	}
	c.ML.SetDefaults()
}

// Validate checks settings that would otherwise fail on the first request
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}

	switch c.Auth.Mode {
	case auth.ModeFirebase:
		if c.Auth.ProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for firebase auth")
		}
	case auth.ModeSecret:
		if c.Auth.Secret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required for secret auth")
		}
	default:
		return fmt.Errorf("unsupported auth mode: %s", c.Auth.Mode)
	}

	switch c.ML.Provider {
	case ml.ProviderOpenAI, ml.ProviderGoogle:
	default:
		return fmt.Errorf("unsupported vision provider: %s", c.ML.Provider)
	}

	return nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("WINELENS_CONFIG"); path != "" {
		return path
	}

	// Then try config directory
	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	// Finally, try current directory
	return "config.json"
}

func setString(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func setInt(dst *int, key string) {
	if *dst != 0 {
		return
	}
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

// Package clientconfig holds the static record the client application uses to
// reach the identity provider and the service endpoints.
//
// The record carries public client identifiers only. Server-side secrets
// (model and search API keys, signing secrets) never belong here.
package clientconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Route paths served by the backend
const (
	PathAnalyzeWineLabel = "/analyzeWineLabel"
	PathSearchWineImage  = "/searchWineImage"
	PathHealth           = "/health"
	PathClientConfig     = "/clientConfig"
)

// Identity holds the identity provider connection parameters
type Identity struct {
	APIKey            string `json:"apiKey" yaml:"apiKey"`
	AuthDomain        string `json:"authDomain" yaml:"authDomain"`
	ProjectID         string `json:"projectId" yaml:"projectId"`
	StorageBucket     string `json:"storageBucket" yaml:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId" yaml:"messagingSenderId"`
	AppID             string `json:"appId" yaml:"appId"`
}

// Endpoints holds the absolute URLs of the three client-facing endpoints
type Endpoints struct {
	AnalyzeWineLabel string `json:"analyzeWineLabel" yaml:"analyzeWineLabel"`
	SearchWineImage  string `json:"searchWineImage" yaml:"searchWineImage"`
	Health           string `json:"health" yaml:"health"`
}

// ClientConfig is the record served to the client application
type ClientConfig struct {
	Identity  Identity  `json:"identity" yaml:"identity"`
	Endpoints Endpoints `json:"endpoints" yaml:"endpoints"`
}

// Source tells Resolve where the record comes from
type Source struct {
	File     string   `json:"file"`
	BaseURL  string   `json:"base_url"`
	Identity Identity `json:"identity"`
}

// Resolve loads the record from src.File when set, otherwise derives it
// from the public base URL and identity parameters.
func Resolve(src Source) (*ClientConfig, error) {
	if src.File != "" {
		return Load(src.File)
	}
	cfg := Derive(src.BaseURL, src.Identity)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML client configuration file
func Load(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client config file: %w", err)
	}

	var cfg ClientConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config %s: %w", path, err)
	}
	return &cfg, nil
}

// Derive builds the record for a backend reachable at baseURL
func Derive(baseURL string, identity Identity) *ClientConfig {
	base := strings.TrimSuffix(baseURL, "/")
	if identity.AuthDomain == "" && identity.ProjectID != "" {
		identity.AuthDomain = identity.ProjectID + ".firebaseapp.com"
	}
	return &ClientConfig{
		Identity: identity,
		Endpoints: Endpoints{
			AnalyzeWineLabel: base + PathAnalyzeWineLabel,
			SearchWineImage:  base + PathSearchWineImage,
			Health:           base + PathHealth,
		},
	}
}

// Validate checks that every endpoint is set
func (c *ClientConfig) Validate() error {
	var errs []error
	if c.Endpoints.AnalyzeWineLabel == "" {
		errs = append(errs, errors.New("endpoints.analyzeWineLabel is required"))
	}
	if c.Endpoints.SearchWineImage == "" {
		errs = append(errs, errors.New("endpoints.searchWineImage is required"))
	}
	if c.Endpoints.Health == "" {
		errs = append(errs, errors.New("endpoints.health is required"))
	}
	return errors.Join(errs...)
}

// YAML renders the record as a YAML document
func (c *ClientConfig) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

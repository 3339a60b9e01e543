// Package auth verifies the bearer credentials presented by the client app.
//
// A Verifier turns a raw token into a Principal. Authenticate applies the
// Authorization header contract on top of a Verifier and returns an explicit
// Result so callers never have to infer a rejection from a nil value.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMissingToken = errors.New("authorization token required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

const (
	bearerPrefix = "Bearer "

	MessageNoToken      = "Unauthorized - No token provided"
	MessageInvalidToken = "Unauthorized - Invalid token"

	ModeFirebase = "firebase"
	ModeSecret   = "secret"
)

// Principal is the identity decoded from a verified token
type Principal struct {
	UID    string
	Email  string
	Issuer string
}

// Verifier validates a bearer token against an identity service
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// Config selects and configures the token verifier
type Config struct {
	Mode      string `json:"mode"` // "firebase" or "secret"
	ProjectID string `json:"project_id"`
	CertsURL  string `json:"certs_url"`
	Secret    string `json:"secret"`
	Issuer    string `json:"issuer"`
	Audience  string `json:"audience"`
}

// NewVerifier builds the verifier selected by cfg.Mode
func NewVerifier(cfg Config, client *http.Client) (Verifier, error) {
	switch cfg.Mode {
	case ModeFirebase, "":
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("firebase verifier requires a project id")
		}
		return NewFirebaseVerifier(cfg.ProjectID, cfg.CertsURL, client), nil
	case ModeSecret:
		if cfg.Secret == "" {
			return nil, fmt.Errorf("secret verifier requires a secret")
		}
		return NewSecretVerifier(cfg.Secret, cfg.Issuer, cfg.Audience), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}

// Result is the outcome of authenticating a request. On failure Principal is
// nil and Status/Message hold the reply the caller must send.
type Result struct {
	Principal *Principal
	Status    int
	Message   string
	Err       error
}

// OK reports whether the request carried a valid credential
func (r Result) OK() bool {
	return r.Principal != nil
}

// Authenticate reads the bearer token from r and verifies it
func Authenticate(r *http.Request, v Verifier) Result {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return Result{
			Status:  http.StatusUnauthorized,
			Message: MessageNoToken,
			Err:     ErrMissingToken,
		}
	}

	principal, err := v.Verify(r.Context(), strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		return Result{
			Status:  http.StatusUnauthorized,
			Message: MessageInvalidToken,
			Err:     err,
		}
	}

	return Result{Principal: principal, Status: http.StatusOK}
}

package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultCertsURL publishes the X.509 certificates that sign identity platform ID tokens
	DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

	issuerPrefix      = "https://securetoken.google.com/"
	defaultKeysMaxAge = time.Hour
	certsFetchTimeout = 10 * time.Second
)

var errUnknownKey = errors.New("token signed with unknown key")

// FirebaseVerifier validates RS256 ID tokens issued by the identity platform
// for a single project. Signing keys are cached for as long as the
// certificate endpoint's Cache-Control max-age allows.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	now       func() time.Time

	mu     sync.RWMutex
	keys   map[string]*rsa.PublicKey
	expiry time.Time
}

// NewFirebaseVerifier creates a verifier for projectID. An empty certsURL
// uses DefaultCertsURL and a nil client uses a client with a fetch timeout.
func NewFirebaseVerifier(projectID, certsURL string, client *http.Client) *FirebaseVerifier {
	if certsURL == "" {
		certsURL = DefaultCertsURL
	}
	if client == nil {
		client = &http.Client{Timeout: certsFetchTimeout}
	}
	return &FirebaseVerifier{
		projectID: projectID,
		certsURL:  certsURL,
		client:    client,
		now:       time.Now,
	}
}

// Verify parses and validates an ID token, returning its principal if valid
func (v *FirebaseVerifier) Verify(ctx context.Context, tokenString string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, fmt.Errorf("%w: missing kid header", errUnknownKey)
			}
			return v.publicKey(ctx, kid)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(issuerPrefix+v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims.principal()
}

func (v *FirebaseVerifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := v.now().Before(v.expiry)
	v.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s", errUnknownKey, kid)
}

func (v *FirebaseVerifier) refreshKeys(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	// another request may have refreshed while we waited for the lock
	if v.keys != nil && v.now().Before(v.expiry) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build certificates request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch signing certificates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch signing certificates: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("failed to decode signing certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(certPEM))
		if err != nil {
			slog.Warn("skipping unparsable signing certificate", "kid", kid, "error", err)
			continue
		}
		keys[kid] = key
	}

	v.keys = keys
	v.expiry = v.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	slog.Debug("signing certificates refreshed", "count", len(keys), "expires", v.expiry)
	return nil
}

// maxAge reads the max-age directive of a Cache-Control header
func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultKeysMaxAge
}

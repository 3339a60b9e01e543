package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/franckalain/winelens/internal/auth"
	"github.com/franckalain/winelens/internal/clientconfig"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodToken = "good-token"

type fakeVerifier struct {
	calls int
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*auth.Principal, error) {
	f.calls++
	if token != goodToken {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Principal{UID: "user-1", Email: "user@example.com"}, nil
}

type fakeModel struct {
	configured bool
	reply      string
	err        error
	panics     bool

	calls     int
	lastImage string
}

func (m *fakeModel) Load(context.Context) error { return nil }
func (m *fakeModel) Configured() bool { return m.configured }
func (m *fakeModel) Close() error { return nil }

func (m *fakeModel) ProcessImage(_ context.Context, image string) (string, error) {
	m.calls++
	m.lastImage = image
	if m.panics {
		panic("model exploded")
	}
	return m.reply, m.err
}

type fakeSearcher struct {
	configured bool
	link       string
	err        error

	calls     int
	lastQuery string
}

func (s *fakeSearcher) Configured() bool { return s.configured }

func (s *fakeSearcher) FirstImage(_ context.Context, query string) (string, error) {
	s.calls++
	s.lastQuery = query
	return s.link, s.err
}

type testEnv struct {
	handler  http.Handler
	verifier *fakeVerifier
	model    *fakeModel
	searcher *fakeSearcher
}

func newTestEnv(model *fakeModel, searcher *fakeSearcher) *testEnv {
	verifier := &fakeVerifier{}
	client := clientconfig.Derive("https://wine.example.com", clientconfig.Identity{APIKey: "pub-key", ProjectID: "wine-app"})
	srv := New(Config{MaxBodyBytes: 1 << 10}, verifier, model, searcher, client)
	return &testEnv{
		handler:  srv.Handler(),
		verifier: verifier,
		model:    model,
		searcher: searcher,
	}
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestProtectedEndpoints_RejectWithoutUpstreamCalls(t *testing.T) {
	tests := []struct {
		name          string
		header        string
		wantMessage   string
		wantVerifyHit bool
	}{
		{name: "no header", wantMessage: auth.MessageNoToken},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantMessage: auth.MessageNoToken},
		{name: "lowercase bearer", header: "bearer " + goodToken, wantMessage: auth.MessageNoToken},
		{name: "bearer without space", header: "Bearer" + goodToken, wantMessage: auth.MessageNoToken},
		{name: "forged token", header: "Bearer forged", wantMessage: auth.MessageInvalidToken, wantVerifyHit: true},
	}

	for _, path := range []string{clientconfig.PathAnalyzeWineLabel, clientconfig.PathSearchWineImage} {
		for _, tt := range tests {
			t.Run(path+"/"+tt.name, func(t *testing.T) {
				env := newTestEnv(
					&fakeModel{configured: true, reply: `{"name":"x"}`},
					&fakeSearcher{configured: true, link: "https://img"},
				)

				req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"imageBase64":"abc","query":"q"}`))
				if tt.header != "" {
					req.Header.Set("Authorization", tt.header)
				}
				rec := httptest.NewRecorder()
				env.handler.ServeHTTP(rec, req)

				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.Equal(t, tt.wantMessage, decode(t, rec)["error"])
				assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, tt.wantVerifyHit, env.verifier.calls > 0)
				assert.Zero(t, env.model.calls)
				assert.Zero(t, env.searcher.calls)
			})
		}
	}
}

func TestPreflight(t *testing.T) {
	paths := map[string]string{
		clientconfig.PathAnalyzeWineLabel: "POST, OPTIONS",
		clientconfig.PathSearchWineImage:  "POST, OPTIONS",
		clientconfig.PathHealth:           "GET, OPTIONS",
		clientconfig.PathClientConfig:     "GET, OPTIONS",
	}

	for path, wantMethods := range paths {
		t.Run(path, func(t *testing.T) {
			env := newTestEnv(&fakeModel{configured: true}, &fakeSearcher{configured: true})

			rec := env.do(http.MethodOptions, path, "", "")

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, rec.Body.String())
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, wantMethods, rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
			assert.Zero(t, env.verifier.calls)
		})
	}
}

func TestProtectedEndpoints_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(&fakeModel{configured: true}, &fakeSearcher{configured: true})

	for _, path := range []string{clientconfig.PathAnalyzeWineLabel, clientconfig.PathSearchWineImage} {
		rec := env.do(http.MethodGet, path, goodToken, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "Method not allowed", decode(t, rec)["error"])
		assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	}
	assert.Zero(t, env.verifier.calls)
}

func TestAnalyzeWineLabel(t *testing.T) {
	tests := []struct {
		name       string
		model      *fakeModel
		body       string
		wantStatus int
		wantError  string
		wantCalls  int
		check      func(t *testing.T, out map[string]any)
	}{
		{
			name:       "json wrapped in prose",
			model:      &fakeModel{configured: true, reply: `Here is the result: {"name":"Chateau X","year":2015,"producer":null} enjoy`},
			body:       `{"imageBase64":"aGVsbG8="}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, true, out["success"])
				data := out["data"].(map[string]any)
				assert.Equal(t, "Chateau X", data["name"])
				assert.Equal(t, float64(2015), data["year"])
				assert.Nil(t, data["producer"])
			},
		},
		{
			name:       "reply without json",
			model:      &fakeModel{configured: true, reply: "I cannot read this label"},
			body:       `{"imageBase64":"aGVsbG8="}`,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to parse wine data",
			wantCalls:  1,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "I cannot read this label", out["raw"])
			},
		},
		{
			name:       "not configured",
			model:      &fakeModel{},
			body:       `{"imageBase64":"aGVsbG8="}`,
			wantStatus: http.StatusInternalServerError,
			wantError:  "OpenAI API not configured",
		},
		{
			name:       "missing image",
			model:      &fakeModel{configured: true},
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "No image provided",
		},
		{
			name:       "malformed body",
			model:      &fakeModel{configured: true},
			body:       `imageBase64=abc`,
			wantStatus: http.StatusBadRequest,
			wantError:  "No image provided",
		},
		{
			name:       "body too large",
			model:      &fakeModel{configured: true},
			body:       `{"imageBase64":"` + strings.Repeat("A", 2<<10) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantError:  "Request body too large",
		},
		{
			name:       "upstream failure",
			model:      &fakeModel{configured: true, err: errors.New("quota exceeded")},
			body:       `{"imageBase64":"aGVsbG8="}`,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to analyze image",
			wantCalls:  1,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "quota exceeded", out["message"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(tt.model, &fakeSearcher{})

			rec := env.do(http.MethodPost, clientconfig.PathAnalyzeWineLabel, goodToken, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCalls, env.model.calls)

			out := decode(t, rec)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, out["error"])
			}
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestAnalyzeWineLabel_ReturnsModelJSONVerbatim(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "partial record in prose",
			reply: `Here is the result: {"name":"Chateau X","year":2015} enjoy`,
			want:  `{"name":"Chateau X","year":2015}`,
		},
		{
			name:  "loosely typed fields",
			reply: `{"name":"Chateau X","year":"2015","characteristics":{"boldness":3.5,"tannins":2,"acidity":4}}`,
			want:  `{"name":"Chateau X","year":"2015","characteristics":{"boldness":3.5,"tannins":2,"acidity":4}}`,
		},
		{
			name:  "extra fields",
			reply: "```json\n" + `{"name":"Chateau X","vintageConfidence":"high","type":"orange"}` + "\n```",
			want:  `{"name":"Chateau X","vintageConfidence":"high","type":"orange"}`,
		},
		{
			name:  "null reply",
			reply: "null",
			want:  `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(&fakeModel{configured: true, reply: tt.reply}, &fakeSearcher{})

			rec := env.do(http.MethodPost, clientconfig.PathAnalyzeWineLabel, goodToken, `{"imageBase64":"aGVsbG8="}`)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, `{"success":true,"data":`+tt.want+"}\n", rec.Body.String())
		})
	}
}

func TestClientErrorsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantReason string
	}{
		{"missing image", http.MethodPost, clientconfig.PathAnalyzeWineLabel, `{}`, http.StatusBadRequest, "No image provided"},
		{"missing query", http.MethodPost, clientconfig.PathSearchWineImage, `{}`, http.StatusBadRequest, "No search query provided"},
		{"wrong method", http.MethodPut, clientconfig.PathAnalyzeWineLabel, "", http.StatusMethodNotAllowed, "Method not allowed"},
		{"body too large", http.MethodPost, clientconfig.PathAnalyzeWineLabel, `{"imageBase64":"` + strings.Repeat("A", 2<<10) + `"}`, http.StatusRequestEntityTooLarge, "Request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			env := newTestEnv(&fakeModel{configured: true}, &fakeSearcher{configured: true})

			rec := env.do(tt.method, tt.path, goodToken, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)

			var entry map[string]any
			var found bool
			for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
				entry = nil
				require.NoError(t, json.Unmarshal(line, &entry))
				if entry["msg"] == "request rejected" {
					found = true
					break
				}
			}
			require.True(t, found, buf.String())
			assert.Equal(t, "WARN", entry["level"])
			assert.Equal(t, tt.wantReason, entry["reason"])
			assert.Equal(t, tt.path, entry["path"])
			assert.Equal(t, float64(tt.wantStatus), entry["status"])
			assert.Equal(t, rec.Header().Get(headerRequestID), entry["requestID"])
		})
	}
}

func TestAnalyzeWineLabel_NormalizesImage(t *testing.T) {
	model := &fakeModel{configured: true, reply: `{"name":"x"}`}
	env := newTestEnv(model, &fakeSearcher{})

	env.do(http.MethodPost, clientconfig.PathAnalyzeWineLabel, goodToken, `{"imageBase64":"aGVsbG8="}`)
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", model.lastImage)

	env.do(http.MethodPost, clientconfig.PathAnalyzeWineLabel, goodToken, `{"imageBase64":"data:image/png;base64,aGVsbG8="}`)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", model.lastImage)
}

func TestSearchWineImage_Query(t *testing.T) {
	tests := []struct {
		wineType string
		want     string
	}{
		{wineType: "rosé", want: "Whispering Angel rosé wine bottle"},
		{wineType: "", want: "Whispering Angel wine bottle"},
		{wineType: "red", want: "Whispering Angel red wine bottle"},
		{wineType: "sparkling", want: "Whispering Angel sparkling wine champagne bottle"},
	}

	for _, tt := range tests {
		t.Run(tt.wineType, func(t *testing.T) {
			searcher := &fakeSearcher{configured: true, link: "https://img.example.com/bottle.jpg"}
			env := newTestEnv(&fakeModel{}, searcher)

			body, err := json.Marshal(map[string]string{"query": "Whispering Angel", "type": tt.wineType})
			require.NoError(t, err)
			rec := env.do(http.MethodPost, clientconfig.PathSearchWineImage, goodToken, string(body))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, searcher.lastQuery)
			out := decode(t, rec)
			assert.Equal(t, true, out["success"])
			assert.Equal(t, "https://img.example.com/bottle.jpg", out["imageUrl"])
			assert.NotContains(t, out, "message")
		})
	}
}

func TestSearchWineImage(t *testing.T) {
	tests := []struct {
		name        string
		searcher    *fakeSearcher
		body        string
		wantStatus  int
		wantError   string
		wantMessage string
		wantCalls   int
	}{
		{
			name:        "no results",
			searcher:    &fakeSearcher{configured: true},
			body:        `{"query":"Obscure Cuvee"}`,
			wantStatus:  http.StatusOK,
			wantMessage: "No images found",
			wantCalls:   1,
		},
		{
			name:        "not configured",
			searcher:    &fakeSearcher{},
			body:        `{"query":"Obscure Cuvee"}`,
			wantStatus:  http.StatusOK,
			wantMessage: "Google Image Search not configured",
		},
		{
			name:       "missing query",
			searcher:   &fakeSearcher{configured: true},
			body:       `{"type":"red"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "No search query provided",
		},
		{
			name:        "upstream failure",
			searcher:    &fakeSearcher{configured: true, err: errors.New("daily limit exceeded")},
			body:        `{"query":"Obscure Cuvee"}`,
			wantStatus:  http.StatusInternalServerError,
			wantError:   "Failed to search images",
			wantMessage: "daily limit exceeded",
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(&fakeModel{}, tt.searcher)

			rec := env.do(http.MethodPost, clientconfig.PathSearchWineImage, goodToken, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalls, tt.searcher.calls)

			out := decode(t, rec)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, out["error"])
			} else {
				assert.Equal(t, true, out["success"])
				assert.Contains(t, out, "imageUrl")
				assert.Nil(t, out["imageUrl"])
			}
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, out["message"])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		model    bool
		searcher bool
	}{
		{false, false},
		{true, false},
		{false, true},
		{true, true},
	}

	for _, tt := range tests {
		env := newTestEnv(&fakeModel{configured: tt.model}, &fakeSearcher{configured: tt.searcher})

		for _, method := range []string{http.MethodGet, http.MethodPost} {
			rec := env.do(method, clientconfig.PathHealth, "", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			out := decode(t, rec)
			assert.Equal(t, "ok", out["status"])
			assert.Equal(t, tt.model, out["openaiConfigured"])
			assert.Equal(t, tt.searcher, out["googleConfigured"])
		}

		assert.Zero(t, env.verifier.calls)
		assert.Zero(t, env.model.calls)
		assert.Zero(t, env.searcher.calls)
	}
}

func TestClientConfig(t *testing.T) {
	env := newTestEnv(&fakeModel{}, &fakeSearcher{})

	rec := env.do(http.MethodGet, clientconfig.PathClientConfig, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg clientconfig.ClientConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "https://wine.example.com/analyzeWineLabel", cfg.Endpoints.AnalyzeWineLabel)
	assert.Equal(t, "wine-app.firebaseapp.com", cfg.Identity.AuthDomain)

	rec = env.do(http.MethodGet, clientconfig.PathClientConfig+"?format=yaml", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "health: https://wine.example.com/health")

	rec = env.do(http.MethodPost, clientconfig.PathClientConfig, "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(&fakeModel{}, &fakeSearcher{})

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, clientconfig.PathHealth, nil)
	req.Header.Set(headerRequestID, id)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(headerRequestID))

	req = httptest.NewRequest(http.MethodGet, clientconfig.PathHealth, nil)
	req.Header.Set(headerRequestID, "not-a-uuid")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	generated := rec.Header().Get(headerRequestID)
	assert.NotEqual(t, "not-a-uuid", generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestPanicRecovery(t *testing.T) {
	env := newTestEnv(&fakeModel{configured: true, panics: true}, &fakeSearcher{})

	rec := env.do(http.MethodPost, clientconfig.PathAnalyzeWineLabel, goodToken, `{"imageBase64":"aGVsbG8="}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(&fakeModel{}, &fakeSearcher{})
	env.do(http.MethodGet, clientconfig.PathHealth, "", "")

	rec := env.do(http.MethodGet, "/metrics", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "winelens_http_requests_total")
	assert.Contains(t, rec.Body.String(), `path="/health"`)
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	srv := New(Config{Port: "0", ShutdownTimeout: time.Second}, &fakeVerifier{}, &fakeModel{}, &fakeSearcher{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

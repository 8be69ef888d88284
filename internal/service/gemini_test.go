package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/geminichat/internal/domain"
)

func newTestGemini(t *testing.T, ts *httptest.Server, opts GeminiOptions) *GeminiService {
	t.Helper()
	opts.APIKey = "test-key"
	opts.BaseURL = ts.URL + "/v1beta"
	if opts.Model == "" {
		opts.Model = "gemini-test"
	}
	opts.HTTPClient = ts.Client()
	svc, err := NewGeminiService(opts)
	require.NoError(t, err)
	return svc
}

func mustResponse(t *testing.T, raw string) *GenerateContentResponse {
	t.Helper()
	var resp GenerateContentResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func TestNewGeminiService_RequiresKey(t *testing.T) {
	_, err := NewGeminiService(GeminiOptions{APIKey: "  "})
	assert.ErrorIs(t, err, domain.ErrEmptyAPIKey)
}

func TestNewGeminiService_Defaults(t *testing.T) {
	svc, err := NewGeminiService(GeminiOptions{APIKey: "k", Model: "models/gemini-1.5-pro"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", svc.Model())
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", svc.baseURL)
}

func TestGenerateContent_RequestShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var got map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(body, &got))
		assert.JSONEq(t, `{}`, string(got["generationConfig"]))
		assert.JSONEq(t, `[
			{"role":"user","parts":[{"text":"a"}]},
			{"role":"model","parts":[{"text":"b"}]}
		]`, string(got["contents"]))

		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`))
	}))
	defer ts.Close()

	svc := newTestGemini(t, ts, GeminiOptions{})
	resp, err := svc.GenerateContent(context.Background(), []Content{
		{Role: RoleUser, Parts: []Part{{Text: "a"}}},
		{Role: RoleModel, Parts: []Part{{Text: "b"}}},
	})
	require.NoError(t, err)

	text, err := ExtractText(resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestGenerateContent_GenerationConfig(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GenerationConfig map[string]any `json:"generationConfig"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 0.4, req.GenerationConfig["temperature"])
		assert.Equal(t, float64(256), req.GenerationConfig["maxOutputTokens"])
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	temp := 0.4
	svc := newTestGemini(t, ts, GeminiOptions{Temperature: &temp, MaxOutputTokens: 256})
	_, err := svc.GenerateContent(context.Background(), nil)
	require.NoError(t, err)
}

func TestGenerateContent_NonJSONBodyIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer ts.Close()

	svc := newTestGemini(t, ts, GeminiOptions{})
	_, err := svc.GenerateContent(context.Background(), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGenerateContent_WrongFieldTypesAreMalformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":5}]}}]}`))
	}))
	defer ts.Close()

	svc := newTestGemini(t, ts, GeminiOptions{})
	resp, err := svc.GenerateContent(context.Background(), nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGenerateContent_APIErrorBodyIsReturned(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer ts.Close()

	svc := newTestGemini(t, ts, GeminiOptions{})
	resp, err := svc.GenerateContent(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "API key not valid", resp.Error.Message)

	_, err = ExtractText(resp)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGenerateContent_ServerUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	svc := newTestGemini(t, ts, GeminiOptions{})
	ts.Close()

	_, err := svc.GenerateContent(context.Background(), nil)
	assert.Error(t, err)
}

func TestGenerateContent_CanceledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	svc := newTestGemini(t, ts, GeminiOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GenerateContent(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText(mustResponse(t,
		`{"candidates":[{"content":{"parts":[{"text":"Hello!"},{"text":"ignored"}]}},{"content":{"parts":[{"text":"second"}]}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Hello!", text)
}

func TestExtractText_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty object":      `{}`,
		"empty candidates":  `{"candidates":[]}`,
		"missing content":   `{"candidates":[{"finishReason":"SAFETY"}]}`,
		"missing parts":     `{"candidates":[{"content":{"role":"model"}}]}`,
		"empty parts":       `{"candidates":[{"content":{"parts":[]}}]}`,
		"part without text": `{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractText(mustResponse(t, raw))
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}

	_, err := ExtractText(nil)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestListModels_PagesAndCaches(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1beta/models", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "50", r.URL.Query().Get("pageSize"))

		switch r.URL.Query().Get("pageToken") {
		case "":
			w.Write([]byte(`{"models":[{"name":"models/gemini-2.0-flash","displayName":"Gemini 2.0 Flash","inputTokenLimit":1048576,"outputTokenLimit":8192,"supportedGenerationMethods":["generateContent","countTokens"]}],"nextPageToken":"p2"}`))
		case "p2":
			w.Write([]byte(`{"models":[{"name":"models/text-embedding-004","displayName":"Text Embedding","supportedGenerationMethods":["embedContent"]}]}`))
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
		}
	}))
	defer ts.Close()

	svc := newTestGemini(t, ts, GeminiOptions{})
	models, err := svc.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gemini-2.0-flash", models[0].ID)
	assert.True(t, models[0].SupportsGenerateContent())
	assert.False(t, models[1].SupportsGenerateContent())
	assert.Equal(t, int32(2), hits.Load())

	_, err = svc.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "second listing should be served from cache")

	m, err := svc.GetModel(context.Background(), "models/text-embedding-004")
	require.NoError(t, err)
	assert.Equal(t, "Text Embedding", m.DisplayName)

	_, err = svc.GetModel(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestListModels_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"denied"}}`))
	}))
	defer ts.Close()

	svc := newTestGemini(t, ts, GeminiOptions{})
	_, err := svc.ListModels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGetModel_RefetchesStaleListing(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Write([]byte(`{"models":[{"name":"models/gemini-old"}]}`))
			return
		}
		w.Write([]byte(`{"models":[{"name":"models/gemini-old"},{"name":"models/gemini-new","displayName":"New"}]}`))
	}))
	defer ts.Close()

	svc := newTestGemini(t, ts, GeminiOptions{})
	_, err := svc.ListModels(context.Background())
	require.NoError(t, err)

	m, err := svc.GetModel(context.Background(), "gemini-new")
	require.NoError(t, err)
	assert.Equal(t, "New", m.DisplayName)
	assert.Equal(t, int32(2), hits.Load())

	_, err = svc.GetModel(context.Background(), "gemini-missing")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	assert.Equal(t, int32(3), hits.Load(), "a miss against the cache refetches once")
}

func TestGetModel_FreshListingMissDoesNotRefetch(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"models":[{"name":"models/gemini-old"}]}`))
	}))
	defer ts.Close()

	svc := newTestGemini(t, ts, GeminiOptions{})
	_, err := svc.GetModel(context.Background(), "gemini-missing")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	assert.Equal(t, int32(1), hits.Load())
}

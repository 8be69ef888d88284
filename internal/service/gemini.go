package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/set-night/geminichat/internal/config"
	"github.com/set-night/geminichat/internal/domain"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type GeminiOptions struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     *float64
	MaxOutputTokens int
	HTTPClient      *http.Client
}

// OptionsFromConfig builds service options from process configuration.
func OptionsFromConfig(cfg *config.Config) GeminiOptions {
	return GeminiOptions{
		APIKey:          cfg.GeminiAPIKey,
		BaseURL:         cfg.GeminiBaseURL,
		Model:           cfg.GeminiModel,
		Temperature:     cfg.GeminiTemperature,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
	}
}

type GeminiService struct {
	apiKey     string
	baseURL    string
	model      string
	genConfig  GenerationConfig
	httpClient *http.Client
	cache      *ModelsCache
}

func NewGeminiService(opts GeminiOptions) (*GeminiService, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, domain.ErrEmptyAPIKey
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimPrefix(strings.TrimSpace(opts.Model), "models/")
	if model == "" {
		model = "gemini-2.0-flash"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.RequestTimeout}
	}
	return &GeminiService{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		model:   model,
		genConfig: GenerationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
		httpClient: httpClient,
		cache:      NewModelsCache(config.ModelCacheDuration),
	}, nil
}

func (s *GeminiService) Model() string {
	return s.model
}

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// GenerationConfig marshals to {} when nothing is set.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type GenerateContentRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// Pointers distinguish absent fields from empty ones so ExtractText can
// reject every deviation from the expected shape.
type GenerateContentResponse struct {
	Candidates []struct {
		Content *struct {
			Role  string `json:"role"`
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// ExtractText returns candidates[0].content.parts[0].text.
func ExtractText(resp *GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates: %w", domain.ErrMalformedResponse)
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", fmt.Errorf("candidate has no content: %w", domain.ErrMalformedResponse)
	}
	if len(content.Parts) == 0 {
		return "", fmt.Errorf("content has no parts: %w", domain.ErrMalformedResponse)
	}
	if content.Parts[0].Text == nil {
		return "", fmt.Errorf("first part has no text: %w", domain.ErrMalformedResponse)
	}
	return *content.Parts[0].Text, nil
}

// GenerateContent posts the conversation to the model. Errors mean the call
// failed at the transport level or the body was not JSON, except that JSON
// whose fields have the wrong types wraps domain.ErrMalformedResponse. A
// decoded body is returned as-is whatever its shape or HTTP status.
func (s *GeminiService) GenerateContent(ctx context.Context, contents []Content) (*GenerateContentResponse, error) {
	payload, err := json.Marshal(GenerateContentRequest{
		Contents:         contents,
		GenerationConfig: s.genConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?%s", s.baseURL, url.PathEscape(s.model), s.keyQuery(nil))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate content request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("parse response (status %d): body is not JSON", resp.StatusCode)
	}
	var genResp GenerateContentResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("decode response shape (status %d): %v: %w", resp.StatusCode, err, domain.ErrMalformedResponse)
	}

	if resp.StatusCode != http.StatusOK {
		attrs := []any{"status", resp.StatusCode, "model", s.model}
		if genResp.Error != nil {
			attrs = append(attrs, "api_status", genResp.Error.Status, "api_message", genResp.Error.Message)
		}
		slog.Warn("gemini returned non-success status", attrs...)
	}

	return &genResp, nil
}

type modelsPage struct {
	Models []struct {
		Name                       string   `json:"name"`
		DisplayName                string   `json:"displayName"`
		Description                string   `json:"description"`
		InputTokenLimit            int      `json:"inputTokenLimit"`
		OutputTokenLimit           int      `json:"outputTokenLimit"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
	NextPageToken string `json:"nextPageToken"`
}

func (s *GeminiService) ListModels(ctx context.Context) ([]domain.AIModel, error) {
	if cached := s.cache.Get(); cached != nil {
		return cached, nil
	}

	var models []domain.AIModel
	pageToken := ""
	for {
		page, err := s.fetchModelsPage(ctx, pageToken)
		if err != nil {
			return nil, err
		}
		for _, m := range page.Models {
			models = append(models, domain.AIModel{
				ID:               strings.TrimPrefix(m.Name, "models/"),
				Name:             m.Name,
				DisplayName:      m.DisplayName,
				Description:      m.Description,
				InputTokenLimit:  m.InputTokenLimit,
				OutputTokenLimit: m.OutputTokenLimit,
				SupportedMethods: m.SupportedGenerationMethods,
			})
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	s.cache.Set(models)
	return models, nil
}

func (s *GeminiService) fetchModelsPage(ctx context.Context, pageToken string) (*modelsPage, error) {
	extra := url.Values{}
	extra.Set("pageSize", strconv.Itoa(config.ModelsPageSize))
	if pageToken != "" {
		extra.Set("pageToken", pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models?"+s.keyQuery(extra), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page modelsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parse models: %w", err)
	}
	return &page, nil
}

func (s *GeminiService) GetModel(ctx context.Context, modelID string) (*domain.AIModel, error) {
	cached := s.cache.Get() != nil
	models, err := s.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	modelID = strings.TrimPrefix(modelID, "models/")
	if m := findModel(models, modelID); m != nil {
		return m, nil
	}

	// The cached listing may predate a newly released model; refetch once.
	if !cached {
		return nil, domain.ErrModelNotFound
	}
	s.cache.Invalidate()
	models, err = s.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	if m := findModel(models, modelID); m != nil {
		return m, nil
	}
	return nil, domain.ErrModelNotFound
}

func findModel(models []domain.AIModel, id string) *domain.AIModel {
	for i := range models {
		if models[i].ID == id {
			return &models[i]
		}
	}
	return nil
}

func (s *GeminiService) keyQuery(extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("key", s.apiKey)
	return q.Encode()
}

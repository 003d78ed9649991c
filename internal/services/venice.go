package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tavernkeep/tavern-engine/pkg/parser"
)

const (
	defaultVeniceBaseURL = "https://api.venice.ai/api/v1"

	// Temperature 0 for deterministic command extraction.
	veniceTemperature = 0.0
	veniceMaxTokens   = 256
)

// VeniceService is the Venice AI interpreter backend. It speaks the
// OpenAI-compatible chat completions API with a strict JSON schema
// response format.
type VeniceService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
}

var _ parser.Interpreter = (*VeniceService)(nil)

type veniceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type veniceResponseFormat struct {
	Type       string           `json:"type"`
	JSONSchema veniceJSONSchema `json:"json_schema"`
}

type veniceJSONSchema struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

type veniceParameters struct {
	IncludeVeniceSystemPrompt bool   `json:"include_venice_system_prompt"`
	EnableWebSearch           string `json:"enable_web_search"`
}

type veniceChatRequest struct {
	Model            string                `json:"model"`
	Messages         []veniceMessage       `json:"messages"`
	Temperature      float64               `json:"temperature"`
	MaxTokens        int                   `json:"max_tokens,omitempty"`
	Stream           bool                  `json:"stream"`
	ResponseFormat   *veniceResponseFormat `json:"response_format,omitempty"`
	VeniceParameters veniceParameters      `json:"venice_parameters"`
}

type veniceChatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewVeniceService creates a Venice AI interpreter. An empty baseURL
// uses the public endpoint.
func NewVeniceService(apiKey, modelName, baseURL string) *VeniceService {
	if baseURL == "" {
		baseURL = defaultVeniceBaseURL
	}
	return &VeniceService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   baseURL,
		httpClient: &http.Client{
			// The parser enforces its own deadline via ctx; this is a
			// backstop for callers that don't.
			Timeout: 30 * time.Second,
		},
	}
}

// Interpret asks the model for a single command candidate.
func (v *VeniceService) Interpret(ctx context.Context, text string) (*parser.Candidate, error) {
	veniceReq := veniceChatRequest{
		Model: v.modelName,
		Messages: []veniceMessage{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: text},
		},
		Temperature: veniceTemperature,
		MaxTokens:   veniceMaxTokens,
		Stream:      false,
		ResponseFormat: &veniceResponseFormat{
			Type: "json_schema",
			JSONSchema: veniceJSONSchema{
				Name:   "game_command",
				Strict: true,
				Schema: candidateSchema(),
			},
		},
		VeniceParameters: veniceParameters{
			IncludeVeniceSystemPrompt: false,
			EnableWebSearch:           "off",
		},
	}

	reqBody, err := json.Marshal(veniceReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", v.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var veniceResp veniceChatResponse
	if err := json.Unmarshal(body, &veniceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if veniceResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", veniceResp.Error.Message)
	}
	if len(veniceResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	var cand parser.Candidate
	if err := json.Unmarshal([]byte(veniceResp.Choices[0].Message.Content), &cand); err != nil {
		return nil, fmt.Errorf("failed to parse candidate: %w", err)
	}
	return &cand, nil
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient calls the Gemini API. One genai client is kept per credential.
type GeminiClient struct {
	model   string
	baseURL string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGeminiClient creates a Gemini completer. baseURL may be empty.
func NewGeminiClient(model, baseURL string) *GeminiClient {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{
		model:   model,
		baseURL: baseURL,
		clients: make(map[string]*genai.Client),
	}
}

// Provider implements Completer
func (g *GeminiClient) Provider() string {
	return "gemini"
}

func (g *GeminiClient) clientFor(ctx context.Context, credential string) (*genai.Client, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, fmt.Errorf("gemini api key is required: %w", ErrInvalidCredential)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[credential]; ok {
		return c, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  credential,
		Backend: genai.BackendGeminiAPI,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.clients[credential] = client
	return client, nil
}

// Complete implements Completer
func (g *GeminiClient) Complete(ctx context.Context, credential, system, prompt string) (string, error) {
	client, err := g.clientFor(ctx, credential)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2),
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if isCredentialFailure(apiErr) {
			return fmt.Errorf("gemini returned status %d: %w", apiErr.Code, ErrInvalidCredential)
		}
		return fmt.Errorf("gemini returned status %d: %s", apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyGeminiError(*apiErrPtr)
	}
	return fmt.Errorf("generate content: %w", err)
}

func isCredentialFailure(apiErr genai.APIError) bool {
	switch apiErr.Code {
	case 401, 403:
		return true
	case 400:
		return strings.Contains(strings.ToLower(apiErr.Message), "api key")
	}
	return false
}

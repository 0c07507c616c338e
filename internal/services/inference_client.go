package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxNewTokens = 180
	temperature  = 0.3
)

// InferenceClient calls a hosted text-generation endpoint.
type InferenceClient struct {
	baseURL    string
	model      string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

func NewInferenceClient(baseURL, model, token string, log *zap.Logger) *InferenceClient {
	return &InferenceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

func (c *InferenceClient) Configured() bool {
	return c != nil && c.token != ""
}

func (c *InferenceClient) Model() string {
	return c.model
}

type generationRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters generationParameters `json:"parameters"`
}

type generationParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// Generate returns the trimmed completion for prompt. An empty string means
// the model produced nothing usable.
func (c *InferenceClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generationRequest{
		Inputs: prompt,
		Parameters: generationParameters{
			MaxNewTokens:   maxNewTokens,
			Temperature:    temperature,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: inference unavailable: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read inference response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("inference request failed", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: inference returned %d: %s", ErrUpstream, resp.StatusCode, string(raw))
	}

	return parseGeneration(raw), nil
}

// parseGeneration accepts both the list form and the single object form.
func parseGeneration(raw []byte) string {
	var list []generation
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) > 0 {
			return strings.TrimSpace(list[0].GeneratedText)
		}
		return ""
	}
	var single generation
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single.GeneratedText)
	}
	return ""
}

// Package gemini adapts the Gemini generateContent API as the finding
// classifier and the legal matcher.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/medreview/slide-compliance/internal/core/domain"
	"github.com/medreview/slide-compliance/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model, apiKey string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// Classifier runs the first pass. It returns the raw JSON payload; the
// core normalizes and validates it.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

func (c *Classifier) Classify(ctx context.Context, slideText, rules string) (json.RawMessage, error) {
	respText, err := c.client.generateJSON(ctx, "classify", buildClassificationPrompt(slideText, rules), classifyTemperature)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(extractJSONPayload(respText)), nil
}

// Matcher runs the second pass, pairing issue texts with legal citations.
type Matcher struct {
	client *Client
}

func NewMatcher(client *Client) *Matcher {
	return &Matcher{client: client}
}

func (m *Matcher) MatchLegalBasis(ctx context.Context, issues []string, legalSummary string) ([]domain.LegalMatch, error) {
	prompt, err := buildLegalBasisPrompt(issues, legalSummary)
	if err != nil {
		return nil, err
	}
	respText, err := m.client.generateJSON(ctx, "match", prompt, matchTemperature)
	if err != nil {
		return nil, err
	}

	var matches []domain.LegalMatch
	if err := json.Unmarshal([]byte(extractJSONPayload(respText)), &matches); err != nil {
		return nil, fmt.Errorf("parse legal match response: %w", err)
	}
	return matches, nil
}

const (
	classifyTemperature = 0.2
	matchTemperature    = 0.1
)

func (c *Client) generateJSON(ctx context.Context, operation, prompt string, temperature float64) (string, error) {
	request := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"temperature":      temperature,
		},
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, c.generatePath(), request, &response, operation)
	}
	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "gemini."+operation, call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapUnavailableIfNeeded(operation, err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini %s: empty candidate response", operation)
	}
	return strings.TrimSpace(response.Candidates[0].Content.Parts[0].Text), nil
}

func (c *Client) generatePath() string {
	return fmt.Sprintf("/v1beta/models/%s:generateContent", c.model)
}

// extractJSONPayload strips markdown fences or prose around the JSON body
// some model answers carry.
func extractJSONPayload(raw string) string {
	for _, pair := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(raw, pair[0])
		end := strings.LastIndex(raw, pair[1])
		if start >= 0 && end > start {
			return raw[start : end+1]
		}
	}
	return raw
}

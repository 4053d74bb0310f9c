package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// FallbackSummary is stored on the dashboard when classification fails.
const FallbackSummary = "Daily activity analysis is unavailable."

const classifierCacheSize = 512

// Classification is the structured result of the category analysis.
type Classification struct {
	Summary         string         `json:"summary"`
	CategoryMinutes map[string]int `json:"categoryMinutes"`
}

// Fallback returns the degraded result used when the model call fails: a
// fixed summary and an empty breakdown, which scores zero activity points.
func Fallback() Classification {
	return Classification{
		Summary:         FallbackSummary,
		CategoryMinutes: map[string]int{},
	}
}

// Classifier calls an OpenAI-compatible chat completions endpoint to turn a
// day's usage lines into a summary sentence and a category-minutes breakdown.
// The call is best effort: every failure path returns Fallback() instead of
// an error, so quest settlement never depends on the model being reachable.
type Classifier struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cache      *lru.Cache
}

func NewClassifier(baseURL, apiKey, model string, timeout time.Duration) *Classifier {
	cache, _ := lru.New(classifierCacheSize)
	return &Classifier{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		cache:      cache,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify analyzes the given "name: minutes" usage lines. cacheKey scopes
// the result (user and date), so re-running a settlement for the same day
// reuses the earlier successful classification instead of re-billing the API.
func (c *Classifier) Classify(ctx context.Context, cacheKey string, usageLines []string) Classification {
	if len(usageLines) == 0 {
		return Fallback()
	}

	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(Classification)
	}

	result, err := c.call(ctx, usageLines)
	if err != nil {
		slog.Warn("Classification failed, using fallback",
			slog.String("type", "ai"),
			slog.String("key", cacheKey),
			slog.Any("error", err))
		return Fallback()
	}

	c.cache.Add(cacheKey, result)
	return result
}

func (c *Classifier) call(ctx context.Context, usageLines []string) (Classification, error) {
	labels := make([]string, len(Categories))
	for i, cat := range Categories {
		labels[i] = string(cat)
	}

	prompt := "The following is a summary of a user's app usage for today, in minutes.\n" +
		"Write one sentence that sums up the day's activity.\n" +
		"Then classify each app into exactly one of [" + strings.Join(labels, ", ") + "] " +
		"and total the minutes per category.\n" +
		"Respond only with JSON in this form:\n" +
		`{"summary": "one sentence", "categoryMinutes": {"Study": 120, "SocialMedia": 30}}` + "\n\n" +
		"Data:\n" + strings.Join(usageLines, "\n")

	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: &chatFormat{Type: "json_object"},
	})
	if err != nil {
		return Classification{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Classification{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Classification{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return Classification{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return Classification{}, fmt.Errorf("response contained no choices")
	}

	var result Classification
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &result); err != nil {
		return Classification{}, fmt.Errorf("model returned non-JSON content: %w", err)
	}
	if result.CategoryMinutes == nil {
		result.CategoryMinutes = map[string]int{}
	}
	if result.Summary == "" {
		result.Summary = FallbackSummary
	}
	return result, nil
}

package suggest

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

	"github.com/roach88/horizonte/internal/model"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client calls an OpenAI-compatible chat completions endpoint such as
// OpenRouter.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

var _ Service = (*Client)(nil)

// NewClient creates a client. A zero Timeout means 30 seconds.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		http:    hc,
		logger:  logger.With(slog.String("component", "suggest")),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// complete sends one chat turn and returns the trimmed answer.
func (c *Client) complete(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: msgs, Temperature: temperature})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}
	c.logger.Debug("completion",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: status %d: malformed response", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, msg)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	answer := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", ErrUnavailable)
	}
	return answer, nil
}

// completeJSON sends one chat turn and decodes the answer into v.
func (c *Client) completeJSON(ctx context.Context, prompt string, temperature float64, v any) error {
	answer, err := c.complete(ctx, systemJSON, prompt, temperature)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(StripFences(answer)), v); err != nil {
		return fmt.Errorf("%w: answer is not the requested JSON: %w", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) SuggestSMART(ctx context.Context, goal GoalContext) (model.SmartCriteria, error) {
	var sc model.SmartCriteria
	if err := c.completeJSON(ctx, smartPrompt(goal), 0.7, &sc); err != nil {
		return model.SmartCriteria{}, err
	}
	if sc.IsZero() {
		return model.SmartCriteria{}, fmt.Errorf("%w: no criteria returned", ErrUnavailable)
	}
	return sc, nil
}

func (c *Client) SuggestCategory(ctx context.Context, goal GoalContext) (model.Category, error) {
	answer, err := c.complete(ctx, "", categoryPrompt(goal), 0.3)
	if err != nil {
		return "", err
	}
	word := strings.Trim(strings.ToLower(answer), " .\"'`\n")
	cat, err := model.ParseCategory(word)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return cat, nil
}

func (c *Client) SuggestMilestones(ctx context.Context, goal GoalContext) ([]string, error) {
	var titles []string
	if err := c.completeJSON(ctx, milestonesPrompt(goal), 0.7, &titles); err != nil {
		return nil, err
	}
	out := titles[:0]
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no milestones returned", ErrUnavailable)
	}
	return out, nil
}

func (c *Client) ProposeUpdates(ctx context.Context, text string, goals []model.Goal) ([]Update, error) {
	prompt, err := updatesPrompt(text, goals)
	if err != nil {
		return nil, err
	}
	var raws []RawUpdate
	if err := c.completeJSON(ctx, prompt, 0.1, &raws); err != nil {
		return nil, err
	}
	return ResolveUpdates(raws, goals), nil
}

func (c *Client) CheckInIntro(ctx context.Context, goals []model.Goal, period string) (string, error) {
	return c.complete(ctx, "", introPrompt(goals, period), 0.7)
}

func (c *Client) AnalyzeCheckIn(ctx context.Context, entries []ReviewEntry, reflection, period string) (string, error) {
	return c.complete(ctx, "", reviewPrompt(entries, reflection, period), 0.7)
}

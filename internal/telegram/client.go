package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://api.telegram.org"
	defaultUserAgent = "outreach-messaging-acl/0.1"
)

// Config controls how the Bot API client behaves.
type Config struct {
	BaseURL    string
	BotToken   string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// Client wraps the Telegram Bot API endpoints relevant to outreach.
type Client struct {
	botToken   string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		botToken:   cfg.BotToken,
		baseURL:    baseURL,
		httpClient: httpClient,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// GetChat resolves a chat by @username or numeric ID.
func (c *Client) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, errors.New("telegram: chat id required")
	}
	body, err := json.Marshal(getChatRequest{ChatID: chatID})
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal getChat body: %w", err)
	}
	data, err := c.invoke(ctx, "getChat", body, c.maxRetries)
	if err != nil {
		return nil, err
	}
	return decodeResult[Chat](data)
}

// SendMessage sends a text message to a chat. Sends are issued exactly once:
// a rate limit or transient failure surfaces to the caller, who owns the
// retry decision.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("telegram: message text required")
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal sendMessage body: %w", err)
	}
	data, err := c.invoke(ctx, "sendMessage", body, 0)
	if err != nil {
		return nil, err
	}
	return decodeResult[Message](data)
}

// GetUpdates long-polls for new updates. timeoutSecs, not the HTTP timeout,
// bounds how long the server holds the request open.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSecs int) ([]Update, error) {
	body, err := json.Marshal(getUpdatesRequest{
		Offset:         offset,
		Timeout:        timeoutSecs,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal getUpdates body: %w", err)
	}
	data, err := c.invoke(ctx, "getUpdates", body, c.maxRetries)
	if err != nil {
		return nil, err
	}
	updates, err := decodeResult[[]Update](data)
	if err != nil {
		return nil, err
	}
	return *updates, nil
}

// invoke posts one Bot API call, retrying up to maxRetries times. Pass 0 for
// calls that must not be retried.
func (c *Client) invoke(ctx context.Context, method string, body []byte, maxRetries int) (json.RawMessage, error) {
	fullURL := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("telegram: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !shouldRetry(0, err) || attempt == maxRetries {
				return nil, fmt.Errorf("telegram: http error: %w", err)
			}
			lastErr = err
			c.logRetry(method, attempt, 0, err)
			if sleepErr := c.sleep(ctx, attempt, 0); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("telegram: read response: %w", readErr)
		}

		var parsed apiResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("telegram: decode response: %w", err)
		}
		if parsed.OK {
			return parsed.Result, nil
		}

		apiErr := &APIError{
			StatusCode:  resp.StatusCode,
			Code:        parsed.ErrorCode,
			Description: parsed.Description,
		}
		if parsed.Parameters != nil && parsed.Parameters.RetryAfter > 0 {
			apiErr.RetryAfter = time.Duration(parsed.Parameters.RetryAfter) * time.Second
		}
		if attempt < maxRetries && shouldRetry(resp.StatusCode, nil) {
			lastErr = apiErr
			c.logRetry(method, attempt, resp.StatusCode, apiErr)
			if sleepErr := c.sleep(ctx, attempt, apiErr.RetryAfter); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		return nil, apiErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("telegram: request failed without response")
}

// sleep backs off exponentially, except when the API named its own delay.
func (c *Client) sleep(ctx context.Context, attempt int, retryAfter time.Duration) error {
	delay := c.backoff * time.Duration(1<<attempt)
	if retryAfter > 0 {
		delay = retryAfter
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(method string, attempt int, status int, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn("telegram retry",
		"method", method,
		"attempt", attempt+1,
		"status", status,
		"error", err,
	)
}

func shouldRetry(status int, err error) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		return !errors.Is(err, context.Canceled)
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	if status >= 500 && status <= 599 {
		return true
	}
	return false
}

func decodeResult[T any](raw json.RawMessage) (*T, error) {
	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("telegram: decode result: %w", err)
	}
	return &result, nil
}

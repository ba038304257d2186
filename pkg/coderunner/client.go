package coderunner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/algospace/algospace-api/pkg/httpclient"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"go.uber.org/zap"
)

// languageIDs maps supported language names to the execution engine's
// language identifiers
var languageIDs = map[string]int{
	"javascript": 63,
	"typescript": 74,
	"python":     71,
	"java":       62,
	"cpp":        54,
	"c":          50,
	"csharp":     51,
	"ruby":       72,
	"go":         60,
	"rust":       73,
	"php":        68,
	"swift":      83,
	"kotlin":     78,
}

// LanguageID returns the engine identifier for a language name
func LanguageID(language string) (int, bool) {
	id, ok := languageIDs[language]
	return id, ok
}

// Status is the execution engine's submission status
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Result holds the outcome of a finished submission
type Result struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Message       string `json:"message"`
	Time          string `json:"time"`
	Memory        int    `json:"memory"`
	Status        Status `json:"status"`
}

// Finished reports whether the submission has left the queue.
// Status 1 is "In Queue" and 2 is "Processing".
func (r *Result) Finished() bool {
	return r.Status.ID > 2
}

// Output returns whichever output stream carries the interesting text
func (r *Result) Output() string {
	if r.CompileOutput != "" {
		return r.CompileOutput
	}
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Client talks to a Judge0-compatible code execution engine
type Client struct {
	baseURL      string
	apiKey       string
	apiHost      string
	pollInterval time.Duration
	maxPolls     int
	httpClient   httpclient.Client
}

// NewClient creates a new code execution client.
// pollIntervalMs and maxPolls bound the polling loop in Execute.
func NewClient(baseURL, apiKey, apiHost string, pollIntervalMs, maxPolls int, httpClient httpclient.Client) *Client {
	if pollIntervalMs <= 0 {
		pollIntervalMs = 1000
	}
	if maxPolls <= 0 {
		maxPolls = 10
	}
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		apiHost:      apiHost,
		pollInterval: time.Duration(pollIntervalMs) * time.Millisecond,
		maxPolls:     maxPolls,
		httpClient:   httpClient,
	}
}

type submissionRequest struct {
	LanguageID int    `json:"language_id"`
	SourceCode string `json:"source_code"`
	Stdin      string `json:"stdin,omitempty"`
}

type submissionResponse struct {
	Token string `json:"token"`
}

// Submit sends source code for execution and returns the submission token
func (c *Client) Submit(ctx context.Context, language, sourceCode, stdin string) (string, error) {
	start := time.Now()

	languageID, ok := LanguageID(language)
	if !ok {
		return "", fmt.Errorf("unsupported language: %s", language)
	}

	payload, err := json.Marshal(submissionRequest{
		LanguageID: languageID,
		SourceCode: sourceCode,
		Stdin:      stdin,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal submission: %w", err)
	}

	url := c.baseURL + "/submissions?base64_encoded=false&wait=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build submission request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		logger.LogAPICall("coderunner", "submit", "error", duration, zap.Error(err))
		return "", fmt.Errorf("failed to call execution engine: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read submission response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		logger.LogAPICall("coderunner", "submit", "error", duration,
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", body))
		return "", fmt.Errorf("execution engine returned status %d", resp.StatusCode)
	}

	var sub submissionResponse
	if err := json.Unmarshal(body, &sub); err != nil {
		return "", fmt.Errorf("failed to decode submission response: %w", err)
	}
	if sub.Token == "" {
		return "", fmt.Errorf("execution engine returned empty token")
	}

	logger.LogAPICall("coderunner", "submit", "success", duration,
		zap.String("language", language),
		zap.String("token", sub.Token))

	return sub.Token, nil
}

// GetResult fetches the current state of a submission
func (c *Client) GetResult(ctx context.Context, token string) (*Result, error) {
	url := fmt.Sprintf("%s/submissions/%s?base64_encoded=false", c.baseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build result request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call execution engine: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read result response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("execution engine returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result response: %w", err)
	}

	return &result, nil
}

// Execute submits source code and polls for the result until the submission
// finishes or the poll budget runs out
func (c *Client) Execute(ctx context.Context, language, sourceCode, stdin string) (*Result, error) {
	start := time.Now()

	token, err := c.Submit(ctx, language, sourceCode, stdin)
	if err != nil {
		metrics.CodeExecutions.WithLabelValues(language, "error").Inc()
		return nil, err
	}

	for attempt := 0; attempt < c.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			metrics.CodeExecutions.WithLabelValues(language, "cancelled").Inc()
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		result, err := c.GetResult(ctx, token)
		if err != nil {
			logger.Warn("Failed to poll execution result",
				zap.String("token", token),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}

		if result.Finished() {
			metrics.CodeExecutions.WithLabelValues(language, "success").Inc()
			logger.LogAPICall("coderunner", "execute", "success", metrics.MeasureDuration(start),
				zap.String("language", language),
				zap.String("status", result.Status.Description))
			return result, nil
		}
	}

	metrics.CodeExecutions.WithLabelValues(language, "timeout").Inc()
	return nil, fmt.Errorf("execution did not finish after %d polls", c.maxPolls)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
	}
	if c.apiHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
	}
}

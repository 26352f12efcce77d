package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/tutorhub/tutorhub/config"
	"github.com/tutorhub/tutorhub/internal"
	"github.com/tutorhub/tutorhub/pkg/models"
)

const DefaultTemperature = 0.7
const MaxAPIRequestAttempts = 3
const DefaultAPITimeout = 60 * time.Second

var log = internal.GetLogger()

// placeholderValues are credential values that count as "not configured".
// The web app's sample .env files ship with these.
var placeholderValues = map[string]bool{
	"":                  true,
	"your-api-key-here": true,
	"your_api_key_here": true,
	"changeme":          true,
	"placeholder":       true,
	"xxx":               true,
}

// credentialConfigured reports whether an API key is present and
// non-placeholder.
func credentialConfigured(key string) bool {
	return !placeholderValues[strings.ToLower(strings.TrimSpace(key))]
}

func apiTimeout(cfg *config.Config) time.Duration {
	if cfg.LLM.TimeoutSeconds > 0 {
		return time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	}
	return DefaultAPITimeout
}

type LLMError struct {
	message       string
	originalError error
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("llm error: %s (original error: %v)", e.message, e.originalError)
}

func (e *LLMError) Unwrap() error {
	return e.originalError
}

func NewLLMError(message string, originalError error) *LLMError {
	return &LLMError{message: message, originalError: originalError}
}

func NewRetryableHTTPClient(retryMax int, timeout time.Duration) *retryablehttp.Client {
	retryableHTTPClient := retryablehttp.NewClient()
	retryableHTTPClient.RetryMax = retryMax
	retryableHTTPClient.HTTPClient.Timeout = timeout
	retryableHTTPClient.Logger = internal.NewLeveledLogrus(log)
	retryableHTTPClient.Backoff = retryablehttp.DefaultBackoff
	retryableHTTPClient.CheckRetry = retryPolicy

	return retryableHTTPClient
}

// retryPolicy is a retryablehttp.CheckRetry function. It is used to determine
// whether a request should be retried or not.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	// do not retry on context.Canceled or context.DeadlineExceeded
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	// Do not retry 400 errors as providers use them for invalid requests,
	// including maximum context length exceeded
	if resp != nil && resp.StatusCode == http.StatusBadRequest {
		return false, err
	}

	shouldRetry, _ := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	return shouldRetry, nil
}

// postJSON POSTs a JSON body and returns the response bytes. Non-2xx
// responses become UpstreamHTTPError carrying the status and body.
func postJSON(
	ctx context.Context,
	client *retryablehttp.Client,
	provider models.Provider,
	url string,
	headers map[string]string,
	body any,
) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, NewLLMError(fmt.Sprintf("error marshaling %s request", provider), err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, NewLLMError(fmt.Sprintf("error calling %s API", provider), err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewLLMError(fmt.Sprintf("error reading %s response", provider), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.UpstreamHTTPError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Body:       internal.TruncateString(string(bodyBytes), 512),
		}
	}

	return bodyBytes, nil
}

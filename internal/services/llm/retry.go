package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"artidicia/internal/services"
)

// statusCode extracts the HTTP status from go-openai errors.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func isTemperatureRejection(err error) bool {
	code := statusCode(err)
	if code != http.StatusBadRequest && code != http.StatusUnprocessableEntity {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "temperature")
}

func classifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	code := statusCode(err)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, "llm", "request", "endpoint rejected credentials", err)
	case code == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "llm", "request", "endpoint or model not found", err)
	case code >= http.StatusBadRequest && code < http.StatusInternalServerError && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout:
		return services.Wrap(services.ErrValidation, "llm", "request", "endpoint rejected request", err)
	default:
		return services.Wrap(services.ErrExternalTool, "llm", "request", "generation failed", err)
	}
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	if code := statusCode(err); code != 0 {
		switch {
		case code == http.StatusRequestTimeout,
			code == http.StatusTooManyRequests,
			code >= http.StatusInternalServerError:
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}
	if !services.Retryable(transportError(err)) {
		return 0, false
	}
	return c.backoffDelay(attempt), true
}

// transportError tags a failure that carried no HTTP status.
func transportError(err error) error {
	var (
		netErr    net.Error
		urlErr    *url.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, openai.ErrChatCompletionInvalidModel), errors.Is(err, openai.ErrChatCompletionStreamNotSupported):
		return services.Wrap(services.ErrConfiguration, "llm", "request", "request not supported by client", err)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return services.Wrap(services.ErrDecode, "llm", "request", "malformed response", err)
	case errors.As(err, &netErr), errors.As(err, &urlErr):
		return services.Wrap(services.ErrTransient, "llm", "request", "transport failure", err)
	default:
		return services.Wrap(services.ErrExternalTool, "llm", "request", "generation failed", err)
	}
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if base <= 0 {
		return 0
	}
	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < max(attempt, 1); i++ {
		if delay > maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}
	return min(delay, maxDelay)
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
)

// UserAgent is sent with every request to remote services
var UserAgent = "azalea-mc/azalea"

// HTTPOptions configures the client shared by the catalog and loader metadata lookups
type HTTPOptions struct {
	Timeout time.Duration
	Retries int
	Logger  *log.Logger
}

// NewHTTPClient returns a client that retries connection errors, 429 and 5xx responses with
// backoff. Other 4xx responses are returned straight away as they will not change on retry.
func NewHTTPClient(opts HTTPOptions) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	c := retryablehttp.NewClient()
	// Transport is left nil so http.DefaultTransport (and any mock installed on it) is used
	c.HTTPClient = &http.Client{Timeout: opts.Timeout}
	c.RetryMax = opts.Retries
	c.RetryWaitMin = 250 * time.Millisecond
	c.RetryWaitMax = 4 * time.Second
	if opts.Logger != nil {
		c.Logger = leveledLogger{opts.Logger}
	} else {
		c.Logger = nil
	}
	return c.StandardClient()
}

// leveledLogger adapts charmbracelet/log to retryablehttp's logging interface
type leveledLogger struct {
	l *log.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.l.Error(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.l.Debug(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.l.Debug(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.l.Warn(msg, keysAndValues...)
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

// GetJSON fetches a URL with the azalea user agent and decodes the JSON body into out
func GetJSON(ctx context.Context, client *http.Client, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	res, err := client.Do(req)
	if err != nil {
		return WrapNetworkError(err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		statusErr := &StatusError{URL: u, StatusCode: res.StatusCode}
		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			return fmt.Errorf("%w: %v", ErrNetworkFailure, statusErr)
		}
		return statusErr
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", u, err)
	}
	return nil
}

// WrapNetworkError marks transport-level failures (after retries are exhausted) as ErrNetworkFailure,
// leaving any other error untouched
func WrapNetworkError(err error) error {
	if err == nil || errors.Is(err, ErrNetworkFailure) {
		return err
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	return err
}

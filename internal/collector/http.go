package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"MarketLedger/internal/model"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 4 << 20

// NewHTTPClient builds a client with an optional proxy.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// errStatus is returned for non-200 responses.
type errStatus struct {
	Code int
	Body string
}

func (e *errStatus) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d, body: %s", e.Code, e.Body)
}

// getJSON issues a GET and decodes a 200 body into v. Connection errors and
// 5xx responses wrap model.ErrTransport; 404 wraps model.ErrNotFound.
func getJSON(ctx context.Context, client HTTPClient, endpoint string, header http.Header, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", model.ErrTransport, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("response body exceeds %d bytes", maxBodyBytes)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", model.ErrNotFound, &errStatus{Code: resp.StatusCode})
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %w", model.ErrTransport, &errStatus{Code: resp.StatusCode, Body: truncate(body, 200)})
	default:
		return &errStatus{Code: resp.StatusCode, Body: truncate(body, 200)}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func statusCode(err error) int {
	var se *errStatus
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// truncate cuts b to at most n bytes without splitting a UTF-8 sequence.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return string(b[:n]) + "..."
}

// toFloat reads a JSON number that may be null.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func isNotFound(err error) bool { return errors.Is(err, model.ErrNotFound) }

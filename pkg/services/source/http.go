package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/normalize"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 64 << 20

var ErrBodyTooLarge = errors.New("response body too large")

// readLimited reads r fully, failing rather than truncating past limit.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("exceeds %d bytes: %w", limit, ErrBodyTooLarge)
	}
	return data, nil
}

type httpSource struct {
	url        string
	format     string
	timeout    time.Duration
	maxRetries int
	retryWait  time.Duration
	maxBytes   int64
}

func NewHTTP(url, format string, timeout time.Duration, maxRetries int) Source {
	return &httpSource{
		url:        url,
		format:     format,
		timeout:    timeout,
		maxRetries: maxRetries,
		retryWait:  500 * time.Millisecond,
		maxBytes:   maxBodyBytes,
	}
}

func (s *httpSource) newClient(ctx context.Context) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = s.timeout
	client.RetryMax = s.maxRetries
	client.RetryWaitMin = s.retryWait
	client.RetryWaitMax = 10 * s.retryWait
	client.Logger = leveledLogger{logger: zerolog.Ctx(ctx)}
	return client
}

func (s *httpSource) Fetch(ctx context.Context) ([]domain.Row, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, application/json")

	resp, err := s.newClient(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %s", s.url, resp.Status)
	}

	data, err := readLimited(resp.Body, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.url, err)
	}
	return normalize.Parse(s.formatFor(resp), data)
}

func (s *httpSource) formatFor(resp *http.Response) string {
	if f := DetectFormat(s.format, resp.Request.URL.Path); f != "" {
		return f
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch mediaType {
	case "text/csv", "application/csv":
		return "csv"
	case "application/json":
		return "json"
	}
	return ""
}

// leveledLogger routes retry diagnostics through the request logger.
type leveledLogger struct {
	logger *zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Trace().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

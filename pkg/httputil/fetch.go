package httputil

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/fitcharts/pkg/buildinfo"
	"github.com/matzehuels/fitcharts/pkg/errors"
	fcio "github.com/matzehuels/fitcharts/pkg/io"
)

// Fetch defaults.
const (
	MaxBodyBytes = 16 << 20
	Attempts     = 3
	Timeout      = 30 * time.Second
)

// retryDelay is the wait before the first retry; it doubles after each.
var retryDelay = 500 * time.Millisecond

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads a dataset. The format comes from the Content-Type header,
// falling back to the URL path extension and then to JSON. A nil client
// uses one with [Timeout].
func Fetch(ctx context.Context, client *http.Client, rawURL string) ([]byte, fcio.Format, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, "", err
	}
	if client == nil {
		client = &http.Client{Timeout: Timeout}
	}

	var (
		body        []byte
		contentType string
	)
	err := Retry(ctx, Attempts, retryDelay, func() error {
		var err error
		body, contentType, err = get(ctx, client, rawURL)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", err
	}
	return body, formatOf(contentType, rawURL), nil
}

func get(ctx context.Context, client *http.Client, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("User-Agent", "fitcharts/"+buildinfo.Version)
	req.Header.Set("Accept", "application/json, text/csv, application/toml;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &RetryableError{Err: errors.Wrap(errors.ErrCodeUnavailable, err, "fetch %s", rawURL)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", errors.New(errors.ErrCodeNotFound, "fetch %s: not found", rawURL)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, "", &RetryableError{Err: errors.New(errors.ErrCodeUnavailable, "fetch %s: %s", rawURL, resp.Status)}
	case resp.StatusCode >= 300:
		return nil, "", errors.New(errors.ErrCodeInvalidDataset, "fetch %s: %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, "", &RetryableError{Err: errors.Wrap(errors.ErrCodeUnavailable, err, "read %s", rawURL)}
	}
	if len(body) > MaxBodyBytes {
		return nil, "", errors.New(errors.ErrCodeInvalidDataset, "fetch %s: body exceeds %d bytes", rawURL, MaxBodyBytes)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func formatOf(contentType, rawURL string) fcio.Format {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case mt == "text/csv":
			return fcio.FormatCSV
		case mt == "application/toml":
			return fcio.FormatTOML
		case mt == "application/json" || strings.HasSuffix(mt, "+json"):
			return fcio.FormatJSON
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if f, ok := fcio.FormatFromPath(u.Path); ok {
			return f
		}
	}
	return fcio.FormatJSON
}

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/fitcharts/pkg/errors"
	fcio "github.com/matzehuels/fitcharts/pkg/io"
)

func fastRetries(t *testing.T) {
	t.Helper()
	old := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = old })
}

func TestFetchFormats(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		want        fcio.Format
	}{
		{"json content type", "/export", "application/json; charset=utf-8", fcio.FormatJSON},
		{"csv content type", "/export", "text/csv", fcio.FormatCSV},
		{"toml content type", "/export", "application/toml", fcio.FormatTOML},
		{"vendor json", "/export", "application/vnd.coach+json", fcio.FormatJSON},
		{"extension fallback", "/week.csv", "application/octet-stream", fcio.FormatCSV},
		{"default json", "/export", "", fcio.FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.Write([]byte("name,value\nMon,1\n"))
			}))
			defer srv.Close()

			body, format, err := Fetch(context.Background(), srv.Client(), srv.URL+tt.path)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if format != tt.want {
				t.Errorf("format = %q, want %q", format, tt.want)
			}
			if len(body) == 0 {
				t.Error("empty body")
			}
		})
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	fastRetries(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"name":"Mon","value":1}]`))
	}))
	defer srv.Close()

	if _, _, err := Fetch(context.Background(), srv.Client(), srv.URL); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestFetchErrors(t *testing.T) {
	fastRetries(t)
	tests := []struct {
		name   string
		status int
		code   errors.Code
		calls  int32
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeNotFound, 1},
		{"forbidden", http.StatusForbidden, errors.ErrCodeInvalidDataset, 1},
		{"always failing", http.StatusBadGateway, errors.ErrCodeUnavailable, Attempts},
		{"rate limited", http.StatusTooManyRequests, errors.ErrCodeUnavailable, Attempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, _, err := Fetch(context.Background(), srv.Client(), srv.URL)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if got := calls.Load(); got != tt.calls {
				t.Errorf("calls = %d, want %d", got, tt.calls)
			}
		})
	}
}

func TestFetchInvalidURL(t *testing.T) {
	if _, _, err := Fetch(context.Background(), nil, "ftp://example.com/week.json"); err == nil {
		t.Error("Fetch(ftp) = nil error")
	}
}

func TestIsURL(t *testing.T) {
	for in, want := range map[string]bool{
		"https://coach.example/week.json": true,
		"http://localhost:8080/x":         true,
		"week.json":                       false,
		"-":                               false,
	} {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake png bytes"))
	}))
	defer server.Close()

	client := NewClient(0, nil)
	client.http = server.Client()

	data, mime, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if string(data) != "fake png bytes" {
		t.Errorf("Fetch() data = %q, want %q", data, "fake png bytes")
	}
	if mime != "image/png" {
		t.Errorf("Fetch() mime = %q, want %q", mime, "image/png")
	}
}

func TestClient_FetchSendsHeaders(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(0, map[string]string{"User-Agent": "stemma-test"})
	client.http = server.Client()

	if _, _, err := client.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if received != "stemma-test" {
		t.Errorf("User-Agent = %q, want %q", received, "stemma-test")
	}
}

func TestClient_Fetch404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(0, nil)
	client.http = server.Client()

	_, _, err := client.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
	if IsRetryable(err) {
		t.Error("404 should not be retryable")
	}
}

func TestClient_Fetch500Retryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(0, nil)
	client.http = server.Client()

	_, _, err := client.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Fetch() should return error for 500")
	}
	if !IsRetryable(err) {
		t.Errorf("Fetch() error should be retryable, got %T", err)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Fetch() error = %v, want ErrNetwork", err)
	}
}

func TestClient_FetchTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 32))
	}))
	defer server.Close()

	client := NewClient(16, nil)
	client.http = server.Client()

	_, _, err := client.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Fetch() error = %v, want ErrTooLarge", err)
	}
	if IsRetryable(err) {
		t.Error("oversized body should not be retryable")
	}
}

func TestClient_FetchAtCapSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 16))
	}))
	defer server.Close()

	client := NewClient(16, nil)
	client.http = server.Client()

	data, _, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(data) != 16 {
		t.Errorf("len(data) = %d, want 16", len(data))
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantErr    bool
		wantType   error
		isRetryErr bool
	}{
		{name: "200 OK", code: 200, wantErr: false},
		{name: "404 Not Found", code: 404, wantErr: true, wantType: ErrNotFound},
		{name: "500 Internal Server Error", code: 500, wantErr: true, isRetryErr: true},
		{name: "502 Bad Gateway", code: 502, wantErr: true, isRetryErr: true},
		{name: "503 Service Unavailable", code: 503, wantErr: true, isRetryErr: true},
		{name: "400 Bad Request", code: 400, wantErr: true},
		{name: "403 Forbidden", code: 403, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)

			if !tt.wantErr {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("checkStatus() should return error")
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantType)
			}
			if tt.isRetryErr != IsRetryable(err) {
				t.Errorf("IsRetryable() = %v, want %v", IsRetryable(err), tt.isRetryErr)
			}
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(0, nil)
	if client.maxBytes != DefaultMaxBytes {
		t.Errorf("maxBytes = %d, want %d", client.maxBytes, DefaultMaxBytes)
	}
	if client.http.Timeout != httpTimeout {
		t.Errorf("Timeout = %v, want %v", client.http.Timeout, httpTimeout)
	}
}

package extract_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reecejunior/newrouteplanner/extract"
)

func TestClient_Extract_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/extract" {
			t.Errorf("path = %s, want /v1/extract", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "image/jpeg" {
			t.Errorf("content type = %q, want %q", got, "image/jpeg")
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "img-bytes" {
			t.Errorf("body = %q, want %q", body, "img-bytes")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"addresses":["1 Main St","2 Oak Ave"]}`))
	}))
	defer srv.Close()

	c := extract.NewClient(srv.URL)
	got, err := c.Extract(context.Background(), []byte("img-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "1 Main St" || got[1] != "2 Oak Ave" {
		t.Errorf("addresses = %v, want [1 Main St, 2 Oak Ave]", got)
	}
}

func TestClient_Extract_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"addresses":[]}`))
	}))
	defer srv.Close()

	c := extract.NewClient(srv.URL)
	got, err := c.Extract(context.Background(), []byte("x"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("addresses = %v, want empty", got)
	}
}

func TestClient_Extract_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   extract.Kind
	}{
		{"unreadable payload", http.StatusUnprocessableEntity, `{"error":"cannot decode image"}`, extract.KindUnreadable},
		{"bad request", http.StatusBadRequest, `{"error":"missing body"}`, extract.KindUnreadable},
		{"server fault", http.StatusInternalServerError, `{"error":"ocr crashed"}`, extract.KindInternal},
		{"overloaded", http.StatusTooManyRequests, ``, extract.KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := extract.NewClient(srv.URL)
			_, err := c.Extract(context.Background(), []byte("x"), "image/png")
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var ee *extract.Error
			if !errors.As(err, &ee) {
				t.Fatalf("error %T is not *extract.Error", err)
			}
			if ee.Kind != tt.want {
				t.Errorf("kind = %q, want %q", ee.Kind, tt.want)
			}
		})
	}
}

func TestClient_Extract_Unreachable(t *testing.T) {
	c := extract.NewClient("http://127.0.0.1:1")
	_, err := c.Extract(context.Background(), []byte("x"), "image/png")

	var ee *extract.Error
	if !errors.As(err, &ee) {
		t.Fatalf("error %T is not *extract.Error", err)
	}
	if ee.Kind != extract.KindUnavailable {
		t.Errorf("kind = %q, want %q", ee.Kind, extract.KindUnavailable)
	}
}

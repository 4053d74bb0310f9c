package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func chatBody(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func Test_Classifier_Classify(t *testing.T) {
	lines := []string{"- YouTube (com.google.android.youtube): 120 minutes"}

	t.Run("successful classification", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected auth header %q", auth)
			}
			w.Write([]byte(chatBody(`{"summary":"Mostly videos today.","categoryMinutes":{"Entertainment":120}}`)))
		}))
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-key", "gpt-4o-mini", 5*time.Second)
		got := c.Classify(context.Background(), "u1|2025-06-01", lines)

		if got.Summary != "Mostly videos today." {
			t.Errorf("summary = %q", got.Summary)
		}
		if got.CategoryMinutes["Entertainment"] != 120 {
			t.Errorf("categoryMinutes = %v", got.CategoryMinutes)
		}
	})

	t.Run("server error falls back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-key", "gpt-4o-mini", 5*time.Second)
		got := c.Classify(context.Background(), "u1|2025-06-01", lines)

		if got.Summary != FallbackSummary {
			t.Errorf("summary = %q, want fallback", got.Summary)
		}
		if len(got.CategoryMinutes) != 0 {
			t.Errorf("categoryMinutes = %v, want empty", got.CategoryMinutes)
		}
	})

	t.Run("non-JSON model content falls back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(chatBody("sorry, I cannot do that")))
		}))
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-key", "gpt-4o-mini", 5*time.Second)
		got := c.Classify(context.Background(), "u1|2025-06-01", lines)

		if got.Summary != FallbackSummary {
			t.Errorf("summary = %q, want fallback", got.Summary)
		}
	})

	t.Run("timeout falls back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(chatBody(`{"summary":"late","categoryMinutes":{}}`)))
		}))
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-key", "gpt-4o-mini", 20*time.Millisecond)
		got := c.Classify(context.Background(), "u1|2025-06-01", lines)

		if got.Summary != FallbackSummary {
			t.Errorf("summary = %q, want fallback", got.Summary)
		}
	})

	t.Run("no usage lines short-circuits", func(t *testing.T) {
		c := NewClassifier("http://127.0.0.1:1", "test-key", "gpt-4o-mini", time.Second)
		got := c.Classify(context.Background(), "u1|2025-06-01", nil)
		if got.Summary != FallbackSummary {
			t.Errorf("summary = %q, want fallback", got.Summary)
		}
	})

	t.Run("successful result is cached per key", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Write([]byte(chatBody(`{"summary":"cached","categoryMinutes":{"Study":30}}`)))
		}))
		defer srv.Close()

		c := NewClassifier(srv.URL, "test-key", "gpt-4o-mini", 5*time.Second)
		c.Classify(context.Background(), "u1|2025-06-01", lines)
		c.Classify(context.Background(), "u1|2025-06-01", lines)

		if n := atomic.LoadInt32(&calls); n != 1 {
			t.Errorf("server called %d times, want 1", n)
		}

		c.Classify(context.Background(), "u2|2025-06-01", lines)
		if n := atomic.LoadInt32(&calls); n != 2 {
			t.Errorf("server called %d times after new key, want 2", n)
		}
	})
}

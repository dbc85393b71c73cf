package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string) *GatewayClient {
	c := NewGatewayClient(url, "test-key", "test-model")
	c.HTTPTimeout = 2 * time.Second
	c.MaxRetryTime = 3 * time.Second
	return c
}

func TestGatewaySummarizeSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req["model"] != "test-model" {
			t.Errorf("model = %v, want test-model", req["model"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  Ben asked about an invoice.\n"}},
			},
		})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Summarize(context.Background(), `{"parties":[{"name":"Ben"}]}`)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Ben asked about an invoice." {
		t.Errorf("summary = %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestGatewaySummarizeClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Summarize(context.Background(), "record")
	if err == nil {
		t.Fatal("want error on 4xx")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("4xx retried: %d calls, want 1", got)
	}
}

func TestGatewaySummarizeRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "transient", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "recovered"}},
			},
		})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Summarize(context.Background(), "record")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "recovered" {
		t.Errorf("summary = %q, want recovered", got)
	}
	if atomic.LoadInt32(&calls) < 3 {
		t.Errorf("calls = %d, want at least 3", calls)
	}
}

func TestGatewaySummarizeUnconfigured(t *testing.T) {
	c := &GatewayClient{}
	if _, err := c.Summarize(context.Background(), "record"); err == nil {
		t.Fatal("want error when gateway is not configured")
	}
}

func TestGatewaySummarizeCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		http.Error(w, "slow", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(srv.URL).Summarize(ctx, "record")
	if err == nil {
		t.Fatal("want error on cancelled context")
	}
}

func TestContentFromChoices(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"normal", `{"choices":[{"message":{"content":"hi"}}]}`, "hi"},
		{"empty choices", `{"choices":[]}`, ""},
		{"not json", `oops`, ""},
		{"missing message", `{"choices":[{}]}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contentFromChoices([]byte(tt.body)); got != tt.want {
				t.Errorf("contentFromChoices() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStaticEnricher(t *testing.T) {
	got, err := Static{Summary: "canned"}.Summarize(context.Background(), strings.Repeat("x", 10))
	if err != nil {
		t.Fatalf("Static.Summarize() error = %v", err)
	}
	if got != "canned" {
		t.Errorf("summary = %q, want canned", got)
	}
}

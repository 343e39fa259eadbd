package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"artidicia/internal/services"
)

type recordedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
	Messages    []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func writeSSE(t *testing.T, w http.ResponseWriter, chunks ...string) {
	t.Helper()
	w.Header().Set("Content-Type", "text/event-stream")
	for i, chunk := range chunks {
		payload := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion.chunk",
			"created": 1,
			"model":   "demo-model",
			"choices": []any{map[string]any{"index": 0, "delta": map[string]any{"content": chunk}}},
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode chunk %d: %v", i, err)
		}
		fmt.Fprintf(w, "data: %s\n\n", encoded)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func TestGenerateStreamsChunks(t *testing.T) {
	var got recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeSSE(t, w, "## 🎯 Unified", " Prompt\n", "```\nA\n```")
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", Temperature: 0.7})
	stream, err := client.Generate(context.Background(), Request{
		Instruction: "Describe the frames",
		Images:      []Image{{MIME: "image/jpeg", Data: []byte{0xff, 0xd8}}},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	text, err := Collect(stream)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if text != "## 🎯 Unified Prompt\n```\nA\n```" {
		t.Fatalf("unexpected text %q", text)
	}

	if got.Model != "demo-model" || !got.Stream {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(got.Messages) != 1 || len(got.Messages[0].Content) != 2 {
		t.Fatalf("expected one message with two parts, got %+v", got.Messages)
	}
	parts := got.Messages[0].Content
	if parts[0].Type != "text" || parts[0].Text != "Describe the frames" {
		t.Fatalf("unexpected text part %+v", parts[0])
	}
	if parts[1].ImageURL == nil || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/jpeg;base64,/9g") {
		t.Fatalf("unexpected image part %+v", parts[1])
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "upstream"}})
			return
		}
		writeSSE(t, w, "ok")
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := NewClient(Config{BaseURL: server.URL, Model: "demo"},
		WithRetryBackoff(time.Second, 4*time.Second),
		WithSleeper(func(d time.Duration) { sleeps = append(sleeps, d) }),
	)
	stream, err := client.Generate(context.Background(), Request{Instruction: "go"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text, _ := Collect(stream); text != "ok" {
		t.Fatalf("unexpected text %q", text)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(sleeps) != 2 || sleeps[0] != time.Second || sleeps[1] != 2*time.Second {
		t.Fatalf("unexpected backoff %v", sleeps)
	}
}

func TestGenerateTemperatureFallback(t *testing.T) {
	var temps []float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req recordedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		temps = append(temps, req.Temperature)
		if req.Temperature > 2 {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{
				"message": "temperature must be at most 2", "type": "invalid_request_error",
			}})
			return
		}
		writeSSE(t, w, "cooled")
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Model: "demo", Temperature: 3, MaxTemperature: 2})
	stream, err := client.Generate(context.Background(), Request{Instruction: "go"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text, _ := Collect(stream); text != "cooled" {
		t.Fatalf("unexpected text %q", text)
	}
	if len(temps) != 2 || temps[0] != 3 || temps[1] != 2 {
		t.Fatalf("unexpected temperatures %v", temps)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad key"}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"}, WithSleeper(func(time.Duration) {}))
	_, err := client.Generate(context.Background(), Request{Instruction: "go"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestGenerateRequiresModelAndInstruction(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	if _, err := client.Generate(context.Background(), Request{Instruction: "x"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	client = NewClient(Config{BaseURL: "http://127.0.0.1:0", Model: "demo"})
	if _, err := client.Generate(context.Background(), Request{Instruction: "  "}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []any{map[string]any{"id": "llava"}, map[string]any{"id": "demo"}},
		})
	}))
	defer server.Close()

	if err := NewClient(Config{BaseURL: server.URL, Model: "demo"}).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
	err := NewClient(Config{BaseURL: server.URL, Model: "missing"}).HealthCheck(context.Background())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type sliceStream struct {
	chunks []string
	err    error
	closed bool
}

func (s *sliceStream) Recv() (string, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

func TestCollectKeepsPartialTextOnError(t *testing.T) {
	boom := errors.New("connection reset")
	s := &sliceStream{chunks: []string{"half ", "done"}, err: boom}
	text, err := Collect(s)
	if !errors.Is(err, boom) || text != "half done" || !s.closed {
		t.Fatalf("Collect = %q, %v (closed=%v)", text, err, s.closed)
	}
}

func TestBackoffDelayCaps(t *testing.T) {
	c := &Client{retryBaseDelay: time.Second, retryMaxDelay: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := c.backoffDelay(i + 1); got != w {
			t.Fatalf("backoffDelay(%d) = %s, want %s", i+1, got, w)
		}
	}
}

func TestGenerateRetriesConnectionFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	var sleeps int
	client := NewClient(Config{BaseURL: url, Model: "demo"},
		WithRetryMaxAttempts(3),
		WithSleeper(func(time.Duration) { sleeps++ }),
	)
	if _, err := client.Generate(context.Background(), Request{Instruction: "go"}); err == nil {
		t.Fatal("expected error from closed endpoint")
	}
	if sleeps != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", sleeps)
	}
}

func TestRetryDelaySkipsDeterministicFailures(t *testing.T) {
	c := &Client{retryBaseDelay: time.Second, retryMaxDelay: 5 * time.Second}
	ctx := context.Background()
	for _, err := range []error{
		&json.SyntaxError{Offset: 3},
		fmt.Errorf("open: %w", openai.ErrChatCompletionStreamNotSupported),
		context.Canceled,
	} {
		if _, retry := c.retryDelay(ctx, err, 1, 3); retry {
			t.Fatalf("expected no retry for %v", err)
		}
	}
	if delay, retry := c.retryDelay(ctx, errors.New("connection reset"), 2, 3); !retry || delay != 2*time.Second {
		t.Fatalf("expected retry after 2s for unknown failure, got %s %v", delay, retry)
	}
}

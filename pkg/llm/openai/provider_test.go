package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGenerateReturnsFirstChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "hi there"}},
			},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider(server.URL, "test-key", "gpt-4o-mini")
	got, err := p.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hi there" {
		t.Errorf("Generate() = %q, want %q", got, "hi there")
	}
}

func TestGenerateStreamParsesSSE(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, word := range []string{"one ", "two"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"%s\"}}]}\n\n", word)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	p := NewOpenAIProvider(server.URL, "test-key", "gpt-4o-mini")
	chunks, err := p.GenerateStream(context.Background(), "hello")
	if err != nil {
		t.Fatalf("GenerateStream() error = %v", err)
	}

	var sb strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("unexpected stream error: %v", chunk.Err)
		}
		sb.WriteString(chunk.Content)
	}
	if sb.String() != "one two" {
		t.Errorf("stream = %q, want %q", sb.String(), "one two")
	}
}

func TestGenerateStreamExitsOnCancelWithoutReader(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"one\"}}]}\n\n")
		flusher.Flush()
		<-release
		fmt.Fprint(w, "data: {broken\n\n")
		flusher.Flush()
	}))
	defer server.Close()

	baseline := runtime.NumGoroutine()

	ctx, cancel := context.WithCancel(context.Background())
	p := NewOpenAIProvider(server.URL, "test-key", "gpt-4o-mini")
	chunks, err := p.GenerateStream(ctx, "hello")
	if err != nil {
		t.Fatalf("GenerateStream() error = %v", err)
	}
	<-chunks

	// Abandon the channel, then let the server emit a frame that fails to
	// decode. The stream goroutine must still terminate instead of blocking
	// on the error send.
	cancel()
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > baseline && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := runtime.NumGoroutine(); n > baseline {
		t.Fatalf("goroutines = %d, want back to %d after cancellation", n, baseline)
	}
}

func TestGenerateRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	p := NewOpenAIProvider(server.URL, "test-key", "gpt-4o-mini")
	if _, err := p.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error when response has no choices")
	}
}

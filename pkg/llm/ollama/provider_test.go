package ollama

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

func TestGenerateReturnsMessageContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Generate should request a non-streaming reply")
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "hello"},
			Done:    true,
		})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	got, err := p.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("Generate() = %q, want hello", got)
	}
}

func TestGenerateStreamConcatenatesChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, word := range []string{"a ", "b ", "c"} {
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":"%s"},"done":false}`+"\n", word)
			flusher.Flush()
		}
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	chunks, err := p.GenerateStream(context.Background(), "hi")
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
	if sb.String() != "a b c" {
		t.Errorf("stream = %q, want %q", sb.String(), "a b c")
	}
}

func TestGenerateStreamExitsOnCancelWithoutReader(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"a"},"done":false}`)
		flusher.Flush()
		<-release
		fmt.Fprintln(w, `not json`)
		flusher.Flush()
	}))
	defer server.Close()

	baseline := runtime.NumGoroutine()

	ctx, cancel := context.WithCancel(context.Background())
	p := NewOllamaProvider(server.URL, "llama3")
	chunks, err := p.GenerateStream(ctx, "hi")
	if err != nil {
		t.Fatalf("GenerateStream() error = %v", err)
	}
	<-chunks

	// Abandon the channel, then let the server emit a line that fails to
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

func TestGenerateSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	if _, err := p.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

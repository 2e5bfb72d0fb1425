package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "nomic-embed-text" || req.Prompt != "hello" {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(response{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	e := NewEmbedder(srv.URL, "nomic-embed-text", 0)
	if e.Dimension() != 0 {
		t.Fatalf("expected unknown dimension before first call, got %d", e.Dimension())
	}
	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 3 || e.Dimension() != 3 {
		t.Fatalf("unexpected vector %v (dim %d)", vec, e.Dimension())
	}
}

func TestEmbedDefaultsToMiniLM(t *testing.T) {
	e := NewEmbedder("", "", 0)
	if e.Dimension() != 384 {
		t.Fatalf("expected 384 dims for all-minilm, got %d", e.Dimension())
	}
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewEmbedder(srv.URL, "missing", 0)
	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

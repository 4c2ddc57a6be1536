package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbeddingProviderOpenAI(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req openAIEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "text-embedding-ada-002" || len(req.Input) != 1 {
			t.Errorf("unexpected request %+v", req)
		}
		fmt.Fprint(w, `{"data":[{"index":0,"embedding":[0.1,0.2,0.3]}]}`)
	}))
	defer server.Close()

	client, err := NewEmbeddingClient(Config{Provider: "openai", Model: "text-embedding-ada-002", APIURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	vec, err := EmbedText(context.Background(), client, "texte")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 3 || vec[2] != 0.3 {
		t.Fatalf("unexpected vector %v", vec)
	}
}

func TestEmbeddingProviderOllama(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"embedding":[1,2]}`)
	}))
	defer server.Close()

	client, err := NewEmbeddingClient(Config{Provider: "ollama", Model: "nomic-embed-text", APIURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	vecs, err := client.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs) != 2 || len(vecs[1]) != 2 {
		t.Fatalf("unexpected vectors %v", vecs)
	}
}

func TestEmbeddingProviderStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewEmbeddingClient(Config{Model: "m", APIURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := EmbedText(context.Background(), client, "x"); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestNewEmbeddingClientRequiresModel(t *testing.T) {
	if _, err := NewEmbeddingClient(Config{}); err == nil {
		t.Fatal("expected error without model")
	}
	if _, err := EmbedText(context.Background(), nil, "x"); err == nil {
		t.Fatal("expected error with nil client")
	}
}

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opportunity-board/internal/model"
)

func TestNewOpenAIRequiresModel(t *testing.T) {
	if _, err := NewOpenAI(Config{APIKey: "k"}); err == nil {
		t.Fatal("expected error without model")
	}
}

func TestSummarizePost(t *testing.T) {
	var gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) == 2 {
			gotUser = req.Messages[1].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  A junior Go role in Berlin.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAI(Config{APIKey: "k", Model: "test-model", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	post := model.Post{Category: model.CategoryJobs, Title: "Go Developer", Company: "Acme", Location: "Berlin", Description: "Build services."}
	out, err := c.SummarizePost(context.Background(), post, "")
	if err != nil {
		t.Fatalf("SummarizePost: %v", err)
	}
	if out != "A junior Go role in Berlin." {
		t.Errorf("summary = %q", out)
	}
	for _, want := range []string{"Title: Go Developer", "Organization: Acme", "Location: Berlin"} {
		if !strings.Contains(gotUser, want) {
			t.Errorf("prompt missing %q: %q", want, gotUser)
		}
	}
}

func TestSummarizeEmptyPostSkipsCall(t *testing.T) {
	c, _ := NewOpenAI(Config{APIKey: "k", Model: "m", BaseURL: "http://127.0.0.1:1/v1"})
	out, err := c.SummarizePost(context.Background(), model.Post{}, "English")
	if err != nil || out != "" {
		t.Fatalf("got %q, %v", out, err)
	}
}

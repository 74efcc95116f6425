package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"opportunity-board/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer writes short card blurbs for posts.
type Summarizer interface {
	// SummarizePost creates a 1-2 sentence blurb for a post in the given language.
	SummarizePost(ctx context.Context, post model.Post, language string) (string, error)
}

// OpenAIClient implements Summarizer using OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, errors.New("openai: model must be specified")
	}
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	return &OpenAIClient{client: c, model: cfg.Model}, nil
}

func (o *OpenAIClient) SummarizePost(ctx context.Context, post model.Post, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	desc := strings.TrimSpace(post.Description)
	if len([]rune(desc)) > 1500 {
		desc = string([]rune(desc)[:1500])
	}
	if desc == "" && post.Title == "" {
		return "", nil
	}

	sys := fmt.Sprintf(`
		You write blurbs for listing cards on a job and event board. Write in %s.
		Return 1-2 plain sentences, at most 40 words, saying what the opportunity is and who it suits.
		No links, no emoji, no marketing superlatives.
		`, langOrDefault(language))
	b := &strings.Builder{}
	fmt.Fprintf(b, "Type: %s\nTitle: %s\n", post.Category.Badge().Label, post.Title)
	if org := post.Organization(); org != "" {
		fmt.Fprintf(b, "Organization: %s\n", org)
	}
	if place := post.Place(); place != "" {
		fmt.Fprintf(b, "Location: %s\n", place)
	}
	if post.ExperienceLevel != "" {
		fmt.Fprintf(b, "Experience: %s\n", post.ExperienceLevel)
	}
	fmt.Fprintf(b, "Description: %s", desc)

	out, err := o.create(ctx, sys, b.String())
	if err != nil {
		slog.Error("openai: summarize post error", "category", post.Category, "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}

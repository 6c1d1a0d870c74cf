package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/babelbridge/babelbridge/pkg/route"
)

// langNames maps language codes to the names used in the translation prompt.
var langNames = map[route.Lang]string{
	route.Chinese: "中文",
	route.Thai:    "泰语",
	route.English: "英语",
}

// Chat is a Translator backed by an OpenAI-compatible chat-completions
// endpoint (DeepSeek and friends).
type Chat struct {
	client *openai.Client
	model  string
}

var _ Translator = (*Chat)(nil)

// ChatConfig configures a Chat translator.
type ChatConfig struct {
	// APIKey authenticates against the endpoint. Required.
	APIKey string

	// BaseURL overrides the endpoint base URL. Empty means the OpenAI default.
	BaseURL string

	// Model is the chat model name, e.g. "deepseek-chat". Required.
	Model string
}

// NewChat creates a chat-completions translator.
func NewChat(cfg ChatConfig) (*Chat, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("translate: missing api key")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("translate: missing model")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &Chat{client: &client, model: cfg.Model}, nil
}

// Translate implements Translator. The prompt asks for a colloquial, natural
// rendering rather than a literal one.
func (c *Chat) Translate(ctx context.Context, text string, src, dst route.Lang) (string, error) {
	srcName, ok := langNames[src]
	if !ok {
		return "", fmt.Errorf("translate: unsupported source language %q", src)
	}
	dstName, ok := langNames[dst]
	if !ok {
		return "", fmt.Errorf("translate: unsupported target language %q", dst)
	}

	prompt := fmt.Sprintf("请将以下%s口语化地翻译成%s，保持自然流畅：\n%s", srcName, dstName, text)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("translate: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// NoContentPlaceholder возвращается, когда модель ответила пустым content
const NoContentPlaceholder = "[LLM returned no content]"

// ChatClient вызывает {endpoint}/chat/completions одной модели
type ChatClient struct {
	http  *resty.Client
	model string
}

// NewChatClient создает клиента для одного бэкенда
func NewChatClient(cfg BackendConfig, timeout time.Duration) *ChatClient {
	return &ChatClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")).
			SetAuthToken(cfg.APIKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
		model: cfg.ID,
	}
}

// Complete отправляет системное и пользовательское сообщения и возвращает текст ответа
func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("chat completion error: status %d body %s", resp.StatusCode(), truncate(resp.String(), 512))
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return "", fmt.Errorf("failed to decode chat completion: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("chat completion response missing choices")
	}

	content := cr.Choices[0].Message.Content
	if content == nil {
		return NoContentPlaceholder, nil
	}

	return strings.TrimSpace(*content), nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

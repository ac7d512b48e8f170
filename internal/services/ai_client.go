package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/utils"
)

// AIClient is the opaque tutoring model boundary. It is only ever called
// outside database transactions.
type AIClient interface {
	Chat(ctx context.Context, messages []AIMessage) (string, error)
}

type AIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type aiClient struct {
	httpClient *http.Client
	log        *logger.Logger
	apiKey     string
	baseURL    string
	chatModel  string
}

func NewAIClient(log *logger.Logger) (AIClient, error) {
	serviceLog := log.With("service", "AIClient")
	apiKey := utils.GetEnv("OPENAI_API_KEY", "", log)
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	baseURL := utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1", log)
	chatModel := utils.GetEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini", log)
	return &aiClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        serviceLog,
		apiKey:     apiKey,
		baseURL:    baseURL,
		chatModel:  chatModel,
	}, nil
}

type chatCompletionRequest struct {
	Model    string      `json:"model"`
	Messages []AIMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message AIMessage `json:"message"`
	} `json:"choices"`
}

func (c *aiClient) Chat(ctx context.Context, messages []AIMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	payload, err := json.Marshal(chatCompletionRequest{
		Model:    c.chatModel,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("Chat completion failed", "status", resp.StatusCode)
		return "", fmt.Errorf("chat completion returned status %d", resp.StatusCode)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

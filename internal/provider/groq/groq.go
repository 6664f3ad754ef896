package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vnmchuo/inference-hub/internal/provider"
)

// GroqProvider speaks Groq's OpenAI-compatible chat completions API.
type GroqProvider struct {
	apiKey  string
	baseURL string
}

type groqRequest struct {
	Model     string        `json:"model"`
	Messages  []groqMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	ID      string       `json:"id"`
	Choices []groqChoice `json:"choices"`
	Usage   groqUsage    `json:"usage"`
	Model   string       `json:"model"`
}

type groqChoice struct {
	Message groqMessage `json:"message"`
}

type groqUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func New(apiKey string) provider.Provider {
	return &GroqProvider{
		apiKey:  apiKey,
		baseURL: "https://api.groq.com/openai/v1",
	}
}

func (p *GroqProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	groqReq := p.mapRequest(req)
	body, err := json.Marshal(groqReq)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("groq api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var groqResp groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return nil, err
	}

	if len(groqResp.Choices) == 0 {
		return nil, fmt.Errorf("groq api returned no choices")
	}

	return &provider.Response{
		ID:          groqResp.ID,
		Content:     groqResp.Choices[0].Message.Content,
		TotalTokens: groqResp.Usage.TotalTokens,
		Model:       groqResp.Model,
	}, nil
}

func (p *GroqProvider) mapRequest(req *provider.Request) groqRequest {
	var messages []groqMessage
	if req.SystemPrompt != "" {
		messages = append(messages, groqMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, groqMessage{Role: "user", Content: req.UserPrompt})

	return groqRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
}

func (p *GroqProvider) Name() string {
	return "groq"
}

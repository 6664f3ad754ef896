package provider

import (
	"context"
)

type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

type Response struct {
	ID          string
	Content     string
	TotalTokens int
	Model       string
}

// Provider is a synchronous text-generation backend.
type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Name() string
}

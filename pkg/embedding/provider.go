package embedding

import "context"

// Provider defines the interface for generating text embeddings
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) (*Response, error)
}

type Response struct {
	Values []float32 `json:"values"`
}

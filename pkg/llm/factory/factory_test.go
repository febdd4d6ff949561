package factory

import (
	"testing"
)

func TestParseModelTag(t *testing.T) {
	tests := []struct {
		tag          string
		wantProvider string
		wantModel    string
		wantErr      bool
	}{
		{"groq:llama-3.3-70b-versatile", "groq", "llama-3.3-70b-versatile", false},
		{"ollama:gemma3", "ollama", "gemma3", false},
		{"anthropic:claude-3-sonnet-20240229", "anthropic", "claude-3-sonnet-20240229", false},
		{"OpenAI:gpt-4o", "openai", "gpt-4o", false},
		{"ollama:gemma3:latest", "ollama", "gemma3:latest", false}, // only first colon splits
		{"gemma3", "", "", true},
		{":model", "", "", true},
		{"provider:", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			provider, model, err := ParseModelTag(tt.tag)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModelTag(%q) error = %v, wantErr %v", tt.tag, err, tt.wantErr)
			}
			if provider != tt.wantProvider || model != tt.wantModel {
				t.Errorf("ParseModelTag(%q) = (%q, %q), want (%q, %q)",
					tt.tag, provider, model, tt.wantProvider, tt.wantModel)
			}
		})
	}
}

func TestNewProviderUnsupported(t *testing.T) {
	if _, err := NewProvider("mistralcloud:some-model", Keys{}); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

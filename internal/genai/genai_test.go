package genai

import (
	"testing"
)

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if err == nil {
		t.Error("expected error when API key not provided, got nil")
	}
}

func TestNewClient_DefaultModels(t *testing.T) {
	c, err := NewClient(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	if c.model != DefaultModel {
		t.Errorf("expected default model %s, got %s", DefaultModel, c.model)
	}
	if c.summaryModel != DefaultSummaryModel {
		t.Errorf("expected default summary model %s, got %s", DefaultSummaryModel, c.summaryModel)
	}
}

func TestNewClient_KeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	if _, err := NewClient(); err != nil {
		t.Errorf("expected env key to satisfy constructor, got %v", err)
	}
}

func TestNewClient_ModelOverrides(t *testing.T) {
	c, err := NewClient(WithAPIKey("test-key"), WithModel("gpt-4o-2024-08-06"), WithSummaryModel("gpt-4o-mini-2024-07-18"))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	if string(c.model) != "gpt-4o-2024-08-06" {
		t.Errorf("unexpected model: %s", c.model)
	}
	if string(c.summaryModel) != "gpt-4o-mini-2024-07-18" {
		t.Errorf("unexpected summary model: %s", c.summaryModel)
	}
}

package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTruncateFoundationDoc_ShortPassesThrough(t *testing.T) {
	doc := "short document"
	if got := TruncateFoundationDoc(doc); got != doc {
		t.Errorf("expected doc unchanged, got %q", got)
	}
}

func TestTruncateFoundationDoc_ExactLimitPassesThrough(t *testing.T) {
	doc := strings.Repeat("a", MaxFoundationDocLength)
	if got := TruncateFoundationDoc(doc); got != doc {
		t.Errorf("expected doc at limit unchanged, got length %d", len(got))
	}
}

func TestTruncateFoundationDoc_LongIsCutWithMarker(t *testing.T) {
	doc := strings.Repeat("a", MaxFoundationDocLength+500)
	got := TruncateFoundationDoc(doc)
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Errorf("expected truncation marker suffix, got %q", got[len(got)-30:])
	}
	if want := MaxFoundationDocLength + len(TruncationMarker); len(got) != want {
		t.Errorf("expected length %d, got %d", want, len(got))
	}
}

func TestTruncateFoundationDoc_CountsRunesNotBytes(t *testing.T) {
	doc := strings.Repeat("é", MaxFoundationDocLength+1)
	got := TruncateFoundationDoc(doc)
	runes := []rune(strings.TrimSuffix(got, TruncationMarker))
	if len(runes) != MaxFoundationDocLength {
		t.Errorf("expected %d runes kept, got %d", MaxFoundationDocLength, len(runes))
	}
	for _, r := range runes {
		if r != 'é' {
			t.Fatalf("rune corrupted during truncation: %q", r)
		}
	}
}

func TestNextQuestionRequestValidate(t *testing.T) {
	req := NextQuestionRequest{}
	if err := req.Validate(); !errors.Is(err, ErrNoTargetsSelected) {
		t.Errorf("expected ErrNoTargetsSelected, got %v", err)
	}

	req.SelectedTargets = []TargetID{"notreal"}
	if err := req.Validate(); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("expected ErrUnknownTarget, got %v", err)
	}

	req.SelectedTargets = []TargetID{TargetChatGPT, TargetClaude}
	if err := req.Validate(); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}
}

func TestAnalyzeRequestValidate(t *testing.T) {
	req := AnalyzeRequest{Question: "  ", Answer: "something"}
	if err := req.Validate(); !errors.Is(err, ErrMissingQuestion) {
		t.Errorf("expected ErrMissingQuestion, got %v", err)
	}

	req = AnalyzeRequest{Question: "How do you work?", Answer: "\t\n"}
	if err := req.Validate(); !errors.Is(err, ErrMissingAnswer) {
		t.Errorf("expected ErrMissingAnswer, got %v", err)
	}

	req = AnalyzeRequest{Question: "How do you work?", Answer: "carefully"}
	if err := req.Validate(); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}
}

func TestGenerateRequestValidate(t *testing.T) {
	req := GenerateRequest{}
	if err := req.Validate(); !errors.Is(err, ErrNoTargetsSelected) {
		t.Errorf("expected ErrNoTargetsSelected, got %v", err)
	}

	req.SelectedTargets = []TargetID{TargetGemini}
	if err := req.Validate(); !errors.Is(err, ErrNoAnswers) {
		t.Errorf("expected ErrNoAnswers, got %v", err)
	}

	req.Answers = []Answer{{QuestionID: "q-1", Question: "Q", Answer: "A"}}
	if err := req.Validate(); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}
}

func TestGenerationResultHasTarget(t *testing.T) {
	result := GenerationResult{
		Claude: &ClaudeResult{ProfilePreferences: "prefs", RecommendedStyle: "Concise", StyleReasoning: "short"},
	}
	if !result.HasTarget(TargetClaude) {
		t.Error("expected claude section present")
	}
	if result.HasTarget(TargetChatGPT) {
		t.Error("expected chatgpt section absent")
	}
	if result.HasTarget("notreal") {
		t.Error("expected unknown target absent")
	}
}

func TestGenerationResultJSONOmitsAbsentTargets(t *testing.T) {
	result := GenerationResult{Gemini: &GeminiResult{Instructions: "be brief"}}
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "chatgpt") || strings.Contains(string(data), "perplexity") {
		t.Errorf("expected absent targets omitted, got %s", data)
	}
	if !strings.Contains(string(data), "be brief") {
		t.Errorf("expected gemini instructions in payload, got %s", data)
	}
}

func TestTargetByID(t *testing.T) {
	if got := TargetByID(TargetPerplexity); got == nil || got.Name != "Perplexity" {
		t.Errorf("expected Perplexity descriptor, got %+v", got)
	}
	if got := TargetByID("notreal"); got != nil {
		t.Errorf("expected nil for unknown id, got %+v", got)
	}
}

func TestTargetFieldsCoverAllTargets(t *testing.T) {
	for _, target := range Targets {
		fields, ok := TargetFields[target.ID]
		if !ok || len(fields) == 0 {
			t.Errorf("target %s has no field catalog", target.ID)
		}
	}
}

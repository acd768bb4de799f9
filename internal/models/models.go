// Package models defines the core data structures for the wizard service.
//
// It includes the question/answer session types, insight analysis tracking,
// generation results, and the collaborator request/response bodies shared
// between the API server and the session engine.
package models

import (
	"errors"
	"strings"
)

// InsightStatus tracks the lifecycle of a background answer analysis.
type InsightStatus string

const (
	// InsightStatusPending marks an insight slot that has not started analyzing.
	InsightStatusPending InsightStatus = "pending"
	// InsightStatusAnalyzing marks an analysis that is in flight.
	InsightStatusAnalyzing InsightStatus = "analyzing"
	// InsightStatusComplete marks a finished analysis with usable insight text.
	InsightStatusComplete InsightStatus = "complete"
	// InsightStatusError marks a failed analysis; the insight text is empty and
	// downstream consumers fall back to the raw answer.
	InsightStatusError InsightStatus = "error"
)

// GenerationPhase identifies where the orchestrator is in a generation cycle.
type GenerationPhase string

const (
	PhaseIdle               GenerationPhase = "idle"
	PhaseWaitingForInsights GenerationPhase = "waiting-for-insights"
	PhaseGenerating         GenerationPhase = "generating"
	PhaseStreaming          GenerationPhase = "streaming"
)

// InputType describes how a generated question should be answered.
type InputType string

const (
	InputTypeTextarea    InputType = "textarea"
	InputTypeText        InputType = "text"
	InputTypeMultiselect InputType = "multiselect"
)

// Validation constants shared across components.
const (
	// MaxFoundationDocLength is the maximum number of characters of a foundation
	// document (writing codex or personal constitution) included in any prompt.
	MaxFoundationDocLength = 4000
	// TruncationMarker is appended to a foundation document cut at MaxFoundationDocLength.
	TruncationMarker = "\n[... truncated]"
	// MinExtractedTextLength is the smallest extraction accepted by the file parser.
	MinExtractedTextLength = 10
)

// Error variables for better error handling and testability
var (
	ErrNoTargetsSelected = errors.New("no targets selected")
	ErrNoAnswers         = errors.New("no answers provided")
	ErrMissingQuestion   = errors.New("question cannot be empty")
	ErrMissingAnswer     = errors.New("answer cannot be empty")
	ErrUnknownTarget     = errors.New("unknown target")
)

// Answer is one saved question/answer pair. QuestionID is the stable
// question-slot key; insertion order is the display order.
type Answer struct {
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Timestamp  int64  `json:"timestamp"`
}

// Insight is the model-produced distillation of a single answer.
// At most one exists per QuestionID.
type Insight struct {
	QuestionID string        `json:"questionId"`
	Insight    string        `json:"insight"`
	Status     InsightStatus `json:"status"`
}

// Question is one AI-generated question descriptor. IsComplete signals that
// enough information has been gathered and generation should begin.
type Question struct {
	Question   string    `json:"question"`
	Subtext    string    `json:"subtext,omitempty"`
	InputType  InputType `json:"inputType"`
	Options    []string  `json:"options,omitempty"`
	IsComplete bool      `json:"isComplete"`
}

// QA is a bare question/answer pair forwarded as history to the question oracle.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NextQuestionRequest is the body of POST /api/next-question.
type NextQuestionRequest struct {
	SelectedTargets      []TargetID `json:"selectedTargets"`
	WritingCodex         string     `json:"writingCodex,omitempty"`
	PersonalConstitution string     `json:"personalConstitution,omitempty"`
	PreviousAnswers      []QA       `json:"previousAnswers"`
	QuestionCount        int        `json:"questionCount"`
}

// Validate checks the next-question request for required fields.
func (r *NextQuestionRequest) Validate() error {
	if len(r.SelectedTargets) == 0 {
		return ErrNoTargetsSelected
	}
	for _, id := range r.SelectedTargets {
		if !ValidTargetID(id) {
			return ErrUnknownTarget
		}
	}
	return nil
}

// NextQuestionResponse is the envelope returned by POST /api/next-question.
type NextQuestionResponse struct {
	Success bool      `json:"success"`
	Data    *Question `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// AnalyzeRequest is the body of POST /api/analyze-answer.
type AnalyzeRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Validate checks the analyze request for required fields.
func (r *AnalyzeRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return ErrMissingQuestion
	}
	if strings.TrimSpace(r.Answer) == "" {
		return ErrMissingAnswer
	}
	return nil
}

// AnalyzeResponse is the envelope returned by POST /api/analyze-answer.
type AnalyzeResponse struct {
	Success bool   `json:"success"`
	Insight string `json:"insight,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GenerateRequest is the body of POST /api/generate. Answers whose question
// has a completed insight carry empty answer text; the insight stands in for
// the raw detail downstream.
type GenerateRequest struct {
	SelectedTargets      []TargetID `json:"selectedTargets"`
	Answers              []Answer   `json:"answers"`
	AnalyzedInsights     []Insight  `json:"analyzedInsights"`
	WritingCodex         string     `json:"writingCodex,omitempty"`
	PersonalConstitution string     `json:"personalConstitution,omitempty"`
}

// Validate checks the generate request for required fields.
func (r *GenerateRequest) Validate() error {
	if len(r.SelectedTargets) == 0 {
		return ErrNoTargetsSelected
	}
	if len(r.Answers) == 0 {
		return ErrNoAnswers
	}
	return nil
}

// GenerateError is the JSON error envelope returned by POST /api/generate
// when the request fails before streaming begins.
type GenerateError struct {
	Error string `json:"error"`
}

// TruncateFoundationDoc bounds a foundation document to MaxFoundationDocLength
// characters, keeping the head and appending the truncation marker.
func TruncateFoundationDoc(doc string) string {
	runes := []rune(doc)
	if len(runes) <= MaxFoundationDocLength {
		return doc
	}
	return string(runes[:MaxFoundationDocLength]) + TruncationMarker
}

// API Response types for consistent JSON responses

// APIStatus enumerates the status values used in API responses.
type APIStatus string

const (
	APIStatusOK    APIStatus = "ok"
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

// Package wizard implements the session engine: the client-driven state
// machine that collects answers, coordinates background insight analysis,
// drives the adaptive question cycle, and orchestrates the streamed
// generation of custom instructions.
//
// All session state mutation is funneled through one mutex; every exported
// mutator is a single atomic transition, so concurrent completions of
// asynchronous work (insight analyses, stream chunks) each apply one discrete
// state change. Collaborators are reached through the three service
// interfaces below, implemented over HTTP by APIClient and by mocks in tests.
package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/mycustomai/wizard/internal/models"
	"github.com/mycustomai/wizard/internal/store"
)

// Default timing configuration.
const (
	// DefaultInsightWaitTimeout bounds how long generation waits for in-flight
	// answer analyses to drain before proceeding without them.
	DefaultInsightWaitTimeout = 60 * time.Second
	// DefaultCoalesceInterval is the minimum spacing between consolidated
	// streamed-text emissions to the subscriber.
	DefaultCoalesceInterval = 80 * time.Millisecond
)

// Error variables for session flow control.
var (
	// ErrGenerationInProgress is returned when Generate or Retry is invoked
	// while a generation cycle is already running.
	ErrGenerationInProgress = errors.New("generation already in progress")
	// ErrQuestionFetch marks a failed or uninterpretable question fetch. The
	// fetch is retryable with identical inputs; saved answers are unaffected.
	ErrQuestionFetch = errors.New("question generation failed")
)

// QuestionService asks the question oracle for the next question.
type QuestionService interface {
	NextQuestion(ctx context.Context, req models.NextQuestionRequest) (*models.Question, error)
}

// AnalysisService distills one answer into an insight.
type AnalysisService interface {
	AnalyzeAnswer(ctx context.Context, question, answer string) (string, error)
}

// GenerationService runs one generation cycle's streamed request. onStart is
// invoked once when the response status resolves successfully, before any
// body arrives; onChunk receives decoded text fragments in arrival order.
type GenerationService interface {
	Generate(ctx context.Context, req models.GenerateRequest, onStart func(), onChunk func(text string)) error
}

// Config assembles a session's collaborators and tuning.
type Config struct {
	// SessionID keys the durable snapshot. Generated when empty.
	SessionID string
	// Store persists session snapshots. Optional; nil disables persistence.
	Store store.Store
	// Questions, Analysis and Generation are the remote collaborators.
	Questions  QuestionService
	Analysis   AnalysisService
	Generation GenerationService
	// OnStream, when set, observes the consolidated streamed text during a
	// generation cycle. Called with the full accumulated text, paced by
	// CoalesceInterval.
	OnStream func(total string)
	// InsightWaitTimeout overrides DefaultInsightWaitTimeout when positive.
	InsightWaitTimeout time.Duration
	// CoalesceInterval overrides DefaultCoalesceInterval when positive.
	CoalesceInterval time.Duration
}

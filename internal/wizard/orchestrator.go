package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mycustomai/wizard/internal/models"
)

// User-facing failure messages surfaced through State.Err.
const (
	msgQuestionFailed = "Failed to generate question. Please try again."
	msgParseFailed    = "Failed to parse generation result. Please try again."
)

// FetchNextQuestion asks the question oracle for the current slot's question,
// forwarding the full answer history. A failure sets State.Err and returns an
// error wrapping ErrQuestionFetch; saved answers are untouched and the fetch
// can be retried with identical inputs.
func (s *Session) FetchNextQuestion(ctx context.Context) (*models.Question, error) {
	s.mu.Lock()
	req := models.NextQuestionRequest{
		SelectedTargets:      append([]models.TargetID(nil), s.state.SelectedTargets...),
		WritingCodex:         s.state.WritingCodex,
		PersonalConstitution: s.state.PersonalConstitution,
		PreviousAnswers:      make([]models.QA, 0, len(s.state.Answers)),
		QuestionCount:        s.questionNumber - 1,
	}
	for _, ans := range s.state.Answers {
		req.PreviousAnswers = append(req.PreviousAnswers, models.QA{Question: ans.Question, Answer: ans.Answer})
	}
	s.mu.Unlock()

	q, err := s.questions.NextQuestion(ctx, req)
	if err != nil {
		slog.Error("Session.FetchNextQuestion: fetch failed", "error", err, "sessionID", s.id, "slot", req.QuestionCount+1)
		s.mu.Lock()
		s.state.Err = msgQuestionFailed
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrQuestionFetch, err)
	}

	s.mu.Lock()
	s.state.Err = ""
	s.mu.Unlock()
	return q, nil
}

// Generate advances to the results step and runs a generation cycle. Returns
// ErrGenerationInProgress if a cycle is already running.
func (s *Session) Generate(ctx context.Context) error {
	return s.runGeneration(ctx, true)
}

// Retry reruns generation with the data already gathered, without changing
// the current step.
func (s *Session) Retry(ctx context.Context) error {
	return s.runGeneration(ctx, false)
}

func (s *Session) runGeneration(ctx context.Context, advanceStep bool) error {
	s.mu.Lock()
	if s.state.IsGenerating {
		s.mu.Unlock()
		return ErrGenerationInProgress
	}
	if advanceStep {
		s.nextStepLocked()
	}
	s.state.IsGenerating = true
	s.state.Phase = models.PhaseWaitingForInsights
	s.state.Result = nil
	s.state.StreamedText = ""
	s.state.Err = ""
	s.mu.Unlock()

	// Let in-flight analyses finish so completed insights can stand in for
	// raw answers. On timeout the stragglers are abandoned and generation
	// falls back to raw answer text.
	waitCtx, cancel := context.WithTimeout(ctx, s.insightWait)
	err := s.annotator.wait(waitCtx)
	cancel()
	if err != nil {
		slog.Warn("Session.runGeneration: proceeding without pending insights", "error", err, "sessionID", s.id)
		s.annotator.cancelAll()
		s.mu.Lock()
		s.markPendingInsightsFailedLocked()
		s.mu.Unlock()
	}

	s.mu.Lock()
	req := s.buildGenerateRequestLocked()
	s.state.Phase = models.PhaseGenerating
	s.mu.Unlock()

	co := newCoalescer(s.coalesce, func(total string) {
		s.mu.Lock()
		s.state.StreamedText = total
		s.mu.Unlock()
		if s.onStream != nil {
			s.onStream(total)
		}
	})

	genErr := s.generation.Generate(ctx, req,
		func() {
			s.mu.Lock()
			s.state.Phase = models.PhaseStreaming
			s.mu.Unlock()
		},
		co.add,
	)
	co.close()

	if genErr != nil {
		slog.Error("Session.runGeneration: generation failed", "error", genErr, "sessionID", s.id)
		s.setGenerationError(genErr.Error())
		return genErr
	}

	total := co.total()
	var result models.GenerationResult
	if err := json.Unmarshal([]byte(total), &result); err != nil {
		slog.Error("Session.runGeneration: unparseable generation output", "error", err, "sessionID", s.id, "bytes", len(total))
		s.setGenerationError(msgParseFailed)
		return fmt.Errorf("failed to parse generation result: %w", err)
	}

	s.mu.Lock()
	s.state.Result = &result
	s.state.StreamedText = total
	s.state.IsComplete = true
	s.state.IsGenerating = false
	s.state.Phase = models.PhaseIdle
	s.mu.Unlock()
	s.clearDurable()

	slog.Info("Session.runGeneration: generation complete", "sessionID", s.id, "targets", len(req.SelectedTargets))
	return nil
}

// buildGenerateRequestLocked assembles the generation request. Answers whose
// question has a completed insight are sent with empty answer text; the
// insight carries the distilled detail instead.
func (s *Session) buildGenerateRequestLocked() models.GenerateRequest {
	completed := make(map[string]bool, len(s.state.AnalyzedInsights))
	for _, ins := range s.state.AnalyzedInsights {
		if ins.Status == models.InsightStatusComplete && ins.Insight != "" {
			completed[ins.QuestionID] = true
		}
	}

	answers := make([]models.Answer, 0, len(s.state.Answers))
	for _, ans := range s.state.Answers {
		if completed[ans.QuestionID] {
			ans.Answer = ""
		}
		answers = append(answers, ans)
	}

	return models.GenerateRequest{
		SelectedTargets:      append([]models.TargetID(nil), s.state.SelectedTargets...),
		Answers:              answers,
		AnalyzedInsights:     append([]models.Insight(nil), s.state.AnalyzedInsights...),
		WritingCodex:         s.state.WritingCodex,
		PersonalConstitution: s.state.PersonalConstitution,
	}
}

// setGenerationError records a failed cycle. Gathered data stays intact and
// the snapshot persists again, so the user can retry.
func (s *Session) setGenerationError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsGenerating = false
	s.state.Phase = models.PhaseIdle
	s.state.Err = msg
	s.persistLocked()
}

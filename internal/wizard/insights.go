package wizard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mycustomai/wizard/internal/models"
)

// annotator tracks the in-flight answer analyses. Each question slot has at
// most one live task: rescheduling a slot cancels its predecessor, so the
// last-scheduled analysis wins. A completion gate lets generation wait for
// the outstanding set to drain without polling.
type annotator struct {
	mu          sync.Mutex
	tasks       map[string]*analysisTask
	outstanding int
	idle        chan struct{} // closed while outstanding == 0
}

type analysisTask struct {
	cancel context.CancelFunc
}

func newAnnotator() *annotator {
	idle := make(chan struct{})
	close(idle)
	return &annotator{tasks: make(map[string]*analysisTask), idle: idle}
}

// begin registers a task for a question slot, cancelling any predecessor, and
// returns the context governing the new task.
func (a *annotator) begin(questionID string) (context.Context, *analysisTask) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if prev, ok := a.tasks[questionID]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &analysisTask{cancel: cancel}
	a.tasks[questionID] = task

	a.outstanding++
	if a.outstanding == 1 {
		a.idle = make(chan struct{})
	}
	return ctx, task
}

// finish retires a task. The slot entry is removed only when the task is
// still the slot's current one.
func (a *annotator) finish(questionID string, task *analysisTask) {
	a.mu.Lock()
	defer a.mu.Unlock()

	task.cancel()
	if a.tasks[questionID] == task {
		delete(a.tasks, questionID)
	}
	a.outstanding--
	if a.outstanding == 0 {
		close(a.idle)
	}
}

// isCurrent reports whether a task is still the live analysis for its slot.
// A superseded task's result must be discarded.
func (a *annotator) isCurrent(questionID string, task *analysisTask) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tasks[questionID] == task
}

// wait blocks until no analyses remain in flight or the context ends.
func (a *annotator) wait(ctx context.Context) error {
	a.mu.Lock()
	idle := a.idle
	a.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cancelAll aborts every in-flight analysis.
func (a *annotator) cancelAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, task := range a.tasks {
		task.cancel()
	}
}

// analyzeAnswerInBackground runs one answer analysis without blocking the
// caller. The outcome is applied only when the task is still the slot's
// current one; a failure records an error-status insight so generation can
// fall back to the raw answer.
func (s *Session) analyzeAnswerInBackground(ans models.Answer) {
	ctx, task := s.annotator.begin(ans.QuestionID)
	go func() {
		defer s.annotator.finish(ans.QuestionID, task)

		text, err := s.analysis.AnalyzeAnswer(ctx, ans.Question, ans.Answer)
		if ctx.Err() != nil || !s.annotator.isCurrent(ans.QuestionID, task) {
			slog.Debug("Session.analyzeAnswerInBackground: discarding superseded analysis", "sessionID", s.id, "questionID", ans.QuestionID)
			return
		}
		if err != nil {
			slog.Warn("Session.analyzeAnswerInBackground: analysis failed", "error", err, "sessionID", s.id, "questionID", ans.QuestionID)
			s.setInsight(models.Insight{QuestionID: ans.QuestionID, Status: models.InsightStatusError})
			return
		}
		s.setInsight(models.Insight{QuestionID: ans.QuestionID, Insight: text, Status: models.InsightStatusComplete})
	}()
}

// markPendingInsightsFailedLocked flips any insight still awaiting analysis
// to error status. Used when the drain gate times out.
func (s *Session) markPendingInsightsFailedLocked() {
	for i := range s.state.AnalyzedInsights {
		st := s.state.AnalyzedInsights[i].Status
		if st == models.InsightStatusPending || st == models.InsightStatusAnalyzing {
			s.state.AnalyzedInsights[i].Status = models.InsightStatusError
		}
	}
}

package wizard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mycustomai/wizard/internal/models"
	"github.com/mycustomai/wizard/internal/store"
)

// State is the aggregate session state. Only the user-authored fields
// (step, targets, foundation documents, answers, insights) are durable;
// generation-phase fields never persist.
type State struct {
	CurrentStep          int
	SelectedTargets      []models.TargetID
	WritingCodex         string
	PersonalConstitution string
	Answers              []models.Answer
	AnalyzedInsights     []models.Insight
	IsComplete           bool
	IsGenerating         bool
	Phase                models.GenerationPhase
	Result               *models.GenerationResult
	StreamedText         string
	Err                  string
}

// Snapshot is the durable projection of a session: user-authored progress
// only. It is a pure function of State (see snapshotLocked).
type Snapshot struct {
	CurrentStep          int               `json:"currentStep"`
	SelectedTargets      []models.TargetID `json:"selectedTargets"`
	WritingCodex         string            `json:"writingCodex,omitempty"`
	PersonalConstitution string            `json:"personalConstitution,omitempty"`
	Answers              []models.Answer   `json:"answers"`
	AnalyzedInsights     []models.Insight  `json:"analyzedInsights"`
}

// Session owns one user's wizard run: the answer store, the insight
// annotator, the question cycle, and the generation orchestrator.
type Session struct {
	id         string
	store      store.Store
	questions  QuestionService
	analysis   AnalysisService
	generation GenerationService

	insightWait time.Duration
	coalesce    time.Duration
	onStream    func(total string)

	mu             sync.Mutex
	state          State
	questionNumber int // 1-based question slot currently presented
	annotator      *annotator
}

// NewSession creates a session with initial state.
func NewSession(cfg Config) *Session {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.InsightWaitTimeout <= 0 {
		cfg.InsightWaitTimeout = DefaultInsightWaitTimeout
	}
	if cfg.CoalesceInterval <= 0 {
		cfg.CoalesceInterval = DefaultCoalesceInterval
	}
	s := &Session{
		id:             cfg.SessionID,
		store:          cfg.Store,
		questions:      cfg.Questions,
		analysis:       cfg.Analysis,
		generation:     cfg.Generation,
		insightWait:    cfg.InsightWaitTimeout,
		coalesce:       cfg.CoalesceInterval,
		onStream:       cfg.OnStream,
		state:          State{Phase: models.PhaseIdle},
		questionNumber: 1,
	}
	s.annotator = newAnnotator()
	slog.Debug("Session.NewSession: session created", "sessionID", s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns a copy of the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyStateLocked()
}

func (s *Session) copyStateLocked() State {
	st := s.state
	st.SelectedTargets = append([]models.TargetID(nil), s.state.SelectedTargets...)
	st.Answers = append([]models.Answer(nil), s.state.Answers...)
	st.AnalyzedInsights = append([]models.Insight(nil), s.state.AnalyzedInsights...)
	if s.state.Result != nil {
		result := *s.state.Result
		st.Result = &result
	}
	return st
}

// QuestionSlot returns the 1-based index of the current question slot.
func (s *Session) QuestionSlot() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionNumber
}

// QuestionID returns the stable key for the current question slot.
func (s *Session) QuestionID() string {
	return fmt.Sprintf("q-%d", s.QuestionSlot())
}

// AdvanceSlot moves to the next question slot (used after answering or skipping).
func (s *Session) AdvanceSlot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questionNumber++
}

// RewindSlot moves back one question slot, flooring at the first.
func (s *Session) RewindSlot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.questionNumber > 1 {
		s.questionNumber--
	}
}

// ToggleTarget adds or removes a target from the selection.
func (s *Session) ToggleTarget(id models.TargetID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.SelectedTargets {
		if existing == id {
			s.state.SelectedTargets = append(s.state.SelectedTargets[:i], s.state.SelectedTargets[i+1:]...)
			s.persistLocked()
			return
		}
	}
	s.state.SelectedTargets = append(s.state.SelectedTargets, id)
	s.persistLocked()
}

// SetWritingCodex stores the writing-style foundation document.
func (s *Session) SetWritingCodex(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.WritingCodex = text
	s.persistLocked()
}

// SetPersonalConstitution stores the values-statement foundation document.
func (s *Session) SetPersonalConstitution(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PersonalConstitution = text
	s.persistLocked()
}

// GoToStep jumps to a wizard step. Step changes clear any pending error.
func (s *Session) GoToStep(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentStep = step
	s.state.Err = ""
	s.persistLocked()
}

// NextStep advances one wizard step.
func (s *Session) NextStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextStepLocked()
	s.persistLocked()
}

func (s *Session) nextStepLocked() {
	s.state.CurrentStep++
	s.state.Err = ""
}

// PrevStep moves back one wizard step, flooring at zero.
func (s *Session) PrevStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentStep > 0 {
		s.state.CurrentStep--
	}
	s.state.Err = ""
	s.persistLocked()
}

// SaveAnswer upserts an answer by question ID, preserving the order of first
// insertion, and schedules background analysis when the trimmed text is
// non-empty and changed.
func (s *Session) SaveAnswer(ans models.Answer) {
	s.mu.Lock()

	changed := true
	found := false
	for i := range s.state.Answers {
		if s.state.Answers[i].QuestionID == ans.QuestionID {
			changed = s.state.Answers[i].Answer != ans.Answer
			s.state.Answers[i] = ans
			found = true
			break
		}
	}
	if !found {
		s.state.Answers = append(s.state.Answers, ans)
	}
	s.persistLocked()

	schedule := changed && strings.TrimSpace(ans.Answer) != ""
	if schedule {
		// Status flips to analyzing before the network call is issued, so
		// concurrent readers observe the in-flight analysis.
		s.setInsightLocked(models.Insight{QuestionID: ans.QuestionID, Status: models.InsightStatusAnalyzing})
	}
	s.mu.Unlock()

	if schedule {
		s.analyzeAnswerInBackground(ans)
	}
}

// GetAnswer returns the saved answer for a question slot, if any.
func (s *Session) GetAnswer(questionID string) (models.Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ans := range s.state.Answers {
		if ans.QuestionID == questionID {
			return ans, true
		}
	}
	return models.Answer{}, false
}

// setInsightLocked upserts an insight by question ID, preserving order of
// first insertion.
func (s *Session) setInsightLocked(ins models.Insight) {
	for i := range s.state.AnalyzedInsights {
		if s.state.AnalyzedInsights[i].QuestionID == ins.QuestionID {
			s.state.AnalyzedInsights[i] = ins
			return
		}
	}
	s.state.AnalyzedInsights = append(s.state.AnalyzedInsights, ins)
}

func (s *Session) setInsight(ins models.Insight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setInsightLocked(ins)
	s.persistLocked()
}

// Reset returns the session to its initial state, abandons outstanding
// analyses, and clears durable storage.
func (s *Session) Reset() {
	s.annotator.cancelAll()
	s.mu.Lock()
	s.state = State{Phase: models.PhaseIdle}
	s.questionNumber = 1
	s.mu.Unlock()

	s.clearDurable()
	slog.Info("Session.Reset: session reset", "sessionID", s.id)
}

// Resume restores user-authored progress from durable storage. Returns false
// when no resumable snapshot exists (absent, unreadable, or zero answers).
// Generation-phase fields are reset regardless of their pre-reload values.
func (s *Session) Resume() (bool, error) {
	if s.store == nil {
		return false, nil
	}
	rec, err := s.store.GetSession(s.id)
	if err != nil {
		return false, fmt.Errorf("failed to load session snapshot: %w", err)
	}
	if rec == nil {
		return false, nil
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(rec.Snapshot), &snap); err != nil {
		slog.Warn("Session.Resume: ignoring unreadable snapshot", "error", err, "sessionID", s.id)
		return false, nil
	}
	if len(snap.Answers) == 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{
		CurrentStep:          snap.CurrentStep,
		SelectedTargets:      snap.SelectedTargets,
		WritingCodex:         snap.WritingCodex,
		PersonalConstitution: snap.PersonalConstitution,
		Answers:              snap.Answers,
		AnalyzedInsights:     snap.AnalyzedInsights,
		Phase:                models.PhaseIdle,
	}
	s.questionNumber = len(snap.Answers) + 1
	slog.Info("Session.Resume: session restored", "sessionID", s.id, "answers", len(snap.Answers), "step", snap.CurrentStep)
	return true, nil
}

// snapshotLocked projects the durable subset of the current state.
func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		CurrentStep:          s.state.CurrentStep,
		SelectedTargets:      append([]models.TargetID(nil), s.state.SelectedTargets...),
		WritingCodex:         s.state.WritingCodex,
		PersonalConstitution: s.state.PersonalConstitution,
		Answers:              append([]models.Answer(nil), s.state.Answers...),
		AnalyzedInsights:     append([]models.Insight(nil), s.state.AnalyzedInsights...),
	}
}

// persistLocked writes the snapshot after a committed change, but only during
// active progress: step > 0 and neither complete nor generating.
func (s *Session) persistLocked() {
	if s.store == nil {
		return
	}
	if s.state.CurrentStep <= 0 || s.state.IsComplete || s.state.IsGenerating {
		return
	}
	data, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		slog.Error("Session.persistLocked: failed to marshal snapshot", "error", err, "sessionID", s.id)
		return
	}
	if err := s.store.SaveSession(store.Session{ID: s.id, Snapshot: string(data)}); err != nil {
		slog.Error("Session.persistLocked: failed to save snapshot", "error", err, "sessionID", s.id)
	}
}

// clearDurable removes the persisted snapshot (on completion or reset).
func (s *Session) clearDurable() {
	if s.store == nil {
		return
	}
	if err := s.store.DeleteSession(s.id); err != nil {
		slog.Error("Session.clearDurable: failed to delete snapshot", "error", err, "sessionID", s.id)
	}
}

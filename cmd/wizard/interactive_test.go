package main

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/mycustomai/wizard/internal/models"
	"github.com/mycustomai/wizard/internal/wizard"
)

// scriptedOracle returns its questions in order, failing the test if asked
// for more than it has.
type scriptedOracle struct {
	t         *testing.T
	questions []*models.Question
	calls     int
}

func (o *scriptedOracle) NextQuestion(ctx context.Context, req models.NextQuestionRequest) (*models.Question, error) {
	if o.calls >= len(o.questions) {
		o.t.Fatalf("unexpected question fetch #%d", o.calls+1)
	}
	q := o.questions[o.calls]
	o.calls++
	return q, nil
}

type fixedAnalysis struct{}

func (fixedAnalysis) AnalyzeAnswer(ctx context.Context, question, answer string) (string, error) {
	return "prefers concise answers", nil
}

type fixedGeneration struct {
	started bool
}

func (g *fixedGeneration) Generate(ctx context.Context, req models.GenerateRequest, onStart func(), onChunk func(text string)) error {
	g.started = true
	onStart()
	onChunk(`{"gemini":{"instructions":"Be brief and direct."}}`)
	return nil
}

// A completion-flagged question ends the loop without being shown as an
// answerable turn, and the session proceeds straight into generation.
func TestQuestionLoopCompletionSignalHandsOffToGeneration(t *testing.T) {
	oracle := &scriptedOracle{t: t, questions: []*models.Question{
		{Question: "How formal should replies be?", InputType: models.InputTypeTextarea},
		{Question: "Anything else?", InputType: models.InputTypeTextarea, IsComplete: true},
	}}
	gen := &fixedGeneration{}
	session := wizard.NewSession(wizard.Config{
		Questions:  oracle,
		Analysis:   fixedAnalysis{},
		Generation: gen,
	})
	session.ToggleTarget(models.TargetGemini)
	session.NextStep()

	in := bufio.NewScanner(strings.NewReader("Casual but precise.\nleftover line\n"))
	ctx := context.Background()

	if err := questionLoop(ctx, in, session); err != nil {
		t.Fatalf("questionLoop returned error: %v", err)
	}

	state := session.State()
	if len(state.Answers) != 1 {
		t.Fatalf("expected 1 saved answer, got %d", len(state.Answers))
	}
	if state.Answers[0].Answer != "Casual but precise." {
		t.Errorf("unexpected saved answer: %q", state.Answers[0].Answer)
	}
	if session.QuestionSlot() != 2 {
		t.Errorf("completing turn must not advance the slot, got %d", session.QuestionSlot())
	}
	// The completing turn never prompted, so the second input line is unread.
	if !in.Scan() || in.Text() != "leftover line" {
		t.Error("expected the completing turn to leave stdin untouched")
	}
	if oracle.calls != 2 {
		t.Errorf("expected exactly 2 question fetches, got %d", oracle.calls)
	}

	if err := session.Generate(ctx); err != nil {
		t.Fatalf("generation after completion signal failed: %v", err)
	}
	if !gen.started {
		t.Error("expected generation to run after the completion signal")
	}
	final := session.State()
	if !final.IsComplete || final.Result == nil {
		t.Errorf("expected completed session with a result, got complete=%v result=%v", final.IsComplete, final.Result)
	}
}

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mycustomai/wizard/internal/models"
	"github.com/mycustomai/wizard/internal/store"
	"github.com/mycustomai/wizard/internal/wizard"
)

// runInteractive drives one wizard session from the terminal against a
// running API server: target selection, optional foundation documents, the
// adaptive question loop, and the streamed generation of the final
// instructions.
func runInteractive(apiURL, sessionID string, storeOpts []store.Option) error {
	st, err := store.NewStore(storeOpts...)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer st.Close()

	client := wizard.NewAPIClient(apiURL)
	session := wizard.NewSession(wizard.Config{
		SessionID:  sessionID,
		Store:      st,
		Questions:  client,
		Analysis:   client,
		Generation: client,
		OnStream: func(total string) {
			fmt.Printf("\rGenerating... %d characters", len(total))
		},
	})

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	resumed := false
	if sessionID != "" {
		ok, err := session.Resume()
		if err != nil {
			return err
		}
		if ok {
			state := session.State()
			fmt.Printf("Found a saved session with %d answered question(s).\n", len(state.Answers))
			if promptYesNo(in, "Resume it?", true) {
				resumed = true
			} else {
				session.Reset()
			}
		}
	}

	ctx := context.Background()

	if !resumed {
		fmt.Println("Welcome. This wizard interviews you about how you like to work,")
		fmt.Println("then writes custom instructions for the AI platforms you use.")
		fmt.Println()
		session.NextStep()

		if err := selectTargets(in, session); err != nil {
			return err
		}
		session.NextStep()

		collectFoundationDocs(in, session)
		session.NextStep()
	}

	if err := questionLoop(ctx, in, session); err != nil {
		return err
	}

	return generateResults(ctx, in, session)
}

// selectTargets asks which platforms to generate instructions for.
func selectTargets(in *bufio.Scanner, session *wizard.Session) error {
	fmt.Println("Which platforms do you want instructions for?")
	for i, t := range models.Targets {
		fmt.Printf("  %d. %s (%s) - %s\n", i+1, t.Name, t.Company, t.Description)
	}
	for {
		line := promptLine(in, "Enter numbers separated by commas (e.g. 1,3): ")
		var picked []models.TargetID
		for _, part := range strings.Split(line, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 1 || n > len(models.Targets) {
				picked = nil
				break
			}
			picked = append(picked, models.Targets[n-1].ID)
		}
		if len(picked) == 0 {
			fmt.Println("Please pick at least one platform by number.")
			continue
		}
		for _, id := range picked {
			session.ToggleTarget(id)
		}
		return nil
	}
}

// collectFoundationDocs optionally loads writing-sample and values documents
// from files.
func collectFoundationDocs(in *bufio.Scanner, session *wizard.Session) {
	if path := promptLine(in, "Path to a writing sample file, Enter to skip: "); path != "" {
		if text, err := os.ReadFile(path); err != nil {
			fmt.Printf("Could not read %s: %v. Skipping.\n", path, err)
		} else {
			session.SetWritingCodex(string(text))
			fmt.Printf("Loaded %d characters.\n", len(text))
		}
	}
	if path := promptLine(in, "Path to a personal values/principles file, Enter to skip: "); path != "" {
		if text, err := os.ReadFile(path); err != nil {
			fmt.Printf("Could not read %s: %v. Skipping.\n", path, err)
		} else {
			session.SetPersonalConstitution(string(text))
			fmt.Printf("Loaded %d characters.\n", len(text))
		}
	}
}

// questionLoop fetches and answers questions until the oracle signals
// completion or the user finishes early with /done.
func questionLoop(ctx context.Context, in *bufio.Scanner, session *wizard.Session) error {
	fmt.Println()
	fmt.Println("Answer in your own words. Enter skips a question, /done finishes early, /quit exits.")
	for {
		q, err := session.FetchNextQuestion(ctx)
		if err != nil {
			fmt.Printf("\n%s\n", session.State().Err)
			if !promptYesNo(in, "Retry?", true) {
				return err
			}
			continue
		}
		if q.IsComplete {
			fmt.Println("\nThat covers everything needed.")
			return nil
		}

		fmt.Printf("\nQ%d: %s\n", session.QuestionSlot(), q.Question)
		if q.Subtext != "" {
			fmt.Printf("    (%s)\n", q.Subtext)
		}
		if len(q.Options) > 0 {
			fmt.Printf("    Suggestions: %s\n", strings.Join(q.Options, ", "))
		}

		answer := promptLine(in, "> ")
		switch answer {
		case "/quit":
			return errors.New("session aborted")
		case "/done":
			return nil
		case "":
			session.AdvanceSlot()
			continue
		}

		session.SaveAnswer(models.Answer{
			QuestionID: session.QuestionID(),
			Question:   q.Question,
			Answer:     answer,
			Timestamp:  time.Now().UnixMilli(),
		})
		session.AdvanceSlot()
	}
}

// generateResults runs the generation cycle, offering retries on failure, and
// prints each target's generated fields.
func generateResults(ctx context.Context, in *bufio.Scanner, session *wizard.Session) error {
	fmt.Println("\nGenerating your custom instructions...")
	err := session.Generate(ctx)
	for err != nil {
		fmt.Printf("\n%s\n", session.State().Err)
		if !promptYesNo(in, "Try again?", false) {
			return err
		}
		fmt.Println("\nRetrying...")
		err = session.Retry(ctx)
	}
	fmt.Println()

	state := session.State()
	if state.Result == nil {
		return errors.New("generation finished without a result")
	}
	for _, id := range state.SelectedTargets {
		if !state.Result.HasTarget(id) {
			continue
		}
		fmt.Printf("\n===== %s =====\n", models.TargetName(id))
		printTargetResult(id, state.Result)
	}
	fmt.Println("\nDone. Paste each section into the matching platform's settings:")
	for _, id := range state.SelectedTargets {
		for _, f := range models.TargetFields[id] {
			if f.NavigationPath != "" {
				fmt.Printf("  %s: %s\n", models.TargetName(id), f.NavigationPath)
				break
			}
		}
	}
	return nil
}

func printTargetResult(id models.TargetID, result *models.GenerationResult) {
	var section interface{}
	switch id {
	case models.TargetChatGPT:
		section = result.ChatGPT
	case models.TargetClaude:
		section = result.Claude
	case models.TargetGemini:
		section = result.Gemini
	case models.TargetPerplexity:
		section = result.Perplexity
	}
	out, err := json.MarshalIndent(section, "", "  ")
	if err != nil {
		fmt.Printf("(failed to format result: %v)\n", err)
		return
	}
	fmt.Println(string(out))
}

func promptLine(in *bufio.Scanner, prompt string) string {
	fmt.Print(prompt)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func promptYesNo(in *bufio.Scanner, prompt string, def bool) bool {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	answer := strings.ToLower(promptLine(in, fmt.Sprintf("%s %s ", prompt, hint)))
	if answer == "" {
		return def
	}
	return answer == "y" || answer == "yes"
}

// Package api provides the prompt construction and model-response parsing
// used by the question, analysis, and generation endpoints.
package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mycustomai/wizard/internal/models"
)

// buildQuestionSystemPrompt constructs the system prompt for the question
// oracle from the selected targets' field catalogs and the optional
// foundation documents.
func buildQuestionSystemPrompt(targets []models.TargetID, writingCodex, personalConstitution string) string {
	var fieldDescriptions []string
	for _, id := range targets {
		fields := models.TargetFields[id]
		if len(fields) == 0 {
			continue
		}
		lines := make([]string, 0, len(fields))
		for _, f := range fields {
			desc := f.HelpText
			if desc == "" {
				desc = f.Placeholder
			}
			if desc == "" {
				desc = string(f.Type)
			}
			lines = append(lines, fmt.Sprintf("  - %s: %s", f.Label, desc))
		}
		fieldDescriptions = append(fieldDescriptions, fmt.Sprintf("%s:\n%s", id, strings.Join(lines, "\n")))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are helping a user create custom instructions for their AI assistants. Your job is to ask ONE question at a time to understand their preferences.

The user has selected these AI models: %s

Here are the fields we need to fill for each model:
%s
`, joinTargetIDs(targets), strings.Join(fieldDescriptions, "\n\n"))

	if writingCodex != "" {
		fmt.Fprintf(&b, "\nThe user has provided their Writing Codex (their writing style/voice). You can reference this - don't ask questions that are already clearly answered by it.\n\nWriting Codex:\n%s\n", writingCodex)
	}
	if personalConstitution != "" {
		fmt.Fprintf(&b, "\nThe user has provided their Personal Constitution (their values and principles). You can reference this - don't ask questions that are already clearly answered by it.\n\nPersonal Constitution:\n%s\n", personalConstitution)
	}

	b.WriteString(`
Ask questions that help generate content for ALL the selected models' fields. Cover these topics roughly in this order:
1. Role & identity - Who are you? What do you do professionally?
2. AI use cases - What do you primarily use AI for? (writing, coding, research, brainstorming, etc.)
3. Communication style - Do you prefer formal or casual responses? Verbose or concise?
4. Format preferences - Do you prefer bullet points, paragraphs, headers? Do you want examples?
5. Personality/tone - Do you want AI to be warm, direct, humorous, no-nonsense?
6. Pet peeves - What do you NOT want AI to do? (e.g., be too verbose, use emojis, hedge everything)
7. Domain context - Any jargon, technical level, or industry-specific needs?
8. Model-specific preferences - If ChatGPT is selected, ask about emoji and formatting preferences. If Claude is selected, ask about their preferred level of detail.

Guidelines:
- Ask ONE question per response
- Keep questions conversational and easy to answer
- Prefer textarea questions, but use multiselect when offering a clear set of options
- For multiselect, provide 4-8 clear options
- Include a brief "subtext" that helps the user understand why you're asking
- After 8-12 questions (depending on how much context was already provided via codex/constitution), set isComplete to true
- If codex AND constitution are provided, you can be done in 6-8 questions since much context is already known
- NEVER ask more than 15 questions total

Return ONLY valid JSON matching this schema:
{
  "question": "Your question here",
  "subtext": "Brief context about why this matters",
  "inputType": "textarea" or "multiselect",
  "options": ["only", "for", "multiselect"],
  "isComplete": false
}`)

	return b.String()
}

// buildQuestionUserPrompt constructs the user prompt from the ordered Q/A
// history and the zero-based count of questions already asked.
func buildQuestionUserPrompt(previousAnswers []models.QA, questionCount int) string {
	if questionCount == 0 {
		return "Start the conversation. Ask the first question."
	}
	var history []string
	for i, qa := range previousAnswers {
		history = append(history, fmt.Sprintf("Q%d: %s\nA%d: %s", i+1, qa.Question, i+1, qa.Answer))
	}
	return fmt.Sprintf("Previous questions and answers:\n%s\n\nAsk the next question. We've asked %d questions so far.",
		strings.Join(history, "\n\n"), questionCount)
}

// stripCodeFence removes an enclosing markdown code fence, if present.
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[7:]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[3:]
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = cleaned[:len(cleaned)-3]
	}
	return strings.TrimSpace(cleaned)
}

// parseQuestionResponse interprets the oracle's reply as a question
// descriptor. Returns nil when the reply cannot be interpreted (unparseable
// JSON, or missing question/inputType after fence stripping).
func parseQuestionResponse(text string) *models.Question {
	cleaned := stripCodeFence(text)

	var parsed models.Question
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil
	}
	if parsed.Question == "" || parsed.InputType == "" {
		return nil
	}
	return &parsed
}

// buildAnalysisPrompt constructs the single-message prompt for distilling one
// answer into an insight.
func buildAnalysisPrompt(question, answer string) string {
	return fmt.Sprintf(`You are analyzing a user's answer to a question about their AI usage preferences and communication style. Extract the key insights about: their personality traits, communication preferences, format preferences, tone preferences, and any specific requirements for AI interactions. Be concise - 3-5 sentences max.

Question: %s

Response: %s

Provide the analysis. Respond with ONLY the analysis.`, question, answer)
}

// buildGenerationSystemPrompt constructs the system prompt for the final
// generation call: the exact JSON schema for the selected targets followed by
// per-target field descriptions.
func buildGenerationSystemPrompt(targets []models.TargetID) string {
	var b strings.Builder
	b.WriteString(`You are generating personalized custom instructions for AI platforms. Based on everything the user has shared about themselves, generate content for each of the following platforms.

IMPORTANT: Return ONLY valid JSON. No markdown, no code fences, no explanation. Just the JSON object.

The JSON must match this exact schema:
{`)

	var schemaSections []string
	for _, id := range targets {
		if !models.ValidTargetID(id) {
			continue
		}
		fields := models.TargetFields[id]
		var fieldLines []string
		for _, f := range fields {
			switch f.Type {
			case models.FieldTypeThreeWay:
				fieldLines = append(fieldLines, fmt.Sprintf("    %q: \"More | Default | Less\"", f.ID))
			default:
				fieldLines = append(fieldLines, fmt.Sprintf("    %q: \"string\"", f.ID))
			}
		}
		switch id {
		case models.TargetChatGPT:
			fieldLines = append(fieldLines, `    "personalityReasoning": "string"`, `    "characteristicsReasoning": "string"`)
		case models.TargetClaude:
			fieldLines = append(fieldLines, `    "styleReasoning": "string"`, `    "customStyleGuidance": "string (optional)"`)
		}
		schemaSections = append(schemaSections, fmt.Sprintf("  %q: {\n%s\n  }", id, strings.Join(fieldLines, ",\n")))
	}
	fmt.Fprintf(&b, "\n%s\n}", strings.Join(schemaSections, ",\n"))

	for _, id := range targets {
		switch id {
		case models.TargetChatGPT:
			b.WriteString("\n\n" + `## ChatGPT Fields:
- "nickname": A short name or nickname for the user (string)
- "occupation": Their job title/role (string)
- "knowAboutYou": What ChatGPT should know about the user. MAX 1500 CHARACTERS. Include their role, expertise, interests, communication preferences, and key context. (string)
- "howToRespond": How ChatGPT should respond. MAX 1500 CHARACTERS. Include tone, format preferences, level of detail, and specific behavioral instructions. (string)
- "personality": One of: "Default", "Professional", "Friendly", "Candid", "Quirky", "Efficient", "Nerdy", "Cynical" - pick the best match based on user preferences (string)
- "personalityReasoning": Brief explanation of why this personality was chosen (string)
- "warm": "More", "Default", or "Less" - based on how warm/friendly they want responses (string)
- "enthusiastic": "More", "Default", or "Less" - based on energy level preference (string)
- "headersAndLists": "More", "Default", or "Less" - based on formatting preferences (string)
- "emoji": "More", "Default", or "Less" - based on emoji preferences (string)
- "characteristicsReasoning": Brief explanation of characteristic choices (string)`)
		case models.TargetClaude:
			b.WriteString("\n\n" + `## Claude Fields:
- "profilePreferences": A comprehensive text for Claude's Profile Preferences. Include who the user is, what they do, how they want Claude to communicate, their preferences for detail/format, and any standing instructions. Be thorough - this is a single freeform text area. (string)
- "recommendedStyle": One of: "Normal", "Concise", "Explanatory", "Formal" - best match for user (string)
- "styleReasoning": Brief explanation of why this style was chosen (string)
- "customStyleGuidance": If none of the presets perfectly fit, provide specific guidance for creating a custom style in Claude (string, optional)`)
		case models.TargetGemini:
			b.WriteString("\n\n" + `## Gemini Fields:
- "instructions": A comprehensive text for Gemini's "Instructions for Gemini" field. Include standing instructions about communication style, format preferences, tone, and any specific rules to always follow. (string)`)
		case models.TargetPerplexity:
			b.WriteString("\n\n" + `## Perplexity Fields:
- "bio": A comprehensive bio for Perplexity's AI Profile. Include role, interests, values, preferred communication style, goals, and format preferences. (string)
- "preferredLanguage": Preferred response language, typically "English" unless user indicates otherwise (string)`)
		}
	}

	b.WriteString(`

Guidelines:
- Make each model's content feel native to that platform's style
- ChatGPT's two textareas (knowAboutYou and howToRespond) must each be UNDER 1500 characters
- Be specific and actionable, not generic
- Use the user's actual words and examples from their answers where possible
- If they provided a writing codex, incorporate their voice preferences
- If they provided a personal constitution, reflect their values and principles
- Don't repeat the same content verbatim across models - tailor for each`)

	return b.String()
}

// buildGenerationUserPrompt constructs the user prompt for the final
// generation call. Completed insights with text stand in for raw answer text;
// the foundation documents are truncated before inclusion.
func buildGenerationUserPrompt(req *models.GenerateRequest) string {
	completed := make(map[string]string)
	for _, ins := range req.AnalyzedInsights {
		if ins.Status == models.InsightStatusComplete && ins.Insight != "" {
			completed[ins.QuestionID] = ins.Insight
		}
	}

	var b strings.Builder
	b.WriteString("Based on everything I've shared, generate my custom instructions.\n\n")
	names := make([]string, 0, len(req.SelectedTargets))
	for _, id := range req.SelectedTargets {
		names = append(names, models.TargetName(id))
	}
	fmt.Fprintf(&b, "Selected models: %s\n\n", strings.Join(names, ", "))

	b.WriteString("My answers:\n")
	for _, ans := range req.Answers {
		fmt.Fprintf(&b, "Q: %s\n", ans.Question)
		if insight, ok := completed[ans.QuestionID]; ok {
			fmt.Fprintf(&b, "A: %s\n\n", insight)
		} else {
			fmt.Fprintf(&b, "A: %s\n\n", ans.Answer)
		}
	}

	if req.WritingCodex != "" {
		fmt.Fprintf(&b, "\nMy Writing Codex:\n%s\n", models.TruncateFoundationDoc(req.WritingCodex))
	}
	if req.PersonalConstitution != "" {
		fmt.Fprintf(&b, "\nMy Personal Constitution:\n%s\n", models.TruncateFoundationDoc(req.PersonalConstitution))
	}

	return b.String()
}

func joinTargetIDs(targets []models.TargetID) string {
	parts := make([]string, len(targets))
	for i, id := range targets {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

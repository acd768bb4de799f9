package models

// ChatGPTResult holds the generated ChatGPT custom-instructions fields.
// Warm, Enthusiastic, HeadersAndLists and Emoji take the three-way values
// "More", "Default" or "Less".
type ChatGPTResult struct {
	Nickname                 string `json:"nickname"`
	Occupation               string `json:"occupation"`
	KnowAboutYou             string `json:"knowAboutYou"`
	HowToRespond             string `json:"howToRespond"`
	Personality              string `json:"personality"`
	PersonalityReasoning     string `json:"personalityReasoning"`
	Warm                     string `json:"warm"`
	Enthusiastic             string `json:"enthusiastic"`
	HeadersAndLists          string `json:"headersAndLists"`
	Emoji                    string `json:"emoji"`
	CharacteristicsReasoning string `json:"characteristicsReasoning"`
}

// ClaudeResult holds the generated Claude profile fields.
type ClaudeResult struct {
	ProfilePreferences  string `json:"profilePreferences"`
	RecommendedStyle    string `json:"recommendedStyle"`
	StyleReasoning      string `json:"styleReasoning"`
	CustomStyleGuidance string `json:"customStyleGuidance,omitempty"`
}

// GeminiResult holds the generated Gemini instructions.
type GeminiResult struct {
	Instructions string `json:"instructions"`
}

// PerplexityResult holds the generated Perplexity AI-profile fields.
type PerplexityResult struct {
	Bio               string `json:"bio"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// GenerationResult maps each selected target to its generated field set.
// Produced once per successful generation cycle; replaced wholesale on retry.
type GenerationResult struct {
	ChatGPT    *ChatGPTResult    `json:"chatgpt,omitempty"`
	Claude     *ClaudeResult     `json:"claude,omitempty"`
	Gemini     *GeminiResult     `json:"gemini,omitempty"`
	Perplexity *PerplexityResult `json:"perplexity,omitempty"`
}

// HasTarget reports whether the result contains a section for id.
func (r *GenerationResult) HasTarget(id TargetID) bool {
	switch id {
	case TargetChatGPT:
		return r.ChatGPT != nil
	case TargetClaude:
		return r.Claude != nil
	case TargetGemini:
		return r.Gemini != nil
	case TargetPerplexity:
		return r.Perplexity != nil
	default:
		return false
	}
}

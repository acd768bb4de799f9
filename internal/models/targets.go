package models

// TargetID identifies one of the supported downstream AI platforms.
type TargetID string

const (
	TargetChatGPT    TargetID = "chatgpt"
	TargetClaude     TargetID = "claude"
	TargetGemini     TargetID = "gemini"
	TargetPerplexity TargetID = "perplexity"
)

// FieldType describes how a generated field is presented on the target platform.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeThreeWay FieldType = "three-way"
)

// Target describes one supported AI platform.
type Target struct {
	ID          TargetID `json:"id"`
	Name        string   `json:"name"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
}

// FieldSpec describes one field of a target's custom-instructions surface.
// HelpText and Placeholder feed question generation; NavigationPath tells the
// user where the value goes in the target product.
type FieldSpec struct {
	ID             string    `json:"id"`
	Label          string    `json:"label"`
	Type           FieldType `json:"type"`
	CharLimit      int       `json:"charLimit,omitempty"`
	Options        []string  `json:"options,omitempty"`
	Placeholder    string    `json:"placeholder,omitempty"`
	HelpText       string    `json:"helpText,omitempty"`
	NavigationPath string    `json:"navigationPath,omitempty"`
}

// Targets lists the supported platforms in display order.
var Targets = []Target{
	{ID: TargetChatGPT, Name: "ChatGPT", Company: "OpenAI", Description: "Custom Instructions, Personality & Characteristics"},
	{ID: TargetClaude, Name: "Claude", Company: "Anthropic", Description: "Profile Preferences & Style Selection"},
	{ID: TargetGemini, Name: "Gemini", Company: "Google", Description: "Instructions for Gemini"},
	{ID: TargetPerplexity, Name: "Perplexity", Company: "Perplexity AI", Description: "AI Profile & Response Language"},
}

// ThreeWayOptions are the values of a three-way characteristic field.
var ThreeWayOptions = []string{"More", "Default", "Less"}

// TargetFields maps each target to the fields its custom instructions fill.
var TargetFields = map[TargetID][]FieldSpec{
	TargetChatGPT: {
		{ID: "nickname", Label: "Nickname", Type: FieldTypeText,
			Placeholder:    "How ChatGPT should address you",
			NavigationPath: "Profile icon > Personalization > Nickname"},
		{ID: "occupation", Label: "Occupation", Type: FieldTypeText,
			Placeholder:    "Your job or profession",
			NavigationPath: "Profile icon > Personalization > Occupation"},
		{ID: "knowAboutYou", Label: "What would you like ChatGPT to know about you?", Type: FieldTypeTextarea,
			CharLimit:      1500,
			Placeholder:    "Your role, interests, context...",
			NavigationPath: "Profile icon > Personalization > Custom Instructions"},
		{ID: "howToRespond", Label: "How would you like ChatGPT to respond?", Type: FieldTypeTextarea,
			CharLimit:      1500,
			Placeholder:    "Tone, format, style preferences...",
			NavigationPath: "Profile icon > Personalization > Custom Instructions"},
		{ID: "personality", Label: "Base Style and Tone", Type: FieldTypeDropdown,
			Options:        []string{"Default", "Professional", "Friendly", "Candid", "Quirky", "Efficient", "Nerdy", "Cynical"},
			NavigationPath: "Profile icon > Personalization > Personality"},
		{ID: "warm", Label: "Warm", Type: FieldTypeThreeWay, Options: ThreeWayOptions,
			HelpText:       "How sincere, kind, and friendly the tone sounds",
			NavigationPath: "Profile icon > Personalization > Characteristics"},
		{ID: "enthusiastic", Label: "Enthusiastic", Type: FieldTypeThreeWay, Options: ThreeWayOptions,
			HelpText:       "Level of enthusiasm and energy in responses",
			NavigationPath: "Profile icon > Personalization > Characteristics"},
		{ID: "headersAndLists", Label: "Headers & Lists", Type: FieldTypeThreeWay, Options: ThreeWayOptions,
			HelpText:       "Use of markdown formatting (headers, lists, tables)",
			NavigationPath: "Profile icon > Personalization > Characteristics"},
		{ID: "emoji", Label: "Emoji", Type: FieldTypeThreeWay, Options: ThreeWayOptions,
			HelpText:       "Frequency of emoji use in responses",
			NavigationPath: "Profile icon > Personalization > Characteristics"},
	},
	TargetClaude: {
		{ID: "profilePreferences", Label: "Profile Preferences", Type: FieldTypeTextarea,
			Placeholder:    "Who you are, what you do, how you want Claude to behave...",
			NavigationPath: "Initials (bottom-left) > Settings > Profile"},
		{ID: "recommendedStyle", Label: "Recommended Style", Type: FieldTypeDropdown,
			Options:        []string{"Normal", "Concise", "Explanatory", "Formal"},
			HelpText:       "Or create a Custom Style with the guidance below",
			NavigationPath: "Style selector (bottom of chat input)"},
	},
	TargetGemini: {
		{ID: "instructions", Label: "Instructions for Gemini", Type: FieldTypeTextarea,
			Placeholder:    "Standing instructions for every conversation...",
			NavigationPath: "Settings > Saved Info > Instructions for Gemini"},
	},
	TargetPerplexity: {
		{ID: "bio", Label: "AI Profile Bio", Type: FieldTypeTextarea,
			Placeholder:    "Who you are and how Perplexity should answer...",
			NavigationPath: "Settings > Account > AI Profile"},
		{ID: "preferredLanguage", Label: "Preferred Response Language", Type: FieldTypeText,
			Placeholder:    "English",
			NavigationPath: "Settings > Account > AI Profile"},
	},
}

// TargetByID returns the target descriptor for id, or nil if unknown.
func TargetByID(id TargetID) *Target {
	for i := range Targets {
		if Targets[i].ID == id {
			return &Targets[i]
		}
	}
	return nil
}

// ValidTargetID reports whether id is a supported target.
func ValidTargetID(id TargetID) bool {
	return TargetByID(id) != nil
}

// TargetName returns the display name for id, falling back to the raw id.
func TargetName(id TargetID) string {
	if t := TargetByID(id); t != nil {
		return t.Name
	}
	return string(id)
}

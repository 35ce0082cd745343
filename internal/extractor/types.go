package extractor

// PersonContext is the structured summary extracted for one conversation
// partner, persisted alongside the cleaned conversations.
type PersonContext struct {
	AboutPerson   string   `json:"about_person"`
	SpeakingStyle string   `json:"speaking_style"`
	Events        []string `json:"events"`
}

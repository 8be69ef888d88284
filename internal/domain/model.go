package domain

import "slices"

type AIModel struct {
	ID               string // e.g. "gemini-2.0-flash", without the "models/" prefix
	Name             string // resource name, "models/..."
	DisplayName      string
	Description      string
	InputTokenLimit  int
	OutputTokenLimit int
	SupportedMethods []string
}

func (m *AIModel) SupportsGenerateContent() bool {
	return slices.Contains(m.SupportedMethods, "generateContent")
}

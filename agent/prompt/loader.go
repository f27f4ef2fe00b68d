package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/classifier.txt
var classifierRaw string

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings. Safe to
// call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
	}
}

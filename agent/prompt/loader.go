package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/verifier.txt
	verifierRaw string

	//go:embed template/compliance.txt
	complianceRaw string
)

// PromptSet holds the system prompts for the model-backed stages.
type PromptSet struct {
	Classifier string
	Verifier   string
	Compliance string
}

// LoadPromptSet returns trimmed prompt content. The embed is
// compile-time, so this is safe to call concurrently.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
		Verifier:   strings.TrimSpace(verifierRaw),
		Compliance: strings.TrimSpace(complianceRaw),
	}
}

package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/concierge.txt
var conciergeRaw string

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Concierge string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Concierge: strings.TrimSpace(conciergeRaw),
	}
}

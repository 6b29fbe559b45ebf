package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/knowledge.txt
	knowledgeRaw string

	//go:embed template/support.txt
	supportRaw string

	//go:embed template/personality.txt
	personalityRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Router      string
	Knowledge   string
	Support     string
	Personality string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:      strings.TrimSpace(routerRaw),
		Knowledge:   strings.TrimSpace(knowledgeRaw),
		Support:     strings.TrimSpace(supportRaw),
		Personality: strings.TrimSpace(personalityRaw),
	}
}

package chat

import (
	"strings"

	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
)

const assistantInstructions = `You are a helpful assistant that answers questions about the user's saved tabs.

When the user asks about the content of their saved tabs, use the searchTabs tool to find relevant passages before answering. Base your answer on what the search returns.

Rules:
- Be concise and direct.
- When you use information from a saved tab, cite it as a markdown link: [tab name](tab url).
- If the search returns nothing relevant, say so instead of guessing.
- Clearly distinguish between information from the user's tabs and your own general knowledge.`

// SystemPrompt lists the user's searchable tabs so the model knows what it
// can search over.
func SystemPrompt(tabs []tabModel.Tab) string {
	var sb strings.Builder
	sb.WriteString(assistantInstructions)

	if len(tabs) == 0 {
		sb.WriteString("\n\nThe user has no processed tabs yet.")
		return sb.String()
	}

	sb.WriteString("\n\nThe user's saved tabs:\n")
	for _, tab := range tabs {
		sb.WriteString("- ")
		sb.WriteString(tab.Name)
		if tab.URL != "" {
			sb.WriteString(" (")
			sb.WriteString(tab.URL)
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

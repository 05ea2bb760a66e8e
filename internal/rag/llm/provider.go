package llm

import (
	"context"
	"encoding/json"

	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
)

// Tool is a function the model may call mid-completion. Parameters is a
// JSON schema object. Execute receives the raw argument JSON the model
// produced; its return value is serialized back to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Execute     func(ctx context.Context, args json.RawMessage) (any, error)
}

// Provider streams a tool-augmented completion. onDelta receives each text
// fragment as it arrives; the returned string is the full final answer.
// Implementations run the tool loop internally, bounded by
// config.MaxToolSteps.
type Provider interface {
	StreamChat(ctx context.Context, system string, history []chatModel.Message, tools []Tool, onDelta func(delta string) error) (string, error)
}

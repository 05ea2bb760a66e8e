package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/rag/llm"
	"github.com/svenkata/TabChatAPI/internal/rag/retrieval"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var (
	ErrChatNotFound        = errors.New("chat not found")
	ErrPlaceholderNotFound = errors.New("placeholder message not found")
)

// Completer streams a tool-augmented answer into a placeholder assistant
// message. The placeholder is patched on every delta so clients polling the
// chat see the answer grow.
type Completer struct {
	chats    chatModel.Store
	tabs     tabModel.TabStore
	searcher *retrieval.Searcher
	provider llm.Provider
	logger   *logx.Logger
}

func NewCompleter(chats chatModel.Store, tabs tabModel.TabStore, searcher *retrieval.Searcher, provider llm.Provider) *Completer {
	return &Completer{
		chats:    chats,
		tabs:     tabs,
		searcher: searcher,
		provider: provider,
		logger:   logx.NewLogger("Chat Completion"),
	}
}

type searchArgs struct {
	Query string `json:"query"`
	Limit uint64 `json:"limit,omitempty"`
}

// Complete answers the latest user message of the chat, streaming into the
// placeholder message. On provider failure the placeholder keeps the last
// partial content so nothing the user already saw is lost.
func (c *Completer) Complete(ctx context.Context, chatId string, placeholderMessageId string) error {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId)

	chatRecord, found := c.chats.GetChat(ctx, chatId)
	if !found {
		return ErrChatNotFound
	}
	if _, found = c.chats.GetMessage(ctx, placeholderMessageId); !found {
		return ErrPlaceholderNotFound
	}

	fullHistory, err := c.chats.History(ctx, chatId)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	// the placeholder itself must not be part of the prompt
	history := make([]chatModel.Message, 0, len(fullHistory))
	for _, msg := range fullHistory {
		if msg.Id == placeholderMessageId {
			continue
		}
		history = append(history, msg)
	}

	searchableTabs, err := c.searchableTabs(ctx, chatRecord.UserId)
	if err != nil {
		return err
	}

	allowList := make([]string, 0, len(searchableTabs))
	for _, tab := range searchableTabs {
		allowList = append(allowList, tab.Id)
	}

	tools := []llm.Tool{c.searchTool(placeholderMessageId, allowList)}

	var sb strings.Builder
	onDelta := func(delta string) error {
		sb.WriteString(delta)
		return c.chats.PatchMessage(ctx, placeholderMessageId, sb.String())
	}

	final, err := c.provider.StreamChat(ctx, SystemPrompt(searchableTabs), history, tools, onDelta)
	if err != nil {
		log.Error("Completion failed", "error", err)
		return err
	}

	if err = c.chats.PatchMessage(ctx, placeholderMessageId, final); err != nil {
		return fmt.Errorf("patching final answer: %w", err)
	}
	log.Info("Completion finished", "length", len(final))
	return nil
}

func (c *Completer) searchableTabs(ctx context.Context, userId string) ([]tabModel.Tab, error) {
	tabs, err := c.tabs.List(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}

	processed := make([]tabModel.Tab, 0, len(tabs))
	for _, tab := range tabs {
		if tab.Status == tabModel.StatusProcessed {
			processed = append(processed, tab)
		}
	}
	return processed, nil
}

func (c *Completer) searchTool(placeholderMessageId string, allowList []string) llm.Tool {
	return llm.Tool{
		Name:        "searchTabs",
		Description: "Search the user's saved tabs for passages relevant to a query. Returns the best matching text snippets with their source tab name and url.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to look for in the saved tabs",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of snippets to return",
				},
			},
			"required": []string{"query"},
		},
		Execute: func(ctx context.Context, rawArgs json.RawMessage) (any, error) {
			var args searchArgs
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return nil, fmt.Errorf("bad search arguments: %w", err)
			}

			// transient status so the user sees something happen while
			// the search runs; the next text delta overwrites it
			if err := c.chats.PatchMessage(ctx, placeholderMessageId, config.SearchingStatusText); err != nil {
				c.logger.Error("Error patching searching status", "error", err)
			}

			return c.searcher.Search(ctx, args.Query, allowList, args.Limit)
		},
	}
}

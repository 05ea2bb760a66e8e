package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
)

// SearchInput is the input schema for the searchTabs tool.
type SearchInput struct {
	Query  string   `json:"query" jsonschema:"the search query to find passages in saved tabs"`
	TabIds []string `json:"tab_ids,omitempty" jsonschema:"restrict the search to these tab ids (default: all processed tabs)"`
	Limit  uint64   `json:"limit,omitempty" jsonschema:"maximum number of snippets to return (default 5)"`
}

// SearchOutput is the output schema for the searchTabs tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved snippet.
type SearchResultOutput struct {
	TabId   string  `json:"tab_id"`
	TabName string  `json:"tab_name,omitempty"`
	TabURL  string  `json:"tab_url,omitempty"`
	Score   float32 `json:"score"`
	Text    string  `json:"text"`
}

// ListTabsOutput is the output schema for the listTabs tool.
type ListTabsOutput struct {
	Tabs  []TabOutput `json:"tabs"`
	Count int         `json:"count"`
}

type TabOutput struct {
	Id     string `json:"id"`
	Name   string `json:"name,omitempty"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "searchTabs",
		Description: "Search the user's saved tabs for passages relevant to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "listTabs",
		Description: "List the user's saved tabs with their ingestion status",
	}, s.handleListTabs)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	tabIds := input.TabIds
	if len(tabIds) == 0 {
		processed, err := s.processedTabIds(ctx)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		tabIds = processed
	}

	snippets, err := s.searcher.Search(ctx, input.Query, tabIds, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(snippets)),
		Count:   len(snippets),
	}
	for i, snippet := range snippets {
		output.Results[i] = SearchResultOutput{
			TabId:   snippet.TabId,
			TabName: snippet.Name,
			TabURL:  snippet.TabURL,
			Score:   snippet.Score,
			Text:    snippet.Text,
		}
	}

	return nil, output, nil
}

func (s *Server) handleListTabs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListTabsOutput, error) {
	tabs, err := s.tabs.List(ctx, s.userId)
	if err != nil {
		return nil, ListTabsOutput{}, err
	}

	output := ListTabsOutput{
		Tabs:  make([]TabOutput, len(tabs)),
		Count: len(tabs),
	}
	for i, tab := range tabs {
		output.Tabs[i] = TabOutput{
			Id:     tab.Id,
			Name:   tab.Name,
			URL:    tab.URL,
			Status: string(tab.Status),
		}
	}

	return nil, output, nil
}

func (s *Server) processedTabIds(ctx context.Context) ([]string, error) {
	tabs, err := s.tabs.List(ctx, s.userId)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		if tab.Status == tabModel.StatusProcessed {
			ids = append(ids, tab.Id)
		}
	}
	return ids, nil
}

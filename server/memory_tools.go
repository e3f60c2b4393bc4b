package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/memalpha/memalpha-go/memory"
)

type scopeParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project identifier (required)"`
	AgentID   string `json:"agent_id" jsonschema:"Agent identifier (required)"`
}

func (p scopeParams) scope() memory.Scope {
	return memory.Scope{ProjectID: p.ProjectID, AgentID: p.AgentID}
}

type filterClause struct {
	Field    string `json:"field" jsonschema:"Metadata field to compare"`
	Operator string `json:"operator" jsonschema:"One of eq, ne, gt, gte, lt, lte, in"`
	Value    any    `json:"value" jsonschema:"Comparison value"`
}

type storeMemoryParams struct {
	scopeParams
	Content  string         `json:"content" jsonschema:"Memory content - be specific and descriptive (required)"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"Optional custom metadata (tags, category, importance, etc.)"`
}

type searchMemoriesParams struct {
	scopeParams
	Query   string         `json:"query" jsonschema:"Search query (required)"`
	Limit   int            `json:"limit,omitempty" jsonschema:"Maximum number of results (default: 10)"`
	Filters []filterClause `json:"filters,omitempty" jsonschema:"Optional metadata filter clauses, combined with AND"`
}

type memoryIDParams struct {
	scopeParams
	MemoryID string `json:"memory_id" jsonschema:"Memory identifier (required)"`
}

type updateMemoryParams struct {
	scopeParams
	MemoryID string         `json:"memory_id" jsonschema:"Memory identifier (required)"`
	Content  *string        `json:"content,omitempty" jsonschema:"Updated content (optional)"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"Updated metadata (optional)"`
}

type listMemoriesParams struct {
	scopeParams
	Limit  int `json:"limit,omitempty" jsonschema:"Maximum number of results (default: 100)"`
	Offset int `json:"offset,omitempty" jsonschema:"Offset for pagination (default: 0)"`
}

type suggestionsParams struct{}

func (s *Server) registerMemoryTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "store_memory",
		Description: "Store a new memory for an agent in a project. " +
			"Memories are automatically embedded for semantic search.",
	}, s.storeMemory)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "search_memories",
		Description: "Search for memories using semantic similarity. " +
			"Returns memories ranked by relevance to the query.",
	}, s.searchMemories)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_memory",
		Description: "Retrieve a specific memory by its ID.",
	}, s.getMemory)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "update_memory",
		Description: "Update an existing memory's content and/or metadata. " +
			"If content is updated, the embedding is automatically regenerated.",
	}, s.updateMemory)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_memory",
		Description: "Delete a memory permanently.",
	}, s.deleteMemory)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "list_memories",
		Description: "List memories (metadata only, without full content) with pagination. " +
			"Useful for browsing available memories.",
	}, s.listMemories)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_memory_suggestions",
		Description: "Get suggestions and best practices for structuring memories. " +
			"Returns suggested categories, metadata fields, examples, and tips.",
	}, s.getMemorySuggestions)
}

func (s *Server) storeMemory(ctx context.Context, req *mcp.CallToolRequest, params *storeMemoryParams) (*mcp.CallToolResult, any, error) {
	md, err := decodeMetadata(params.Metadata)
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.memories.Store(ctx, params.scope(), params.Content, md)
	if err != nil {
		return nil, nil, err
	}

	provider := s.memories.Provider()
	text := fmt.Sprintf("Memory stored successfully!\n\n"+
		"Memory ID: %s\n"+
		"Content: %s\n"+
		"Metadata: %s\n"+
		"Embedding: %s/%s",
		rec.ID, rec.Content, formatMetadata(rec.Metadata),
		provider.Name(), provider.Model())
	return textResult(text), nil, nil
}

func (s *Server) searchMemories(ctx context.Context, req *mcp.CallToolRequest, params *searchMemoriesParams) (*mcp.CallToolResult, any, error) {
	filter, err := decodeFilter(params.Filters)
	if err != nil {
		return nil, nil, err
	}

	results, err := s.memories.Search(ctx, params.scope(), params.Query, params.Limit, filter)
	if err != nil {
		return nil, nil, err
	}

	if len(results) == 0 {
		return textResult("No memories found matching your query."), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant memories:\n\n", len(results))
	for i, result := range results {
		fmt.Fprintf(&b, "%d. [Score: %.3f] (ID: %s)\n   %s\n   Metadata: %s\n\n",
			i+1, result.Score, result.Record.ID,
			result.Record.Content, formatMetadata(result.Record.Metadata))
	}
	return textResult(b.String()), nil, nil
}

func (s *Server) getMemory(ctx context.Context, req *mcp.CallToolRequest, params *memoryIDParams) (*mcp.CallToolResult, any, error) {
	rec, err := s.memories.Get(ctx, params.scope(), params.MemoryID)
	if err != nil {
		if memory.IsNotFound(err) {
			return textResult(fmt.Sprintf("Memory with ID '%s' not found.", params.MemoryID)), nil, nil
		}
		return nil, nil, err
	}

	provider := s.memories.Provider()
	text := fmt.Sprintf("Memory ID: %s\n"+
		"Content: %s\n"+
		"Metadata: %s\n"+
		"Created: %s\n"+
		"Updated: %s\n"+
		"Embedding: %s/%s",
		rec.ID, rec.Content, formatMetadata(rec.Metadata),
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
		provider.Name(), provider.Model())
	return textResult(text), nil, nil
}

func (s *Server) updateMemory(ctx context.Context, req *mcp.CallToolRequest, params *updateMemoryParams) (*mcp.CallToolResult, any, error) {
	md, err := decodeMetadata(params.Metadata)
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.memories.Update(ctx, params.scope(), params.MemoryID, memory.Update{
		Content:  params.Content,
		Metadata: md,
	})
	if err != nil {
		if memory.IsNotFound(err) {
			return textResult(fmt.Sprintf("Memory with ID '%s' not found.", params.MemoryID)), nil, nil
		}
		return nil, nil, err
	}

	text := fmt.Sprintf("Memory updated successfully!\n\n"+
		"Memory ID: %s\n"+
		"Content: %s\n"+
		"Metadata: %s\n"+
		"Updated: %s",
		rec.ID, rec.Content, formatMetadata(rec.Metadata), formatTime(rec.UpdatedAt))
	return textResult(text), nil, nil
}

func (s *Server) deleteMemory(ctx context.Context, req *mcp.CallToolRequest, params *memoryIDParams) (*mcp.CallToolResult, any, error) {
	existed, err := s.memories.Delete(ctx, params.scope(), params.MemoryID)
	if err != nil {
		return nil, nil, err
	}
	if !existed {
		return textResult(fmt.Sprintf("Memory with ID '%s' not found.", params.MemoryID)), nil, nil
	}
	return textResult(fmt.Sprintf("Memory '%s' deleted successfully.", params.MemoryID)), nil, nil
}

func (s *Server) listMemories(ctx context.Context, req *mcp.CallToolRequest, params *listMemoriesParams) (*mcp.CallToolResult, any, error) {
	summaries, total, err := s.memories.List(ctx, params.scope(), params.Limit, params.Offset)
	if err != nil {
		return nil, nil, err
	}

	if len(summaries) == 0 {
		return textResult("No memories found."), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d memories (%d total):\n\n", len(summaries), total)
	for _, sum := range summaries {
		fmt.Fprintf(&b, "- ID: %s\n  Metadata: %s\n  Created: %s\n  Updated: %s\n\n",
			sum.ID, formatMetadata(sum.Metadata),
			formatTime(sum.CreatedAt), formatTime(sum.UpdatedAt))
	}
	return textResult(b.String()), nil, nil
}

func (s *Server) getMemorySuggestions(ctx context.Context, req *mcp.CallToolRequest, params *suggestionsParams) (*mcp.CallToolResult, any, error) {
	return textResult(suggestionsText()), nil, nil
}

// decodeMetadata converts loosely typed tool arguments into store metadata.
// A nil map decodes to nil, which Update treats as "leave unchanged".
func decodeMetadata(raw map[string]any) (memory.Metadata, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid metadata", goerr.T(memory.TagValidation))
	}
	return memory.MetadataFromJSON(data)
}

func decodeFilter(clauses []filterClause) (memory.Filter, error) {
	if len(clauses) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(clauses)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid filter", goerr.T(memory.TagValidation))
	}
	return memory.ParseFilter(data)
}

func formatMetadata(md memory.Metadata) string {
	if len(md) == 0 {
		return "{}"
	}
	text, err := md.JSON()
	if err != nil {
		return "{}"
	}
	return text
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

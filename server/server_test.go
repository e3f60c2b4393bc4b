package server

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/memalpha/memalpha-go/memory"
	"github.com/memalpha/memalpha-go/memory/embedder/mock"
	"github.com/memalpha/memalpha-go/memory/store/chromem"
	"github.com/memalpha/memalpha-go/scratchpad"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	pads, err := scratchpad.New(t.TempDir())
	gt.NoError(t, err)
	return New(memory.NewStore(chromem.New(), mock.New()), pads)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	gt.V(t, result).NotNil()
	gt.A(t, result.Content).Length(1)
	text, ok := result.Content[0].(*mcp.TextContent)
	gt.True(t, ok)
	return text.Text
}

func testScope() scopeParams {
	return scopeParams{ProjectID: "proj", AgentID: "agent"}
}

func TestStoreAndGetMemoryTool(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	result, _, err := srv.storeMemory(ctx, nil, &storeMemoryParams{
		scopeParams: testScope(),
		Content:     "User prefers TypeScript over JavaScript",
		Metadata:    map[string]any{"category": "preference", "importance": 8.0},
	})
	gt.NoError(t, err)
	text := resultText(t, result)
	gt.S(t, text).Contains("Memory stored successfully!")
	gt.S(t, text).Contains("mock/bag-of-words")

	// Recover the generated ID via List.
	summaries, _, err := srv.memories.List(ctx, memory.Scope{ProjectID: "proj", AgentID: "agent"}, 10, 0)
	gt.NoError(t, err)
	gt.A(t, summaries).Length(1)

	result, _, err = srv.getMemory(ctx, nil, &memoryIDParams{
		scopeParams: testScope(),
		MemoryID:    summaries[0].ID,
	})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("User prefers TypeScript over JavaScript")
}

func TestGetMemoryToolNotFound(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	result, _, err := srv.getMemory(ctx, nil, &memoryIDParams{
		scopeParams: testScope(),
		MemoryID:    "missing-id",
	})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("not found")
}

func TestSearchMemoriesTool(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	_, _, err := srv.storeMemory(ctx, nil, &storeMemoryParams{
		scopeParams: testScope(),
		Content:     "deployment runs yarn build then yarn deploy",
		Metadata:    map[string]any{"priority": 9.0},
	})
	gt.NoError(t, err)

	result, _, err := srv.searchMemories(ctx, nil, &searchMemoriesParams{
		scopeParams: testScope(),
		Query:       "deployment yarn build",
		Filters: []filterClause{
			{Field: "priority", Operator: "gte", Value: 7.0},
		},
	})
	gt.NoError(t, err)
	text := resultText(t, result)
	gt.S(t, text).Contains("Found 1 relevant memories")
	gt.S(t, text).Contains("deployment runs yarn build")
}

func TestSearchMemoriesToolNoResults(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	result, _, err := srv.searchMemories(ctx, nil, &searchMemoriesParams{
		scopeParams: testScope(),
		Query:       "anything",
	})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("No memories found")
}

func TestUpdateAndDeleteMemoryTool(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	_, _, err := srv.storeMemory(ctx, nil, &storeMemoryParams{
		scopeParams: testScope(),
		Content:     "initial content",
	})
	gt.NoError(t, err)

	summaries, _, err := srv.memories.List(ctx, memory.Scope{ProjectID: "proj", AgentID: "agent"}, 10, 0)
	gt.NoError(t, err)
	id := summaries[0].ID

	newContent := "revised content"
	result, _, err := srv.updateMemory(ctx, nil, &updateMemoryParams{
		scopeParams: testScope(),
		MemoryID:    id,
		Content:     &newContent,
	})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("Memory updated successfully!")

	result, _, err = srv.deleteMemory(ctx, nil, &memoryIDParams{
		scopeParams: testScope(),
		MemoryID:    id,
	})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("deleted successfully")

	result, _, err = srv.deleteMemory(ctx, nil, &memoryIDParams{
		scopeParams: testScope(),
		MemoryID:    id,
	})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("not found")
}

func TestListMemoriesTool(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	result, _, err := srv.listMemories(ctx, nil, &listMemoriesParams{scopeParams: testScope()})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("No memories found")

	for _, content := range []string{"alpha", "beta"} {
		_, _, err := srv.storeMemory(ctx, nil, &storeMemoryParams{
			scopeParams: testScope(),
			Content:     content,
		})
		gt.NoError(t, err)
	}

	result, _, err = srv.listMemories(ctx, nil, &listMemoriesParams{scopeParams: testScope()})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("Found 2 memories")
}

func TestSuggestionsTool(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	result, _, err := srv.getMemorySuggestions(ctx, nil, &suggestionsParams{})
	gt.NoError(t, err)
	text := resultText(t, result)
	gt.S(t, text).Contains("Suggested Categories:")
	gt.S(t, text).Contains("preference")
	gt.S(t, text).Contains("Best Practices:")
}

func TestScratchpadTools(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	result, _, err := srv.createScratchpad(ctx, nil, &scratchpadContentParams{
		scratchpadParams: scratchpadParams{ProjectID: "proj", AgentID: "agent"},
		Content:          "notes v1",
	})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("Scratchpad created successfully!")

	result, _, err = srv.createScratchpad(ctx, nil, &scratchpadContentParams{
		scratchpadParams: scratchpadParams{ProjectID: "proj", AgentID: "agent"},
		Content:          "notes v2",
	})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("already exists")

	result, _, err = srv.updateScratchpad(ctx, nil, &scratchpadContentParams{
		scratchpadParams: scratchpadParams{ProjectID: "proj", AgentID: "agent"},
		Content:          "notes v2",
	})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("Scratchpad updated successfully!")

	result, _, err = srv.getScratchpad(ctx, nil, &scratchpadParams{ProjectID: "proj", AgentID: "agent"})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("notes v2")

	result, _, err = srv.listScratchpads(ctx, nil, &listScratchpadsParams{})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("Found 1 scratchpads")

	result, _, err = srv.deleteScratchpad(ctx, nil, &scratchpadParams{ProjectID: "proj", AgentID: "agent"})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("Scratchpad deleted")

	result, _, err = srv.getScratchpad(ctx, nil, &scratchpadParams{ProjectID: "proj", AgentID: "agent"})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("No scratchpad found")
}

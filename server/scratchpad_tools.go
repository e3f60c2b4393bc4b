package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type scratchpadParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project identifier (required)"`
	AgentID   string `json:"agent_id" jsonschema:"Agent identifier (required)"`
}

type scratchpadContentParams struct {
	scratchpadParams
	Content string `json:"content" jsonschema:"Scratchpad content (required)"`
}

type listScratchpadsParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Optional project filter"`
	AgentID   string `json:"agent_id,omitempty" jsonschema:"Optional agent filter"`
}

func (s *Server) registerScratchpadTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "create_scratchpad",
		Description: "Create a scratchpad for an agent in a project. " +
			"Each agent has at most one scratchpad per project; creation fails if one exists.",
	}, s.createScratchpad)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_scratchpad",
		Description: "Read the scratchpad for an agent in a project.",
	}, s.getScratchpad)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_scratchpad",
		Description: "Replace the scratchpad content for an agent in a project.",
	}, s.updateScratchpad)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_scratchpad",
		Description: "Delete the scratchpad for an agent in a project.",
	}, s.deleteScratchpad)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_scratchpads",
		Description: "List scratchpads, optionally filtered by project and/or agent.",
	}, s.listScratchpads)
}

func (s *Server) createScratchpad(ctx context.Context, req *mcp.CallToolRequest, params *scratchpadContentParams) (*mcp.CallToolResult, any, error) {
	pad, err := s.pads.Create(params.ProjectID, params.AgentID, params.Content)
	if err != nil {
		return nil, nil, err
	}
	if pad == nil {
		return textResult(fmt.Sprintf(
			"Scratchpad already exists for project '%s' and agent '%s'. Use update_scratchpad to modify it.",
			params.ProjectID, params.AgentID)), nil, nil
	}
	return textResult(fmt.Sprintf("Scratchpad created successfully!\n\nProject: %s\nAgent: %s\nContent: %s",
		pad.ProjectID, pad.AgentID, pad.Content)), nil, nil
}

func (s *Server) getScratchpad(ctx context.Context, req *mcp.CallToolRequest, params *scratchpadParams) (*mcp.CallToolResult, any, error) {
	pad, err := s.pads.Get(params.ProjectID, params.AgentID)
	if err != nil {
		return nil, nil, err
	}
	if pad == nil {
		return textResult(fmt.Sprintf("No scratchpad found for project '%s' and agent '%s'.",
			params.ProjectID, params.AgentID)), nil, nil
	}
	return textResult(fmt.Sprintf("Project: %s\nAgent: %s\nCreated: %s\nUpdated: %s\n\n%s",
		pad.ProjectID, pad.AgentID,
		formatTime(pad.CreatedAt), formatTime(pad.UpdatedAt), pad.Content)), nil, nil
}

func (s *Server) updateScratchpad(ctx context.Context, req *mcp.CallToolRequest, params *scratchpadContentParams) (*mcp.CallToolResult, any, error) {
	pad, err := s.pads.Update(params.ProjectID, params.AgentID, params.Content)
	if err != nil {
		return nil, nil, err
	}
	if pad == nil {
		return textResult(fmt.Sprintf("No scratchpad found for project '%s' and agent '%s'.",
			params.ProjectID, params.AgentID)), nil, nil
	}
	return textResult(fmt.Sprintf("Scratchpad updated successfully!\n\nProject: %s\nAgent: %s\nUpdated: %s",
		pad.ProjectID, pad.AgentID, formatTime(pad.UpdatedAt))), nil, nil
}

func (s *Server) deleteScratchpad(ctx context.Context, req *mcp.CallToolRequest, params *scratchpadParams) (*mcp.CallToolResult, any, error) {
	existed, err := s.pads.Delete(params.ProjectID, params.AgentID)
	if err != nil {
		return nil, nil, err
	}
	if !existed {
		return textResult(fmt.Sprintf("No scratchpad found for project '%s' and agent '%s'.",
			params.ProjectID, params.AgentID)), nil, nil
	}
	return textResult(fmt.Sprintf("Scratchpad deleted for project '%s' and agent '%s'.",
		params.ProjectID, params.AgentID)), nil, nil
}

func (s *Server) listScratchpads(ctx context.Context, req *mcp.CallToolRequest, params *listScratchpadsParams) (*mcp.CallToolResult, any, error) {
	pads, err := s.pads.List(params.ProjectID, params.AgentID)
	if err != nil {
		return nil, nil, err
	}
	if len(pads) == 0 {
		return textResult("No scratchpads found."), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d scratchpads:\n\n", len(pads))
	for _, pad := range pads {
		fmt.Fprintf(&b, "- Project: %s, Agent: %s (updated %s)\n",
			pad.ProjectID, pad.AgentID, formatTime(pad.UpdatedAt))
	}
	return textResult(b.String()), nil, nil
}

package server

import (
	"fmt"
	"strings"
)

type suggestionExample struct {
	content  string
	metadata string
}

var (
	suggestedCategories = []string{
		"fact",       // factual information about the project
		"procedure",  // how to do something
		"preference", // user or team preferences
		"context",    // project context and background
		"decision",   // important decisions made
		"issue",      // problems and their solutions
	}

	suggestedMetadataFields = []struct {
		name, desc string
	}{
		{"tags", "List of tags for categorization (e.g., ['backend', 'api'])"},
		{"category", "One of the suggested categories above"},
		{"importance", "Integer 0-10 indicating importance"},
		{"source", "Where this information came from"},
		{"related_to", "IDs of related memories"},
	}

	suggestionExamples = []suggestionExample{
		{
			content:  "User prefers TypeScript over JavaScript for type safety",
			metadata: `{"category": "preference", "tags": ["language", "typescript"], "importance": 8}`,
		},
		{
			content:  "Authentication implemented using JWT with 7-day expiry",
			metadata: `{"category": "fact", "tags": ["security", "auth", "jwt"], "importance": 9}`,
		},
		{
			content:  "To deploy: run 'yarn build' then 'yarn deploy:prod'",
			metadata: `{"category": "procedure", "tags": ["deployment", "commands"], "importance": 7}`,
		},
	}

	bestPractices = []string{
		"Store specific, actionable information",
		"Use consistent tagging across related memories",
		"Mark important decisions with high importance scores",
		"Include context in the content, not just facts",
		"Update memories when information changes rather than creating duplicates",
		"Use descriptive content that will match semantic searches",
	}
)

// suggestionsText renders the memory structuring guide returned by the
// get_memory_suggestions tool.
func suggestionsText() string {
	var b strings.Builder

	b.WriteString("Memory Structure Suggestions\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	b.WriteString("Suggested Categories:\n")
	for _, cat := range suggestedCategories {
		fmt.Fprintf(&b, "  - %s\n", cat)
	}

	b.WriteString("\nRecommended Metadata Fields:\n")
	for _, field := range suggestedMetadataFields {
		fmt.Fprintf(&b, "  - %s: %s\n", field.name, field.desc)
	}

	b.WriteString("\nExamples:\n")
	for i, example := range suggestionExamples {
		fmt.Fprintf(&b, "\n%d. Content: %s\n   Metadata: %s\n", i+1, example.content, example.metadata)
	}

	b.WriteString("\nBest Practices:\n")
	for _, tip := range bestPractices {
		fmt.Fprintf(&b, "  - %s\n", tip)
	}

	return b.String()
}

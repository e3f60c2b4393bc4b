package memory

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Scope identifies one isolation unit. Together with the store's embedding
// provider it selects exactly one collection; records never cross scopes.
type Scope struct {
	ProjectID string
	AgentID   string
}

// Validate rejects scopes with empty components.
func (s Scope) Validate() error {
	if s.ProjectID == "" {
		return goerr.New("project_id is required", goerr.T(TagValidation))
	}
	if s.AgentID == "" {
		return goerr.New("agent_id is required", goerr.T(TagValidation))
	}
	return nil
}

// CollectionKey derives the collection name for (project, agent, provider):
//
//	p_<project>_a_<agent>_emb_<provider>
//
// Each component is escaped so the mapping is injective: any byte outside
// [A-Za-z0-9-] is replaced by '_' followed by two lowercase hex digits
// ('_' itself becomes "_5f"). Inside an escaped component a '_' is therefore
// always followed by exactly two hex digits, so the key's "_a_" and "_emb_"
// delimiters cannot be forged by hostile identifiers, and the original
// triple can be recovered from the key.
func CollectionKey(projectID, agentID, provider string) string {
	return fmt.Sprintf("p_%s_a_%s_emb_%s",
		escapeComponent(projectID),
		escapeComponent(agentID),
		escapeComponent(provider))
}

func escapeComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "_%02x", c)
	}
	return sb.String()
}

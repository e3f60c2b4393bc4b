package memory_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/memalpha/memalpha-go/memory"
)

func TestScopeValidate(t *testing.T) {
	gt.NoError(t, memory.Scope{ProjectID: "p", AgentID: "a"}.Validate())

	err := memory.Scope{AgentID: "a"}.Validate()
	gt.Error(t, err)
	gt.True(t, memory.IsValidation(err))

	err = memory.Scope{ProjectID: "p"}.Validate()
	gt.Error(t, err)
	gt.True(t, memory.IsValidation(err))
}

func TestCollectionKeyFormat(t *testing.T) {
	gt.Equal(t, memory.CollectionKey("proj", "agent", "mock"), "p_proj_a_agent_emb_mock")
}

func TestCollectionKeyEscaping(t *testing.T) {
	// Underscores and other non-alphanumerics are hex-escaped.
	gt.Equal(t, memory.CollectionKey("my_proj", "a", "mock"), "p_my_5fproj_a_a_emb_mock")
	gt.Equal(t, memory.CollectionKey("my proj!", "a", "mock"), "p_my_20proj_21_a_a_emb_mock")
}

func TestCollectionKeyDeterminism(t *testing.T) {
	a := memory.CollectionKey("proj/x", "agent.1", "openai")
	b := memory.CollectionKey("proj/x", "agent.1", "openai")
	gt.Equal(t, a, b)
}

func TestCollectionKeyInjective(t *testing.T) {
	// Identifiers crafted to collide under naive joining must still map to
	// distinct keys.
	pairs := [][2][3]string{
		{{"a_b", "c", "mock"}, {"a", "b_c", "mock"}},
		{{"x", "y_emb_z", "mock"}, {"x_a_y", "emb_z", "mock"}},
		{{"p_a", "b", "mock"}, {"p", "a_b", "mock"}},
	}
	for _, pair := range pairs {
		left := memory.CollectionKey(pair[0][0], pair[0][1], pair[0][2])
		right := memory.CollectionKey(pair[1][0], pair[1][1], pair[1][2])
		if left == right {
			t.Errorf("keys collide: %v and %v both map to %s", pair[0], pair[1], left)
		}
	}
}

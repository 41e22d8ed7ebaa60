package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grthilak-rl/vas-kernel/internal/agent"
)

func TestGetOrCreateAgentIsIdempotent(t *testing.T) {
	r := NewAgentRegistry()
	a1 := r.GetOrCreateAgent("camA", "")
	a2 := r.GetOrCreateAgent("camA", "")
	assert.Same(t, a1, a2)
	assert.Equal(t, agent.StateCreated, a1.State())
}

func TestRemoveAgentUnknown(t *testing.T) {
	r := NewAgentRegistry()
	assert.ErrorIs(t, r.RemoveAgent("ghost"), ErrUnknownAgent)
}

func TestRemoveAgentNonStoppedStillRemoves(t *testing.T) {
	r := NewAgentRegistry()
	a := r.GetOrCreateAgent("camA", "")
	require.NoError(t, a.Start())

	require.NoError(t, r.RemoveAgent("camA"))
	assert.Nil(t, r.GetAgent("camA"))
}

func TestListAgentsAndCount(t *testing.T) {
	r := NewAgentRegistry()
	r.GetOrCreateAgent("camA", "")
	r.GetOrCreateAgent("camB", "")
	assert.Equal(t, 2, r.AgentCount())
	assert.Len(t, r.ListAgents(), 2)
}

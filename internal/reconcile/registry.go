// Package reconcile implements the agent registry and reconciliation engine
// (C3): it drives desired subscription state from the control plane's
// assignments into live stream agents.
package reconcile

import (
	"errors"
	"log"
	"sync"

	"github.com/grthilak-rl/vas-kernel/internal/agent"
)

// ErrUnknownAgent is returned by RemoveAgent for a camera with no agent.
var ErrUnknownAgent = errors.New("reconcile: unknown agent")

// AgentRegistry owns the set of live stream agents, one per camera.
type AgentRegistry struct {
	mu     sync.Mutex
	agents map[string]*agent.StreamAgent
}

// NewAgentRegistry builds an empty registry.
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: make(map[string]*agent.StreamAgent)}
}

// GetOrCreateAgent is an idempotent lookup/create. New agents are in
// CREATED state and are not started by the registry.
func (r *AgentRegistry) GetOrCreateAgent(cameraID, frameSourcePath string) *agent.StreamAgent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[cameraID]; ok {
		return a
	}
	a := agent.New(cameraID, frameSourcePath)
	r.agents[cameraID] = a
	return a
}

// GetAgent returns the agent for cameraID, or nil.
func (r *AgentRegistry) GetAgent(cameraID string) *agent.StreamAgent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agents[cameraID]
}

// ListAgents returns a snapshot of all registered agents.
func (r *AgentRegistry) ListAgents() []*agent.StreamAgent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*agent.StreamAgent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	return out
}

// RemoveAgent removes the agent for cameraID. Removing a non-STOPPED agent
// is allowed but logs a warning; no draining is performed.
func (r *AgentRegistry) RemoveAgent(cameraID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[cameraID]
	if !ok {
		return ErrUnknownAgent
	}
	if a.State() != agent.StateStopped {
		log.Printf("[AgentRegistry] removing camera=%s agent in state=%s, not STOPPED", cameraID, a.State())
	}
	delete(r.agents, cameraID)
	return nil
}

// AgentCount returns the number of registered agents.
func (r *AgentRegistry) AgentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.agents)
}

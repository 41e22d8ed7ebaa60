// Package agent implements the stream agent, subscription, and FPS gate
// (C2): per-camera dispatch scheduling with fail-closed semantics.
package agent

import (
	"fmt"
	"sync"

	"github.com/grthilak-rl/vas-kernel/internal/telemetry"
)

// State is the agent's lifecycle state. Transitions are one-way:
// CREATED -> RUNNING -> STOPPED. There is no resurrection.
type State int

const (
	StateCreated State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// StreamAgent is one logical object per camera. Every method takes the
// agent's own mutex, so mutation methods (add/remove subscription,
// start/stop) serialize per agent. should_dispatch/record_dispatch read the
// agent state under that mutex and update counters and dispatch fields
// under the Subscription's own mutex.
type StreamAgent struct {
	CameraID        string
	FrameSourcePath string // empty means absent; never dereferenced internally

	mu            sync.Mutex
	state         State
	subscriptions map[string]*Subscription
}

// New constructs a StreamAgent in CREATED state with no subscriptions.
func New(cameraID, frameSourcePath string) *StreamAgent {
	return &StreamAgent{
		CameraID:        cameraID,
		FrameSourcePath: frameSourcePath,
		state:           StateCreated,
		subscriptions:   make(map[string]*Subscription),
	}
}

// State returns the agent's current lifecycle state.
func (a *StreamAgent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Start transitions CREATED -> RUNNING. Any other state is an error; it
// never starts threads or opens resources itself.
func (a *StreamAgent) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateCreated {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, a.state)
	}
	a.state = StateRunning
	return nil
}

// Stop transitions RUNNING -> STOPPED. Any other state is an error.
func (a *StreamAgent) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateRunning {
		return fmt.Errorf("%w: stop from %s", ErrInvalidTransition, a.state)
	}
	a.state = StateStopped
	return nil
}

// AddSubscription rejects an empty or duplicate model_id; otherwise creates
// a new subscription with active=true, zero counters, no last dispatch.
func (a *StreamAgent) AddSubscription(modelID string, cfg Config) (*Subscription, error) {
	if modelID == "" {
		return nil, ErrEmptyModelID
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.subscriptions[modelID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionExists, modelID)
	}
	sub := newSubscription(modelID, cfg)
	a.subscriptions[modelID] = sub
	return sub, nil
}

// RemoveSubscription removes a subscription immediately, with no draining.
// An unknown id is an error.
func (a *StreamAgent) RemoveSubscription(modelID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.subscriptions[modelID]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownSubscription, modelID)
	}
	delete(a.subscriptions, modelID)
	return nil
}

// ListSubscriptions returns a snapshot slice of all current subscriptions.
func (a *StreamAgent) ListSubscriptions() []*Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Subscription, 0, len(a.subscriptions))
	for _, s := range a.subscriptions {
		out = append(out, s)
	}
	return out
}

// GetSubscription returns the subscription for model_id, or nil.
func (a *StreamAgent) GetSubscription(modelID string) *Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.subscriptions[modelID]
}

// SubscriptionCount returns the number of active+inactive subscriptions.
func (a *StreamAgent) SubscriptionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.subscriptions)
}

// ShouldDispatch is the FPS gating algorithm (spec's central decision).
// Order matters: STOPPED and inactive checks precede config checks so that
// an inert agent never leaks dispatch-field updates.
func (a *StreamAgent) ShouldDispatch(s *Subscription, frameID uint64, frameTimestamp float64) bool {
	if a.State() == StateStopped {
		s.incrementDrop()
		telemetry.RecordDispatchSkipped(a.CameraID, s.ModelID)
		return false
	}
	if !s.Active() {
		s.incrementDrop()
		telemetry.RecordDispatchSkipped(a.CameraID, s.ModelID)
		return false
	}

	fps, present := s.Config.DesiredFPS()
	if !present {
		return true
	}
	if fps <= 0 {
		s.incrementDrop()
		telemetry.RecordDispatchSkipped(a.CameraID, s.ModelID)
		return false
	}

	_, lastTS, have := s.LastDispatch()
	if !have {
		return true
	}

	elapsed := frameTimestamp - lastTS
	if elapsed >= 1.0/fps {
		return true
	}
	s.incrementDrop()
	telemetry.RecordDispatchSkipped(a.CameraID, s.ModelID)
	return false
}

// RecordDispatch updates the subscription's last-dispatched fields and
// increments its dispatch counter. Errors in counter bookkeeping are never
// raised: a metrics fault must never perturb scheduling.
func (a *StreamAgent) RecordDispatch(s *Subscription, frameID uint64, frameTimestamp float64) {
	if a.State() == StateStopped || !s.Active() {
		return
	}
	s.recordDispatch(frameID, frameTimestamp)
	telemetry.RecordDispatch(a.CameraID, s.ModelID)
}

// AgentMetrics is the get_metrics() response shape.
type AgentMetrics struct {
	CameraID          string
	State             string
	SubscriptionCount int
	Subscriptions     []Metrics
}

// GetMetrics collects the agent's own state plus a best-effort snapshot of
// every subscription's metrics. A failure while snapshotting one
// subscription is swallowed and that subscription is simply omitted.
func (a *StreamAgent) GetMetrics() AgentMetrics {
	subs := a.ListSubscriptions()
	out := make([]Metrics, 0, len(subs))
	for _, s := range subs {
		out = append(out, safeMetrics(s))
	}
	return AgentMetrics{
		CameraID:          a.CameraID,
		State:             a.State().String(),
		SubscriptionCount: len(subs),
		Subscriptions:     out,
	}
}

func safeMetrics(s *Subscription) (m Metrics) {
	defer func() {
		if r := recover(); r != nil {
			m = Metrics{ModelID: s.ModelID}
		}
	}()
	return s.Metrics()
}

package agent

import "sync"

// Config holds the opaque per-subscription settings. desired_fps and
// priority are well-known keys; everything else (including "parameters")
// passes through untouched.
type Config map[string]any

// DesiredFPS extracts config["desired_fps"] as a float64, reporting whether
// the key is present at all. A present-but-non-numeric value is reported as
// present with value 0, which should_dispatch rejects as non-positive
// (the fail-closed policy of step 4).
func (c Config) DesiredFPS() (value float64, present bool) {
	raw, present := c["desired_fps"]
	if !present {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, true // present but not a number: caller must reject it
	}
}

// Subscription is identified by model_id within its owning agent. Config is
// immutable once created; changing it means remove+add.
type Subscription struct {
	ModelID string
	Config  Config

	mu                    sync.Mutex
	active                bool
	lastDispatchedFrameID uint64
	haveLastDispatch      bool
	lastDispatchTimestamp float64
	dispatchCount         uint64
	dropCount             uint64
}

func newSubscription(modelID string, cfg Config) *Subscription {
	if cfg == nil {
		cfg = Config{}
	}
	return &Subscription{
		ModelID: modelID,
		Config:  cfg,
		active:  true,
	}
}

// Active reports the subscription's active flag.
func (s *Subscription) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive flips the active flag; it does not reset counters.
func (s *Subscription) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

// LastDispatch returns the last dispatched frame id/timestamp and whether
// any dispatch has happened yet.
func (s *Subscription) LastDispatch() (frameID uint64, timestamp float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDispatchedFrameID, s.lastDispatchTimestamp, s.haveLastDispatch
}

// Metrics is a read-only snapshot of a subscription's counters, returned by
// get_metrics.
type Metrics struct {
	ModelID       string
	Active        bool
	DispatchCount uint64
	DropCount     uint64
}

// Metrics snapshots the subscription's counters.
func (s *Subscription) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Metrics{
		ModelID:       s.ModelID,
		Active:        s.active,
		DispatchCount: s.dispatchCount,
		DropCount:     s.dropCount,
	}
}

func (s *Subscription) incrementDrop() {
	s.mu.Lock()
	s.dropCount++
	s.mu.Unlock()
}

func (s *Subscription) recordDispatch(frameID uint64, timestamp float64) {
	s.mu.Lock()
	s.lastDispatchedFrameID = frameID
	s.lastDispatchTimestamp = timestamp
	s.haveLastDispatch = true
	s.dispatchCount++
	s.mu.Unlock()
}

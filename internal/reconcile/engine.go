package reconcile

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nats-io/nats.go"

	"github.com/grthilak-rl/vas-kernel/internal/agent"
	"github.com/grthilak-rl/vas-kernel/internal/telemetry"
	"github.com/grthilak-rl/vas-kernel/pkg/wire"
)

// AssignmentSource is the read-only subset of assignment.Client the engine
// depends on, so tests can fake it without spinning up an HTTP server.
type AssignmentSource interface {
	FetchAllAssignments() []wire.Assignment
}

// errorDedupSize bounds the engine's "already logged this camera's error"
// cache so a camera stuck in a failure loop doesn't spam logs every cycle.
const errorDedupSize = 1024

// Summary aggregates one reconciliation cycle's outcome. The engine never
// raises; failures are counted here instead.
type Summary struct {
	Added   int
	Removed int
	Updated int
	Errors  int
}

// Engine runs reconcile_all against an AgentRegistry.
type Engine struct {
	source   AssignmentSource
	registry *AgentRegistry
	nc       *nats.Conn

	// errorDedup suppresses repeat log lines for a camera that fails every
	// cycle; it is rebuilt per engine, not per cycle, so a camera that
	// recovers and fails again still only logs once per LRU eviction cycle.
	errorDedup *lru.Cache[string, struct{}]
}

// EngineOption configures optional Engine dependencies.
type EngineOption func(*Engine)

// WithNATS attaches a NATS connection the engine publishes per-camera
// convergence events on. Publish failures are logged, never raised; NATS is
// an optional fan-out, not a correctness dependency.
func WithNATS(nc *nats.Conn) EngineOption {
	return func(e *Engine) { e.nc = nc }
}

// NewEngine builds a reconciliation engine over an assignment source and an
// agent registry.
func NewEngine(source AssignmentSource, registry *AgentRegistry, opts ...EngineOption) *Engine {
	cache, err := lru.New[string, struct{}](errorDedupSize)
	if err != nil {
		// Only fails for a non-positive size, which errorDedupSize never is.
		panic(err)
	}
	e := &Engine{source: source, registry: registry, errorDedup: cache}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// subscriptionEvent is published to reconcile.subscriptions.<camera_id> on
// every cycle that changes a camera's subscriptions, so a dispatch worker
// can react without polling reconcile.cycle.summary.
type subscriptionEvent struct {
	CameraID string   `json:"camera_id"`
	Added    []string `json:"added,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Updated  []string `json:"updated,omitempty"`
}

func (e *Engine) publishSubscriptionEvent(ev subscriptionEvent) {
	if e.nc == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Reconciler] camera=%s subscription event marshal failed: %v", ev.CameraID, err)
		return
	}
	subject := fmt.Sprintf("reconcile.subscriptions.%s", ev.CameraID)
	if err := e.nc.Publish(subject, data); err != nil {
		log.Printf("[Reconciler] camera=%s subscription event publish failed: %v", ev.CameraID, err)
	}
}

// ReconcileAll fetches assignments, groups them by camera, and converges
// each camera's agent subscriptions to match. It never raises; per-camera
// and per-subscription errors are caught and counted.
func (e *Engine) ReconcileAll() Summary {
	defer telemetry.RecordReconcileCycle()

	assignments := e.source.FetchAllAssignments()
	if len(assignments) == 0 {
		return Summary{}
	}

	byCamera := make(map[string][]wire.Assignment)
	for _, a := range assignments {
		byCamera[a.CameraID] = append(byCamera[a.CameraID], a)
	}

	var summary Summary
	for cameraID, cameraAssignments := range byCamera {
		e.reconcileCamera(cameraID, cameraAssignments, &summary)
	}
	return summary
}

func (e *Engine) reconcileCamera(cameraID string, assignments []wire.Assignment, summary *Summary) {
	var ev subscriptionEvent
	ev.CameraID = cameraID
	defer func() {
		if r := recover(); r != nil {
			summary.Errors++
			telemetry.RecordReconcileError(cameraID)
			e.logOnce(cameraID, "panic during reconciliation: %v", r)
			return
		}
		if len(ev.Added)+len(ev.Removed)+len(ev.Updated) > 0 {
			e.publishSubscriptionEvent(ev)
		}
	}()

	recordErr := func(format string, args ...any) {
		summary.Errors++
		telemetry.RecordReconcileError(cameraID)
		e.logOnce(cameraID, format, args...)
	}

	a := e.registry.GetOrCreateAgent(cameraID, "")
	if a.State() == agent.StateCreated {
		if err := a.Start(); err != nil {
			recordErr("start failed: %v", err)
			return
		}
	}

	desired := make(map[string]wire.Assignment, len(assignments))
	for _, asn := range assignments {
		desired[asn.ModelID] = asn
	}

	current := make(map[string]*agent.Subscription)
	for _, sub := range a.ListSubscriptions() {
		current[sub.ModelID] = sub
	}

	for modelID, asn := range desired {
		if _, exists := current[modelID]; !exists {
			if _, err := a.AddSubscription(modelID, buildConfig(asn)); err != nil {
				recordErr("add_subscription(%s) failed: %v", modelID, err)
				continue
			}
			summary.Added++
			ev.Added = append(ev.Added, modelID)
		}
	}

	for modelID := range current {
		if _, exists := desired[modelID]; !exists {
			if err := a.RemoveSubscription(modelID); err != nil {
				recordErr("remove_subscription(%s) failed: %v", modelID, err)
				continue
			}
			summary.Removed++
			ev.Removed = append(ev.Removed, modelID)
		}
	}

	for modelID, asn := range desired {
		sub, exists := current[modelID]
		if !exists {
			continue
		}
		newCfg := buildConfig(asn)
		if configEqual(sub.Config, newCfg) {
			continue
		}
		if err := a.RemoveSubscription(modelID); err != nil {
			recordErr("update remove(%s) failed: %v", modelID, err)
			continue
		}
		if _, err := a.AddSubscription(modelID, newCfg); err != nil {
			recordErr("update add(%s) failed: %v", modelID, err)
			continue
		}
		summary.Updated++
		ev.Updated = append(ev.Updated, modelID)
	}
}

// buildConfig produces {"desired_fps": ..., "priority": ..., "parameters":
// ...} for each field present on the assignment; absent fields are absent
// from the config.
func buildConfig(a wire.Assignment) agent.Config {
	cfg := agent.Config{}
	if a.DesiredFPS != nil {
		cfg["desired_fps"] = *a.DesiredFPS
	}
	if a.Priority != nil {
		cfg["priority"] = *a.Priority
	}
	if a.Parameters != nil {
		cfg["parameters"] = a.Parameters
	}
	return cfg
}

// configEqual is structural equality on config maps. False positives from
// key ordering can't happen with Go maps; any genuine mismatch triggers a
// rebuild, which is functionally identical to a real config change.
func configEqual(a, b agent.Config) bool {
	return reflect.DeepEqual(a, b)
}

func (e *Engine) logOnce(cameraID, format string, args ...any) {
	if _, seen := e.errorDedup.Get(cameraID); seen {
		return
	}
	e.errorDedup.Add(cameraID, struct{}{})
	log.Printf("[Reconciler] camera=%s "+format, append([]any{cameraID}, args...)...)
}

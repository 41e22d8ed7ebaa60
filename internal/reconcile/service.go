package reconcile

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultInterval matches RECONCILIATION_INTERVAL_SECONDS' default.
const DefaultInterval = 30 * time.Second

// Service owns a background reconciliation loop: run one cycle, then wait
// for either a stop signal or the configured interval. Cycle failures are
// logged; the loop continues. Restartable after Stop.
type Service struct {
	engine   *Engine
	interval time.Duration
	nc       *nats.Conn // optional; nil means no pub/sub notification

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewService builds a reconciliation service. nc may be nil; when set, each
// cycle additionally publishes a summary to NATS as a supplement to the
// synchronous ReconcileAll return value.
func NewService(engine *Engine, interval time.Duration, nc *nats.Conn) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{engine: engine, interval: interval, nc: nc}
}

// Start begins the loop in a background goroutine. Calling Start while
// already running is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.loop(s.stopCh, s.doneCh)
}

func (s *Service) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		s.runCycle()

		select {
		case <-stopCh:
			return
		case <-time.After(s.interval):
		}
	}
}

func (s *Service) runCycle() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Reconciler] cycle panic: %v", r)
		}
	}()

	summary := s.engine.ReconcileAll()
	log.Printf("[Reconciler] cycle complete: added=%d removed=%d updated=%d errors=%d",
		summary.Added, summary.Removed, summary.Updated, summary.Errors)

	s.publishSummary(summary)
}

func (s *Service) publishSummary(summary Summary) {
	if s.nc == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		log.Printf("[Reconciler] summary marshal failed: %v", err)
		return
	}
	if err := s.nc.Publish("reconcile.cycle.summary", data); err != nil {
		log.Printf("[Reconciler] NATS publish failed: %v", err)
	}
}

// Stop signals the loop to exit after its current cycle and waits for it to
// actually exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.running = false
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

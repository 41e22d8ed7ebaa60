// Command reconciler runs C3's convergence loop on its own, for operators
// who split reconciliation out of the stream-agent process rather than
// running it embedded. It shares the same AgentRegistry type as
// cmd/stream-agent but does not expose its HTTP surface.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/grthilak-rl/vas-kernel/internal/assignment"
	"github.com/grthilak-rl/vas-kernel/internal/config"
	"github.com/grthilak-rl/vas-kernel/internal/reconcile"
)

func main() {
	cfgPath := ""
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	rc := config.Load(cfgPath).Reconciler

	log.Printf("[Reconciler] starting standalone: backend=%s interval=%ds", rc.AssignmentAPIBaseURL, rc.ReconcileIntervalSec)

	var opts []assignment.Option
	if rc.JWTSigningKey != "" {
		opts = append(opts, assignment.WithSigningKey([]byte(rc.JWTSigningKey)))
	}
	client := assignment.NewClient(rc.AssignmentAPIBaseURL, rc.ServiceToken, opts...)

	registry := reconcile.NewAgentRegistry()
	nc := connectNATS(rc.NATSURL)
	var engineOpts []reconcile.EngineOption
	if nc != nil {
		engineOpts = append(engineOpts, reconcile.WithNATS(nc))
	}
	engine := reconcile.NewEngine(client, registry, engineOpts...)
	service := reconcile.NewService(engine, time.Duration(rc.ReconcileIntervalSec)*time.Second, nc)

	service.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("[Reconciler] shutting down")
	service.Stop()
	if nc != nil {
		nc.Close()
	}
}

// connectNATS is best-effort, mirroring cmd/stream-agent/main.go's helper of
// the same name: a missing broker degrades to "no pub/sub fan-out" rather
// than failing startup.
func connectNATS(url string) *nats.Conn {
	if url == "" {
		return nil
	}
	nc, err := nats.Connect(url)
	if err != nil {
		log.Printf("[Reconciler] NATS connect failed: %v (continuing without pub/sub)", err)
		return nil
	}
	return nc
}

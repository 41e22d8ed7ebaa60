// Command stream-agent hosts the per-camera StreamAgent registry (C2) and
// drives the reconciliation loop (C3) that converges it against the
// control plane's assignment intent. It exposes Prometheus metrics and a
// best-effort status endpoint; it never owns frame I/O itself.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/grthilak-rl/vas-kernel/internal/aihealth"
	"github.com/grthilak-rl/vas-kernel/internal/assignment"
	"github.com/grthilak-rl/vas-kernel/internal/config"
	"github.com/grthilak-rl/vas-kernel/internal/reconcile"
)

func main() {
	cfgPath := ""
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	root := config.Load(cfgPath)
	rc := root.Reconciler

	log.Printf("[StreamAgent] starting: backend=%s interval=%ds", rc.AssignmentAPIBaseURL, rc.ReconcileIntervalSec)

	client := buildAssignmentClient(rc)
	registry := reconcile.NewAgentRegistry()
	nc := connectNATS(rc.NATSURL)
	var engineOpts []reconcile.EngineOption
	if nc != nil {
		engineOpts = append(engineOpts, reconcile.WithNATS(nc))
	}
	engine := reconcile.NewEngine(client, registry, engineOpts...)
	service := reconcile.NewService(engine, time.Duration(rc.ReconcileIntervalSec)*time.Second, nc)
	health := aihealth.NewService("", registry)
	cache := connectHealthCache(rc.RedisURL, health)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var cameras any
		var heartbeats any
		if cache != nil {
			cameras = cache.GetCameraMetrics(r.Context())
			heartbeats = cache.GetSystemHealth(r.Context())
		} else {
			cameras = health.GetCameraMetrics()
			heartbeats = health.GetSystemHealth()
		}
		json.NewEncoder(w).Encode(map[string]any{
			"agent_count":      registry.AgentCount(),
			"cameras":          cameras,
			"model_heartbeats": heartbeats,
		})
	})

	httpSrv := &http.Server{Addr: ":9090", Handler: mux}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[StreamAgent] http server error: %v", err)
		}
	}()

	service.Start()
	log.Printf("[StreamAgent] reconciliation loop started")

	waitForShutdown()

	log.Printf("[StreamAgent] shutting down")
	service.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpSrv.Shutdown(ctx)
	if nc != nil {
		nc.Close()
	}
}

func waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

func buildAssignmentClient(rc config.ReconcilerConfig) *assignment.Client {
	var opts []assignment.Option
	if rc.JWTSigningKey != "" {
		opts = append(opts, assignment.WithSigningKey([]byte(rc.JWTSigningKey)))
	}
	return assignment.NewClient(rc.AssignmentAPIBaseURL, rc.ServiceToken, opts...)
}

// connectNATS is best-effort: a missing broker degrades the reconciliation
// service to "no cycle-summary fan-out" rather than failing startup.
func connectNATS(url string) *nats.Conn {
	if url == "" {
		return nil
	}
	nc, err := nats.Connect(url)
	if err != nil {
		log.Printf("[StreamAgent] NATS connect failed: %v (continuing without pub/sub)", err)
		return nil
	}
	return nc
}

// connectHealthCache is best-effort, mirroring connectNATS: an unset or
// unreachable Redis degrades /status to scanning the heartbeat directory
// live on every request rather than failing startup.
func connectHealthCache(redisURL string, health *aihealth.Service) *aihealth.Cache {
	if redisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("[StreamAgent] REDIS_URL invalid: %v (continuing without health cache)", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("[StreamAgent] Redis ping failed: %v (continuing without health cache)", err)
		return nil
	}
	return aihealth.NewCache(client, health)
}

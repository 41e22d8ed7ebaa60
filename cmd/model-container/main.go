// Command model-container is a long-lived per-model process (C4): it
// discovers its manifest once at startup, enforces the GPU policy, then
// serves inference requests over a length-prefixed UDS protocol while
// emitting a best-effort heartbeat.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/grthilak-rl/vas-kernel/internal/config"
	"github.com/grthilak-rl/vas-kernel/internal/modelc"
)

func main() {
	cfgPath := ""
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	mc := config.Load(cfgPath).ModelContainer

	modelID := config.GetEnv("MODEL_ID", mc.ModelID)
	if modelID == "" {
		log.Fatalf("[ModelContainer] MODEL_ID is required")
	}
	modelsRoot := config.GetEnv("MODELS_ROOT", mc.ModelsRoot)

	discovery := modelc.NewDiscovery(modelsRoot)
	if err := discovery.Discover(); err != nil {
		log.Fatalf("[ModelContainer] discovery failed: %v", err)
	}
	if reasons := discovery.ListUnavailable(); len(reasons) > 0 {
		for id, reason := range reasons {
			log.Printf("[ModelContainer] model %s unavailable: %s", id, reason)
		}
	}

	manifest, ok := discovery.GetModel(modelID)
	if !ok {
		log.Fatalf("[ModelContainer] model_id=%s not found or unavailable; available=%v", modelID, discovery.ListAvailableModels())
	}
	log.Printf("[ModelContainer] loaded manifest model_id=%s model_type=%s", manifest.ModelID, manifest.ModelType)

	hasGPU := modelc.DetectGPU()
	switch {
	case manifest.ResourceRequirements.GPURequired && !hasGPU:
		log.Fatalf("[ModelContainer] gpu_required=true but no CUDA device found; exiting")
	case !manifest.ResourceRequirements.GPURequired && manifest.ResourceRequirements.CPUFallbackAllowed && !hasGPU:
		log.Printf("[ModelContainer] cpu_fallback_allowed=true, no GPU found; continuing on CPU with degraded performance")
	}

	runtime := modelc.NewMockRuntime()
	handler := modelc.NewInferenceHandler(manifest, runtime)

	nc := connectNATS(mc.NATSURL)
	var ipcOpts []modelc.IPCOption
	if nc != nil {
		ipcOpts = append(ipcOpts, modelc.WithNATS(nc))
	}
	server := modelc.NewIPCServer(modelID, handler, ipcOpts...)
	if err := server.Listen(); err != nil {
		log.Fatalf("[ModelContainer] listen failed: %v", err)
	}
	go func() {
		if err := server.Serve(); err != nil {
			log.Printf("[ModelContainer] serve exited: %v", err)
		}
	}()
	log.Printf("[ModelContainer] listening on %s", modelc.SocketPath(modelID))

	heartbeatInterval := time.Duration(config.GetEnvInt("VAS_HEARTBEAT_INTERVAL_SECONDS", mc.HeartbeatIntervalSec)) * time.Second
	emitter := modelc.NewHeartbeatEmitter(modelID, handler, heartbeatInterval)
	go emitter.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go modelc.WatchManifestDrift(ctx, manifest.Path())

	waitForShutdown()

	log.Printf("[ModelContainer] shutting down")
	emitter.Stop()
	if err := server.Close(); err != nil {
		log.Printf("[ModelContainer] close error: %v", err)
	}
	if nc != nil {
		nc.Close()
	}
}

func waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

// connectNATS is best-effort: a missing broker degrades the model container
// to "no detections fan-out", not a failed startup, mirroring
// cmd/stream-agent/main.go's connectNATS.
func connectNATS(url string) *nats.Conn {
	if url == "" {
		return nil
	}
	nc, err := nats.Connect(url)
	if err != nil {
		log.Printf("[ModelContainer] NATS connect failed: %v (continuing without pub/sub)", err)
		return nil
	}
	return nc
}

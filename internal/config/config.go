package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/grthilak-rl/vas-kernel/internal/platform/paths"
)

// ReconcilerConfig drives the stream-agent/reconciler process.
type ReconcilerConfig struct {
	AssignmentAPIBaseURL string  `yaml:"assignment_api_base_url"`
	ServiceToken         string  `yaml:"service_token"`
	JWTSigningKey        string  `yaml:"jwt_signing_key"`
	ReconcileIntervalSec int     `yaml:"reconcile_interval_sec"`
	NATSURL              string  `yaml:"nats_url"`
	RedisURL             string  `yaml:"redis_url"`
	FrameSourceBaseDir   string  `yaml:"frame_source_base_dir"`
	DefaultRingCapacity  int     `yaml:"default_ring_capacity"`
	DefaultFPSCap        float64 `yaml:"default_fps_cap"`
}

// ModelContainerConfig drives a model-container process for one model.
type ModelContainerConfig struct {
	ModelID             string `yaml:"model_id"`
	ModelsRoot          string `yaml:"models_root"`
	HeartbeatIntervalSec int   `yaml:"heartbeat_interval_sec"`
	HeartbeatDir        string `yaml:"heartbeat_dir"`
	GPURequiredOverride string `yaml:"gpu_required_override"`
	NATSURL             string `yaml:"nats_url"`
}

// RootConfig is the shape of config/default.yaml: a superset covering every
// cmd/ binary, loaded wholesale and then narrowed per-process, matching the
// teacher's single rootCfg-with-inline-struct pattern in cmd/server/main.go.
type RootConfig struct {
	Reconciler     ReconcilerConfig     `yaml:"reconciler"`
	ModelContainer ModelContainerConfig `yaml:"model_container"`
}

// Load reads path (falling back to paths.DefaultConfigPath when empty) and
// applies environment-variable overrides on top. A missing or malformed file
// is not fatal: it is logged and the zero-value config (all env-driven) is
// returned, matching the teacher's "error handling ignored for brevity"
// discipline around config/default.yaml.
func Load(path string) RootConfig {
	path = paths.ResolveConfigPath(path)

	var cfg RootConfig
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Config] %s not found, using environment defaults: %v", path, err)
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("[Config] %s malformed, using environment defaults: %v", path, err)
	}

	applyEnvOverrides(&cfg)
	return cfg
}

// applyEnvOverrides honors exactly the environment variables named in
// spec.md §6 (BACKEND_URL, RECONCILIATION_INTERVAL_SECONDS,
// VAS_HEARTBEAT_INTERVAL_SECONDS, AI_FRAME_EXPORT_ENABLED via
// FrameExportEnabled below), plus a few process-local additions
// (AI_SERVICE_TOKEN, AI_JWT_SIGNING_KEY, NATS_URL, REDIS_URL,
// FRAME_SOURCE_BASE_DIR, MODEL_ID, MODELS_ROOT, HEARTBEAT_DIR,
// DEFAULT_RING_CAPACITY, DEFAULT_FPS_CAP) that the spec leaves to the
// implementation. String fields take the environment value over the YAML
// value when it is set. The numeric fields (RECONCILIATION_INTERVAL_SECONDS,
// DEFAULT_RING_CAPACITY, DEFAULT_FPS_CAP, VAS_HEARTBEAT_INTERVAL_SECONDS)
// read their variable only when the YAML left them zero; a non-zero YAML
// value is kept.
func applyEnvOverrides(cfg *RootConfig) {
	cfg.Reconciler.AssignmentAPIBaseURL = GetEnv("BACKEND_URL", orDefault(cfg.Reconciler.AssignmentAPIBaseURL, "http://localhost:8080"))
	cfg.Reconciler.ServiceToken = GetEnv("AI_SERVICE_TOKEN", cfg.Reconciler.ServiceToken)
	cfg.Reconciler.JWTSigningKey = GetEnv("AI_JWT_SIGNING_KEY", cfg.Reconciler.JWTSigningKey)
	cfg.Reconciler.NATSURL = GetEnv("NATS_URL", orDefault(cfg.Reconciler.NATSURL, "nats://localhost:4222"))
	cfg.Reconciler.RedisURL = GetEnv("REDIS_URL", cfg.Reconciler.RedisURL)
	cfg.Reconciler.FrameSourceBaseDir = GetEnv("FRAME_SOURCE_BASE_DIR", orDefault(cfg.Reconciler.FrameSourceBaseDir, paths.DefaultShmRoot))

	if cfg.Reconciler.ReconcileIntervalSec == 0 {
		cfg.Reconciler.ReconcileIntervalSec = int(GetEnvFloat("RECONCILIATION_INTERVAL_SECONDS", 30.0))
	}
	if cfg.Reconciler.DefaultRingCapacity == 0 {
		cfg.Reconciler.DefaultRingCapacity = GetEnvInt("DEFAULT_RING_CAPACITY", 30)
	}
	if cfg.Reconciler.DefaultFPSCap == 0 {
		cfg.Reconciler.DefaultFPSCap = GetEnvFloat("DEFAULT_FPS_CAP", 5.0)
	}

	cfg.ModelContainer.ModelID = GetEnv("MODEL_ID", cfg.ModelContainer.ModelID)
	cfg.ModelContainer.ModelsRoot = GetEnv("MODELS_ROOT", orDefault(cfg.ModelContainer.ModelsRoot, paths.DefaultModelsRoot))
	cfg.ModelContainer.HeartbeatDir = GetEnv("HEARTBEAT_DIR", orDefault(cfg.ModelContainer.HeartbeatDir, paths.DefaultScratchRoot))
	cfg.ModelContainer.NATSURL = GetEnv("NATS_URL", orDefault(cfg.ModelContainer.NATSURL, "nats://localhost:4222"))
	if cfg.ModelContainer.HeartbeatIntervalSec == 0 {
		cfg.ModelContainer.HeartbeatIntervalSec = GetEnvInt("VAS_HEARTBEAT_INTERVAL_SECONDS", 5)
	}
}

// FrameExportEnabled reports AI_FRAME_EXPORT_ENABLED, default false — the
// feature flag gating C1's exporter construction entirely.
func FrameExportEnabled() bool {
	return GetEnvBool("AI_FRAME_EXPORT_ENABLED", false)
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

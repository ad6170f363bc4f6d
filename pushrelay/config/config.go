package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
)

const (
	DefaultListenAddr   = ":8080"
	DefaultRegion       = "asia-northeast1"
	DefaultDispatchPath = "/testPushNotification"
	DefaultMetricsPath  = "/metrics/otel"
)

// TriggerConfig enables the optional Pub/Sub trigger.
type TriggerConfig struct {
	TopicID                string
	SubscriptionID         string
	SubscriptionDLQTopicID string
	NumPipelineWorkers     int
}

// Enabled reports whether a subscription was configured.
func (t TriggerConfig) Enabled() bool {
	return t.SubscriptionID != ""
}

// Config defines the *single*, authoritative configuration.
type Config struct {
	ProjectID  string
	ListenAddr string
	// Region is where the relay is deployed.
	Region          string
	DispatchPath    string
	MetricsPath     string
	CredentialsFile string
	DryRun          bool
	IdentityURL     string

	CorsConfig middleware.CorsConfig
	Trigger    TriggerConfig
}

// UpdateConfigWithEnvOverrides applies environment variables and final validation.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	// 1. Apply Environment Overrides
	if val := os.Getenv("PROJECT_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "PROJECT_ID", "source", "env")
		cfg.ProjectID = val
	}
	if val := os.Getenv("PORT"); val != "" {
		logger.Debug("Overriding config value", "key", "PORT", "source", "env")
		cfg.ListenAddr = ":" + val
	}
	// FUNCTION_REGION is set by the Cloud Functions runtime; REGION wins when both exist.
	for _, key := range []string{"FUNCTION_REGION", "REGION"} {
		if val := os.Getenv(key); val != "" {
			logger.Debug("Overriding config value", "key", key, "source", "env")
			cfg.Region = val
		}
	}
	if val := os.Getenv("DISPATCH_PATH"); val != "" {
		logger.Debug("Overriding config value", "key", "DISPATCH_PATH", "source", "env")
		cfg.DispatchPath = val
	}
	if val := os.Getenv("METRICS_PATH"); val != "" {
		logger.Debug("Overriding config value", "key", "METRICS_PATH", "source", "env")
		cfg.MetricsPath = val
	}
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		logger.Debug("Overriding config value", "key", "FIREBASE_CREDENTIALS_FILE", "source", "env")
		cfg.CredentialsFile = val
	}
	if val := os.Getenv("FCM_DRY_RUN"); val != "" {
		if dryRun, err := strconv.ParseBool(val); err == nil {
			logger.Debug("Overriding config value", "key", "FCM_DRY_RUN", "source", "env")
			cfg.DryRun = dryRun
		}
	}
	if val := os.Getenv("IDENTITY_SERVICE_URL"); val != "" {
		logger.Debug("Overriding config value", "key", "IDENTITY_SERVICE_URL", "source", "env")
		cfg.IdentityURL = val
	}

	// Pub/Sub Trigger Overrides
	if val := os.Getenv("TOPIC_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "TOPIC_ID", "source", "env")
		cfg.Trigger.TopicID = val
	}
	if val := os.Getenv("SUBSCRIPTION_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "SUBSCRIPTION_ID", "source", "env")
		cfg.Trigger.SubscriptionID = val
	}
	if val := os.Getenv("SUBSCRIPTION_DLQ_TOPIC_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "SUBSCRIPTION_DLQ_TOPIC_ID", "source", "env")
		cfg.Trigger.SubscriptionDLQTopicID = val
	}
	if val := os.Getenv("NUM_PIPELINE_WORKERS"); val != "" {
		if workers, err := strconv.Atoi(val); err == nil && workers > 0 {
			logger.Debug("Overriding config value", "key", "NUM_PIPELINE_WORKERS", "source", "env")
			cfg.Trigger.NumPipelineWorkers = workers
		}
	}

	// CORS Overrides
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		logger.Debug("Overriding config value", "key", "CORS_ALLOWED_ORIGINS", "source", "env")
		rawOrigins := strings.Split(corsOrigins, ",")
		var cleanOrigins []string
		for _, o := range rawOrigins {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				cleanOrigins = append(cleanOrigins, trimmed)
			}
		}
		cfg.CorsConfig.AllowedOrigins = cleanOrigins
	}

	// 2. Final Validation
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required (set via YAML, REGION or FUNCTION_REGION env var)")
	}
	if cfg.Trigger.Enabled() && cfg.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required when the pubsub trigger is enabled (set via YAML or PROJECT_ID env var)")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.DispatchPath == "" {
		cfg.DispatchPath = DefaultDispatchPath
	}
	if !strings.HasPrefix(cfg.DispatchPath, "/") {
		return nil, fmt.Errorf("dispatch_path must start with '/': %q", cfg.DispatchPath)
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = DefaultMetricsPath
	}
	if cfg.Trigger.NumPipelineWorkers <= 0 {
		cfg.Trigger.NumPipelineWorkers = 1
	}

	logger.Debug("Configuration finalized and validated successfully")
	return cfg, nil
}

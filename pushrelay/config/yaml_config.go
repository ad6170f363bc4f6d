package config

import (
	"log/slog"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
)

type YamlCorsConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Role           string   `yaml:"role"`
}

type YamlTriggerConfig struct {
	TopicID                string `yaml:"topic_id"`
	SubscriptionID         string `yaml:"subscription_id"`
	SubscriptionDLQTopicID string `yaml:"subscription_dlq_topic_id"`
	NumPipelineWorkers     int    `yaml:"num_pipeline_workers"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID       string            `yaml:"project_id"`
	ListenAddr      string            `yaml:"listen_addr"`
	Region          string            `yaml:"region"`
	DispatchPath    string            `yaml:"dispatch_path"`
	MetricsPath     string            `yaml:"metrics_path"`
	CredentialsFile string            `yaml:"credentials_file"`
	DryRun          bool              `yaml:"dry_run"`
	IdentityURL     string            `yaml:"identity_url"`
	CorsConfig      YamlCorsConfig    `yaml:"cors"`
	TriggerConfig   YamlTriggerConfig `yaml:"trigger"`
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		ProjectID:       baseCfg.ProjectID,
		ListenAddr:      baseCfg.ListenAddr,
		Region:          baseCfg.Region,
		DispatchPath:    baseCfg.DispatchPath,
		MetricsPath:     baseCfg.MetricsPath,
		CredentialsFile: baseCfg.CredentialsFile,
		DryRun:          baseCfg.DryRun,
		IdentityURL:     baseCfg.IdentityURL,
		CorsConfig: middleware.CorsConfig{
			AllowedOrigins: baseCfg.CorsConfig.AllowedOrigins,
			Role:           middleware.CorsRole(baseCfg.CorsConfig.Role),
		},
		Trigger: TriggerConfig{
			TopicID:                baseCfg.TriggerConfig.TopicID,
			SubscriptionID:         baseCfg.TriggerConfig.SubscriptionID,
			SubscriptionDLQTopicID: baseCfg.TriggerConfig.SubscriptionDLQTopicID,
			NumPipelineWorkers:     baseCfg.TriggerConfig.NumPipelineWorkers,
		},
	}

	logger.Debug("YAML config mapping complete",
		"project_id", cfg.ProjectID,
		"listen_addr", cfg.ListenAddr,
		"region", cfg.Region,
		"dispatch_path", cfg.DispatchPath,
		"subscription_id", cfg.Trigger.SubscriptionID,
	)

	return cfg, nil
}

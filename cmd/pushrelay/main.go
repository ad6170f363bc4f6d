package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/tinywideclouds/go-push-relay/internal/metrics"
	"github.com/tinywideclouds/go-push-relay/internal/platform/fcm"
	"github.com/tinywideclouds/go-push-relay/pushrelay"
	"github.com/tinywideclouds/go-push-relay/pushrelay/config"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gopkg.in/yaml.v3"

	_ "github.com/joho/godotenv/autoload"
)

//go:embed local.yaml
var configFile []byte

func main() {
	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "DEBUG":
		logLevel = slog.LevelDebug
	case "info", "INFO":
		logLevel = slog.LevelInfo
	case "warn", "WARN":
		logLevel = slog.LevelWarn
	case "error", "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "go-push-relay")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Config Loading ---
	var yamlCfg config.YamlConfig
	if err := yaml.Unmarshal(configFile, &yamlCfg); err != nil {
		logger.Error("Failed to unmarshal embedded yaml config", "err", err)
		os.Exit(1)
	}
	baseCfg, _ := config.NewConfigFromYaml(&yamlCfg, logger)
	cfg, err := config.UpdateConfigWithEnvOverrides(baseCfg, logger)
	if err != nil {
		logger.Error("Config failed", "err", err)
		os.Exit(1)
	}
	logger.Info("Configuration loaded", "region", cfg.Region, "dry_run", cfg.DryRun)

	// --- Metrics ---
	meterProvider, err := metrics.NewMeterProvider()
	if err != nil {
		logger.Error("Failed to initialize meter provider", "err", err)
		os.Exit(1)
	}
	defer meterProvider.Shutdown(context.Background())

	collector, err := metrics.NewDispatchCollector(metrics.Meter(meterProvider), cfg.Region)
	if err != nil {
		logger.Error("Failed to create dispatch metrics", "err", err)
		os.Exit(1)
	}

	// --- Provider (FCM) ---
	sender, err := newFCMSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize FCM", "err", err)
		os.Exit(1)
	}

	opts := pushrelay.Options{
		MetricsHandler: promhttp.Handler(),
	}

	// --- Auth (optional) ---
	if cfg.IdentityURL != "" {
		jwksURL, err := middleware.DiscoverAndValidateJWTConfig(cfg.IdentityURL, middleware.RSA256, logger)
		if err != nil {
			logger.Error("Failed to discover JWT config", "identity_url", cfg.IdentityURL, "err", err)
			os.Exit(1)
		}
		authMiddleware, err := middleware.NewJWKSAuthMiddleware(jwksURL, logger)
		if err != nil {
			logger.Error("Failed to create auth middleware", "err", err)
			os.Exit(1)
		}
		opts.AuthMiddleware = authMiddleware
	} else {
		logger.Warn("No identity_url configured; dispatch route is public.")
	}

	// --- Pubsub Trigger (optional) ---
	if cfg.Trigger.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			logger.Error("PubSub client failed", "err", err)
			os.Exit(1)
		}
		defer psClient.Close()

		opts.Consumer, err = newTriggerConsumer(ctx, cfg, psClient, logger)
		if err != nil {
			logger.Error("PubSub consumer failed", "err", err)
			os.Exit(1)
		}
	}

	service, err := pushrelay.New(cfg, sender, collector, opts, logger)
	if err != nil {
		logger.Error("Service creation failed", "err", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("Starting service...", "addr", cfg.ListenAddr)
		if err := service.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Service shutdown with error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := service.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "err", err)
	}
}

// newFCMSender initializes the Firebase app once per process.
func newFCMSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*fcm.Sender, error) {
	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	fcmMessaging, err := fbApp.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create FCM messaging client: %w", err)
	}
	return fcm.NewSender(fcmMessaging, cfg.DryRun, logger), nil
}

func newTriggerConsumer(ctx context.Context, cfg *config.Config, psClient *pubsub.Client, logger *slog.Logger) (messagepipeline.MessageConsumer, error) {
	sub := convertPubsub(cfg.ProjectID, cfg.Trigger.SubscriptionID, "subscriptions")

	// Without a topic the subscription must already exist.
	if cfg.Trigger.TopicID != "" {
		if err := ensureSubscription(ctx, cfg, psClient, sub, logger); err != nil {
			return nil, err
		}
	}

	return messagepipeline.NewGooglePubsubConsumer(
		messagepipeline.NewGooglePubsubConsumerDefaults(sub), psClient, logger,
	)
}

func ensureSubscription(ctx context.Context, cfg *config.Config, psClient *pubsub.Client, sub string, logger *slog.Logger) error {
	subConfig := &pubsubpb.Subscription{
		Name:                  sub,
		Topic:                 convertPubsub(cfg.ProjectID, cfg.Trigger.TopicID, "topics"),
		AckDeadlineSeconds:    10,
		EnableMessageOrdering: false,
	}
	if cfg.Trigger.SubscriptionDLQTopicID != "" {
		subConfig.DeadLetterPolicy = &pubsubpb.DeadLetterPolicy{
			DeadLetterTopic:     convertPubsub(cfg.ProjectID, cfg.Trigger.SubscriptionDLQTopicID, "topics"),
			MaxDeliveryAttempts: 5,
		}
	}
	logger.Debug("Ensuring subscription exists", "sub", subConfig.Name, "topic", subConfig.Topic)
	_, err := psClient.SubscriptionAdminClient.CreateSubscription(ctx, subConfig)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			logger.Debug("Subscription already exists, skipping creation", "sub", subConfig.Name)
			return nil
		}
		logger.Error("Failed to create subscription", "sub", subConfig.Name, "err", err)
		return fmt.Errorf("could not create sub: %s", sub)
	}
	return nil
}

type PS string

func convertPubsub(project, id string, ps PS) string {
	return fmt.Sprintf("projects/%s/%s/%s", project, ps, id)
}

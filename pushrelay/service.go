package pushrelay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-microservice-base/pkg/microservice"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-push-relay/internal/api"
	"github.com/tinywideclouds/go-push-relay/internal/metrics"
	"github.com/tinywideclouds/go-push-relay/internal/pipeline"
	"github.com/tinywideclouds/go-push-relay/internal/relay"
	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
	"github.com/tinywideclouds/go-push-relay/pushrelay/config"
)

type Wrapper struct {
	*microservice.BaseServer
	// nil unless the Pub/Sub trigger is configured.
	pipelineService *messagepipeline.StreamingService[dispatch.NotificationRequest]
	logger          *slog.Logger
}

// Options carries the optional collaborators of New.
type Options struct {
	// Consumer feeds the Pub/Sub trigger. Required when cfg.Trigger is enabled.
	Consumer messagepipeline.MessageConsumer
	// AuthMiddleware protects the dispatch route. Nil leaves it public.
	AuthMiddleware func(http.Handler) http.Handler
	// MetricsHandler is served at cfg.MetricsPath when set.
	MetricsHandler http.Handler
}

// New assembles the service.
func New(
	cfg *config.Config,
	sender dispatch.Sender,
	collector *metrics.DispatchCollector,
	opts Options,
	logger *slog.Logger,
) (*Wrapper, error) {

	// 1. Base Server
	baseServer := microservice.NewBaseServer(logger, cfg.ListenAddr)

	// 2. Relay (shared by every trigger)
	r := relay.New(sender, collector, logger)

	// 3. Pipeline (optional)
	var streamingService *messagepipeline.StreamingService[dispatch.NotificationRequest]
	if cfg.Trigger.Enabled() {
		if opts.Consumer == nil {
			return nil, errors.New("pubsub trigger is enabled but no consumer was provided")
		}
		var err error
		streamingService, err = messagepipeline.NewStreamingService(
			messagepipeline.StreamingServiceConfig{NumWorkers: cfg.Trigger.NumPipelineWorkers},
			opts.Consumer,
			pipeline.NotificationRequestTransformer,
			pipeline.NewProcessor(r, logger),
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create streaming service: %w", err)
		}
	}

	// 4. API
	dispatchAPI := api.NewDispatchAPI(r, logger)

	// Register Routes
	mux := baseServer.Mux()
	corsMiddleware := middleware.NewCorsMiddleware(cfg.CorsConfig, logger)

	authMiddleware := opts.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = func(h http.Handler) http.Handler { return h }
	}

	mux.Handle("POST "+cfg.DispatchPath, corsMiddleware(authMiddleware(http.HandlerFunc(dispatchAPI.SendNotification))))

	// CORS preflight
	mux.Handle("OPTIONS "+cfg.DispatchPath, corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	if opts.MetricsHandler != nil {
		mux.Handle("GET "+cfg.MetricsPath, opts.MetricsHandler)
	}

	logger.Info("Routes registered",
		"dispatch_path", cfg.DispatchPath,
		"region", cfg.Region,
		"auth", opts.AuthMiddleware != nil,
		"pubsub_trigger", streamingService != nil,
	)

	return &Wrapper{
		BaseServer:      baseServer,
		pipelineService: streamingService,
		logger:          logger,
	}, nil
}

func (w *Wrapper) Start(ctx context.Context) error {
	if w.pipelineService != nil {
		w.logger.Info("Pubsub trigger pipeline starting...")
		if err := w.pipelineService.Start(ctx); err != nil {
			return fmt.Errorf("failed to start processing service: %w", err)
		}
	}
	w.SetReady(true)
	w.logger.Info("Service is now ready.")
	return w.BaseServer.Start()
}

func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down service components...")
	var finalErr error
	if w.pipelineService != nil {
		if err := w.pipelineService.Stop(ctx); err != nil {
			w.logger.Error("Processing pipeline shutdown failed.", "err", err)
			finalErr = err
		}
	}
	if err := w.BaseServer.Shutdown(ctx); err != nil {
		w.logger.Error("HTTP server shutdown failed.", "err", err)
		finalErr = err
	}
	w.logger.Info("Service shutdown complete.")
	return finalErr
}

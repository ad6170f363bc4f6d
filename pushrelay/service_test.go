package pushrelay_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/tinywideclouds/go-push-relay/internal/metrics"
	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
	"github.com/tinywideclouds/go-push-relay/pushrelay"
	"github.com/tinywideclouds/go-push-relay/pushrelay/config"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, req dispatch.NotificationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, sender dispatch.Sender, opts pushrelay.Options) *pushrelay.Wrapper {
	t.Helper()
	collector, err := metrics.NewDispatchCollector(noop.NewMeterProvider().Meter("test"), "asia-northeast1")
	require.NoError(t, err)

	cfg := &config.Config{
		ListenAddr:   ":0",
		Region:       "asia-northeast1",
		DispatchPath: config.DefaultDispatchPath,
		MetricsPath:  config.DefaultMetricsPath,
	}
	svc, err := pushrelay.New(cfg, sender, collector, opts, newTestLogger())
	require.NoError(t, err)
	return svc
}

func serve(svc *pushrelay.Wrapper, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	svc.Mux().ServeHTTP(w, req)
	return w
}

func TestService_DispatchRoute(t *testing.T) {
	t.Run("Scenario - token provided, provider accepts", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("Send", mock.Anything, dispatch.NotificationRequest{DeviceToken: "tok123", Title: "Hi", Body: "There"}).
			Return("msg-1", nil).Once()
		svc := newTestService(t, sender, pushrelay.Options{})

		w := serve(svc, http.MethodPost, "/testPushNotification", `{"FCM_Token":"tok123","title":"Hi","body":"There"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Notification sent successfully!", w.Body.String())
		sender.AssertExpectations(t)
	})

	t.Run("Scenario - token missing", func(t *testing.T) {
		sender := new(mockSender)
		svc := newTestService(t, sender, pushrelay.Options{})

		w := serve(svc, http.MethodPost, "/testPushNotification", `{"title":"Hi","body":"There"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required fields: FCM_Token, title, body", w.Body.String())
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Scenario - provider rejects", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("Send", mock.Anything, mock.Anything).
			Return("", dispatch.NewProviderError("invalid-argument", errors.New("invalid-token"))).Once()
		svc := newTestService(t, sender, pushrelay.Options{})

		w := serve(svc, http.MethodPost, "/testPushNotification", `{"FCM_Token":"tok123","title":"Hi","body":"There"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Notification failed: invalid-token", w.Body.String())
	})

	t.Run("Service keeps serving after a failure", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("Send", mock.Anything, mock.Anything).Return("", errors.New("boom")).Once()
		sender.On("Send", mock.Anything, mock.Anything).Return("msg-2", nil).Once()
		svc := newTestService(t, sender, pushrelay.Options{})

		body := `{"FCM_Token":"tok123","title":"Hi","body":"There"}`
		assert.Equal(t, http.StatusInternalServerError, serve(svc, http.MethodPost, "/testPushNotification", body).Code)
		assert.Equal(t, http.StatusOK, serve(svc, http.MethodPost, "/testPushNotification", body).Code)
	})

	t.Run("Auth middleware guards the route", func(t *testing.T) {
		sender := new(mockSender)
		deny := func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})
		}
		svc := newTestService(t, sender, pushrelay.Options{AuthMiddleware: deny})

		w := serve(svc, http.MethodPost, "/testPushNotification", `{"FCM_Token":"tok123","title":"Hi","body":"There"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Metrics handler is mounted", func(t *testing.T) {
		metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "push_relay_dispatches_total 0")
		})
		svc := newTestService(t, new(mockSender), pushrelay.Options{MetricsHandler: metricsHandler})

		w := serve(svc, http.MethodGet, config.DefaultMetricsPath, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "push_relay_dispatches_total")
	})
}

func TestService_TriggerRequiresConsumer(t *testing.T) {
	collector, err := metrics.NewDispatchCollector(noop.NewMeterProvider().Meter("test"), "asia-northeast1")
	require.NoError(t, err)

	cfg := &config.Config{
		ListenAddr:   ":0",
		ProjectID:    "p",
		Region:       "asia-northeast1",
		DispatchPath: config.DefaultDispatchPath,
		MetricsPath:  config.DefaultMetricsPath,
		Trigger:      config.TriggerConfig{SubscriptionID: "sub", NumPipelineWorkers: 1},
	}

	_, err = pushrelay.New(cfg, new(mockSender), collector, pushrelay.Options{}, newTestLogger())
	assert.Error(t, err)
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/tinywideclouds/go-push-relay/pkg/dispatch"
)

const (
	SuccessMessage      = "Notification sent successfully!"
	FailurePrefix       = "Notification failed: "
	maxRequestBodyBytes = 1 << 20
)

type DispatchAPI struct {
	Relay  dispatch.Relayer
	Logger *slog.Logger
}

func NewDispatchAPI(relay dispatch.Relayer, logger *slog.Logger) *DispatchAPI {
	return &DispatchAPI{
		Relay:  relay,
		Logger: logger.With("component", "DispatchAPI"),
	}
}

// SendNotification relays one push notification and answers in plain text:
// 200 on success, 400 when a required field is missing, 500 when the
// provider fails.
func (api *DispatchAPI) SendNotification(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		// An unreadable body carries no fields; validation reports it.
		api.Logger.Warn("SendNotification: body decode failed", "err", err)
	}

	_, err = api.Relay.Dispatch(r.Context(), dispatch.SourceHTTP, req)
	if err == nil {
		writeText(w, http.StatusOK, SuccessMessage)
		return
	}

	var vErr *dispatch.ValidationError
	if errors.As(err, &vErr) {
		writeText(w, http.StatusBadRequest, vErr.Message)
		return
	}

	var pErr *dispatch.ProviderError
	if errors.As(err, &pErr) {
		writeText(w, http.StatusInternalServerError, FailurePrefix+pErr.Message)
		return
	}

	writeText(w, http.StatusInternalServerError, FailurePrefix+dispatch.NewProviderError("unknown", err).Message)
}

// decodeRequest reads JSON bodies, and form-encoded bodies with the same keys.
func decodeRequest(w http.ResponseWriter, r *http.Request) (dispatch.NotificationRequest, error) {
	var req dispatch.NotificationRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxRequestBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return req, err
		}
		req.DeviceToken = r.PostFormValue("FCM_Token")
		req.Title = r.PostFormValue("title")
		req.Body = r.PostFormValue("body")
		return req, nil
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return dispatch.NotificationRequest{}, err
		}
		return req, nil
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

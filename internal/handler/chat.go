package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/w-h-a/rio/internal/service/chat"
	"github.com/w-h-a/rio/message"
	"github.com/w-h-a/rio/metrics"
	"github.com/w-h-a/rio/stream"
)

const (
	chatFailure   = "Failed to process chat request"
	streamFailure = "An error occurred."
)

type Responder interface {
	Respond(ctx context.Context, msgs []message.Message, sink chat.Sink) error
}

type Normalizer interface {
	Normalize(ctx context.Context, msgs []message.Message) []message.Message
}

type chatRequest struct {
	Messages []message.Message `json:"messages"`
}

type chatHandler struct {
	responder  Responder
	normalizer Normalizer
	timeout    time.Duration
	metrics    *metrics.Metrics
}

func (h *chatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		slog.WarnContext(r.Context(), "invalid chat request", "error", err)
		h.metrics.Chat("bad_request")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	msgs := req.Messages
	if h.normalizer != nil {
		msgs = h.normalizer.Normalize(ctx, msgs)
	}

	writer := stream.NewWriter(w)

	if err := h.responder.Respond(ctx, msgs, writer); err != nil {
		slog.ErrorContext(ctx, "chat request failed", "error", err, "streaming", writer.Started())

		if !writer.Started() {
			h.metrics.Chat("setup_error")
			writeError(w, http.StatusInternalServerError, chatFailure)
			return
		}

		h.metrics.Chat("stream_error")
		if err := writer.Error(streamFailure); err != nil {
			slog.ErrorContext(ctx, "failed to write error frame", "error", err)
		}
		return
	}

	h.metrics.Chat("ok")
}

func NewChatHandler(responder Responder, normalizer Normalizer, timeout time.Duration, m *metrics.Metrics) *chatHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &chatHandler{
		responder:  responder,
		normalizer: normalizer,
		timeout:    timeout,
		metrics:    m,
	}
}

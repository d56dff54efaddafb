package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/w-h-a/rio/warehouse"
)

type healthHandler struct {
	warehouse warehouse.Warehouse
}

func (h *healthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.warehouse == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "database": "not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]any{
		"status": "ok",
		"pool":   h.warehouse.Stats(),
	}

	if err := h.warehouse.Ping(ctx); err != nil {
		body["status"] = "degraded"
		body["database"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	body["database"] = "ok"
	writeJSON(w, http.StatusOK, body)
}

func NewHealthHandler(wh warehouse.Warehouse) *healthHandler {
	return &healthHandler{
		warehouse: wh,
	}
}

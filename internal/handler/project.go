package handler

import (
	"net/http"

	"github.com/w-h-a/rio/message"
	"github.com/w-h-a/rio/projector"
)

type projectRequest struct {
	Messages []message.Message `json:"messages"`
}

type projectedMessage struct {
	Id          string                 `json:"id,omitempty"`
	Role        string                 `json:"role"`
	Text        string                 `json:"text"`
	Visible     bool                   `json:"visible"`
	Projections []projector.Projection `json:"projections"`
	Status      *projector.Status      `json:"status,omitempty"`
}

type projectHandler struct{}

// Handle reports, per message, what a client should draw and which status
// indicator stands in for messages that have nothing to show yet.
func (h *projectHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out := make([]projectedMessage, 0, len(req.Messages))

	for _, msg := range req.Messages {
		pm := projectedMessage{
			Id:          msg.Id,
			Role:        msg.Role,
			Text:        msg.Text(),
			Visible:     projector.HasContent(msg),
			Projections: projector.Projections(msg),
		}

		if pm.Projections == nil {
			pm.Projections = []projector.Projection{}
		}

		if !pm.Visible && msg.Role == message.RoleAssistant {
			status := projector.StatusOf(msg)
			pm.Status = &status
		}

		out = append(out, pm)
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

func NewProjectHandler() *projectHandler {
	return &projectHandler{}
}

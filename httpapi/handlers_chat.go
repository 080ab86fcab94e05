package httpapi

import (
	"net/http"
	"strings"

	"github.com/tanpawarit/Chative-Personal-Assistant/agent/history"
	logx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/logger"
)

type chatRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response   string `json:"response"`
	Capability string `json:"capability"`
	RequestID  string `json:"request_id,omitempty"`
}

func (h *handlers) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.services.Assistant == nil {
		writeMappedError(w, errNotConfigured)
		return
	}

	var req chatRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeMappedError(w, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeMappedError(w, invalidRequestError("prompt is required"))
		return
	}

	reply, err := h.services.Assistant.HandleMessage(r.Context(), req.Prompt)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	if h.services.History != nil {
		entry := &history.Entry{
			SessionID:  req.SessionID,
			Message:    req.Prompt,
			Response:   reply.Text,
			Capability: reply.Capability.String(),
		}
		if err := h.services.History.Save(r.Context(), entry); err != nil {
			logx.Warn().
				Err(err).
				Str("request_id", reply.RequestID).
				Msg("conversation history write failed")
		}
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:   reply.Text,
		Capability: reply.Capability.String(),
		RequestID:  reply.RequestID,
	})
}

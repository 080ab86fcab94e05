package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tanpawarit/Chative-Personal-Assistant/agent/history"
)

type conversationsResponse struct {
	Conversations []history.Entry `json:"conversations"`
}

func (h *handlers) handleConversations(w http.ResponseWriter, r *http.Request) {
	if h.services.History == nil {
		writeMappedError(w, history.ErrDisabled)
		return
	}

	query := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeMappedError(w, invalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.services.History.List(r.Context(), query.Get("session_id"), limit)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, conversationsResponse{Conversations: entries})
}

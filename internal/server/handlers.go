package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"tagdesk/internal/catalog"
	stderrors "tagdesk/internal/common/errors"
	"tagdesk/internal/common/logger"
	"tagdesk/internal/resolver"
	"tagdesk/internal/session"
	"tagdesk/internal/ticket"
)

// Handlers implements the API endpoints over the session manager and the
// catalog holder.
type Handlers struct {
	manager  *session.Manager
	holder   *catalog.Holder
	resolver *resolver.Resolver
	logger   logger.Logger
}

func NewHandlers(manager *session.Manager, holder *catalog.Holder, res *resolver.Resolver, log logger.Logger) *Handlers {
	return &Handlers{
		manager:  manager,
		holder:   holder,
		resolver: res,
		logger:   log.WithFields(map[string]interface{}{"component": "handlers"}),
	}
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Chat processes one conversation turn.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	result, err := h.manager.ProcessTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.manager.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess)
}

func (h *Handlers) ResetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.manager.Reset(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess)
}

func (h *Handlers) CreateTicket(w http.ResponseWriter, r *http.Request) {
	t, err := h.manager.MaterializeTicket(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.manager.ListTickets(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if tickets == nil {
		tickets = []*ticket.Ticket{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"tickets": tickets})
}

func (h *Handlers) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	cat := h.holder.Current()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"platforms": cat.All(false),
	})
}

// UpdatePlatforms hot-swaps the catalog. The payload is validated before the
// swap; an invalid payload leaves the current catalog serving.
func (h *Handlers) UpdatePlatforms(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	defs, err := catalog.ParseDefinitions(body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	cat := catalog.Build(defs, h.logger)
	h.holder.Replace(cat)

	h.logger.Info("platform catalog replaced", map[string]interface{}{
		"entities": cat.Len(),
	})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"platforms": cat.All(false),
	})
}

// SuggestPlatforms ranks catalog candidates for a raw query string.
func (h *Handlers) SuggestPlatforms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}
	suggestions := h.resolver.Suggest(q, resolver.DefaultSuggestLimit)
	if len(suggestions) == 0 {
		h.writeError(w, stderrors.NewAmbiguousPlatformError(q, nil))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":       q,
		"suggestions": suggestions,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response encode failed", map[string]interface{}{"error": err.Error()})
	}
}

// writeError maps StandardErrors to their HTTP status and a structured body;
// anything else is an opaque 500.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var std *stderrors.StandardError
	if errors.As(err, &std) {
		h.writeJSON(w, std.HTTPStatus(), map[string]interface{}{"error": std})
		return
	}
	h.logger.Error("unhandled error", map[string]interface{}{"error": err.Error()})
	http.Error(w, "internal error", http.StatusInternalServerError)
}

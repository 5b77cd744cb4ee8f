package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"tagdesk/internal/audit"
	stderrors "tagdesk/internal/common/errors"
	"tagdesk/internal/common/logger"
	"tagdesk/internal/common/metrics"
	"tagdesk/internal/common/observability"
	"tagdesk/internal/extractor"
	"tagdesk/internal/models"
	"tagdesk/internal/notify"
	"tagdesk/internal/resolver"
	"tagdesk/internal/responder"
	"tagdesk/internal/ticket"

	"github.com/google/uuid"
)

// defaultInstructions steers the dialogue service toward collecting the four
// ticket fields and restating them with a confirmation summary, which is what
// the extraction gate keys on.
const defaultInstructions = `You are an intake assistant for an ad-operations tag desk.
Collect four fields from the user: client name, ad platform, tag type (Tracker or Video Wrapper), and priority (High, Medium, or Low).
Ask for one missing field at a time. When the user supplies or corrects a field, restate it.
Once you have values, present a confirmation summary listing each field as "Client:", "Platform:", "Tag Type:", "Priority:" and ask the user to confirm before the ticket is created.`

// TurnResult is what one processed turn returns to the API layer.
type TurnResult struct {
	SessionID           string                `json:"sessionId"`
	AssistantText       string                `json:"assistantText"`
	Slots               models.SlotRecord     `json:"slots"`
	Complete            bool                  `json:"complete"`
	MissingFields       []string              `json:"missingFields,omitempty"`
	SuggestedActions    []string              `json:"suggestedActions"`
	PlatformSuggestions []resolver.Suggestion `json:"platformSuggestions,omitempty"`
}

// Manager serializes turns per session and owns the turn pipeline:
// respond, then append, then extract, then merge. The responder runs before
// any mutation so a failed turn leaves the session exactly as it was.
type Manager struct {
	store        Store
	responder    responder.Responder
	extractor    *extractor.Extractor
	resolver     *resolver.Resolver
	tickets      ticket.Store
	notifier     notify.Notifier
	sink         audit.Sink
	obs          *observability.Observability
	logger       logger.Logger
	instructions string
	maxHistory   int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type ManagerOptions struct {
	Instructions    string
	MaxHistoryTurns int
}

func NewManager(
	store Store,
	rsp responder.Responder,
	ext *extractor.Extractor,
	res *resolver.Resolver,
	tickets ticket.Store,
	notifier notify.Notifier,
	sink audit.Sink,
	obs *observability.Observability,
	log logger.Logger,
	opts ManagerOptions,
) *Manager {
	instructions := opts.Instructions
	if instructions == "" {
		instructions = defaultInstructions
	}
	maxHistory := opts.MaxHistoryTurns
	if maxHistory <= 0 {
		maxHistory = 40
	}
	return &Manager{
		store:        store,
		responder:    rsp,
		extractor:    ext,
		resolver:     res,
		tickets:      tickets,
		notifier:     notifier,
		sink:         sink,
		obs:          obs,
		logger:       log.WithFields(map[string]interface{}{"component": "session-manager"}),
		instructions: instructions,
		maxHistory:   maxHistory,
		locks:        make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing turns for one session. Distinct
// sessions proceed concurrently.
func (m *Manager) sessionLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// ProcessTurn runs one user message through the pipeline. An empty sessionID
// starts a new session. The turn is all-or-nothing: on responder failure the
// session state (history and slots) is unchanged and the same message can be
// resent.
func (m *Manager) ProcessTurn(ctx context.Context, sessionID, userText string) (*TurnResult, error) {
	start := time.Now()

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		now := time.Now().UTC()
		sess = &models.ConversationSession{ID: sessionID, CreatedAt: now, UpdatedAt: now}
	}

	assistantText, err := m.responder.Generate(ctx, &responder.Request{
		Instructions: m.instructions,
		History:      m.replayWindow(sess.Messages),
		UserText:     userText,
	})
	if err != nil {
		stdErr := m.mapResponderError(err)
		metrics.ResponderFailures.WithLabelValues(string(stdErr.Code)).Inc()
		metrics.TurnsProcessed.WithLabelValues("failed").Inc()
		m.obs.RecordTurnProcessed(ctx, "failed")
		m.logger.Error("turn failed, session unchanged", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return nil, stdErr
	}

	// The responder succeeded; only now does the session mutate.
	now := time.Now().UTC()
	sess.Append(models.RoleUser, userText, now)
	sess.Append(models.RoleAssistant, assistantText, now)

	extracted := m.extractor.Extract(assistantText, userText)
	sess.Slots.Merge(extracted)

	if err := m.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	m.sink.Emit(ctx, audit.NewEvent(audit.EventChatMessage, sessionID, map[string]interface{}{
		"text": userText,
	}))
	m.sink.Emit(ctx, audit.NewEvent(audit.EventAIResponse, sessionID, map[string]interface{}{
		"text":      assistantText,
		"extracted": extracted,
		"slots":     sess.Slots,
	}))

	result := &TurnResult{
		SessionID:        sessionID,
		AssistantText:    assistantText,
		Slots:            sess.Slots,
		Complete:         sess.Complete(),
		MissingFields:    sess.Slots.MissingFields(),
		SuggestedActions: []string{"reset"},
	}
	if result.Complete {
		result.SuggestedActions = append(result.SuggestedActions, "create_ticket")
	}

	// A raw platform mention that failed canonicalization gets ranked
	// suggestions so the dialogue can disambiguate next turn.
	if sess.Slots.PlatformID == nil && sess.Slots.PlatformRaw != "" {
		result.PlatformSuggestions = m.resolver.Suggest(sess.Slots.PlatformRaw, resolver.DefaultSuggestLimit)
	}

	metrics.TurnsProcessed.WithLabelValues("ok").Inc()
	metrics.TurnDuration.Observe(time.Since(start).Seconds())
	m.obs.RecordTurnProcessed(ctx, "ok")
	m.obs.RecordTurnDuration(ctx, time.Since(start), "ok")

	return result, nil
}

// replayWindow bounds the history replayed into the prompt to the most recent
// turns. Slot state is unaffected; only prompt size is.
func (m *Manager) replayWindow(messages []models.Message) []models.Message {
	if len(messages) <= m.maxHistory {
		return messages
	}
	return messages[len(messages)-m.maxHistory:]
}

func (m *Manager) mapResponderError(err error) *stderrors.StandardError {
	if errors.Is(err, responder.ErrResponderTimeout) {
		return stderrors.NewUpstreamTimeoutError(err.Error())
	}
	return stderrors.NewUpstreamUnavailableError(err)
}

// GetSession returns the current session state.
func (m *Manager) GetSession(ctx context.Context, sessionID string) (*models.ConversationSession, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, stderrors.NewSessionNotFoundError(sessionID)
	}
	return sess, nil
}

// Reset clears every confirmed slot but keeps the conversation history, so
// the user can start the intake over without losing context.
func (m *Manager) Reset(ctx context.Context, sessionID string) (*models.ConversationSession, error) {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, stderrors.NewSessionNotFoundError(sessionID)
	}

	sess.Slots.Reset()
	sess.UpdatedAt = time.Now().UTC()
	if err := m.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	m.logger.Info("session slots reset", map[string]interface{}{"sessionId": sessionID})
	return sess, nil
}

// MaterializeTicket converts a complete session into a persisted ticket.
// Incomplete sessions are rejected with the list of missing fields.
func (m *Manager) MaterializeTicket(ctx context.Context, sessionID string) (*ticket.Ticket, error) {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, stderrors.NewSessionNotFoundError(sessionID)
	}

	if !sess.Complete() {
		return nil, stderrors.NewIncompleteTicketError(sess.Slots.MissingFields())
	}

	t := &ticket.Ticket{
		ID:           uuid.New().String(),
		SessionID:    sessionID,
		Client:       *sess.Slots.Client,
		PlatformID:   *sess.Slots.PlatformID,
		PlatformName: *sess.Slots.PlatformName,
		TagType:      *sess.Slots.TagType,
		Priority:     *sess.Slots.Priority,
		CreatedAt:    time.Now().UTC(),
	}

	if err := m.tickets.Insert(ctx, t); err != nil {
		return nil, stderrors.NewTicketInsertFailedError(err)
	}

	metrics.TicketsCreated.Inc()
	m.sink.Emit(ctx, audit.NewEvent(audit.EventTicketCreated, sessionID, map[string]interface{}{
		"ticketId": t.ID,
		"client":   t.Client,
		"platform": t.PlatformID,
		"tagType":  string(t.TagType),
		"priority": string(t.Priority),
	}))

	// Notification delivery never blocks or fails the create path.
	go func(t ticket.Ticket) {
		nctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := m.notifier.TicketCreated(nctx, &t); err != nil {
			stdErr := stderrors.NewNotificationSendFailedError(err)
			m.logger.Warn("ticket notification failed", map[string]interface{}{
				"ticketId": t.ID,
				"code":     string(stdErr.Code),
				"error":    err.Error(),
			})
		}
	}(*t)

	m.logger.Info("ticket created", map[string]interface{}{
		"ticketId":  t.ID,
		"sessionId": sessionID,
	})
	return t, nil
}

// ListTickets returns the tickets already materialized from a session.
func (m *Manager) ListTickets(ctx context.Context, sessionID string) ([]*ticket.Ticket, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, stderrors.NewSessionNotFoundError(sessionID)
	}
	return m.tickets.ListBySession(ctx, sessionID)
}

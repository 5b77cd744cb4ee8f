package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tagdesk/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElasticsearchSink_Emit(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result":"created"}`))
	}))
	defer srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	sink := NewElasticsearchSink(client, "intake-events", logger.NewNoOpLogger())
	sink.Emit(context.Background(), NewEvent(EventTicketCreated, "session-001", map[string]interface{}{
		"ticketId": "ticket-001",
	}))

	assert.Equal(t, "/intake-events/_doc", gotPath)
	require.NotNil(t, gotBody)
	assert.Equal(t, string(EventTicketCreated), gotBody["type"])
	assert.Equal(t, "session-001", gotBody["sessionId"])
}

func TestElasticsearchSink_FailureDoesNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	sink := NewElasticsearchSink(client, "intake-events", logger.NewNoOpLogger())

	// Emit swallows sink failures; nothing to assert beyond not panicking.
	sink.Emit(context.Background(), NewEvent(EventChatMessage, "session-001", nil))
}

func TestNopSink(t *testing.T) {
	NopSink{}.Emit(context.Background(), NewEvent(EventAIResponse, "s", nil))
}

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"tagdesk/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchSink indexes audit events into a single events index.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchSink(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchSink {
	return &ElasticsearchSink{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "audit", "index": index}),
	}
}

func (s *ElasticsearchSink) Emit(ctx context.Context, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("audit event marshal failed", map[string]interface{}{
			"type":  string(event.Type),
			"error": err.Error(),
		})
		return
	}

	// Bound the write so a slow sink cannot hold a turn's goroutine forever.
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		s.logger.Warn("audit event index failed", map[string]interface{}{
			"type":      string(event.Type),
			"sessionId": event.SessionID,
			"error":     err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		s.logger.Warn("audit event rejected", map[string]interface{}{
			"type":      string(event.Type),
			"sessionId": event.SessionID,
			"status":    res.Status(),
		})
	}
}

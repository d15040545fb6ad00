package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	MessagesEmbedded  int            `json:"messages_embedded"`
	MessagesExtracted int            `json:"messages_extracted"`
	ChunksRemoved     int            `json:"chunks_removed"`
	FilesInspected    int            `json:"files_inspected"`
	FilesVerified     int            `json:"files_verified"`
	BytesEmbedded     int64          `json:"bytes_embedded"`
	OpsByType         map[string]int `json:"ops_by_type"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		OpsByType: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		m.OpsByType[event.Op]++

		switch event.Op {
		case OpEncoded:
			m.MessagesEmbedded++
			// JSON numbers decode as float64.
			if bytes, ok := event.Data["bytes"].(float64); ok {
				m.BytesEmbedded += int64(bytes)
			}
		case OpDecoded:
			m.MessagesExtracted++
		case OpChunkRemoved:
			m.ChunksRemoved++
		case OpInspected:
			m.FilesInspected++
		case OpVerified:
			m.FilesVerified++
		}
	}

	return m, nil
}

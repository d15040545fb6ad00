package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pngstash/pngstash/internal/observability"
)

func TestParseSinceDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{"empty defaults to 7d", "", false, ""},
		{"whitespace defaults to 7d", "  ", false, ""},
		{"valid 7d", "7d", false, ""},
		{"valid 30d", "30d", false, ""},
		{"valid 24h", "24h", false, ""},
		{"valid 1h", "1h", false, ""},
		{"invalid suffix", "abc", true, "unsupported duration format"},
		{"invalid day number", "xd", true, "invalid day duration"},
		{"invalid hour number", "yh", true, "invalid hour duration"},
		{"negative day is still valid", "-5d", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSinceDuration(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

// --- historyCmd tests ---

// resetHistoryFlags restores the history flag variables when the test ends.
func resetHistoryFlags(t *testing.T) {
	t.Helper()
	origSince, origOp := historySince, historyOp
	origJSON, origSummary := historyJSON, historySummary
	t.Cleanup(func() {
		historySince, historyOp = origSince, origOp
		historyJSON, historySummary = origJSON, origSummary
	})
}

func TestHistoryCmd_Empty(t *testing.T) {
	setupTestServices(t)
	resetHistoryFlags(t)

	out, err := runCommand(t, historyCmd, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No operations recorded.") {
		t.Errorf("expected empty message, got %q", out)
	}
}

func TestHistoryCmd_ListsEvents(t *testing.T) {
	setupTestServices(t)
	resetHistoryFlags(t)

	observability.Record(EventLog, observability.OpEncoded, "a.png", "message embedded",
		map[string]any{"chunk_type": "stSh", "bytes": 24})
	observability.Record(EventLog, observability.OpDecoded, "b.png", "message extracted",
		map[string]any{"chunk_type": "stSh"})

	out, err := runCommand(t, historyCmd, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "png.encoded") || !strings.Contains(out, "a.png") {
		t.Errorf("expected encode event line, got %q", out)
	}
	if !strings.Contains(out, "(24 bytes)") {
		t.Errorf("expected byte count on encode line, got %q", out)
	}
	if !strings.Contains(out, "png.decoded") || !strings.Contains(out, "b.png") {
		t.Errorf("expected decode event line, got %q", out)
	}
}

func TestHistoryCmd_OpFilter(t *testing.T) {
	setupTestServices(t)
	resetHistoryFlags(t)

	observability.Record(EventLog, observability.OpEncoded, "a.png", "message embedded", nil)
	observability.Record(EventLog, observability.OpDecoded, "b.png", "message extracted", nil)

	historyOp = observability.OpEncoded

	out, err := runCommand(t, historyCmd, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "png.encoded") {
		t.Errorf("expected encode event, got %q", out)
	}
	if strings.Contains(out, "png.decoded") {
		t.Errorf("decode event should be filtered out: %q", out)
	}
}

func TestHistoryCmd_JSON(t *testing.T) {
	setupTestServices(t)
	resetHistoryFlags(t)

	observability.Record(EventLog, observability.OpEncoded, "a.png", "message embedded", nil)
	observability.Record(EventLog, observability.OpVerified, "a.png", "file verified", nil)

	historyJSON = true

	out, err := runCommand(t, historyCmd, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var events []observability.Event
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Op != observability.OpEncoded {
		t.Errorf("expected first event %s, got %s", observability.OpEncoded, events[0].Op)
	}
}

func TestHistoryCmd_Summary(t *testing.T) {
	setupTestServices(t)
	resetHistoryFlags(t)

	observability.Record(EventLog, observability.OpEncoded, "a.png", "message embedded",
		map[string]any{"bytes": 24})
	observability.Record(EventLog, observability.OpEncoded, "b.png", "message embedded",
		map[string]any{"bytes": 6})
	observability.Record(EventLog, observability.OpDecoded, "a.png", "message extracted", nil)

	historySummary = true

	out, err := runCommand(t, historyCmd, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Events recorded:",
		"Messages embedded:",
		"Bytes embedded:",
		"Operations by type:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "30") {
		t.Errorf("expected 30 bytes embedded in summary:\n%s", out)
	}
}

func TestHistoryCmd_SummaryJSON(t *testing.T) {
	setupTestServices(t)
	resetHistoryFlags(t)

	observability.Record(EventLog, observability.OpEncoded, "a.png", "message embedded",
		map[string]any{"bytes": 24})

	historySummary = true
	historyJSON = true

	out, err := runCommand(t, historyCmd, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var metrics observability.Metrics
	if err := json.Unmarshal([]byte(out), &metrics); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if metrics.MessagesEmbedded != 1 {
		t.Errorf("expected 1 message embedded, got %d", metrics.MessagesEmbedded)
	}
	if metrics.BytesEmbedded != 24 {
		t.Errorf("expected 24 bytes embedded, got %d", metrics.BytesEmbedded)
	}
}

func TestHistoryCmd_NilEventLog(t *testing.T) {
	setupTestServices(t)
	resetHistoryFlags(t)
	EventLog = nil

	err := historyCmd.RunE(historyCmd, []string{})
	if err == nil {
		t.Fatal("expected error when EventLog is nil")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHistoryCmd_NilMetricsCalc(t *testing.T) {
	setupTestServices(t)
	resetHistoryFlags(t)
	MetricsCalc = nil
	historySummary = true

	err := historyCmd.RunE(historyCmd, []string{})
	if err == nil {
		t.Fatal("expected error when MetricsCalc is nil")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHistoryCmd_InvalidSince(t *testing.T) {
	setupTestServices(t)
	resetHistoryFlags(t)
	historySince = "yesterday"

	err := historyCmd.RunE(historyCmd, []string{})
	if err == nil {
		t.Fatal("expected error for invalid --since")
	}
	if !strings.Contains(err.Error(), "parsing --since") {
		t.Errorf("unexpected error: %v", err)
	}
}

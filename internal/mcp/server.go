// Package mcp provides an MCP (Model Context Protocol) server that exposes
// pngstash functionality as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pngstash/pngstash/internal/core"
	"github.com/pngstash/pngstash/internal/observability"
	"github.com/pngstash/pngstash/internal/storage"
)

// Services bundles the pngstash services the MCP tools operate on.
// EventLog and MetricsCalc may be nil if observability is disabled.
type Services struct {
	Codec       core.MessageCodec
	Inspector   core.Inspector
	Verifier    core.Verifier
	Store       storage.FileStore
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// Server wraps pngstash services and exposes them as MCP tools.
type Server struct {
	server *gomcp.Server
	svc    Services
}

// NewServer creates a new MCP server with the given service dependencies.
func NewServer(svc Services, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{svc: svc}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "pngstash", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on the given transport, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type inspectInput struct {
	Path string `json:"path" jsonschema:"required,path to the PNG file to inspect"`
}

type chunkInfoOutput struct {
	Index         int    `json:"index"`
	Type          string `json:"type"`
	Length        int    `json:"length"`
	CRC           uint32 `json:"crc"`
	Critical      bool   `json:"critical"`
	Public        bool   `json:"public"`
	ReservedValid bool   `json:"reserved_valid"`
	SafeToCopy    bool   `json:"safe_to_copy"`
	Preview       string `json:"preview"`
}

type inspectOutput struct {
	Path       string            `json:"path"`
	ChunkCount int               `json:"chunk_count"`
	DataBytes  int64             `json:"data_bytes"`
	HasIHDR    bool              `json:"has_ihdr"`
	HasIEND    bool              `json:"has_iend"`
	Chunks     []chunkInfoOutput `json:"chunks"`
}

type decodeInput struct {
	Path      string `json:"path" jsonschema:"required,path to the PNG file to read"`
	ChunkType string `json:"chunk_type" jsonschema:"required,four-letter chunk type the message is stored under (e.g. stSh)"`
}

type decodeOutput struct {
	Path      string `json:"path"`
	ChunkType string `json:"chunk_type"`
	Message   string `json:"message"`
}

type encodeInput struct {
	Path      string `json:"path" jsonschema:"required,path to the PNG file to embed into"`
	ChunkType string `json:"chunk_type" jsonschema:"required,four-letter chunk type to store the message under (e.g. stSh)"`
	Message   string `json:"message" jsonschema:"required,the message to embed"`
	Output    string `json:"output,omitempty" jsonschema:"destination path; the source file is overwritten when omitted"`
	Placement string `json:"placement,omitempty" jsonschema:"where to place the chunk: end (default) or before-iend"`
}

type encodeOutput struct {
	Path      string `json:"path"`
	ChunkType string `json:"chunk_type"`
	Bytes     int    `json:"bytes"`
}

type removeInput struct {
	Path      string `json:"path" jsonschema:"required,path to the PNG file to modify"`
	ChunkType string `json:"chunk_type" jsonschema:"required,four-letter chunk type to remove"`
}

type removeOutput struct {
	Path      string `json:"path"`
	ChunkType string `json:"chunk_type"`
	Message   string `json:"message"`
}

type verifyInput struct {
	Path   string `json:"path" jsonschema:"required,path to the PNG file to verify"`
	Strict bool   `json:"strict,omitempty" jsonschema:"fail verification on warning-level findings"`
}

type findingOutput struct {
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type verifyOutput struct {
	Path     string          `json:"path"`
	Passed   bool            `json:"passed"`
	Warnings int             `json:"warnings"`
	Findings []findingOutput `json:"findings"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	MessagesEmbedded  int            `json:"messages_embedded"`
	MessagesExtracted int            `json:"messages_extracted"`
	ChunksRemoved     int            `json:"chunks_removed"`
	FilesInspected    int            `json:"files_inspected"`
	FilesVerified     int            `json:"files_verified"`
	BytesEmbedded     int64          `json:"bytes_embedded"`
	OpsByType         map[string]int `json:"ops_by_type"`
	EventCount        int            `json:"event_count"`
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "inspect_png",
		Description: "Inspect a PNG file chunk by chunk. Returns type, length, CRC, property flags, and a printable preview per chunk, plus file-level summary fields.",
	}, s.handleInspect)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "decode_message",
		Description: "Read the hidden message stored under a chunk type in a PNG file.",
	}, s.handleDecode)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "encode_message",
		Description: "Embed a message in a PNG file under the given chunk type and save the result. Placement end (default) appends after IEND; before-iend inserts ahead of IEND.",
	}, s.handleEncode)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "remove_chunk",
		Description: "Remove the first chunk of the given type from a PNG file, save the file, and return the message the chunk carried.",
	}, s.handleRemove)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "verify_png",
		Description: "Check a PNG file's chunk structure: IHDR first, single IEND, reserved bits, chunks after IEND. Strict mode fails on warning-level findings.",
	}, s.handleVerify)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the operation log: embed/extract/remove counts and bytes embedded.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleInspect(_ context.Context, _ *gomcp.CallToolRequest, input inspectInput) (*gomcp.CallToolResult, inspectOutput, error) {
	if input.Path == "" {
		return errorResult("path is required"), inspectOutput{}, nil
	}

	f, err := s.svc.Store.Load(input.Path)
	if err != nil {
		return errorResult(err.Error()), inspectOutput{}, nil
	}

	report := s.svc.Inspector.Inspect(f)
	out := inspectOutput{
		Path:       input.Path,
		ChunkCount: report.ChunkCount,
		DataBytes:  report.DataBytes,
		HasIHDR:    report.HasIHDR,
		HasIEND:    report.HasIEND,
		Chunks:     make([]chunkInfoOutput, len(report.Chunks)),
	}
	for i, c := range report.Chunks {
		out.Chunks[i] = chunkInfoOutput{
			Index:         c.Index,
			Type:          c.Type,
			Length:        c.Length,
			CRC:           c.CRC,
			Critical:      c.Critical,
			Public:        c.Public,
			ReservedValid: c.ReservedValid,
			SafeToCopy:    c.SafeToCopy,
			Preview:       c.Preview,
		}
	}

	observability.Record(s.svc.EventLog, observability.OpInspected, input.Path, "file inspected",
		map[string]any{"chunks": report.ChunkCount})

	return nil, out, nil
}

func (s *Server) handleDecode(_ context.Context, _ *gomcp.CallToolRequest, input decodeInput) (*gomcp.CallToolResult, decodeOutput, error) {
	if input.Path == "" {
		return errorResult("path is required"), decodeOutput{}, nil
	}
	if input.ChunkType == "" {
		return errorResult("chunk_type is required"), decodeOutput{}, nil
	}

	f, err := s.svc.Store.Load(input.Path)
	if err != nil {
		return errorResult(err.Error()), decodeOutput{}, nil
	}

	msg, err := s.svc.Codec.Extract(f, input.ChunkType)
	if err != nil {
		return errorResult(err.Error()), decodeOutput{}, nil
	}

	observability.Record(s.svc.EventLog, observability.OpDecoded, input.Path, "message extracted",
		map[string]any{"chunk_type": input.ChunkType})

	return nil, decodeOutput{Path: input.Path, ChunkType: input.ChunkType, Message: msg}, nil
}

func (s *Server) handleEncode(_ context.Context, _ *gomcp.CallToolRequest, input encodeInput) (*gomcp.CallToolResult, encodeOutput, error) {
	if input.Path == "" {
		return errorResult("path is required"), encodeOutput{}, nil
	}
	if input.ChunkType == "" {
		return errorResult("chunk_type is required"), encodeOutput{}, nil
	}

	placement := core.PlacementEnd
	if input.Placement != "" {
		p, err := core.ParsePlacement(input.Placement)
		if err != nil {
			return errorResult(err.Error()), encodeOutput{}, nil
		}
		placement = p
	}

	f, err := s.svc.Store.Load(input.Path)
	if err != nil {
		return errorResult(err.Error()), encodeOutput{}, nil
	}

	chunk, err := s.svc.Codec.Embed(f, input.ChunkType, input.Message, placement)
	if err != nil {
		return errorResult(err.Error()), encodeOutput{}, nil
	}

	dest := input.Path
	if input.Output != "" {
		dest = input.Output
	}
	if err := s.svc.Store.Save(dest, f); err != nil {
		return errorResult(err.Error()), encodeOutput{}, nil
	}

	observability.Record(s.svc.EventLog, observability.OpEncoded, dest, "message embedded",
		map[string]any{"chunk_type": input.ChunkType, "bytes": chunk.Length()})

	return nil, encodeOutput{Path: dest, ChunkType: input.ChunkType, Bytes: chunk.Length()}, nil
}

func (s *Server) handleRemove(_ context.Context, _ *gomcp.CallToolRequest, input removeInput) (*gomcp.CallToolResult, removeOutput, error) {
	if input.Path == "" {
		return errorResult("path is required"), removeOutput{}, nil
	}
	if input.ChunkType == "" {
		return errorResult("chunk_type is required"), removeOutput{}, nil
	}

	f, err := s.svc.Store.Load(input.Path)
	if err != nil {
		return errorResult(err.Error()), removeOutput{}, nil
	}

	msg, err := s.svc.Codec.Remove(f, input.ChunkType)
	if err != nil {
		return errorResult(err.Error()), removeOutput{}, nil
	}

	if err := s.svc.Store.Save(input.Path, f); err != nil {
		return errorResult(err.Error()), removeOutput{}, nil
	}

	observability.Record(s.svc.EventLog, observability.OpChunkRemoved, input.Path, "chunk removed",
		map[string]any{"chunk_type": input.ChunkType})

	return nil, removeOutput{Path: input.Path, ChunkType: input.ChunkType, Message: msg}, nil
}

func (s *Server) handleVerify(_ context.Context, _ *gomcp.CallToolRequest, input verifyInput) (*gomcp.CallToolResult, verifyOutput, error) {
	if input.Path == "" {
		return errorResult("path is required"), verifyOutput{}, nil
	}

	f, err := s.svc.Store.Load(input.Path)
	if err != nil {
		return errorResult(err.Error()), verifyOutput{}, nil
	}

	findings := s.svc.Verifier.Verify(f)
	out := verifyOutput{
		Path:     input.Path,
		Findings: make([]findingOutput, len(findings)),
	}
	for i, fd := range findings {
		out.Findings[i] = findingOutput{
			Level:   string(fd.Level),
			Code:    fd.Code,
			Message: fd.Message,
		}
		if fd.Level == core.LevelWarning {
			out.Warnings++
		}
	}
	out.Passed = !input.Strict || out.Warnings == 0

	observability.Record(s.svc.EventLog, observability.OpVerified, input.Path, "file verified",
		map[string]any{"findings": len(findings), "warnings": out.Warnings})

	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.svc.MetricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.svc.MetricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		MessagesEmbedded:  metrics.MessagesEmbedded,
		MessagesExtracted: metrics.MessagesExtracted,
		ChunksRemoved:     metrics.ChunksRemoved,
		FilesInspected:    metrics.FilesInspected,
		FilesVerified:     metrics.FilesVerified,
		BytesEmbedded:     metrics.BytesEmbedded,
		OpsByType:         metrics.OpsByType,
		EventCount:        metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		OpsByType: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}

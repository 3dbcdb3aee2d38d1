// Package mcp implements a Model Context Protocol (MCP) server that lets AI
// assistants edit rich-text documents and render them to PDF.
//
// The server speaks JSON-RPC 2.0 over stdio and implements tools and
// resources of MCP revision 2024-11-05. Each open document
// is an editing session identified by a UUID; tools select text, type, run
// formatting commands, insert tables, links and images, and render the
// current content.
//
// # Usage with an MCP client
//
// Add to the client configuration:
//
//	{
//	  "mcpServers": {
//	    "richdoc": {
//	      "command": "richdoc-mcp"
//	    }
//	  }
//	}
package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// Server is an MCP server that handles JSON-RPC 2.0 messages over stdio.
type Server struct {
	tools     map[string]Tool
	resources map[string]Resource
	input     io.Reader
	output    io.Writer
	log       *slog.Logger
	mu        sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for failed tool calls and transport errors.
// Logs never go to the protocol output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// Tool defines an MCP tool that can be called by the client.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Handler     ToolHandler            `json:"-"`
}

// ToolHandler is a function that executes a tool with the given arguments.
type ToolHandler func(args gjson.Result) (ToolResult, error)

// ToolResult is the result returned by a tool execution.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is a piece of content in a tool result.
type ContentBlock struct {
	Type     string `json:"type"` // "text" or "resource"
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"` // base64 for binary
}

// Resource defines an MCP resource.
type Resource struct {
	URI         string          `json:"uri"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	MIMEType    string          `json:"mimeType,omitempty"`
	Handler     ResourceHandler `json:"-"`
}

// ResourceHandler reads a resource and returns its content.
type ResourceHandler func(uri string) ([]ResourceContent, error)

// ResourceContent is the content of a read resource.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"` // base64
}

// protocolVersion is the MCP revision implemented by the server.
const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32603
)

type jsonrpcRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

// notification reports whether the request expects no response.
func (r jsonrpcRequest) notification() bool { return r.ID == nil }

type jsonrpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id"`
	Result  interface{}      `json:"result,omitempty"`
	Error   *jsonrpcError    `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string              `json:"protocolVersion"`
	Capabilities    map[string]struct{} `json:"capabilities"`
	ServerInfo      serverInfo          `json:"serverInfo"`
}

type toolsListResult struct {
	Tools []Tool `json:"tools"`
}

type resourcesListResult struct {
	Resources []Resource `json:"resources"`
}

type resourcesReadResult struct {
	Contents []ResourceContent `json:"contents"`
}

// NewServer creates a new MCP server reading from stdin and writing to stdout.
func NewServer(opts ...Option) *Server {
	return NewServerWithIO(os.Stdin, os.Stdout, opts...)
}

// NewServerWithIO creates a new MCP server with custom I/O for testing.
func NewServerWithIO(in io.Reader, out io.Writer, opts ...Option) *Server {
	s := &Server{
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
		input:     in,
		output:    out,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTool registers a tool, replacing any tool of the same name.
func (s *Server) AddTool(t Tool) {
	s.tools[t.Name] = t
}

// AddResource registers a resource. Reads of URIs below r.URI
// (r.URI + "/...") are routed to it too.
func (s *Server) AddResource(r Resource) {
	s.resources[r.URI] = r
}

// Run processes newline-delimited messages until the input is exhausted.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.input)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonrpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("malformed request", "component", "mcp", "error", err)
			s.sendError(nil, codeParseError, "Parse error", err.Error())
			continue
		}
		s.handleRequest(req)
	}
	if err := scanner.Err(); err != nil {
		s.log.Error("reading requests", "component", "mcp", "error", err)
		return err
	}
	return nil
}

// methods maps request methods to their handlers. A handler returns the
// result to send or a protocol error.
var methods = map[string]func(*Server, jsonrpcRequest) (interface{}, *jsonrpcError){
	"initialize":     (*Server).initialize,
	"ping":           func(*Server, jsonrpcRequest) (interface{}, *jsonrpcError) { return struct{}{}, nil },
	"tools/list":     (*Server).toolsList,
	"tools/call":     (*Server).toolsCall,
	"resources/list": (*Server).resourcesList,
	"resources/read": (*Server).resourcesRead,
}

func (s *Server) handleRequest(req jsonrpcRequest) {
	if strings.HasPrefix(req.Method, "notifications/") || req.Method == "initialized" {
		s.log.Debug("notification", "component", "mcp", "method", req.Method)
		return
	}
	handler, ok := methods[req.Method]
	if !ok {
		if !req.notification() {
			s.sendError(req.ID, codeMethodNotFound, "Method not found", req.Method)
		}
		return
	}
	result, rpcErr := handler(s, req)
	if req.notification() {
		return
	}
	if rpcErr != nil {
		s.send(jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr})
		return
	}
	s.sendResult(req.ID, result)
}

func (s *Server) initialize(jsonrpcRequest) (interface{}, *jsonrpcError) {
	return initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    map[string]struct{}{"tools": {}, "resources": {}},
		ServerInfo:      serverInfo{Name: "richdoc-mcp", Version: "1.0.0"},
	}, nil
}

func (s *Server) toolsList(jsonrpcRequest) (interface{}, *jsonrpcError) {
	res := toolsListResult{Tools: make([]Tool, 0, len(s.tools))}
	for _, name := range sortedKeys(s.tools) {
		res.Tools = append(res.Tools, s.tools[name])
	}
	return res, nil
}

// toolsCall runs a tool. Tool failures are reported in the result with
// isError set, as MCP requires; only an unknown tool is a protocol error.
func (s *Server) toolsCall(req jsonrpcRequest) (interface{}, *jsonrpcError) {
	if !gjson.ValidBytes(req.Params) {
		return nil, &jsonrpcError{Code: codeInvalidParams, Message: "Invalid params", Data: "params must be a JSON object"}
	}
	params := gjson.ParseBytes(req.Params)
	name := params.Get("name").String()

	tool, ok := s.tools[name]
	if !ok {
		return nil, &jsonrpcError{Code: codeInvalidParams, Message: "Unknown tool", Data: name}
	}

	result, err := tool.Handler(params.Get("arguments"))
	if err != nil {
		s.log.Info("tool call failed", "component", "mcp", "tool", name, "error", err)
		return ToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Error: %v", err)}},
			IsError: true,
		}, nil
	}
	return result, nil
}

func (s *Server) resourcesList(jsonrpcRequest) (interface{}, *jsonrpcError) {
	res := resourcesListResult{Resources: make([]Resource, 0, len(s.resources))}
	for _, uri := range sortedKeys(s.resources) {
		res.Resources = append(res.Resources, s.resources[uri])
	}
	return res, nil
}

func (s *Server) resourcesRead(req jsonrpcRequest) (interface{}, *jsonrpcError) {
	uri := gjson.GetBytes(req.Params, "uri")
	if uri.Type != gjson.String {
		return nil, &jsonrpcError{Code: codeInvalidParams, Message: "Invalid params", Data: "missing uri"}
	}

	resource, ok := s.lookupResource(uri.String())
	if !ok {
		return nil, &jsonrpcError{Code: codeInvalidParams, Message: "Unknown resource", Data: uri.String()}
	}
	contents, err := resource.Handler(uri.String())
	if err != nil {
		s.log.Info("resource read failed", "component", "mcp", "uri", uri.String(), "error", err)
		return nil, &jsonrpcError{Code: codeInternal, Message: "Resource error", Data: err.Error()}
	}
	return resourcesReadResult{Contents: contents}, nil
}

// lookupResource finds the resource registered for uri, or for a parent of
// uri such as richdoc://sessions for richdoc://sessions/<id>.
func (s *Server) lookupResource(uri string) (Resource, bool) {
	if r, ok := s.resources[uri]; ok {
		return r, true
	}
	for base, r := range s.resources {
		if strings.HasPrefix(uri, base+"/") {
			return r, true
		}
	}
	return Resource{}, false
}

func (s *Server) sendResult(id *json.RawMessage, result interface{}) {
	s.send(jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(id *json.RawMessage, code int, message string, data interface{}) {
	s.send(jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &jsonrpcError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

func (s *Server) send(resp jsonrpcResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("encoding response", "component", "mcp", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := s.output.Write(data); err != nil {
		s.log.Error("writing response", "component", "mcp", "error", err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

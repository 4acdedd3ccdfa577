// Package server exposes the component registry over MCP. Registered
// capabilities become tools, templates become prompts, and resources become
// resources; interceptors wrap every tool call. The server re-syncs its
// advertised capabilities whenever the registry changes, so hot reloads are
// visible to connected clients without a restart.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"loom/internal/component"
	"loom/internal/config"
	"loom/internal/registry"
	"loom/pkg/logging"
)

// Version is stamped at build time.
var Version = "dev"

// Server serves the registry contents over one MCP transport.
type Server struct {
	cfg      config.Config
	registry *registry.Registry
	invoker  *Invoker

	server               *mcpserver.MCPServer
	sseServer            *mcpserver.SSEServer
	streamableHTTPServer *mcpserver.StreamableHTTPServer
	stdioServer          *mcpserver.StdioServer

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex

	// Currently advertised components, keyed by name (URI for resources)
	// with the record ID as value. Diffing on the ID means an in-place
	// descriptor edit re-advertises the component: the loader assigns a
	// fresh ID on every import.
	activeTools     map[string]string
	activePrompts   map[string]string
	activeResources map[string]string

	// activeChainID fingerprints the interceptor chain baked into the
	// advertised tool handlers.
	activeChainID string
}

// New creates a server over a registry.
func New(cfg config.Config, reg *registry.Registry) *Server {
	return &Server{
		cfg:             cfg,
		registry:        reg,
		invoker:         NewInvoker(reg),
		activeTools:     make(map[string]string),
		activePrompts:   make(map[string]string),
		activeResources: make(map[string]string),
	}
}

// Invoker returns the invoker the server handles requests with.
func (s *Server) Invoker() *Invoker {
	return s.invoker
}

// Start creates the MCP server, advertises the current registry contents,
// and starts the configured transport. It returns immediately.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.server != nil {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)
	s.server = mcpserver.NewMCPServer(
		s.cfg.Name,
		Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithPromptCapabilities(true),
	)

	s.wg.Add(1)
	go s.monitorRegistryUpdates()
	s.mu.Unlock()

	s.syncCapabilities()

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	switch s.cfg.Transport {
	case config.TransportSSE:
		logging.Info("Server", "Starting MCP server with SSE transport on %s", addr)
		s.sseServer = mcpserver.NewSSEServer(
			s.server,
			mcpserver.WithBaseURL(fmt.Sprintf("http://%s", addr)),
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
			mcpserver.WithKeepAlive(true),
			mcpserver.WithKeepAliveInterval(30*time.Second),
		)
		sseServer := s.sseServer
		go func() {
			if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Server", err, "SSE server error")
			}
		}()

	case config.TransportStdio:
		logging.Info("Server", "Starting MCP server with stdio transport")
		s.stdioServer = mcpserver.NewStdioServer(s.server)
		stdioServer := s.stdioServer
		stdioCtx := s.ctx
		go func() {
			if err := stdioServer.Listen(stdioCtx, os.Stdin, os.Stdout); err != nil {
				logging.Error("Server", err, "Stdio server error")
			}
		}()

	case config.TransportStreamableHTTP:
		fallthrough
	default:
		logging.Info("Server", "Starting MCP server with streamable-http transport on %s", addr)
		s.streamableHTTPServer = mcpserver.NewStreamableHTTPServer(s.server)
		streamableServer := s.streamableHTTPServer
		go func() {
			if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Server", err, "Streamable HTTP server error")
			}
		}()
	}

	return nil
}

// Stop shuts down the transport and background routines.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.server == nil {
		s.mu.Unlock()
		return fmt.Errorf("server not started")
	}
	logging.Info("Server", "Stopping MCP server")

	cancelFunc := s.cancelFunc
	sseServer := s.sseServer
	streamableServer := s.streamableHTTPServer
	s.mu.Unlock()

	if cancelFunc != nil {
		cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if sseServer != nil {
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server", err, "Error shutting down SSE server")
		}
	}
	if streamableServer != nil {
		if err := streamableServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server", err, "Error shutting down streamable HTTP server")
		}
	}
	// The stdio server stops on context cancellation.

	s.wg.Wait()

	s.mu.Lock()
	s.server = nil
	s.sseServer = nil
	s.streamableHTTPServer = nil
	s.stdioServer = nil
	s.mu.Unlock()

	return nil
}

// Endpoint returns the client-facing endpoint for the configured transport.
func (s *Server) Endpoint() string {
	switch s.cfg.Transport {
	case config.TransportSSE:
		return fmt.Sprintf("http://%s:%d/sse", s.cfg.Host, s.cfg.Port)
	case config.TransportStdio:
		return "stdio"
	default:
		return fmt.Sprintf("http://%s:%d/mcp", s.cfg.Host, s.cfg.Port)
	}
}

// monitorRegistryUpdates re-syncs advertised capabilities on every registry
// change notification.
func (s *Server) monitorRegistryUpdates() {
	defer s.wg.Done()

	updates := s.registry.Updates()
	for {
		select {
		case <-s.ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			s.syncCapabilities()
		}
	}
}

// syncCapabilities diffs the registry snapshot against what the MCP server
// currently advertises, then removes and adds in batches.
func (s *Server) syncCapabilities() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return
	}

	snapshot := s.registry.Snapshot()
	chain := BuildChain(snapshot[component.CategoryInterceptor])
	chainID := chainFingerprint(snapshot[component.CategoryInterceptor])
	chainChanged := chainID != s.activeChainID

	// AddTools/AddPrompts/AddResources overwrite same-name entries, so a
	// changed record is refreshed by re-adding, no removal needed. A
	// changed interceptor chain re-adds every tool: the chain is baked
	// into each tool handler.
	newTools := make(map[string]string)
	var toolsToAdd []mcpserver.ServerTool
	for _, rec := range snapshot[component.CategoryCapability] {
		newTools[rec.Name] = rec.ID
		if chainChanged || s.activeTools[rec.Name] != rec.ID {
			toolsToAdd = append(toolsToAdd, s.buildTool(rec, chain))
		}
	}

	newPrompts := make(map[string]string)
	var promptsToAdd []mcpserver.ServerPrompt
	for _, rec := range snapshot[component.CategoryTemplate] {
		newPrompts[rec.Name] = rec.ID
		if s.activePrompts[rec.Name] != rec.ID {
			promptsToAdd = append(promptsToAdd, s.buildPrompt(rec))
		}
	}

	newResources := make(map[string]string)
	var resourcesToAdd []mcpserver.ServerResource
	for _, rec := range snapshot[component.CategoryResource] {
		spec := rec.Resource()
		newResources[spec.URI] = rec.ID
		if s.activeResources[spec.URI] != rec.ID {
			resourcesToAdd = append(resourcesToAdd, s.buildResource(rec))
		}
	}

	var obsoleteTools []string
	for name := range s.activeTools {
		if _, ok := newTools[name]; !ok {
			obsoleteTools = append(obsoleteTools, name)
		}
	}
	if len(obsoleteTools) > 0 {
		s.server.DeleteTools(obsoleteTools...)
	}

	var obsoletePrompts []string
	for name := range s.activePrompts {
		if _, ok := newPrompts[name]; !ok {
			obsoletePrompts = append(obsoletePrompts, name)
		}
	}
	if len(obsoletePrompts) > 0 {
		s.server.DeletePrompts(obsoletePrompts...)
	}

	// No batch removal for resources in the MCP library.
	for uri := range s.activeResources {
		if _, ok := newResources[uri]; !ok {
			s.server.RemoveResource(uri)
		}
	}

	if len(toolsToAdd) > 0 {
		s.server.AddTools(toolsToAdd...)
	}
	if len(promptsToAdd) > 0 {
		s.server.AddPrompts(promptsToAdd...)
	}
	if len(resourcesToAdd) > 0 {
		s.server.AddResources(resourcesToAdd...)
	}

	s.activeTools = newTools
	s.activePrompts = newPrompts
	s.activeResources = newResources
	s.activeChainID = chainID

	logging.Debug("Server", "Advertising %d tools, %d prompts, %d resources",
		len(newTools), len(newPrompts), len(newResources))
}

// chainFingerprint identifies one built interceptor chain by the record IDs
// that produced it.
func chainFingerprint(interceptors []*component.Record) string {
	ids := make([]string, 0, len(interceptors))
	for _, rec := range interceptors {
		ids = append(ids, rec.ID)
	}
	return strings.Join(ids, ",")
}

func (s *Server) buildTool(rec *component.Record, chain Middleware) mcpserver.ServerTool {
	spec := rec.Capability()

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := make(map[string]interface{})
		if req.Params.Arguments != nil {
			if argsMap, ok := req.Params.Arguments.(map[string]interface{}); ok {
				args = argsMap
			}
		}
		out, err := s.invoker.InvokeCapability(ctx, rec.Name, args)
		if err != nil {
			logging.Error("Server", err, "Capability %s failed", rec.Name)
			return mcp.NewToolResultError(fmt.Sprintf("capability execution failed: %v", err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}

	return mcpserver.ServerTool{
		Tool: mcp.Tool{
			Name:        rec.Name,
			Description: spec.Description,
			InputSchema: inputSchemaFor(spec.Args),
			Annotations: toolAnnotations(spec.Annotations),
		},
		Handler: chain(handler),
	}
}

func (s *Server) buildPrompt(rec *component.Record) mcpserver.ServerPrompt {
	spec := rec.Template()

	var promptArgs []mcp.PromptArgument
	for _, param := range spec.Args {
		promptArgs = append(promptArgs, mcp.PromptArgument{
			Name:        param.Name,
			Description: param.Description,
			Required:    param.Required,
		})
	}

	handler := func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		args := make(map[string]interface{}, len(req.Params.Arguments))
		for k, v := range req.Params.Arguments {
			args[k] = v
		}
		text, err := s.invoker.RenderTemplate(ctx, rec.Name, args)
		if err != nil {
			return nil, err
		}
		return &mcp.GetPromptResult{
			Description: spec.Description,
			Messages: []mcp.PromptMessage{
				{
					Role:    mcp.RoleUser,
					Content: mcp.TextContent{Type: "text", Text: text},
				},
			},
		}, nil
	}

	return mcpserver.ServerPrompt{
		Prompt: mcp.Prompt{
			Name:        rec.Name,
			Description: spec.Description,
			Arguments:   promptArgs,
		},
		Handler: handler,
	}
}

func (s *Server) buildResource(rec *component.Record) mcpserver.ServerResource {
	spec := rec.Resource()
	mimeType := spec.MIMEType
	if mimeType == "" {
		mimeType = "text/plain"
	}

	handler := func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		content, mt, err := s.invoker.ReadResource(ctx, rec.Name)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      spec.URI,
				MIMEType: mt,
				Text:     content,
			},
		}, nil
	}

	return mcpserver.ServerResource{
		Resource: mcp.Resource{
			URI:         spec.URI,
			Name:        rec.Name,
			Description: spec.Description,
			MIMEType:    mimeType,
		},
		Handler: handler,
	}
}

func toolAnnotations(a component.Annotations) mcp.ToolAnnotation {
	annotation := mcp.ToolAnnotation{}
	if a.ReadOnly {
		annotation.ReadOnlyHint = mcp.ToBoolPtr(true)
	}
	if a.Destructive {
		annotation.DestructiveHint = mcp.ToBoolPtr(true)
	}
	if a.Idempotent {
		annotation.IdempotentHint = mcp.ToBoolPtr(true)
	}
	return annotation
}

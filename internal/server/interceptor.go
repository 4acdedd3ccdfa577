package server

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"loom/internal/component"
	"loom/pkg/logging"
)

// Middleware wraps a tool handler. Registered interceptors are compiled
// into a middleware chain applied to every capability handler.
type Middleware func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc

// BuildChain compiles interceptor records into a single middleware. Records
// are applied in ascending Order; ties break on name so the chain is stable
// across reloads. Unknown kinds are skipped with a warning.
func BuildChain(records []*component.Record) Middleware {
	sorted := make([]*component.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Interceptor(), sorted[j].Interceptor()
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return sorted[i].Name < sorted[j].Name
	})

	var middlewares []Middleware
	for _, rec := range sorted {
		spec := rec.Interceptor()
		if spec == nil {
			continue
		}
		mw, err := middlewareFor(spec)
		if err != nil {
			logging.Warn("Interceptor", "Skipping interceptor %q: %v", rec.Name, err)
			continue
		}
		middlewares = append(middlewares, mw)
	}

	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		// Wrap in reverse so the lowest Order runs outermost.
		handler := next
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}

func middlewareFor(spec *component.InterceptorSpec) (Middleware, error) {
	switch spec.Kind {
	case "logging":
		return loggingMiddleware(spec.Name), nil
	case "timing":
		return timingMiddleware(spec.Name, slowThreshold(spec)), nil
	case "recovery":
		return recoveryMiddleware(spec.Name), nil
	default:
		return nil, fmt.Errorf("unknown interceptor kind %q", spec.Kind)
	}
}

// slowThreshold reads the optional slowMs setting for timing interceptors.
func slowThreshold(spec *component.InterceptorSpec) time.Duration {
	raw, ok := spec.Settings["slowMs"]
	if !ok {
		return 0
	}
	switch v := raw.(type) {
	case int:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v) * time.Millisecond
	default:
		return 0
	}
}

func loggingMiddleware(name string) Middleware {
	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			logging.Info("Interceptor", "[%s] call %s", name, req.Params.Name)
			result, err := next(ctx, req)
			if err != nil {
				logging.Error("Interceptor", err, "[%s] call %s failed", name, req.Params.Name)
			}
			return result, err
		}
	}
}

func timingMiddleware(name string, slow time.Duration) Middleware {
	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, req)
			elapsed := time.Since(start)
			if slow > 0 && elapsed > slow {
				logging.Warn("Interceptor", "[%s] call %s took %s (slow threshold %s)", name, req.Params.Name, elapsed, slow)
			} else {
				logging.Debug("Interceptor", "[%s] call %s took %s", name, req.Params.Name, elapsed)
			}
			return result, err
		}
	}
}

func recoveryMiddleware(name string) Middleware {
	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					logging.Error("Interceptor", fmt.Errorf("%v", r), "[%s] panic in call %s", name, req.Params.Name)
					result = mcp.NewToolResultError(fmt.Sprintf("internal error in %s", req.Params.Name))
					err = nil
				}
			}()
			return next(ctx, req)
		}
	}
}

package server

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom/internal/component"
)

func interceptorRecord(name, kind string, order int) *component.Record {
	return &component.Record{
		Category: component.CategoryInterceptor,
		Name:     name,
		Spec:     &component.InterceptorSpec{Name: name, Kind: kind, Order: order},
	}
}

func callReq(name string) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	return req
}

func TestBuildChainOrdering(t *testing.T) {
	var trace []string
	tracing := func(label string) Middleware {
		return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
			return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				trace = append(trace, label)
				return next(ctx, req)
			}
		}
	}

	// Wire two manual middlewares through the same reverse-wrap logic the
	// chain uses, confirming lowest order runs first.
	chain := func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return tracing("outer")(tracing("inner")(next))
	}

	handler := chain(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		trace = append(trace, "handler")
		return mcp.NewToolResultText("ok"), nil
	})

	_, err := handler(context.Background(), callReq("x"))
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}

func TestBuildChainPassesThrough(t *testing.T) {
	chain := BuildChain([]*component.Record{
		interceptorRecord("log", "logging", 10),
		interceptorRecord("time", "timing", 20),
	})

	called := false
	handler := chain(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("done"), nil
	})

	result, err := handler(context.Background(), callReq("tool"))
	require.NoError(t, err)
	assert.True(t, called)
	require.Len(t, result.Content, 1)
}

func TestBuildChainSkipsUnknownKind(t *testing.T) {
	chain := BuildChain([]*component.Record{
		interceptorRecord("bogus", "rate-limit", 5),
	})

	handler := chain(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	_, err := handler(context.Background(), callReq("tool"))
	assert.NoError(t, err)
}

func TestRecoveryMiddlewareCatchesPanic(t *testing.T) {
	chain := BuildChain([]*component.Record{
		interceptorRecord("guard", "recovery", 1),
	})

	handler := chain(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		panic("boom")
	})

	result, err := handler(context.Background(), callReq("tool"))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestBuildChainEmpty(t *testing.T) {
	chain := BuildChain(nil)

	handler := chain(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	result, err := handler(context.Background(), callReq("tool"))
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func TestSlowThreshold(t *testing.T) {
	spec := &component.InterceptorSpec{Settings: map[string]interface{}{"slowMs": 100}}
	assert.Equal(t, int64(100), slowThreshold(spec).Milliseconds())

	spec = &component.InterceptorSpec{Settings: map[string]interface{}{"slowMs": float64(250)}}
	assert.Equal(t, int64(250), slowThreshold(spec).Milliseconds())

	spec = &component.InterceptorSpec{}
	assert.Zero(t, slowThreshold(spec))
}

package mcpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	gnewsmcp "github.com/ferro-labs/gnews-mcp"
)

const stubUpstreamBody = `{
	"totalArticles": 1,
	"articles": [{
		"title": "Hello",
		"description": "Desc",
		"url": "https://example.com",
		"image": null,
		"publishedAt": "2026-08-20T10:00:00Z",
		"source": {"name": "Example"}
	}]
}`

// connect spins up a service against a stub upstream and returns a
// connected MCP client session.
func connect(t *testing.T, upstream http.HandlerFunc) *mcp.ClientSession {
	t.Helper()

	stub := httptest.NewServer(upstream)
	t.Cleanup(stub.Close)

	cfg := gnewsmcp.DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = stub.URL

	svc, err := gnewsmcp.NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	server := New(svc)
	if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestServer_ListsTools(t *testing.T) {
	session := connect(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(stubUpstreamBody))
	})

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	if !names["search_news"] || !names["top_headlines"] {
		t.Errorf("expected search_news and top_headlines, got %v", names)
	}
}

func TestServer_SearchNewsCall(t *testing.T) {
	session := connect(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(stubUpstreamBody))
	})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search_news",
		Arguments: map[string]any{"q": "hello"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %v", res.Content)
	}

	sc, ok := res.StructuredContent.(map[string]any)
	if !ok {
		t.Fatalf("expected structured content object, got %T", res.StructuredContent)
	}
	if total, _ := sc["total"].(float64); total != 1 {
		t.Errorf("expected total 1, got %v", sc["total"])
	}
	articles, _ := sc["articles"].([]any)
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %v", sc["articles"])
	}
	article, _ := articles[0].(map[string]any)
	if article["title"] != "Hello" || article["source"] != "Example" {
		t.Errorf("unexpected article: %v", article)
	}
	if article["published_at"] != "2026-08-20T10:00:00Z" {
		t.Errorf("expected published_at field, got %v", article)
	}
}

func TestServer_InvalidInputIsToolError(t *testing.T) {
	var upstreamCalls int
	session := connect(t, func(w http.ResponseWriter, _ *http.Request) {
		upstreamCalls++
		_, _ = w.Write([]byte(stubUpstreamBody))
	})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "top_headlines",
		Arguments: map[string]any{"category": "sports", "max": 101},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for max=101")
	}
	if upstreamCalls != 0 {
		t.Errorf("expected no upstream call, got %d", upstreamCalls)
	}
}

func TestServer_ExplicitZeroMaxIsToolError(t *testing.T) {
	var upstreamCalls int
	session := connect(t, func(w http.ResponseWriter, _ *http.Request) {
		upstreamCalls++
		_, _ = w.Write([]byte(stubUpstreamBody))
	})

	// An absent max defaults to 10; a supplied max of 0 is out of range
	// and must be rejected, not coerced to the default.
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search_news",
		Arguments: map[string]any{"q": "hello", "max": 0},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for max=0")
	}
	if upstreamCalls != 0 {
		t.Errorf("expected no upstream call, got %d", upstreamCalls)
	}
}

func TestServer_UpstreamFailureIsToolError(t *testing.T) {
	session := connect(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors": ["Your API key is invalid."]}`))
	})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search_news",
		Arguments: map[string]any{"q": "hello"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for upstream 401")
	}
}

// Package mcpserver wires the tool surface to the MCP protocol using the
// official Go SDK. It knows how to run the server over stdio or streamable
// HTTP and delegates all tool semantics to the service layer.
package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	gnewsmcp "github.com/ferro-labs/gnews-mcp"
	"github.com/ferro-labs/gnews-mcp/internal/gnews"
	"github.com/ferro-labs/gnews-mcp/internal/logging"
	"github.com/ferro-labs/gnews-mcp/internal/version"
)

// SearchArgs are the search_news tool arguments. Max is a pointer so an
// absent argument defaults to 10 while an explicit 0 is rejected.
type SearchArgs struct {
	Query   string `json:"q" jsonschema:"search query text"`
	Lang    string `json:"lang,omitempty" jsonschema:"two-letter language code, e.g. en"`
	Country string `json:"country,omitempty" jsonschema:"two-letter country code, e.g. us"`
	Max     *int   `json:"max,omitempty" jsonschema:"maximum number of articles (1-100, default 10)"`
	InTitle bool   `json:"in_title,omitempty" jsonschema:"if true, restrict matching to article titles"`
}

// HeadlinesArgs are the top_headlines tool arguments.
type HeadlinesArgs struct {
	Lang     string `json:"lang,omitempty" jsonschema:"two-letter language code, e.g. en"`
	Country  string `json:"country,omitempty" jsonschema:"two-letter country code, e.g. us"`
	Category string `json:"category,omitempty" jsonschema:"one of: general, world, nation, business, technology, entertainment, sports, science, health"`
	Max      *int   `json:"max,omitempty" jsonschema:"maximum number of articles (1-100, default 10)"`
}

// New builds the MCP server with both tools registered against svc.
func New(svc *gnewsmcp.Service) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "gnews", Title: "GNews", Version: version.Short()},
		&mcp.ServerOptions{
			Instructions: "MCP server providing GNews search and top-headlines tools.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_news",
		Description: "Search news articles via the GNews API.",
	}, searchHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "top_headlines",
		Description: "Fetch current top headlines via the GNews API.",
	}, headlinesHandler(svc))

	return server
}

func searchHandler(svc *gnewsmcp.Service) mcp.ToolHandlerFor[SearchArgs, gnews.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, gnews.Envelope, error) {
		start := time.Now()
		env, err := svc.SearchNews(ctx, gnewsmcp.SearchRequest{
			Query:   args.Query,
			Lang:    args.Lang,
			Country: args.Country,
			Max:     args.Max,
			InTitle: args.InTitle,
		})
		if err != nil {
			logging.FromContext(ctx).Warn("search_news failed",
				"error", err, "duration", time.Since(start))
			return nil, gnews.Envelope{}, err
		}
		logging.FromContext(ctx).Info("search_news served",
			"total", env.Total, "duration", time.Since(start))
		return nil, *env, nil
	}
}

func headlinesHandler(svc *gnewsmcp.Service) mcp.ToolHandlerFor[HeadlinesArgs, gnews.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, args HeadlinesArgs) (*mcp.CallToolResult, gnews.Envelope, error) {
		start := time.Now()
		env, err := svc.TopHeadlines(ctx, gnewsmcp.HeadlinesRequest{
			Lang:     args.Lang,
			Country:  args.Country,
			Category: args.Category,
			Max:      args.Max,
		})
		if err != nil {
			logging.FromContext(ctx).Warn("top_headlines failed",
				"error", err, "duration", time.Since(start))
			return nil, gnews.Envelope{}, err
		}
		logging.FromContext(ctx).Info("top_headlines served",
			"total", env.Total, "duration", time.Since(start))
		return nil, *env, nil
	}
}

// RunStdio serves the MCP protocol over stdin/stdout until ctx is done or
// the client disconnects.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for mounting under an HTTP
// router. Every request is served by the same server instance.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

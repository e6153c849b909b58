// Package mcp exposes the retrieval engine over the Model Context
// Protocol so AI assistants can search the legal knowledge graph and walk
// its structure directly.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/geoffsee/proseva-sub005/pkg/ai"
	"github.com/geoffsee/proseva-sub005/pkg/retrieval"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchKnowledgeParams defines the parameters for the search_knowledge tool.
type SearchKnowledgeParams struct {
	Query string `json:"query"`           // Required: natural-language legal question
	TopK  int    `json:"top_k,omitempty"` // Optional: number of answers, default 5
}

// GetNodeParams defines the parameters for the get_node tool.
type GetNodeParams struct {
	NodeID int64 `json:"node_id"`
}

// GetNeighborsParams defines the parameters for the get_neighbors tool.
type GetNeighborsParams struct {
	NodeID    int64  `json:"node_id"`
	Relation  string `json:"relation,omitempty"`  // contains, cites, or references
	Direction string `json:"direction,omitempty"` // out, in, or both
}

// FindSimilarParams defines the parameters for the find_similar tool.
type FindSimilarParams struct {
	NodeID int64 `json:"node_id"`
	Limit  int   `json:"limit,omitempty"` // default 10
}

// SearchNodesParams defines the parameters for the search_nodes tool.
type SearchNodesParams struct {
	NodeType string `json:"node_type,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`  // default 20
	Offset   int    `json:"offset,omitempty"` // default 0
}

// GetStatsParams defines the parameters for the get_stats tool.
type GetStatsParams struct{}

// NewServer builds an MCP server exposing the knowledge-graph tools. The
// embedder may be nil, in which case search_knowledge reports that no
// embedding model is configured.
func NewServer(engine *retrieval.Engine, embedder ai.QueryEmbedder, version string) *mcpsdk.Server {
	impl := &mcpsdk.Implementation{
		Name:    "proseva-knowledge",
		Version: version,
	}
	server := mcpsdk.NewServer(impl, &mcpsdk.ServerOptions{})

	searchTool := &mcpsdk.Tool{
		Name: "search_knowledge",
		Description: `Search the legal knowledge graph with a natural-language question.
Returns ranked statute passages with component scores plus structurally
related context nodes (parents, children, citations).`,
	}
	mcpsdk.AddTool(server, searchTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[SearchKnowledgeParams]) (*mcpsdk.CallToolResultFor[any], error) {
		query := params.Arguments.Query
		if query == "" {
			return mcpErrorResponse(errors.New("query is required"))
		}
		if embedder == nil {
			return mcpErrorResponse(errors.New("no embedding model configured"))
		}

		embedding, err := embedder.GenerateEmbedding(ctx, []byte(query))
		if err != nil {
			return mcpErrorResponse(fmt.Errorf("embed query: %w", err))
		}

		result, err := engine.SearchKnowledge(ctx, embedding, query, params.Arguments.TopK)
		if err != nil {
			return mcpErrorResponse(err)
		}
		return mcpJSONResponse(result)
	})

	getNodeTool := &mcpsdk.Tool{
		Name:        "get_node",
		Description: "Fetch a single node by id: metadata, full source text, and adjacency grouped by relation and direction.",
	}
	mcpsdk.AddTool(server, getNodeTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[GetNodeParams]) (*mcpsdk.CallToolResultFor[any], error) {
		details, err := engine.GetNode(ctx, params.Arguments.NodeID)
		if err != nil {
			return mcpErrorResponse(err)
		}
		return mcpJSONResponse(details)
	})

	neighborsTool := &mcpsdk.Tool{
		Name:        "get_neighbors",
		Description: "List a node's edges with neighbor metadata. Optional relation filter (contains, cites, references) and direction (out, in, both).",
	}
	mcpsdk.AddTool(server, neighborsTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[GetNeighborsParams]) (*mcpsdk.CallToolResultFor[any], error) {
		neighbors, err := engine.GetNeighbors(ctx, params.Arguments.NodeID, params.Arguments.Relation, params.Arguments.Direction)
		if err != nil {
			return mcpErrorResponse(err)
		}
		return mcpJSONResponse(neighbors)
	})

	similarTool := &mcpsdk.Tool{
		Name:        "find_similar",
		Description: "Rank other nodes by embedding similarity to the given node. Useful for finding related provisions without an explicit citation.",
	}
	mcpsdk.AddTool(server, similarTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[FindSimilarParams]) (*mcpsdk.CallToolResultFor[any], error) {
		similar, err := engine.FindSimilar(ctx, params.Arguments.NodeID, params.Arguments.Limit)
		if err != nil {
			return mcpErrorResponse(err)
		}
		return mcpJSONResponse(similar)
	})

	searchNodesTool := &mcpsdk.Tool{
		Name:        "search_nodes",
		Description: "Paginated node listing with truncated text previews. Filter by node type and by substring match on source and source id.",
	}
	mcpsdk.AddTool(server, searchNodesTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[SearchNodesParams]) (*mcpsdk.CallToolResultFor[any], error) {
		nodes := engine.SearchNodes(ctx, params.Arguments.NodeType, params.Arguments.Search, params.Arguments.Limit, params.Arguments.Offset)
		return mcpJSONResponse(nodes)
	})

	statsTool := &mcpsdk.Tool{
		Name:        "get_stats",
		Description: "Corpus summary: node, edge, and embedding counts with per-type histograms.",
	}
	mcpsdk.AddTool(server, statsTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[GetStatsParams]) (*mcpsdk.CallToolResultFor[any], error) {
		return mcpJSONResponse(engine.Stats())
	})

	return server
}

// Run serves MCP over stdio until the client disconnects.
func Run(ctx context.Context, server *mcpsdk.Server) error {
	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func mcpJSONResponse(v any) (*mcpsdk.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcpErrorResponse(fmt.Errorf("encode result: %w", err))
	}
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

func mcpErrorResponse(err error) (*mcpsdk.CallToolResultFor[any], error) {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "Error: " + err.Error()}},
		IsError: true,
	}, nil
}

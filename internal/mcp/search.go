package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devmind-dev/memcore/internal/retrieve"
)

func (s *Server) handleSemanticSearch(ctx context.Context, _ *mcp.CallToolRequest, in SemanticSearchInput) (
	*mcp.CallToolResult, SemanticSearchOutput, error,
) {
	if err := requireField("query", in.Query); err != nil {
		return nil, SemanticSearchOutput{}, NewInvalidParamsError(err.Error())
	}

	req := retrieve.Request{
		Query:               in.Query,
		ProjectPath:         in.ProjectPath,
		SessionID:           in.SessionID,
		FilePath:            in.FilePath,
		Type:                in.Type,
		Limit:               in.Limit,
		SimilarityThreshold: in.SimilarityThreshold,
		HybridWeight:        in.HybridWeight,
	}

	resp, err := s.retrieve.Search(ctx, req)
	if err != nil {
		return nil, SemanticSearchOutput{}, MapError(err)
	}

	out := SemanticSearchOutput{
		OriginalQuery: resp.OriginalQuery,
		EnhancedQuery: resp.EnhancedQuery,
		Message:       resp.Message,
	}
	if out.Message == "" {
		out.Message = summarizeResults(resp.OriginalQuery, len(resp.Results))
	}
	out.Results = make([]SearchResultOutput, 0, len(resp.Results))
	for _, r := range resp.Results {
		out.Results = append(out.Results, toSearchResultOutput(r))
	}

	return nil, out, nil
}

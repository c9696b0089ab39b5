// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes giftcert tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/query"
	"github.com/starford/giftcert/internal/service"
)

const guideURI = "giftcert://search-guide"

// Server wraps the MCP server with giftcert tools.
type Server struct {
	mcp         *server.MCPServer
	svc         *service.Service
	defaultSize int
	maxSize     int
}

// New creates a new MCP server with all giftcert tools registered. Page sizes
// follow the same bounds as the REST API.
func New(svc *service.Service, defaultSize, maxSize int) *Server {
	if maxSize <= 0 {
		maxSize = 100
	}
	if defaultSize <= 0 || defaultSize > maxSize {
		defaultSize = min(10, maxSize)
	}
	s := &Server{svc: svc, defaultSize: defaultSize, maxSize: maxSize}

	s.mcp = server.NewMCPServer(
		"giftcert",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_certificates",
		mcp.WithDescription("Search gift certificates by name, description and tags with sorting and paging. "+
			"Every tag listed must be present on a match. See the "+guideURI+" resource for details."),
		mcp.WithString("name", mcp.Description("Case-insensitive substring of the name")),
		mcp.WithString("description", mcp.Description("Case-insensitive substring of the description")),
		mcp.WithArray("tags", mcp.Description("Tag names that must all be present"), mcp.WithStringItems()),
		mcp.WithString("sort", mcp.Description("Sort column"), mcp.Enum("name", "date", "price")),
		mcp.WithString("order", mcp.Description("Sort direction, requires sort"), mcp.Enum("asc", "desc")),
		mcp.WithNumber("page", mcp.Description("0-based page number")),
		mcp.WithNumber("size", mcp.Description("Page size")),
	), s.searchCertificates)

	s.mcp.AddTool(mcp.NewTool("get_certificate",
		mcp.WithDescription("Get one gift certificate with its tags."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Certificate id")),
	), s.getCertificate)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List tags ordered by id."),
		mcp.WithNumber("page", mcp.Description("0-based page number")),
		mcp.WithNumber("size", mcp.Description("Page size")),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Count stored certificates, tags, users and orders."),
	), s.getStats)

	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Certificate Search Guide",
			mcp.WithResourceDescription("How search_certificates combines, sorts and pages results."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSearchGuide,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type searchResult struct {
	Items      []service.CertificateDTO `json:"items"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	Size       int                      `json:"size"`
	TotalPages int                      `json:"total_pages"`
}

func (s *Server) pagination(req mcp.CallToolRequest) (query.Pagination, error) {
	size := req.GetInt("size", s.defaultSize)
	if size > s.maxSize {
		return query.Pagination{}, fmt.Errorf("%w: size must be at most %d", apperr.ErrInvalidArgument, s.maxSize)
	}
	return query.NewPagination(req.GetInt("page", 0), size)
}

func (s *Server) searchCertificates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.pagination(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := query.NewSearchFilter(query.FilterParams{
		Name:        req.GetString("name", ""),
		Description: req.GetString("description", ""),
		Sort:        req.GetString("sort", ""),
		Order:       req.GetString("order", ""),
		Tags:        req.GetStringSlice("tags", nil),
		Pagination:  p,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.SearchCertificates(ctx, f)
	if err != nil {
		return toolError("SearchCertificates", err), nil
	}
	return jsonResult(searchResult{
		Items:      page.Items,
		Total:      page.TotalMatching,
		Page:       p.Page(),
		Size:       p.Size(),
		TotalPages: page.TotalPages(),
	})
}

func (s *Server) getCertificate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.GetCertificate(ctx, int64(id))
	if err != nil {
		return toolError("GetCertificate", err), nil
	}
	return jsonResult(c)
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.pagination(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.ListTags(ctx, p)
	if err != nil {
		return toolError("ListTags", err), nil
	}
	return jsonResult(map[string]any{
		"items": page.Items,
		"total": page.TotalMatching,
	})
}

func (s *Server) getStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	totals, err := s.svc.Stats(ctx)
	if err != nil {
		return toolError("Stats", err), nil
	}
	return jsonResult(totals)
}

func (s *Server) readSearchGuide(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     SearchGuide,
		},
	}, nil
}

// toolError reports a failed service call. Client errors keep their
// message; store failures are logged and reported generically.
func toolError(op string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrAlreadyExists),
		errors.Is(err, apperr.ErrConflict):
		return mcp.NewToolResultError(err.Error())
	case errors.Is(err, apperr.ErrStoreUnavailable):
		slog.Warn("mcp: "+op+" failed", slog.String("error", err.Error()))
		return mcp.NewToolResultError("store unavailable")
	default:
		slog.Error("mcp: "+op+" failed", slog.String("error", err.Error()))
		return mcp.NewToolResultError("internal error")
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

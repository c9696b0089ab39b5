package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/service"
	"github.com/starford/giftcert/internal/stats"
	"github.com/starford/giftcert/internal/store"
	"github.com/starford/giftcert/internal/testutil"
)

func testServer(t *testing.T) (*Server, *service.Service) {
	t.Helper()
	svc := testutil.TestService(t)
	return New(svc, 2, 5), svc
}

func seed(t *testing.T, svc *service.Service) {
	t.Helper()
	for _, in := range []service.CertificateInput{
		{Name: "Spa Day", Price: 120, Duration: 30, Tags: []string{"wellness", "discount"}},
		{Name: "Luxury SPA retreat", Price: 300, Duration: 30, Tags: []string{"wellness", "discount", "premium"}},
		{Name: "Spa express", Price: 50, Duration: 30, Tags: []string{"wellness"}},
		{Name: "Cinema night", Price: 20, Duration: 30, Tags: []string{"discount"}},
	} {
		if _, err := svc.CreateCertificate(context.Background(), in); err != nil {
			t.Fatal(err)
		}
	}
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper, so handlers are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_certificates":
		result, err = srv.searchCertificates(ctx, req)
	case "get_certificate":
		result, err = srv.getCertificate(ctx, req)
	case "list_tags":
		result, err = srv.listTags(ctx, req)
	case "get_stats":
		result, err = srv.getStats(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchCertificates(t *testing.T) {
	srv, svc := testServer(t)
	seed(t, svc)

	r := callTool(t, srv, "search_certificates", map[string]any{
		"name":  "spa",
		"tags":  []any{"wellness", "discount"},
		"sort":  "price",
		"order": "desc",
		"page":  float64(0),
		"size":  float64(2),
	})
	if r.IsError {
		t.Fatalf("search failed: %s", resultText(r))
	}
	var got searchResult
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Total != 2 || len(got.Items) != 2 {
		t.Fatalf("result = %+v", got)
	}
	if got.Items[0].Name != "Luxury SPA retreat" || got.Items[1].Name != "Spa Day" {
		t.Errorf("order = %q, %q", got.Items[0].Name, got.Items[1].Name)
	}
}

func TestSearchCertificates_Defaults(t *testing.T) {
	srv, svc := testServer(t)
	seed(t, svc)

	r := callTool(t, srv, "search_certificates", map[string]any{})
	var got searchResult
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Size != 2 || got.Total != 4 || got.TotalPages != 2 {
		t.Errorf("result = %+v", got)
	}
}

func TestSearchCertificates_InvalidArguments(t *testing.T) {
	srv, _ := testServer(t)

	for _, args := range []map[string]any{
		{"order": "desc"},
		{"sort": "colour"},
		{"size": float64(6)},
		{"page": float64(-1)},
	} {
		if r := callTool(t, srv, "search_certificates", args); !r.IsError {
			t.Errorf("args %v: expected error", args)
		}
	}
}

func TestGetCertificate(t *testing.T) {
	srv, svc := testServer(t)
	c, err := svc.CreateCertificate(context.Background(), service.CertificateInput{Name: "Kayak", Price: 40, Duration: 7, Tags: []string{"water"}})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "get_certificate", map[string]any{"id": float64(c.ID)})
	if r.IsError {
		t.Fatalf("get failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"name": "water"`) {
		t.Errorf("missing tag in %s", resultText(r))
	}

	r = callTool(t, srv, "get_certificate", map[string]any{"id": float64(9999)})
	if !r.IsError {
		t.Error("expected error for missing certificate")
	}
	r = callTool(t, srv, "get_certificate", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing id")
	}
}

func TestListTagsAndStats(t *testing.T) {
	srv, svc := testServer(t)
	seed(t, svc)

	r := callTool(t, srv, "list_tags", map[string]any{"size": float64(5)})
	if !strings.Contains(resultText(r), `"total": 3`) {
		t.Errorf("list_tags = %s", resultText(r))
	}

	r = callTool(t, srv, "get_stats", map[string]any{})
	var totals map[string]int64
	if err := json.Unmarshal([]byte(resultText(r)), &totals); err != nil {
		t.Fatal(err)
	}
	if totals["certificates"] != 4 || totals["tags"] != 3 {
		t.Errorf("totals = %v", totals)
	}
}

func TestSearchGuideResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readSearchGuide(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != guideURI || !strings.Contains(tc.Text, "every* listed tag") {
		t.Errorf("resource = %+v", contents[0])
	}
}

func TestStoreFailuresAreNotLeaked(t *testing.T) {
	db := testutil.TestDB(t)
	tags := store.NewTagRepo(db)
	certs := store.NewCertificateRepo(db, tags)
	agg, err := stats.New(certs, tags)
	if err != nil {
		t.Fatal(err)
	}
	srv := New(service.New(service.Deps{Certificates: certs, Tags: tags, Stats: agg}), 2, 5)
	db.Close()

	for _, tc := range []struct {
		tool string
		args map[string]any
	}{
		{"search_certificates", map[string]any{"name": "spa"}},
		{"get_certificate", map[string]any{"id": float64(1)}},
		{"list_tags", nil},
		{"get_stats", nil},
	} {
		r := callTool(t, srv, tc.tool, tc.args)
		if !r.IsError {
			t.Fatalf("%s: expected error result", tc.tool)
		}
		got := resultText(r)
		if got != "store unavailable" && got != "internal error" {
			t.Errorf("%s: text = %q, want a generic message", tc.tool, got)
		}
		if strings.Contains(got, "sql") || strings.Contains(got, "closed") {
			t.Errorf("%s: driver detail leaked: %q", tc.tool, got)
		}
	}
}

func TestToolError(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: certificate 4", apperr.ErrNotFound), "not found: certificate 4"},
		{fmt.Errorf("%w: bad size", apperr.ErrInvalidArgument), "invalid argument: bad size"},
		{fmt.Errorf("%w: modified", apperr.ErrConflict), "conflict: modified"},
		{fmt.Errorf("store: ping: %w: disk gone", apperr.ErrStoreUnavailable), "store unavailable"},
		{fmt.Errorf("store: scan: %w: /var/lib/giftcert.db corrupt", apperr.ErrStore), "internal error"},
		{errors.New("boom"), "internal error"},
	} {
		r := toolError("op", tc.err)
		if !r.IsError {
			t.Errorf("%v: not marked as error", tc.err)
		}
		if got := resultText(r); got != tc.want {
			t.Errorf("%v: text = %q, want %q", tc.err, got, tc.want)
		}
	}
}

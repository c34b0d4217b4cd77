package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	mw "github.com/transpass/transpass/internal/api/middleware"
	"github.com/transpass/transpass/internal/core"
	"github.com/transpass/transpass/internal/model"
)

// tools implements the MCP tool handlers on top of the core services.
type tools struct {
	products    *core.ProductService
	analytics   *core.AnalyticsService
	qr          *core.QRCodeService
	searchLimit int
	logger      zerolog.Logger
}

// BuildTools returns every enabled read-only tool.
func BuildTools(cfg *Config, svcs *core.Services, logger zerolog.Logger) []server.ServerTool {
	t := &tools{
		products:    svcs.Product,
		analytics:   svcs.Analytics,
		qr:          svcs.QRCode,
		searchLimit: cfg.SearchLimit,
		logger:      logger,
	}

	readOnly := []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	}

	defs := []struct {
		name    string
		desc    string
		params  []mcp.ToolOption
		handler server.ToolHandlerFunc
	}{
		{
			name: "get_product",
			desc: "Get a product passport by ID, including its components and materials.",
			params: []mcp.ToolOption{
				mcp.WithString("id", mcp.Required(), mcp.Description("Product ID")),
			},
			handler: t.getProduct,
		},
		{
			name: "search_products",
			desc: "Search products by category, manufacturer, tag or owner, with an optional free-text query.",
			params: []mcp.ToolOption{
				mcp.WithString("category", mcp.Description("Exact category")),
				mcp.WithString("manufacturer", mcp.Description("Exact manufacturer")),
				mcp.WithString("tag", mcp.Description("Tag the product must carry")),
				mcp.WithString("owner", mcp.Description("ID of the user who created the product")),
				mcp.WithString("query", mcp.Description("Case-insensitive match on name, description and model")),
				mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum results (default %d, max %d)", cfg.SearchLimit, core.MaxSearchLimit))),
			},
			handler: t.searchProducts,
		},
		{
			name: "get_scan_analytics",
			desc: "Get the scan dashboard of the caller's company: totals, per-product counts, recent scans and a 30-day series.",
			params: []mcp.ToolOption{
				mcp.WithString("company_id", mcp.Description("Company ID. Defaults to the caller's company.")),
			},
			handler: t.getScanAnalytics,
		},
		{
			name: "get_product_qr_url",
			desc: "Get the public URL a product's QR code encodes.",
			params: []mcp.ToolOption{
				mcp.WithString("id", mcp.Required(), mcp.Description("Product ID")),
			},
			handler: t.getProductQRURL,
		},
	}

	var out []server.ServerTool
	for _, d := range defs {
		if !cfg.enabled(d.name) {
			logger.Info().Str("tool", d.name).Msg("tool disabled by config")
			continue
		}
		opts := append([]mcp.ToolOption{mcp.WithDescription(cfg.description(d.name, d.desc))}, readOnly...)
		opts = append(opts, d.params...)
		out = append(out, server.ServerTool{
			Tool:    mcp.NewTool(d.name, opts...),
			Handler: d.handler,
		})
	}
	return out
}

func (t *tools) getProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(req, "id")
	if id == "" {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	p, err := t.products.Get(ctx, id)
	if err != nil {
		return t.failure(req, err), nil
	}
	if p == nil {
		return mcp.NewToolResultError("product not found: " + id), nil
	}
	return jsonResult(p)
}

func (t *tools) searchProducts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := t.searchLimit
	if n, ok := req.GetArguments()["limit"].(float64); ok && n > 0 {
		limit = int(n)
	}

	products, err := t.products.Search(ctx, core.SearchFilters{
		Category:     stringArg(req, "category"),
		Manufacturer: stringArg(req, "manufacturer"),
		Tag:          stringArg(req, "tag"),
		CreatedBy:    stringArg(req, "owner"),
		Query:        stringArg(req, "query"),
		Limit:        limit,
	})
	if err != nil {
		return t.failure(req, err), nil
	}
	return jsonResult(products)
}

func (t *tools) getScanAnalytics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	claims := mw.GetClaims(ctx)
	if claims == nil || claims.Role != model.RoleCompany {
		return mcp.NewToolResultError("scan analytics require a company account"), nil
	}

	companyID := stringArg(req, "company_id")
	if companyID == "" {
		companyID = claims.ActingCompany()
	}
	if companyID != claims.ActingCompany() {
		return mcp.NewToolResultError("no access to company " + companyID), nil
	}

	analytics, err := t.analytics.Get(ctx, companyID)
	if err != nil {
		return t.failure(req, err), nil
	}
	return jsonResult(analytics)
}

type qrURLResult struct {
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
}

func (t *tools) getProductQRURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(req, "id")
	if id == "" {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	p, err := t.products.Get(ctx, id)
	if err != nil {
		return t.failure(req, err), nil
	}
	if p == nil {
		return mcp.NewToolResultError("product not found: " + id), nil
	}
	return jsonResult(qrURLResult{ProductID: p.ID, URL: t.qr.URL(p.ID)})
}

// failure logs err and reports a generic tool error.
func (t *tools) failure(req mcp.CallToolRequest, err error) *mcp.CallToolResult {
	t.logger.Error().Err(err).Str("tool", req.Params.Name).Msg("tool call failed")
	return mcp.NewToolResultError("internal error")
}

func stringArg(req mcp.CallToolRequest, name string) string {
	s, _ := req.GetArguments()[name].(string)
	return strings.TrimSpace(s)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

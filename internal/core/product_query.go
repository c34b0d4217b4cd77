package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/transpass/transpass/internal/metrics"
	"github.com/transpass/transpass/internal/model"
)

// productScanLimit bounds the unfiltered scan used as the last fallback.
const productScanLimit = 500

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 200
)

// indexUnavailableCodes are SQLSTATEs raised when an ordered query cannot be
// served without a usable index: the sort ran into statement_timeout, work
// memory, or a planner limit.
var indexUnavailableCodes = map[string]bool{
	"57014": true, // query_canceled
	"53200": true, // out_of_memory
	"54000": true, // program_limit_exceeded
	"0A000": true, // feature_not_supported
}

func isIndexUnavailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return indexUnavailableCodes[pgErr.Code]
	}
	return false
}

// ownership selects the products belonging to one owner, both in SQL and in
// memory for the unfiltered fallback.
type ownership struct {
	predicate string
	value     string
	match     func(p *model.Product) bool
}

// ListByOwner returns the products created by ownerID, newest first. It never
// fails: when the ordered query cannot run it steps down to an unordered
// query, then to a bounded scan filtered in memory, and finally to an empty
// list.
func (s *ProductService) ListByOwner(ctx context.Context, ownerID string) []model.Product {
	return s.listOwned(ctx, ownership{
		predicate: "created_by = $1",
		value:     ownerID,
		match:     func(p *model.Product) bool { return p.CreatedBy == ownerID },
	})
}

// ListByCompany returns the products attributed to companyID, with the same
// degradation as ListByOwner.
func (s *ProductService) ListByCompany(ctx context.Context, companyID string) []model.Product {
	return s.listOwned(ctx, ownership{
		predicate: "COALESCE(company_id, created_by) = $1",
		value:     companyID,
		match:     func(p *model.Product) bool { return p.OwnerCompany() == companyID },
	})
}

func (s *ProductService) listOwned(ctx context.Context, o ownership) []model.Product {
	logger := zerolog.Ctx(ctx)

	if err := s.checkReadable(ctx); err != nil {
		logger.Warn().Err(err).Msg("products table unreadable, falling back to bounded scan")
		return s.scanOwned(ctx, o)
	}

	base := `SELECT ` + productColumns + ` FROM products WHERE ` + o.predicate
	products, err := s.queryProducts(ctx, base+` ORDER BY created_at DESC`, o.value)
	if err == nil {
		return products
	}

	if isIndexUnavailable(err) {
		logger.Warn().Err(err).Msg("ordered product query unavailable, retrying without ORDER BY")
		metrics.ProductQueryFallbacks.WithLabelValues("unordered").Inc()

		products, err = s.queryProducts(ctx, base, o.value)
		if err == nil {
			sortNewestFirst(products)
			return products
		}
	}

	logger.Warn().Err(err).Msg("filtered product query failed, falling back to bounded scan")
	return s.scanOwned(ctx, o)
}

// checkReadable confirms the products table can be read at all.
func (s *ProductService) checkReadable(ctx context.Context) error {
	var one int
	err := s.db.QueryRow(ctx, `SELECT 1 FROM products LIMIT 1`).Scan(&one)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return nil
}

func (s *ProductService) scanOwned(ctx context.Context, o ownership) []model.Product {
	metrics.ProductQueryFallbacks.WithLabelValues("scan").Inc()

	all, err := s.queryProducts(ctx, `SELECT `+productColumns+` FROM products LIMIT $1`, productScanLimit)
	if err != nil {
		metrics.ProductQueryFallbacks.WithLabelValues("empty").Inc()
		zerolog.Ctx(ctx).Error().Err(err).Msg("all product queries failed, returning empty list")
		return []model.Product{}
	}

	owned := []model.Product{}
	for i := range all {
		if o.match(&all[i]) {
			owned = append(owned, all[i])
		}
	}
	sortNewestFirst(owned)
	return owned
}

func (s *ProductService) queryProducts(ctx context.Context, sql string, args ...any) ([]model.Product, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func sortNewestFirst(products []model.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

// SearchFilters narrows a product search. Empty fields do not filter.
type SearchFilters struct {
	Category     string
	Manufacturer string
	Tag          string
	CreatedBy    string
	// Query is matched case-insensitively against name, description and
	// model after the database filters and limit are applied.
	Query string
	Limit int
}

// Search combines equality filters with newest-first ordering and a limit,
// then applies the free-text match in memory.
func (s *ProductService) Search(ctx context.Context, f SearchFilters) ([]model.Product, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Manufacturer != "" {
		add("manufacturer = $%d", f.Manufacturer)
	}
	if f.Tag != "" {
		add("$%d = ANY(tags)", f.Tag)
	}
	if f.CreatedBy != "" {
		add("created_by = $%d", f.CreatedBy)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	sql := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		sql += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	sql += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	products, err := s.queryProducts(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return products, nil
	}

	matched := []model.Product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Model), q) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

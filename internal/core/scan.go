package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/transpass/transpass/internal/metrics"
	"github.com/transpass/transpass/internal/model"
	"github.com/transpass/transpass/internal/platform"
)

// DedupWindow is how long a repeat scan of the same product by the same user
// refreshes the existing record instead of adding one.
const DedupWindow = 24 * time.Hour

const (
	// scanBatchSize is how many product IDs one scan query filters on.
	scanBatchSize = 10
	// scanPageSize is the keyset page size when reading a batch.
	scanPageSize = 1000
	// scanBatchConcurrency caps concurrent batch queries per request.
	scanBatchConcurrency = 4

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

const scanColumns = `id, user_id, product_id, product_name, image_url, scanned_at`

type ScanService struct {
	db       DB
	products *ProductService
	feed     *ScanFeed
	now      func() time.Time
}

func NewScanService(db DB, products *ProductService, feed *ScanFeed) *ScanService {
	return &ScanService{
		db:       db,
		products: products,
		feed:     feed,
		now:      time.Now,
	}
}

// Log records that userID scanned productID and reports whether a record was
// written. Unknown products and store failures yield false; nothing is
// returned to the caller as an error.
//
// The lookup and the write are separate statements, so two simultaneous first
// scans by the same user can both insert.
func (s *ScanService) Log(ctx context.Context, userID, productID string) bool {
	logger := zerolog.Ctx(ctx).With().Str("user_id", userID).Str("product_id", productID).Logger()

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		metrics.ScansLogged.WithLabelValues("failed").Inc()
		logger.Error().Err(err).Msg("scan not logged: product lookup failed")
		return false
	}
	if p == nil {
		metrics.ScansLogged.WithLabelValues("missing_product").Inc()
		logger.Debug().Msg("scan not logged: product does not exist")
		return false
	}

	now := s.now()
	rec := model.ScanRecord{
		UserID:      userID,
		ProductID:   productID,
		ProductName: p.Name,
		ImageURL:    p.ImageURL,
		ScannedAt:   now,
	}

	err = s.db.QueryRow(ctx,
		`SELECT id FROM scan_history
		 WHERE user_id = $1 AND product_id = $2 AND scanned_at > $3
		 ORDER BY scanned_at DESC
		 LIMIT 1`, userID, productID, now.Add(-DedupWindow),
	).Scan(&rec.ID)

	refreshed := false
	switch {
	case err == nil:
		_, err = s.db.Exec(ctx,
			`UPDATE scan_history SET scanned_at = $2, product_name = $3, image_url = $4 WHERE id = $1`,
			rec.ID, now, rec.ProductName, rec.ImageURL)
		refreshed = true
	case errors.Is(err, pgx.ErrNoRows):
		rec.ID = platform.NewID()
		_, err = s.db.Exec(ctx,
			`INSERT INTO scan_history (id, user_id, product_id, product_name, image_url, scanned_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.ID, rec.UserID, rec.ProductID, rec.ProductName, rec.ImageURL, now)
	}
	if err != nil {
		metrics.ScansLogged.WithLabelValues("failed").Inc()
		logger.Error().Err(err).Msg("scan not logged")
		return false
	}

	outcome := "inserted"
	if refreshed {
		outcome = "refreshed"
	}
	metrics.ScansLogged.WithLabelValues(outcome).Inc()
	logger.Debug().Str("scan_id", rec.ID).Str("outcome", outcome).Msg("scan logged")

	if s.feed != nil {
		s.feed.Publish(model.ScanEvent{CompanyID: p.OwnerCompany(), Refreshed: refreshed, Scan: rec})
	}
	return true
}

// ListByUser returns a user's scan history, newest first.
func (s *ScanService) ListByUser(ctx context.Context, userID string, limit int) ([]model.ScanRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+scanColumns+` FROM scan_history
		 WHERE user_id = $1
		 ORDER BY scanned_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans for user %s: %w", userID, err)
	}

	records, err := collectScans(rows)
	if err != nil {
		return nil, fmt.Errorf("list scans for user %s: %w", userID, err)
	}
	return records, nil
}

// ListByProducts returns every scan record referencing one of productIDs,
// newest first. IDs are queried in batches of scanBatchSize, concurrently,
// each batch read page by page; the combined result is sorted once.
func (s *ScanService) ListByProducts(ctx context.Context, productIDs []string) ([]model.ScanRecord, error) {
	batches := partition(productIDs, scanBatchSize)
	results := make([][]model.ScanRecord, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanBatchConcurrency)
	for i, batch := range batches {
		g.Go(func() error {
			records, err := s.listBatch(gctx, batch)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := []model.ScanRecord{}
	for _, r := range results {
		all = append(all, r...)
	}
	sortScansNewestFirst(all)
	return all, nil
}

func (s *ScanService) listBatch(ctx context.Context, ids []string) ([]model.ScanRecord, error) {
	var all []model.ScanRecord
	for {
		var (
			rows pgx.Rows
			err  error
		)
		if len(all) == 0 {
			rows, err = s.db.Query(ctx,
				`SELECT `+scanColumns+` FROM scan_history
				 WHERE product_id = ANY($1)
				 ORDER BY scanned_at DESC, id DESC
				 LIMIT $2`, ids, scanPageSize)
		} else {
			last := all[len(all)-1]
			rows, err = s.db.Query(ctx,
				`SELECT `+scanColumns+` FROM scan_history
				 WHERE product_id = ANY($1) AND (scanned_at, id) < ($3, $4)
				 ORDER BY scanned_at DESC, id DESC
				 LIMIT $2`, ids, scanPageSize, last.ScannedAt, last.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("list scans for products: %w", err)
		}

		page, err := collectScans(rows)
		if err != nil {
			return nil, fmt.Errorf("list scans for products: %w", err)
		}
		all = append(all, page...)
		if len(page) < scanPageSize {
			return all, nil
		}
	}
}

func collectScans(rows pgx.Rows) ([]model.ScanRecord, error) {
	defer rows.Close()

	records := []model.ScanRecord{}
	for rows.Next() {
		var r model.ScanRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.ProductID, &r.ProductName, &r.ImageURL, &r.ScannedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func sortScansNewestFirst(records []model.ScanRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].ScannedAt.Equal(records[j].ScannedAt) {
			return records[i].ScannedAt.After(records[j].ScannedAt)
		}
		return records[i].ID > records[j].ID
	})
}

// partition splits ids into consecutive chunks of at most size elements.
func partition(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

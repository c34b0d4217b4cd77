package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/transpass/transpass/internal/metrics"
	"github.com/transpass/transpass/internal/model"
)

const dayLayout = "2006-01-02"

// AnalyticsService builds the scan dashboard for a company.
type AnalyticsService struct {
	products *ProductService
	scans    *ScanService
	loc      *time.Location
	now      func() time.Time
}

// NewAnalyticsService creates an AnalyticsService that buckets scans into
// calendar days of loc.
func NewAnalyticsService(products *ProductService, scans *ScanService, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{
		products: products,
		scans:    scans,
		loc:      loc,
		now:      time.Now,
	}
}

// Get returns the scan analytics of every product attributed to companyID.
func (s *AnalyticsService) Get(ctx context.Context, companyID string) (*model.ScanAnalytics, error) {
	start := time.Now()
	defer func() {
		metrics.AnalyticsDuration.Observe(time.Since(start).Seconds())
	}()

	products := s.products.ListByCompany(ctx, companyID)
	if len(products) == 0 {
		return aggregateScans(nil, nil, s.now(), s.loc), nil
	}

	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}

	records, err := s.scans.ListByProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("scan analytics for company %s: %w", companyID, err)
	}

	return aggregateScans(products, records, s.now(), s.loc), nil
}

// aggregateScans folds records into the dashboard aggregates. records must be
// sorted newest first.
func aggregateScans(products []model.Product, records []model.ScanRecord, now time.Time, loc *time.Location) *model.ScanAnalytics {
	out := &model.ScanAnalytics{
		TotalScans:       len(records),
		ProductCount:     len(products),
		ProductAnalytics: make([]model.ProductScanCount, 0, len(products)),
		RecentScans:      []model.ScanRecord{},
		TimeSeriesData:   dailyBuckets(now, loc),
	}
	if len(products) > 0 {
		out.AverageScansPerProduct = float64(out.TotalScans) / float64(len(products))
	}

	index := make(map[string]int, len(products))
	for _, p := range products {
		index[p.ID] = len(out.ProductAnalytics)
		out.ProductAnalytics = append(out.ProductAnalytics, model.ProductScanCount{
			ProductID:   p.ID,
			ProductName: p.Name,
			ImageURL:    p.ImageURL,
		})
	}

	days := make(map[string]int, len(out.TimeSeriesData))
	for i, d := range out.TimeSeriesData {
		days[d.Date] = i
	}

	for _, r := range records {
		if i, ok := index[r.ProductID]; ok {
			out.ProductAnalytics[i].ScanCount++
		}
		if i, ok := days[r.ScannedAt.In(loc).Format(dayLayout)]; ok {
			out.TimeSeriesData[i].Count++
		}
	}

	for i := range out.ProductAnalytics {
		out.ProductAnalytics[i].Percentage = percentage(out.ProductAnalytics[i].ScanCount, out.TotalScans)
	}
	sort.SliceStable(out.ProductAnalytics, func(i, j int) bool {
		a, b := out.ProductAnalytics[i], out.ProductAnalytics[j]
		if a.ScanCount != b.ScanCount {
			return a.ScanCount > b.ScanCount
		}
		return a.ProductName < b.ProductName
	})

	n := min(len(records), model.RecentScansLimit)
	out.RecentScans = append(out.RecentScans, records[:n]...)

	return out
}

// dailyBuckets returns one zero bucket per calendar day of the analytics
// window, oldest first, ending with today in loc.
func dailyBuckets(now time.Time, loc *time.Location) []model.DailyScanCount {
	today := now.In(loc)
	y, m, d := today.Date()

	buckets := make([]model.DailyScanCount, model.AnalyticsWindowDays)
	for i := range buckets {
		day := time.Date(y, m, d-(model.AnalyticsWindowDays-1)+i, 12, 0, 0, 0, loc)
		buckets[i] = model.DailyScanCount{Date: day.Format(dayLayout)}
	}
	return buckets
}

func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

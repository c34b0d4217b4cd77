package model

// AnalyticsWindowDays is the length of the daily time series.
const AnalyticsWindowDays = 30

// RecentScansLimit is how many scans the recent activity feed carries.
const RecentScansLimit = 10

type ScanAnalytics struct {
	TotalScans             int                `json:"total_scans"`
	ProductCount           int                `json:"product_count"`
	AverageScansPerProduct float64            `json:"average_scans_per_product"`
	ProductAnalytics       []ProductScanCount `json:"product_analytics"`
	RecentScans            []ScanRecord       `json:"recent_scans"`
	TimeSeriesData         []DailyScanCount   `json:"time_series_data"`
}

type ProductScanCount struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	ImageURL    string `json:"image_url,omitempty"`
	ScanCount   int    `json:"scan_count"`
	Percentage  int    `json:"percentage"`
}

type DailyScanCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

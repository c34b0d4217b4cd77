package model

import "time"

type ScanRecord struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	ProductID   string    `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name,omitempty" db:"product_name"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	ScannedAt   time.Time `json:"scanned_at" db:"scanned_at"`
}

// ScanEvent is published on the live feed after a scan is logged.
type ScanEvent struct {
	CompanyID string     `json:"company_id"`
	Refreshed bool       `json:"refreshed"`
	Scan      ScanRecord `json:"scan"`
}

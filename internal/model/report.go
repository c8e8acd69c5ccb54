package model

import "time"

// DumpReport represents a submitted illegal-dump report. Reports are
// immutable once stored.
type DumpReport struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	PhotoURL    string    `json:"photoUrl"`
	ReportType  string    `json:"reportType"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (r *DumpReport) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// DumpReportRequest is the API request body for submitting a report.
type DumpReportRequest struct {
	UserID      int64    `json:"userId"`
	PhotoURL    string   `json:"photoUrl"`
	ReportType  string   `json:"reportType"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

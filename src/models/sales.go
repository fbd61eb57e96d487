package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// SalesRecord is one typed row of a standardized file.
// Invalid Price, Quantity, Date or Revenue values are the missing marker for that field.
type SalesRecord struct {
	Name     string              `json:"name"`
	Price    decimal.NullDecimal `json:"price"`
	Quantity sql.NullInt64       `json:"-"`
	Date     sql.NullTime        `json:"-"`
	Region   string              `json:"region"`
	Revenue  decimal.NullDecimal `json:"revenue"`

	DayKey   string `json:"day,omitempty"`
	MonthKey string `json:"month,omitempty"`
}

// Dataset is the full set of records loaded from one standardized file.
type Dataset struct {
	SourceFile   string        `json:"source_file"`
	Records      []SalesRecord `json:"-"`
	MissingDates int           `json:"missing_dates"`
	HasRevenue   bool          `json:"has_revenue_column"`
}

// PreviewRow is the JSON-friendly form of a SalesRecord. Missing values are null.
type PreviewRow struct {
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int64           `json:"quantity"`
	Date     *string          `json:"date"`
	Region   string           `json:"region"`
	Revenue  *decimal.Decimal `json:"revenue"`
}

// Preview holds the first and last rows of a dataset.
type Preview struct {
	Head  []PreviewRow `json:"head"`
	Tail  []PreviewRow `json:"tail"`
	Total int          `json:"total"`
}

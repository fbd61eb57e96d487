package models

import "github.com/shopspring/decimal"

// Metric is a scalar indicator with a display label.
type Metric struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Metrics keeps the indicators in presentation order.
type Metrics []Metric

// Get returns the metric stored under key.
func (m Metrics) Get(key string) (Metric, bool) {
	for _, metric := range m {
		if metric.Key == key {
			return metric, true
		}
	}
	return Metric{}, false
}

// PeriodAggregate is a row of the by-day or by-month table.
type PeriodAggregate struct {
	Period   string          `json:"period"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int64           `json:"quantity"`
}

type ProductAggregate struct {
	Name     string          `json:"name"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int64           `json:"quantity"`
}

type RegionAggregate struct {
	Region   string          `json:"region"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int64           `json:"quantity"`
}

// ProductPrice carries the mean unit price of a product. AveragePrice is invalid
// when none of the product's rows had a usable price.
type ProductPrice struct {
	Name         string              `json:"name"`
	AveragePrice decimal.NullDecimal `json:"average_price"`
}

// RegionProductRank is one entry of a per-region leaderboard. Rank starts at 1 within each region.
type RegionProductRank struct {
	Region   string          `json:"region"`
	Rank     int             `json:"rank"`
	Name     string          `json:"name"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int64           `json:"quantity"`
}

// RegionShare is a region's fraction of total revenue, in [0, 1].
type RegionShare struct {
	Region  string          `json:"region"`
	Revenue decimal.Decimal `json:"revenue"`
	Share   decimal.Decimal `json:"share"`
}

// Report bundles every aggregate computed for a dataset.
type Report struct {
	SourceFile        string              `json:"source_file"`
	RowCount          int                 `json:"row_count"`
	MissingDates      int                 `json:"missing_dates"`
	Metrics           Metrics             `json:"metrics"`
	Daily             []PeriodAggregate   `json:"daily"`
	Monthly           []PeriodAggregate   `json:"monthly"`
	HasMonthlyTrend   bool                `json:"has_monthly_trend"`
	TopByRevenue      []ProductAggregate  `json:"top_products_by_revenue"`
	TopByQuantity     []ProductAggregate  `json:"top_products_by_quantity"`
	AveragePrices     []ProductPrice      `json:"average_prices"`
	Regions           []RegionAggregate   `json:"regions"`
	RegionShares      []RegionShare       `json:"region_shares"`
	RegionTopProducts []RegionProductRank `json:"region_top_products"`
	Preview           Preview             `json:"preview"`
}

package processors

import (
	"github.com/username/salesinsight/backend/src/models"
)

// ReportOptions sizes the rankings included in a Report.
type ReportOptions struct {
	TopN           int
	RegionTopN     int
	ShareThreshold float64
	PreviewRows    int
}

func DefaultReportOptions() ReportOptions {
	return ReportOptions{TopN: 10, RegionTopN: 3, ShareThreshold: 0.05, PreviewRows: 10}
}

// BuildReport runs every aggregation over the dataset.
func BuildReport(ds *models.Dataset, opts ReportOptions) *models.Report {
	records := ds.Records
	monthly := SalesByMonth(records)
	regions := SalesByRegion(records)

	return &models.Report{
		SourceFile:        ds.SourceFile,
		RowCount:          len(records),
		MissingDates:      ds.MissingDates,
		Metrics:           CalculateMetrics(records),
		Daily:             SalesByDate(records),
		Monthly:           monthly,
		HasMonthlyTrend:   HasTrend(monthly),
		TopByRevenue:      TopProducts(records, MeasureRevenue, opts.TopN),
		TopByQuantity:     TopProducts(records, MeasureQuantity, opts.TopN),
		AveragePrices:     AveragePricePerProduct(records),
		Regions:           regions,
		RegionShares:      RegionShares(regions, opts.ShareThreshold),
		RegionTopProducts: TopProductsByRegion(records, MeasureRevenue, opts.RegionTopN),
		Preview:           BuildPreview(records, opts.PreviewRows),
	}
}

package processors

import (
	"github.com/shopspring/decimal"
	"github.com/username/salesinsight/backend/src/models"
	"github.com/username/salesinsight/backend/src/utils"
)

const (
	MetricTotalRevenue = "total_revenue"
	MetricTotalSales   = "total_sales"
	MetricAveragePrice = "average_price"
	MetricMedianPrice  = "median_price"
)

var metricLabels = map[string]string{
	MetricTotalRevenue: "Revenue",
	MetricTotalSales:   "Units sold",
	MetricAveragePrice: "Average price",
	MetricMedianPrice:  "Median price",
}

// CalculateMetrics computes the headline indicators. Missing values are
// skipped; an empty input reports zero everywhere.
func CalculateMetrics(records []models.SalesRecord) models.Metrics {
	revenue := decimal.Zero
	var units int64
	prices := make([]decimal.Decimal, 0, len(records))

	for _, r := range records {
		if r.Revenue.Valid {
			revenue = revenue.Add(r.Revenue.Decimal)
		}
		if r.Quantity.Valid {
			units += r.Quantity.Int64
		}
		if r.Price.Valid {
			prices = append(prices, r.Price.Decimal)
		}
	}

	avg, _ := utils.MeanDecimal(prices)
	median, _ := utils.MedianDecimal(prices)

	return models.Metrics{
		newMetric(MetricTotalRevenue, utils.RoundMoney(revenue)),
		newMetric(MetricTotalSales, decimal.NewFromInt(units)),
		newMetric(MetricAveragePrice, utils.RoundMoney(avg)),
		newMetric(MetricMedianPrice, utils.RoundMoney(median)),
	}
}

func newMetric(key string, value decimal.Decimal) models.Metric {
	return models.Metric{Key: key, Label: metricLabels[key], Value: value}
}

package processors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/salesinsight/backend/src/models"
	"github.com/username/salesinsight/backend/src/utils"
)

// Measure selects the column a ranking is ordered by.
type Measure string

const (
	MeasureRevenue  Measure = "revenue"
	MeasureQuantity Measure = "quantity"
)

// OtherRegionLabel collects regions folded together by RegionShares.
const OtherRegionLabel = "Other"

var ErrUnknownMeasure = errors.New("unknown measure")

// ParseMeasure accepts "revenue" or "quantity" in any case. An empty string means revenue.
func ParseMeasure(s string) (Measure, error) {
	switch Measure(strings.ToLower(strings.TrimSpace(s))) {
	case "", MeasureRevenue:
		return MeasureRevenue, nil
	case MeasureQuantity:
		return MeasureQuantity, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownMeasure, s, MeasureRevenue, MeasureQuantity)
	}
}

type totals struct {
	revenue  decimal.Decimal
	quantity int64
}

func (t *totals) add(r models.SalesRecord) {
	if r.Revenue.Valid {
		t.revenue = t.revenue.Add(r.Revenue.Decimal)
	}
	if r.Quantity.Valid {
		t.quantity += r.Quantity.Int64
	}
}

// greater orders two totals by measure, descending.
func (m Measure) greater(a, b totals) bool {
	if m == MeasureQuantity {
		return a.quantity > b.quantity
	}
	return a.revenue.GreaterThan(b.revenue)
}

// groupBy sums records per key and returns the keys in ascending order.
// Records whose key is empty are skipped.
func groupBy(records []models.SalesRecord, key func(models.SalesRecord) string) ([]string, map[string]*totals) {
	groups := make(map[string]*totals)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		g, ok := groups[k]
		if !ok {
			g = &totals{revenue: decimal.Zero}
			groups[k] = g
		}
		g.add(r)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, groups
}

func periodTable(records []models.SalesRecord, key func(models.SalesRecord) string) []models.PeriodAggregate {
	keys, groups := groupBy(records, key)
	out := make([]models.PeriodAggregate, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.PeriodAggregate{Period: k, Revenue: groups[k].revenue, Quantity: groups[k].quantity})
	}
	return out
}

// SalesByDate sums revenue and quantity per calendar day in ascending order.
// Rows with a missing date are left out.
func SalesByDate(records []models.SalesRecord) []models.PeriodAggregate {
	return periodTable(records, func(r models.SalesRecord) string { return r.DayKey })
}

// SalesByMonth sums revenue and quantity per YYYY-MM in ascending order.
func SalesByMonth(records []models.SalesRecord) []models.PeriodAggregate {
	return periodTable(records, func(r models.SalesRecord) string { return r.MonthKey })
}

// HasTrend reports whether a period table spans more than one period.
func HasTrend(periods []models.PeriodAggregate) bool {
	return len(periods) > 1
}

// TopProducts ranks products by the measure, descending. Ties keep the
// alphabetical grouping order. n <= 0 yields an empty result.
func TopProducts(records []models.SalesRecord, by Measure, n int) []models.ProductAggregate {
	if n <= 0 {
		return []models.ProductAggregate{}
	}
	names, groups := groupBy(records, func(r models.SalesRecord) string { return r.Name })
	sort.SliceStable(names, func(i, j int) bool { return by.greater(*groups[names[i]], *groups[names[j]]) })

	names = names[:utils.MinInt(n, len(names))]
	out := make([]models.ProductAggregate, 0, len(names))
	for _, name := range names {
		out = append(out, models.ProductAggregate{Name: name, Revenue: groups[name].revenue, Quantity: groups[name].quantity})
	}
	return out
}

// AveragePricePerProduct returns the mean unit price of each product, highest
// first, rounded to cents. Products without any usable price come last.
func AveragePricePerProduct(records []models.SalesRecord) []models.ProductPrice {
	prices := make(map[string][]decimal.Decimal)
	var names []string
	for _, r := range records {
		if _, seen := prices[r.Name]; !seen {
			names = append(names, r.Name)
			prices[r.Name] = nil
		}
		if r.Price.Valid {
			prices[r.Name] = append(prices[r.Name], r.Price.Decimal)
		}
	}
	sort.Strings(names)

	means := make([]models.ProductPrice, 0, len(names))
	for _, name := range names {
		pp := models.ProductPrice{Name: name}
		if mean, ok := utils.MeanDecimal(prices[name]); ok {
			pp.AveragePrice = decimal.NullDecimal{Decimal: mean, Valid: true}
		}
		means = append(means, pp)
	}
	// Order on the exact means; rounding happens only in the output.
	sort.SliceStable(means, func(i, j int) bool {
		a, b := means[i].AveragePrice, means[j].AveragePrice
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Decimal.GreaterThan(b.Decimal)
	})
	for i := range means {
		if means[i].AveragePrice.Valid {
			means[i].AveragePrice.Decimal = utils.RoundMoney(means[i].AveragePrice.Decimal)
		}
	}
	return means
}

// SalesByRegion sums revenue and quantity per region, highest revenue first.
func SalesByRegion(records []models.SalesRecord) []models.RegionAggregate {
	regions, groups := groupBy(records, func(r models.SalesRecord) string { return r.Region })
	sort.SliceStable(regions, func(i, j int) bool {
		return MeasureRevenue.greater(*groups[regions[i]], *groups[regions[j]])
	})
	out := make([]models.RegionAggregate, 0, len(regions))
	for _, region := range regions {
		out = append(out, models.RegionAggregate{Region: region, Revenue: groups[region].revenue, Quantity: groups[region].quantity})
	}
	return out
}

type regionProduct struct {
	region string
	name   string
	totals
}

// TopProductsByRegion keeps the n best products of every region by the
// measure. Entries are ordered by measure across all regions; Rank restarts
// at 1 within each region.
func TopProductsByRegion(records []models.SalesRecord, by Measure, n int) []models.RegionProductRank {
	if n <= 0 {
		return []models.RegionProductRank{}
	}

	index := make(map[[2]string]int)
	var pairs []regionProduct
	for _, r := range records {
		k := [2]string{r.Region, r.Name}
		i, ok := index[k]
		if !ok {
			i = len(pairs)
			index[k] = i
			pairs = append(pairs, regionProduct{region: r.Region, name: r.Name, totals: totals{revenue: decimal.Zero}})
		}
		pairs[i].add(r)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].region != pairs[j].region {
			return pairs[i].region < pairs[j].region
		}
		return pairs[i].name < pairs[j].name
	})
	sort.SliceStable(pairs, func(i, j int) bool { return by.greater(pairs[i].totals, pairs[j].totals) })

	ranks := make(map[string]int)
	out := make([]models.RegionProductRank, 0)
	for _, p := range pairs {
		if ranks[p.region] >= n {
			continue
		}
		ranks[p.region]++
		out = append(out, models.RegionProductRank{
			Region:   p.region,
			Rank:     ranks[p.region],
			Name:     p.name,
			Revenue:  p.revenue,
			Quantity: p.quantity,
		})
	}
	return out
}

// RegionShares converts region totals into revenue shares. Regions below
// threshold are folded into a single OtherRegionLabel entry placed last.
// A threshold <= 0 folds nothing.
func RegionShares(regions []models.RegionAggregate, threshold float64) []models.RegionShare {
	total := decimal.Zero
	for _, r := range regions {
		total = total.Add(r.Revenue)
	}

	out := make([]models.RegionShare, 0, len(regions))
	if total.IsZero() {
		for _, r := range regions {
			out = append(out, models.RegionShare{Region: r.Region, Revenue: r.Revenue, Share: decimal.Zero})
		}
		return out
	}

	limit := decimal.NewFromFloat(threshold)
	other := decimal.Zero
	folded := 0
	for _, r := range regions {
		share := r.Revenue.Div(total)
		if threshold > 0 && share.LessThan(limit) {
			other = other.Add(r.Revenue)
			folded++
			continue
		}
		out = append(out, models.RegionShare{Region: r.Region, Revenue: r.Revenue, Share: share.Round(4)})
	}
	if folded > 0 {
		out = append(out, models.RegionShare{Region: OtherRegionLabel, Revenue: other, Share: other.Div(total).Round(4)})
	}
	return out
}

// BuildPreview returns up to n rows from each end of the records.
func BuildPreview(records []models.SalesRecord, n int) models.Preview {
	if n < 0 {
		n = 0
	}
	head := records[:utils.MinInt(n, len(records))]
	tail := records[len(records)-utils.MinInt(n, len(records)):]
	return models.Preview{Head: toPreviewRows(head), Tail: toPreviewRows(tail), Total: len(records)}
}

func toPreviewRows(records []models.SalesRecord) []models.PreviewRow {
	out := make([]models.PreviewRow, 0, len(records))
	for _, r := range records {
		row := models.PreviewRow{Name: r.Name, Region: r.Region}
		if r.Price.Valid {
			p := r.Price.Decimal
			row.Price = &p
		}
		if r.Quantity.Valid {
			q := r.Quantity.Int64
			row.Quantity = &q
		}
		if r.Date.Valid {
			d := r.DayKey
			row.Date = &d
		}
		if r.Revenue.Valid {
			rev := r.Revenue.Decimal
			row.Revenue = &rev
		}
		out = append(out, row)
	}
	return out
}

package processors

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/salesinsight/backend/src/models"
)

const salesFixture = `name,price,quantity,date,region
Apple,10,2,2023-01-05,North
Banana,5,10,2023-01-05,South
Apple,12,1,2023-02-10,North
Cherry,abc,3,2023-02-11,North
Banana,5,4,bad-date,South
Durian,100,1,2023-03-01,East
`

func loadFixture(t *testing.T) *models.Dataset {
	t.Helper()
	ds, err := LoadSales(strings.NewReader(salesFixture))
	require.NoError(t, err)
	return ds
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestLoadSales(t *testing.T) {
	ds := loadFixture(t)

	require.Len(t, ds.Records, 6)
	assert.Equal(t, 1, ds.MissingDates)
	assert.False(t, ds.HasRevenue)

	first := ds.Records[0]
	assert.Equal(t, "Apple", first.Name)
	assertDec(t, "20", first.Revenue.Decimal)
	assert.Equal(t, "2023-01-05", first.DayKey)
	assert.Equal(t, "2023-01", first.MonthKey)

	cherry := ds.Records[3]
	assert.False(t, cherry.Price.Valid)
	assert.False(t, cherry.Revenue.Valid)
	assert.Equal(t, int64(3), cherry.Quantity.Int64)

	undated := ds.Records[4]
	assert.False(t, undated.Date.Valid)
	assert.Empty(t, undated.DayKey)
	assert.Empty(t, undated.MonthKey)
}

func TestLoadSalesUsesRevenueColumn(t *testing.T) {
	ds, err := LoadSales(strings.NewReader("name,price,quantity,date,region,revenue\nA,10,2,2023-01-01,N,99.5\nB,1,1,2023-01-01,N,x\n"))
	require.NoError(t, err)

	assert.True(t, ds.HasRevenue)
	assertDec(t, "99.5", ds.Records[0].Revenue.Decimal)
	assert.False(t, ds.Records[1].Revenue.Valid)
}

func TestLoadSalesRejectsMissingColumns(t *testing.T) {
	_, err := LoadSales(strings.NewReader("name,price\nA,1\n"))
	assert.True(t, errors.Is(err, ErrMalformedFile))
}

func TestLoadSalesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standardized_sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(salesFixture), 0o644))

	ds, err := LoadSalesFile(path)
	require.NoError(t, err)
	assert.Equal(t, "standardized_sales.csv", ds.SourceFile)
	assert.Len(t, ds.Records, 6)

	_, err = LoadSalesFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseNumericCells(t *testing.T) {
	assert.True(t, ParsePrice(" 10.50 ").Valid)
	assert.False(t, ParsePrice("-1").Valid)
	assert.False(t, ParsePrice("ten").Valid)

	assert.Equal(t, int64(3), ParseQuantity("3").Int64)
	assert.Equal(t, int64(3), ParseQuantity("3.0").Int64)
	assert.False(t, ParseQuantity("2.5").Valid)
	assert.False(t, ParseQuantity("-2").Valid)
	assert.False(t, ParseQuantity("").Valid)
}

func TestCalculateMetrics(t *testing.T) {
	metrics := CalculateMetrics(loadFixture(t).Records)

	require.Len(t, metrics, 4)
	want := map[string]string{
		MetricTotalRevenue: "202",
		MetricTotalSales:   "21",
		MetricAveragePrice: "26.4",
		MetricMedianPrice:  "10",
	}
	for key, value := range want {
		m, ok := metrics.Get(key)
		require.True(t, ok, key)
		assertDec(t, value, m.Value, key)
		assert.NotEmpty(t, m.Label)
	}
}

func TestCalculateMetricsRoundsToCents(t *testing.T) {
	ds, err := LoadSales(strings.NewReader("name,price,quantity,date,region\nA,0.333,3,2023-01-01,N\nB,0.334,1,2023-01-01,N\n"))
	require.NoError(t, err)

	metrics := CalculateMetrics(ds.Records)
	m, _ := metrics.Get(MetricTotalRevenue)
	assertDec(t, "1.33", m.Value)
	m, _ = metrics.Get(MetricAveragePrice)
	assertDec(t, "0.33", m.Value)
}

func TestCalculateMetricsEmpty(t *testing.T) {
	for _, m := range CalculateMetrics(nil) {
		assert.True(t, m.Value.IsZero(), m.Key)
	}
}

func TestSalesByDateAndMonth(t *testing.T) {
	records := loadFixture(t).Records

	daily := SalesByDate(records)
	require.Len(t, daily, 4)
	assert.Equal(t, "2023-01-05", daily[0].Period)
	assertDec(t, "70", daily[0].Revenue)
	assert.Equal(t, int64(12), daily[0].Quantity)
	assert.Equal(t, "2023-02-11", daily[2].Period)
	assertDec(t, "0", daily[2].Revenue)
	assert.Equal(t, int64(3), daily[2].Quantity)

	monthly := SalesByMonth(records)
	require.Len(t, monthly, 3)
	assert.Equal(t, []string{"2023-01", "2023-02", "2023-03"}, []string{monthly[0].Period, monthly[1].Period, monthly[2].Period})
	assertDec(t, "12", monthly[1].Revenue)
	assert.Equal(t, int64(4), monthly[1].Quantity)
	assert.True(t, HasTrend(monthly))
	assert.False(t, HasTrend(monthly[:1]))
}

func TestTopProducts(t *testing.T) {
	records := loadFixture(t).Records

	byRevenue := TopProducts(records, MeasureRevenue, 2)
	require.Len(t, byRevenue, 2)
	assert.Equal(t, "Durian", byRevenue[0].Name)
	assert.Equal(t, "Banana", byRevenue[1].Name)

	byQuantity := TopProducts(records, MeasureQuantity, 10)
	names := make([]string, len(byQuantity))
	for i, p := range byQuantity {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Banana", "Apple", "Cherry", "Durian"}, names, "ties keep alphabetical order")

	assert.Empty(t, TopProducts(records, MeasureRevenue, 0))
}

func TestParseMeasure(t *testing.T) {
	m, err := ParseMeasure("Quantity")
	require.NoError(t, err)
	assert.Equal(t, MeasureQuantity, m)

	m, err = ParseMeasure("")
	require.NoError(t, err)
	assert.Equal(t, MeasureRevenue, m)

	_, err = ParseMeasure("profit")
	assert.True(t, errors.Is(err, ErrUnknownMeasure))
}

func TestAveragePricePerProduct(t *testing.T) {
	prices := AveragePricePerProduct(loadFixture(t).Records)

	require.Len(t, prices, 4)
	assert.Equal(t, "Durian", prices[0].Name)
	assertDec(t, "100", prices[0].AveragePrice.Decimal)
	assert.Equal(t, "Apple", prices[1].Name)
	assertDec(t, "11", prices[1].AveragePrice.Decimal)
	assert.Equal(t, "Banana", prices[2].Name)
	assert.Equal(t, "Cherry", prices[3].Name)
	assert.False(t, prices[3].AveragePrice.Valid)
}

func TestAveragePricePerProductOrdersOnExactMean(t *testing.T) {
	records := []models.SalesRecord{
		{Name: "Alpha", Price: ParsePrice("1.001")},
		{Name: "Beta", Price: ParsePrice("1.003")},
		{Name: "Beta", Price: ParsePrice("1.005")},
	}
	prices := AveragePricePerProduct(records)

	require.Len(t, prices, 2)
	assert.Equal(t, "Beta", prices[0].Name)
	assert.Equal(t, "Alpha", prices[1].Name)
	assertDec(t, "1", prices[0].AveragePrice.Decimal)
	assertDec(t, "1", prices[1].AveragePrice.Decimal)
}

func TestSalesByRegion(t *testing.T) {
	regions := SalesByRegion(loadFixture(t).Records)

	require.Len(t, regions, 3)
	assert.Equal(t, "East", regions[0].Region)
	assert.Equal(t, "South", regions[1].Region)
	assert.Equal(t, "North", regions[2].Region)
	assertDec(t, "32", regions[2].Revenue)
	assert.Equal(t, int64(6), regions[2].Quantity)

	for i := 1; i < len(regions); i++ {
		assert.False(t, regions[i].Revenue.GreaterThan(regions[i-1].Revenue), "revenue is non-increasing")
	}
}

func TestTopProductsByRegion(t *testing.T) {
	records := loadFixture(t).Records

	top1 := TopProductsByRegion(records, MeasureRevenue, 1)
	require.Len(t, top1, 3)
	assert.Equal(t, models.RegionProductRank{Region: "East", Rank: 1, Name: "Durian", Revenue: top1[0].Revenue, Quantity: 1}, top1[0])
	assert.Equal(t, "South", top1[1].Region)
	assert.Equal(t, "Banana", top1[1].Name)
	assert.Equal(t, "North", top1[2].Region)
	assert.Equal(t, "Apple", top1[2].Name)

	top2 := TopProductsByRegion(records, MeasureRevenue, 2)
	require.Len(t, top2, 4)
	assert.Equal(t, "Cherry", top2[3].Name)
	assert.Equal(t, 2, top2[3].Rank)

	for _, r := range top2 {
		assert.LessOrEqual(t, r.Rank, 2)
	}
	assert.Empty(t, TopProductsByRegion(records, MeasureQuantity, 0))
}

func TestRegionShares(t *testing.T) {
	regions := SalesByRegion(loadFixture(t).Records)

	shares := RegionShares(regions, 0.2)
	require.Len(t, shares, 3)
	assert.Equal(t, "East", shares[0].Region)
	assertDec(t, "0.495", shares[0].Share)
	assert.Equal(t, OtherRegionLabel, shares[2].Region)
	assertDec(t, "32", shares[2].Revenue)
	assertDec(t, "0.1584", shares[2].Share)

	assert.Len(t, RegionShares(regions, 0), 3)

	zero := RegionShares([]models.RegionAggregate{{Region: "X", Revenue: decimal.Zero}}, 0.05)
	require.Len(t, zero, 1)
	assert.True(t, zero[0].Share.IsZero())
}

func TestBuildPreview(t *testing.T) {
	records := loadFixture(t).Records

	p := BuildPreview(records, 2)
	assert.Equal(t, 6, p.Total)
	require.Len(t, p.Head, 2)
	require.Len(t, p.Tail, 2)
	assert.Equal(t, "Apple", p.Head[0].Name)
	assert.Equal(t, "Durian", p.Tail[1].Name)
	assert.Nil(t, p.Tail[0].Date, "missing date previews as null")

	assert.Len(t, BuildPreview(records, 100).Head, 6)
}

func TestBuildReport(t *testing.T) {
	report := BuildReport(loadFixture(t), DefaultReportOptions())

	assert.Equal(t, 6, report.RowCount)
	assert.Equal(t, 1, report.MissingDates)
	assert.True(t, report.HasMonthlyTrend)
	assert.Len(t, report.TopByRevenue, 4)
	assert.Len(t, report.Regions, 3)
	assert.Len(t, report.RegionTopProducts, 4)
}

package processors

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/salesinsight/backend/src/logger"
	"github.com/username/salesinsight/backend/src/models"
	"github.com/username/salesinsight/backend/src/utils"
)

// RevenueColumn is read in place of price*quantity when a loaded file carries it.
const RevenueColumn = "revenue"

// ErrMalformedFile means a standardized file lacks one of the required columns.
var ErrMalformedFile = errors.New("standardized file is malformed")

// LoadSalesFile reads a standardized file from disk into a Dataset.
func LoadSalesFile(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := LoadSales(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}
	ds.SourceFile = filepath.Base(path)
	return ds, nil
}

// LoadSales parses standardized CSV content. Numeric cells that cannot be read
// become missing values; dates go through utils.ResolveDate.
func LoadSales(r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &models.Dataset{}, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, field := range models.RequiredFields {
		if _, ok := index[string(field)]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedFile, field)
		}
	}
	revenueIdx, hasRevenue := index[RevenueColumn]

	ds := &models.Dataset{HasRevenue: hasRevenue}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		cell := func(i int) string {
			if i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		rec := models.SalesRecord{
			Name:     cell(index[string(models.FieldName)]),
			Price:    ParsePrice(cell(index[string(models.FieldPrice)])),
			Quantity: ParseQuantity(cell(index[string(models.FieldQuantity)])),
			Date:     utils.ResolveDate(cell(index[string(models.FieldDate)])),
			Region:   cell(index[string(models.FieldRegion)]),
		}
		if hasRevenue {
			rec.Revenue = ParseAmount(cell(revenueIdx))
		} else {
			rec.Revenue = ComputeRevenue(rec.Price, rec.Quantity)
		}
		rec.DayKey = utils.DayKey(rec.Date)
		rec.MonthKey = utils.MonthKey(rec.Date)
		if !rec.Date.Valid {
			ds.MissingDates++
		}
		ds.Records = append(ds.Records, rec)
	}

	if ds.MissingDates > 0 {
		logger.L.Warn("Some dates could not be parsed and were marked as missing", "missing", ds.MissingDates, "rows", len(ds.Records))
	}
	return ds, nil
}

// ParseAmount reads any decimal number, or returns the missing marker.
func ParseAmount(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ParsePrice reads a non-negative decimal unit price.
func ParsePrice(s string) decimal.NullDecimal {
	d := ParseAmount(s)
	if d.Valid && d.Decimal.IsNegative() {
		return decimal.NullDecimal{}
	}
	return d
}

// ParseQuantity reads a non-negative whole number. Integral decimals such as "3.0" are accepted.
func ParseQuantity(s string) sql.NullInt64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return sql.NullInt64{}
		}
		return sql.NullInt64{Int64: n, Valid: true}
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: d.IntPart(), Valid: true}
}

// ComputeRevenue is price times quantity, missing when either operand is.
func ComputeRevenue(price decimal.NullDecimal, quantity sql.NullInt64) decimal.NullDecimal {
	if !price.Valid || !quantity.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: price.Decimal.Mul(decimal.NewFromInt(quantity.Int64)), Valid: true}
}

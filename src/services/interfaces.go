package services

import (
	"context"
	"io"

	"github.com/username/salesinsight/backend/src/models"
	"github.com/username/salesinsight/backend/src/processors"
)

// UploadedFile is a file received from a client, before any validation.
type UploadedFile struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// IngestionService turns an uploaded CSV into a standardized file.
type IngestionService interface {
	// ProcessUpload always returns a result describing the outcome. On failure
	// the error is returned as well, wrapping one of the package sentinels or
	// validation.ErrValidationFailed.
	ProcessUpload(ctx context.Context, file UploadedFile) (*models.UploadResult, error)
}

// CacheInvalidator drops anything derived from a standardized file.
type CacheInvalidator interface {
	Invalidate(savedAs string)
}

// AnalyticsService computes aggregates over a standardized file.
type AnalyticsService interface {
	CacheInvalidator
	GetDataset(savedAs string) (*models.Dataset, error)
	GetReport(savedAs string) (*models.Report, error)
	GetMetrics(savedAs string) (models.Metrics, error)
	GetDailySales(savedAs string) ([]models.PeriodAggregate, error)
	GetMonthlySales(savedAs string) ([]models.PeriodAggregate, error)
	GetTopProducts(savedAs string, by processors.Measure, n int) ([]models.ProductAggregate, error)
	GetAveragePrices(savedAs string) ([]models.ProductPrice, error)
	GetRegionSales(savedAs string) ([]models.RegionAggregate, error)
	GetRegionTopProducts(savedAs string, by processors.Measure, n int) ([]models.RegionProductRank, error)
	GetRegionShares(savedAs string, threshold float64) ([]models.RegionShare, error)
}

package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/salesinsight/backend/src/logger"
	"github.com/username/salesinsight/backend/src/models"
	"github.com/username/salesinsight/backend/src/processors"
	"github.com/username/salesinsight/backend/src/storage"
)

const (
	ckDataset = "dataset_file_%s"
	ckReport  = "report_file_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type analyticsServiceImpl struct {
	store       *storage.FileStore
	reportCache *cache.Cache
	opts        processors.ReportOptions
}

// NewAnalyticsService reads standardized files from uploadFolder and memoizes
// parsed datasets and reports in reportCache.
func NewAnalyticsService(uploadFolder string, reportCache *cache.Cache, opts processors.ReportOptions) AnalyticsService {
	return &analyticsServiceImpl{
		store:       storage.NewFileStore(uploadFolder),
		reportCache: reportCache,
		opts:        opts,
	}
}

// Invalidate clears every cache entry derived from savedAs.
func (s *analyticsServiceImpl) Invalidate(savedAs string) {
	s.reportCache.Delete(fmt.Sprintf(ckDataset, savedAs))
	s.reportCache.Delete(fmt.Sprintf(ckReport, savedAs))
	logger.L.Info("Invalidated cached analytics", "savedAs", savedAs)
}

func (s *analyticsServiceImpl) GetDataset(savedAs string) (*models.Dataset, error) {
	key := fmt.Sprintf(ckDataset, savedAs)
	if cached, found := s.reportCache.Get(key); found {
		logger.L.Debug("Cache hit for dataset", "savedAs", savedAs)
		return cached.(*models.Dataset), nil
	}

	path, err := s.store.Path(savedAs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetNotFound, err)
	}
	ds, err := processors.LoadSalesFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, savedAs)
		}
		return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}

	s.reportCache.Set(key, ds, cache.DefaultExpiration)
	logger.L.Info("Dataset loaded", "savedAs", savedAs, "rows", len(ds.Records), "missingDates", ds.MissingDates)
	return ds, nil
}

func (s *analyticsServiceImpl) GetReport(savedAs string) (*models.Report, error) {
	key := fmt.Sprintf(ckReport, savedAs)
	if cached, found := s.reportCache.Get(key); found {
		logger.L.Debug("Cache hit for report", "savedAs", savedAs)
		return cached.(*models.Report), nil
	}

	ds, err := s.GetDataset(savedAs)
	if err != nil {
		return nil, err
	}
	report := processors.BuildReport(ds, s.opts)
	s.reportCache.Set(key, report, cache.DefaultExpiration)
	return report, nil
}

func (s *analyticsServiceImpl) GetMetrics(savedAs string) (models.Metrics, error) {
	ds, err := s.GetDataset(savedAs)
	if err != nil {
		return nil, err
	}
	return processors.CalculateMetrics(ds.Records), nil
}

func (s *analyticsServiceImpl) GetDailySales(savedAs string) ([]models.PeriodAggregate, error) {
	ds, err := s.GetDataset(savedAs)
	if err != nil {
		return nil, err
	}
	return processors.SalesByDate(ds.Records), nil
}

func (s *analyticsServiceImpl) GetMonthlySales(savedAs string) ([]models.PeriodAggregate, error) {
	ds, err := s.GetDataset(savedAs)
	if err != nil {
		return nil, err
	}
	return processors.SalesByMonth(ds.Records), nil
}

func (s *analyticsServiceImpl) GetTopProducts(savedAs string, by processors.Measure, n int) ([]models.ProductAggregate, error) {
	ds, err := s.GetDataset(savedAs)
	if err != nil {
		return nil, err
	}
	return processors.TopProducts(ds.Records, by, n), nil
}

func (s *analyticsServiceImpl) GetAveragePrices(savedAs string) ([]models.ProductPrice, error) {
	ds, err := s.GetDataset(savedAs)
	if err != nil {
		return nil, err
	}
	return processors.AveragePricePerProduct(ds.Records), nil
}

func (s *analyticsServiceImpl) GetRegionSales(savedAs string) ([]models.RegionAggregate, error) {
	ds, err := s.GetDataset(savedAs)
	if err != nil {
		return nil, err
	}
	return processors.SalesByRegion(ds.Records), nil
}

func (s *analyticsServiceImpl) GetRegionTopProducts(savedAs string, by processors.Measure, n int) ([]models.RegionProductRank, error) {
	ds, err := s.GetDataset(savedAs)
	if err != nil {
		return nil, err
	}
	return processors.TopProductsByRegion(ds.Records, by, n), nil
}

func (s *analyticsServiceImpl) GetRegionShares(savedAs string, threshold float64) ([]models.RegionShare, error) {
	regions, err := s.GetRegionSales(savedAs)
	if err != nil {
		return nil, err
	}
	return processors.RegionShares(regions, threshold), nil
}

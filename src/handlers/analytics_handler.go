package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/salesinsight/backend/src/logger"
	"github.com/username/salesinsight/backend/src/models"
	"github.com/username/salesinsight/backend/src/processors"
	"github.com/username/salesinsight/backend/src/security"
	"github.com/username/salesinsight/backend/src/services"
	"github.com/username/salesinsight/backend/src/utils"
)

const maxTopN = 1000

// AnalyticsDefaults are used when a request omits n or threshold.
type AnalyticsDefaults struct {
	TopN           int
	RegionTopN     int
	ShareThreshold float64
}

type AnalyticsHandler struct {
	analytics services.AnalyticsService
	sessions  *security.SessionService
	defaults  AnalyticsDefaults
}

func NewAnalyticsHandler(analytics services.AnalyticsService, sessions *security.SessionService, defaults AnalyticsDefaults) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, sessions: sessions, defaults: defaults}
}

// savedAs picks the standardized file a request refers to: the file query
// parameter when present, otherwise the one recorded in the session cookie.
func (h *AnalyticsHandler) savedAs(w http.ResponseWriter, r *http.Request) (string, bool) {
	if name := r.URL.Query().Get("file"); name != "" {
		return name, true
	}
	claims, err := h.sessions.FromRequest(r)
	if err != nil {
		logger.FromContext(r.Context()).Debug("No usable session for analytics request", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "no uploaded file in this session, upload a CSV first", http.StatusBadRequest)
		return "", false
	}
	return claims.SavedAs, true
}

func (h *AnalyticsHandler) sendServiceError(w http.ResponseWriter, r *http.Request, savedAs string, err error) {
	if errors.Is(err, services.ErrDatasetNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("file %q not found", savedAs), http.StatusNotFound)
		return
	}
	logger.FromContext(r.Context()).Error("Analytics request failed", "path", r.URL.Path, "savedAs", savedAs, "error", err)
	utils.SendJSONError(w, "failed to compute analytics for the uploaded file", http.StatusInternalServerError)
}

func parseTopN(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxTopN {
		return 0, fmt.Errorf("n must be an integer between 1 and %d", maxTopN)
	}
	return n, nil
}

func parseRanking(r *http.Request, fallbackN int) (processors.Measure, int, error) {
	by, err := processors.ParseMeasure(r.URL.Query().Get("by"))
	if err != nil {
		return "", 0, err
	}
	n, err := parseTopN(r, fallbackN)
	if err != nil {
		return "", 0, err
	}
	return by, n, nil
}

// nonNil keeps empty tables encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (h *AnalyticsHandler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	savedAs, ok := h.savedAs(w, r)
	if !ok {
		return
	}
	metrics, err := h.analytics.GetMetrics(savedAs)
	if err != nil {
		h.sendServiceError(w, r, savedAs, err)
		return
	}
	utils.SendJSON(w, nonNil(metrics), http.StatusOK)
}

func (h *AnalyticsHandler) HandleGetDailySales(w http.ResponseWriter, r *http.Request) {
	savedAs, ok := h.savedAs(w, r)
	if !ok {
		return
	}
	daily, err := h.analytics.GetDailySales(savedAs)
	if err != nil {
		h.sendServiceError(w, r, savedAs, err)
		return
	}
	utils.SendJSON(w, nonNil(daily), http.StatusOK)
}

func (h *AnalyticsHandler) HandleGetMonthlySales(w http.ResponseWriter, r *http.Request) {
	savedAs, ok := h.savedAs(w, r)
	if !ok {
		return
	}
	monthly, err := h.analytics.GetMonthlySales(savedAs)
	if err != nil {
		h.sendServiceError(w, r, savedAs, err)
		return
	}
	utils.SendJSON(w, nonNil(monthly), http.StatusOK)
}

func (h *AnalyticsHandler) HandleGetTopProducts(w http.ResponseWriter, r *http.Request) {
	by, n, err := parseRanking(r, h.defaults.TopN)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	savedAs, ok := h.savedAs(w, r)
	if !ok {
		return
	}
	top, err := h.analytics.GetTopProducts(savedAs, by, n)
	if err != nil {
		h.sendServiceError(w, r, savedAs, err)
		return
	}
	utils.SendJSON(w, nonNil(top), http.StatusOK)
}

func (h *AnalyticsHandler) HandleGetAveragePrices(w http.ResponseWriter, r *http.Request) {
	savedAs, ok := h.savedAs(w, r)
	if !ok {
		return
	}
	prices, err := h.analytics.GetAveragePrices(savedAs)
	if err != nil {
		h.sendServiceError(w, r, savedAs, err)
		return
	}
	utils.SendJSON(w, nonNil(prices), http.StatusOK)
}

func (h *AnalyticsHandler) HandleGetRegions(w http.ResponseWriter, r *http.Request) {
	savedAs, ok := h.savedAs(w, r)
	if !ok {
		return
	}
	regions, err := h.analytics.GetRegionSales(savedAs)
	if err != nil {
		h.sendServiceError(w, r, savedAs, err)
		return
	}
	utils.SendJSON(w, nonNil(regions), http.StatusOK)
}

func (h *AnalyticsHandler) HandleGetRegionTopProducts(w http.ResponseWriter, r *http.Request) {
	by, n, err := parseRanking(r, h.defaults.RegionTopN)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	savedAs, ok := h.savedAs(w, r)
	if !ok {
		return
	}
	ranks, err := h.analytics.GetRegionTopProducts(savedAs, by, n)
	if err != nil {
		h.sendServiceError(w, r, savedAs, err)
		return
	}
	utils.SendJSON(w, nonNil(ranks), http.StatusOK)
}

func (h *AnalyticsHandler) HandleGetRegionShares(w http.ResponseWriter, r *http.Request) {
	threshold := h.defaults.ShareThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || t < 0 || t > 1 {
			utils.SendJSONError(w, "threshold must be a number between 0 and 1", http.StatusBadRequest)
			return
		}
		threshold = t
	}
	savedAs, ok := h.savedAs(w, r)
	if !ok {
		return
	}
	shares, err := h.analytics.GetRegionShares(savedAs, threshold)
	if err != nil {
		h.sendServiceError(w, r, savedAs, err)
		return
	}
	utils.SendJSON(w, nonNil(shares), http.StatusOK)
}

// HandleGetReport returns the full report and honours If-None-Match.
func (h *AnalyticsHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	savedAs, ok := h.savedAs(w, r)
	if !ok {
		return
	}
	report, err := h.analytics.GetReport(savedAs)
	if err != nil {
		h.sendServiceError(w, r, savedAs, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	currentETag, etagErr := utils.GenerateETag(report)
	if etagErr != nil {
		log.Warn("Proceeding without ETag check due to ETag generation error", "savedAs", savedAs, "error", etagErr)
	} else {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		if utils.ETagMatches(r.Header.Get("If-None-Match"), quotedETag) {
			log.Info("ETag match for report", "savedAs", savedAs, "etag", currentETag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	utils.SendJSON(w, emptyTablesAsArrays(*report), http.StatusOK)
}

func emptyTablesAsArrays(report models.Report) models.Report {
	report.Metrics = nonNil(report.Metrics)
	report.Daily = nonNil(report.Daily)
	report.Monthly = nonNil(report.Monthly)
	report.TopByRevenue = nonNil(report.TopByRevenue)
	report.TopByQuantity = nonNil(report.TopByQuantity)
	report.AveragePrices = nonNil(report.AveragePrices)
	report.Regions = nonNil(report.Regions)
	report.RegionShares = nonNil(report.RegionShares)
	report.RegionTopProducts = nonNil(report.RegionTopProducts)
	return report
}

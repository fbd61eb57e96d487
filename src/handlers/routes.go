package handlers

import "net/http"

// RegisterRoutes mounts the API on mux.
func RegisterRoutes(mux *http.ServeMux, uploads *UploadHandler, analytics *AnalyticsHandler) {
	mux.HandleFunc("POST /api/upload", uploads.HandleUpload)
	mux.HandleFunc("GET /api/uploads", uploads.HandleListUploads)
	mux.HandleFunc("GET /api/download/{filename}", uploads.HandleDownload)

	mux.HandleFunc("GET /api/metrics", analytics.HandleGetMetrics)
	mux.HandleFunc("GET /api/sales/daily", analytics.HandleGetDailySales)
	mux.HandleFunc("GET /api/sales/monthly", analytics.HandleGetMonthlySales)
	mux.HandleFunc("GET /api/products/top", analytics.HandleGetTopProducts)
	mux.HandleFunc("GET /api/products/average-price", analytics.HandleGetAveragePrices)
	mux.HandleFunc("GET /api/regions", analytics.HandleGetRegions)
	mux.HandleFunc("GET /api/regions/top-products", analytics.HandleGetRegionTopProducts)
	mux.HandleFunc("GET /api/regions/shares", analytics.HandleGetRegionShares)
	mux.HandleFunc("GET /api/report", analytics.HandleGetReport)
}

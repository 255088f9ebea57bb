// internal/handlers/reports.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ldessureault/chainstore-be/internal/adapters/db"
	redis_a "github.com/ldessureault/chainstore-be/internal/adapters/redis_adapter"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// reportCacheTTL bounds how stale the consolidated report may get
const reportCacheTTL = 60 * time.Second

// ReportHandler serves the consolidated report for headquarters. The
// aggregates run straight against the database and the assembled payload
// is cached in Redis; returned sales are excluded from every figure.
type ReportHandler struct {
	db     *db.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(database *db.Database, cache ports.CacheRepository, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		db:     database,
		cache:  cache,
		logger: logger.With(slog.String("handler", "report")),
	}
}

// GetConsolidated handles GET /api/v1/reports/consolidated
func (h *ReportHandler) GetConsolidated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topN := 5
	if t := r.URL.Query().Get("top"); t != "" {
		if v, err := strconv.Atoi(t); err == nil && v > 0 && v <= 50 {
			topN = v
		}
	}

	cacheKey := redis_a.BuildKey(redis_a.PrefixReport, "consolidated", strconv.Itoa(topN))
	var report ConsolidatedReport

	err := h.cache.GetOrSet(ctx, cacheKey, &report, func() (any, error) {
		return h.loadConsolidatedReport(ctx, topN)
	}, reportCacheTTL)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load consolidated report",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to load consolidated report")
		return
	}

	h.respondJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) loadConsolidatedReport(ctx context.Context, topN int) (*ConsolidatedReport, error) {
	report := &ConsolidatedReport{
		GeneratedAt: time.Now(),
	}

	salesQuery := `
		SELECT st.id, st.name,
			COUNT(s.id) AS sale_count,
			COALESCE(SUM(s.total), 0) AS revenue
		FROM store st
		LEFT JOIN sale s ON s.store_id = st.id AND s.returned = false
		WHERE st.type = 'sales'
		GROUP BY st.id, st.name
		ORDER BY st.id ASC`

	rows, err := h.db.Query(ctx, salesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry StoreSalesSummary
		if err := rows.Scan(&entry.StoreID, &entry.StoreName, &entry.SaleCount, &entry.Revenue); err != nil {
			return nil, err
		}
		report.SalesByStore = append(report.SalesByStore, entry)
		report.TotalRevenue = report.TotalRevenue.Add(entry.Revenue)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	topQuery := `
		SELECT p.id, p.name, SUM(si.quantity) AS units_sold
		FROM sale_item si
		JOIN sale s ON s.id = si.sale_id AND s.returned = false
		JOIN product p ON p.id = si.product_id
		GROUP BY p.id, p.name
		ORDER BY units_sold DESC, p.id ASC
		LIMIT $1`

	topRows, err := h.db.Query(ctx, topQuery, topN)
	if err != nil {
		return nil, err
	}
	defer topRows.Close()

	for topRows.Next() {
		var entry TopProduct
		if err := topRows.Scan(&entry.ProductID, &entry.ProductName, &entry.UnitsSold); err != nil {
			return nil, err
		}
		report.TopProducts = append(report.TopProducts, entry)
	}
	if err := topRows.Err(); err != nil {
		return nil, err
	}

	centralQuery := `
		SELECT p.id, p.name, ss.quantity
		FROM store_stock ss
		JOIN store st ON st.id = ss.store_id AND st.type = 'logistics'
		JOIN product p ON p.id = ss.product_id
		ORDER BY p.id ASC`

	centralRows, err := h.db.Query(ctx, centralQuery)
	if err != nil {
		return nil, err
	}
	defer centralRows.Close()

	for centralRows.Next() {
		var entry CentralStockEntry
		if err := centralRows.Scan(&entry.ProductID, &entry.ProductName, &entry.Quantity); err != nil {
			return nil, err
		}
		report.CentralStock = append(report.CentralStock, entry)
	}
	if err := centralRows.Err(); err != nil {
		return nil, err
	}

	return report, nil
}

func (h *ReportHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *ReportHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Type definitions

// ConsolidatedReport is the headquarters view across the chain
type ConsolidatedReport struct {
	SalesByStore []StoreSalesSummary `json:"sales_by_store"`
	TopProducts  []TopProduct        `json:"top_products"`
	CentralStock []CentralStockEntry `json:"central_stock"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

// StoreSalesSummary aggregates the live sales of one store
type StoreSalesSummary struct {
	StoreID   int64           `json:"store_id"`
	StoreName string          `json:"store_name"`
	SaleCount int64           `json:"sale_count"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// TopProduct is one entry of the best-sellers ranking
type TopProduct struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitsSold   int64  `json:"units_sold"`
}

// CentralStockEntry is the logistics store's level of one product
type CentralStockEntry struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// internal/handlers/export.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"
)

// ExportHandler turns the consolidated report into downloadable files
type ExportHandler struct {
	reports *ReportHandler
	logger  *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(reports *ReportHandler, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		reports: reports,
		logger:  logger.With(slog.String("handler", "export")),
	}
}

// ExportExcel handles GET /api/v1/reports/consolidated/excel
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topN := 5
	if t := r.URL.Query().Get("top"); t != "" {
		if v, err := strconv.Atoi(t); err == nil && v > 0 && v <= 50 {
			topN = v
		}
	}

	h.logger.InfoContext(ctx, "starting Excel export", slog.Int("top", topN))

	report, err := h.reports.loadConsolidatedReport(ctx, topN)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load report data", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve report data")
		return
	}

	excelData, err := h.generateExcelFile(report)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("consolidated_report_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Excel export completed",
		slog.Int("stores", len(report.SalesByStore)),
		slog.String("filename", filename))
}

// generateExcelFile renders the report as a three-sheet workbook
func (h *ExportHandler) generateExcelFile(report *ConsolidatedReport) ([]byte, error) {
	file := xlsx.NewFile()

	salesSheet, err := file.AddSheet("Sales by Store")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	h.addHeaderRow(salesSheet, []string{"Store ID", "Store Name", "Sales", "Revenue"})
	for _, entry := range report.SalesByStore {
		row := salesSheet.AddRow()
		row.AddCell().Value = strconv.FormatInt(entry.StoreID, 10)
		row.AddCell().Value = entry.StoreName
		row.AddCell().Value = strconv.FormatInt(entry.SaleCount, 10)
		row.AddCell().Value = entry.Revenue.StringFixed(2)
	}
	totalRow := salesSheet.AddRow()
	totalRow.AddCell().Value = ""
	totalRow.AddCell().Value = "Total"
	totalRow.AddCell().Value = ""
	totalRow.AddCell().Value = report.TotalRevenue.StringFixed(2)

	topSheet, err := file.AddSheet("Top Products")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	h.addHeaderRow(topSheet, []string{"Product ID", "Product", "Units Sold"})
	for _, entry := range report.TopProducts {
		row := topSheet.AddRow()
		row.AddCell().Value = strconv.FormatInt(entry.ProductID, 10)
		row.AddCell().Value = entry.ProductName
		row.AddCell().Value = strconv.FormatInt(entry.UnitsSold, 10)
	}

	centralSheet, err := file.AddSheet("Central Stock")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	h.addHeaderRow(centralSheet, []string{"Product ID", "Product", "Quantity"})
	for _, entry := range report.CentralStock {
		row := centralSheet.AddRow()
		row.AddCell().Value = strconv.FormatInt(entry.ProductID, 10)
		row.AddCell().Value = entry.ProductName
		row.AddCell().Value = strconv.Itoa(entry.Quantity)
	}

	for _, sheet := range []*xlsx.Sheet{salesSheet, topSheet, centralSheet} {
		for i := 0; i < 4; i++ {
			sheet.SetColWidth(i, i, 18)
		}
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func (h *ExportHandler) addHeaderRow(sheet *xlsx.Sheet, headers []string) {
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}
}

func (h *ExportHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]string{
		"error":   message,
		"status":  "error",
		"message": message,
	}

	json.NewEncoder(w).Encode(response)
}

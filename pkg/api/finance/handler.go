package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"strategic_finance/pkg/core/export"
	corefinance "strategic_finance/pkg/core/finance"
	"strategic_finance/pkg/core/knowledge"
	"strategic_finance/pkg/core/logger"
	"strategic_finance/pkg/core/store"
	"strategic_finance/pkg/models"
)

// Service is the part of *finance.Service the handlers use.
type Service interface {
	ProcessQuery(ctx context.Context, query string) (*corefinance.QueryResponse, error)
	GetModel(ctx context.Context, id string) (*models.FinancialModel, error)
	AvailableRevenueDrivers() []knowledge.DriverInfo
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Handler holds dependencies for the forecasting endpoints
type Handler struct {
	svc Service
	log logger.Logger
}

func NewHandler(svc Service, log logger.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log.With(map[string]interface{}{"component": "api"}),
	}
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Message: "Autonomous Finance API is running"})
}

// HandleSearch serves GET /api/v1/search?query=...
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	resp, err := h.svc.ProcessQuery(r.Context(), query)
	if err != nil {
		h.log.WithError(err).Warn("query failed", map[string]interface{}{"query": query})
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error processing query: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleExportExcel serves GET /api/v1/export/excel/{id}
func (h *Handler) HandleExportExcel(w http.ResponseWriter, r *http.Request) {
	model, ok := h.lookup(w, r)
	if !ok {
		return
	}

	data, err := export.Workbook(model)
	if err != nil {
		h.log.WithError(err).Error("excel export failed", map[string]interface{}{"model_id": model.ModelID})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error generating Excel: %v", err))
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="financial_model_%s.xlsx"`, model.ModelID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleModel serves GET /api/v1/models/{id}
func (h *Handler) HandleModel(w http.ResponseWriter, r *http.Request) {
	model, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, model)
}

// HandleReport serves GET /api/v1/models/{id}/report
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	model, ok := h.lookup(w, r)
	if !ok {
		return
	}

	page, err := export.Report(model)
	if err != nil {
		h.log.WithError(err).Error("report rendering failed", map[string]interface{}{"model_id": model.ModelID})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error generating report: %v", err))
		return
	}
	w.Header().Set("Content-Type", export.ContentTypeHTML)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// HandleRevenueDrivers serves GET /api/v1/revenue-drivers
func (h *Handler) HandleRevenueDrivers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.AvailableRevenueDrivers())
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*models.FinancialModel, bool) {
	id := r.PathValue("id")
	model, err := h.svc.GetModel(r.Context(), id)
	if errors.Is(err, store.ErrModelNotFound) {
		writeError(w, http.StatusNotFound, "Model not found")
		return nil, false
	}
	if err != nil {
		h.log.WithError(err).Error("model lookup failed", map[string]interface{}{"model_id": id})
		writeError(w, http.StatusInternalServerError, "Error loading model")
		return nil, false
	}
	return model, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// Package finance orchestrates a forecasting request: resolve assumptions,
// build the model, run the projection engine and cache the result.
package finance

import (
	"context"
	"fmt"

	"strategic_finance/pkg/core/knowledge"
	"strategic_finance/pkg/core/logger"
	"strategic_finance/pkg/core/metrics"
	"strategic_finance/pkg/core/projection"
	"strategic_finance/pkg/core/resolver"
	"strategic_finance/pkg/core/store"
	"strategic_finance/pkg/models"
)

// ExportPathPrefix is where the XLSX export of a model is served.
const ExportPathPrefix = "/api/v1/export/excel/"

// QueryResponse is returned by ProcessQuery.
type QueryResponse struct {
	ModelID            string                     `json:"model_id"`
	RevenueDrivers     []models.RevenueDriver     `json:"revenue_drivers"`
	MonthlyProjections []models.MonthlyProjection `json:"monthly_projections"`
	ExcelDownloadURL   string                     `json:"excel_download_url"`
	AssumptionsUsed    models.Assumptions         `json:"assumptions_used"`
	BusinessLogic      []string                   `json:"business_logic"`
	Summary            projection.Summary         `json:"summary"`
}

// AssumptionResolver is satisfied by *resolver.Resolver.
type AssumptionResolver interface {
	Resolve(ctx context.Context, query string) (*resolver.Resolution, error)
}

// Archiver records finished runs. *store.RunArchive satisfies it.
type Archiver interface {
	Record(ctx context.Context, model *models.FinancialModel) error
}

// Service answers forecasting queries and keeps the resulting models.
type Service struct {
	resolver AssumptionResolver
	kb       *knowledge.Base
	cache    store.Store
	archive  Archiver
	log      logger.Logger
}

// NewService wires the service. archive may be nil.
func NewService(res AssumptionResolver, kb *knowledge.Base, cache store.Store, archive Archiver, log logger.Logger) *Service {
	return &Service{
		resolver: res,
		kb:       kb,
		cache:    cache,
		archive:  archive,
		log:      log.With(map[string]interface{}{"component": "finance"}),
	}
}

// ProcessQuery runs the whole pipeline for one natural-language request.
// Errors wrapping projection.ErrInvalidInput mean the request itself was bad.
func (s *Service) ProcessQuery(ctx context.Context, query string) (*QueryResponse, error) {
	res, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := projection.ValidateDrivers(res.RevenueDrivers); err != nil {
		return nil, fmt.Errorf("invalid revenue drivers: %w", err)
	}

	model := s.buildModel(query, res)

	projections, err := projection.ComputeProjections(res.TimeHorizonMonths, model.Assumptions, model.RevenueDrivers)
	if err != nil {
		return nil, fmt.Errorf("failed to compute projections: %w", err)
	}
	model.MonthlyProjections = projections
	metrics.ProjectionsComputed.Inc()
	metrics.ProjectionMonths.Observe(float64(res.TimeHorizonMonths))

	if err := s.cache.Put(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to cache model: %w", err)
	}
	if n, err := s.cache.Len(ctx); err == nil {
		metrics.CachedModels.Set(float64(n))
	}

	if s.archive != nil {
		if err := s.archive.Record(ctx, model); err != nil {
			s.log.WithError(err).Warn("failed to archive model run", map[string]interface{}{"model_id": model.ModelID})
		}
	}

	logic, err := s.BusinessLogic(model)
	if err != nil {
		return nil, err
	}

	s.log.Info("model generated", map[string]interface{}{
		"model_id": model.ModelID,
		"months":   model.TimeHorizonMonths,
		"source":   string(model.ResolverSource),
	})

	return &QueryResponse{
		ModelID:            model.ModelID,
		RevenueDrivers:     model.RevenueDrivers,
		MonthlyProjections: model.MonthlyProjections,
		ExcelDownloadURL:   ExportPathPrefix + model.ModelID,
		AssumptionsUsed:    model.Assumptions,
		BusinessLogic:      logic,
		Summary:            projection.Summarize(model.MonthlyProjections),
	}, nil
}

func (s *Service) buildModel(query string, res *resolver.Resolution) *models.FinancialModel {
	model := models.NewFinancialModel(query)
	model.TimeHorizonMonths = res.TimeHorizonMonths
	model.Assumptions = res.Assumptions.Clone()
	model.BusinessFocus = res.BusinessFocus
	model.SpecialInstructions = res.SpecialInstructions
	model.ResolverSource = res.Source
	if res.RevenueDrivers != nil {
		model.RevenueDrivers = res.RevenueDrivers
	}
	model.BusinessUnits = s.kb.Rules().ModelUnits()
	return model
}

// GetModel returns a cached model or an error wrapping store.ErrModelNotFound.
func (s *Service) GetModel(ctx context.Context, id string) (*models.FinancialModel, error) {
	return s.cache.Get(ctx, id)
}

// AvailableRevenueDrivers lists the knowledge-base driver catalogue.
func (s *Service) AvailableRevenueDrivers() []knowledge.DriverInfo {
	return s.kb.Rules().RevenueDrivers
}

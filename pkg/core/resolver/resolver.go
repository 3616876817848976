// Package resolver turns a natural-language forecasting request into a
// horizon, revenue drivers and an assumptions mapping. It asks an LLM first
// and falls back to a deterministic text parser on any failure.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"strategic_finance/pkg/core/knowledge"
	"strategic_finance/pkg/core/logger"
	"strategic_finance/pkg/core/metrics"
	"strategic_finance/pkg/core/projection"
	"strategic_finance/pkg/core/prompt"
	"strategic_finance/pkg/core/utils"
	"strategic_finance/pkg/models"
)

// AgentType is the agent name used to pick a provider in models.yaml.
const AgentType = "assumptions"

// Resolution is everything the service needs to build a model.
type Resolution struct {
	TimeHorizonMonths   int
	RevenueDrivers      []models.RevenueDriver
	Assumptions         models.Assumptions
	BusinessFocus       []string
	SpecialInstructions []string
	Source              models.ResolverSource
}

// Executor sends a prompt to whatever model is configured for agentType.
// *agent.Manager satisfies it.
type Executor interface {
	ExecutePrompt(ctx context.Context, agentType string, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// Resolver is safe for concurrent use.
type Resolver struct {
	agents  Executor
	prompts *prompt.Registry
	timeout time.Duration
	log     logger.Logger
}

// New builds a resolver. A nil agents executor disables the LLM path.
func New(agents Executor, prompts *prompt.Registry, timeout time.Duration, log logger.Logger) *Resolver {
	return &Resolver{
		agents:  agents,
		prompts: prompts,
		timeout: timeout,
		log:     log.With(map[string]interface{}{"component": "resolver"}),
	}
}

// payload mirrors the JSON object the prompt asks for.
type payload struct {
	TimeHorizonMonths   *float64               `json:"time_horizon_months"`
	RevenueDrivers      []models.RevenueDriver `json:"revenue_drivers"`
	Assumptions         models.Assumptions     `json:"assumptions"`
	BusinessFocus       []string               `json:"business_focus"`
	SpecialInstructions []string               `json:"special_instructions"`
}

// Resolve never fails for a non-empty query: any LLM problem is absorbed by
// Fallback. An empty or blank query is an InputError.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Resolution, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &projection.InputError{Field: "query", Reason: "must not be empty"}
	}

	res, reason, err := r.fromLLM(ctx, query)
	if err == nil {
		metrics.ResolverOutcomes.WithLabelValues(string(models.SourceLLM), "ok").Inc()
		return res, nil
	}

	metrics.ResolverOutcomes.WithLabelValues(string(models.SourceFallback), reason).Inc()
	r.log.WithError(err).Warn("assumption resolution fell back to rule-based parser", map[string]interface{}{
		"reason": reason,
	})
	return Fallback(query), nil
}

func (r *Resolver) fromLLM(ctx context.Context, query string) (*Resolution, string, error) {
	if r.agents == nil || r.prompts == nil {
		return nil, "disabled", errors.New("no LLM configured")
	}

	pt, err := r.prompts.GetPrompt(prompt.AssumptionsPromptID)
	if err != nil {
		return nil, "prompt", err
	}
	userPrompt, err := prompt.RenderUserPrompt(pt, prompt.Vars{
		"Query":         query,
		"KnowledgeBase": knowledge.Snippet,
	})
	if err != nil {
		return nil, "prompt", err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	raw, err := r.agents.ExecutePrompt(ctx, AgentType, userPrompt, pt.SystemPrompt, map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, "timeout", err
		}
		return nil, "provider", err
	}

	var doc map[string]interface{}
	if _, err := utils.SmartParse(raw, &doc); err != nil {
		return nil, "parse", err
	}
	if err := r.validate(pt.ResponseSchemaID, doc); err != nil {
		return nil, "schema", err
	}

	var p payload
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, "parse", err
	}
	if err := json.Unmarshal(normalized, &p); err != nil {
		return nil, "parse", err
	}

	res := &Resolution{
		TimeHorizonMonths:   projection.DefaultHorizonMonths,
		RevenueDrivers:      p.RevenueDrivers,
		Assumptions:         p.Assumptions,
		BusinessFocus:       p.BusinessFocus,
		SpecialInstructions: p.SpecialInstructions,
		Source:              models.SourceLLM,
	}
	if p.TimeHorizonMonths != nil && *p.TimeHorizonMonths >= 1 {
		res.TimeHorizonMonths = int(*p.TimeHorizonMonths)
	}
	if res.Assumptions == nil {
		res.Assumptions = models.Assumptions{}
	}
	if res.RevenueDrivers == nil {
		res.RevenueDrivers = []models.RevenueDriver{}
	}
	for i := range res.RevenueDrivers {
		if res.RevenueDrivers[i].Type == "" {
			res.RevenueDrivers[i].Type = models.DriverInput
		}
	}
	if _, err := projection.ResolveParams(res.Assumptions); err != nil {
		return nil, "assumptions", err
	}
	return res, "", nil
}

func (r *Resolver) validate(schemaID string, doc map[string]interface{}) error {
	if schemaID == "" {
		return nil
	}
	schema, err := r.prompts.GetSchema(schemaID)
	if err != nil {
		return err
	}
	schemaDoc, err := schema.Document()
	if err != nil {
		return err
	}
	if err := utils.ValidateSchema(schemaDoc, doc); err != nil {
		return fmt.Errorf("response does not match %s: %w", schemaID, err)
	}
	return nil
}

// Package app builds the service graph from config.Settings and tears it
// down again. Both the HTTP server and the CLI start here.
package app

import (
	"context"
	"errors"
	"fmt"

	"strategic_finance/pkg/core/agent"
	"strategic_finance/pkg/core/config"
	"strategic_finance/pkg/core/finance"
	"strategic_finance/pkg/core/knowledge"
	"strategic_finance/pkg/core/logger"
	"strategic_finance/pkg/core/prompt"
	"strategic_finance/pkg/core/resolver"
	"strategic_finance/pkg/core/store"
)

// Options adjusts Build for callers that need less than the full server.
type Options struct {
	// ForceMemoryCache ignores cache.backend and keeps models in-process.
	ForceMemoryCache bool
	// DisableArchive skips the Postgres run archive even if database.url is set.
	DisableArchive bool
	// DisableWatch turns off knowledge base hot reload.
	DisableWatch bool
}

// App is the running service graph. Close releases what Build opened.
type App struct {
	Settings  *config.Settings
	Agents    *agent.Manager
	Knowledge *knowledge.Base
	Cache     store.Store
	Service   *finance.Service

	closers []func() error
	cancel  context.CancelFunc
}

// Build wires every component. On error, anything already opened is closed.
func Build(ctx context.Context, s *config.Settings, log logger.Logger, opts Options) (*App, error) {
	a := &App{Settings: s}
	built := false
	defer func() {
		if !built {
			_ = a.Close()
		}
	}()

	prompts, err := prompt.Load(s.LLM.ResourcesDir)
	if err != nil {
		return nil, err
	}
	log.Info("prompt library loaded", map[string]interface{}{"prompts": prompts.Count(), "dir": s.LLM.ResourcesDir})

	agentCfg, err := agent.LoadConfig(s.LLM.ModelsFile)
	if err != nil {
		return nil, err
	}
	providers := agent.DefaultProviders(agentCfg, agent.Credentials{
		OpenAIAPIKey: s.LLM.OpenAIAPIKey,
		GeminiAPIKey: s.LLM.GeminiAPIKey,
	})
	a.Agents = agent.NewManager(agentCfg, providers, log)

	a.Knowledge, err = knowledge.Open(s.Knowledge.Path, log)
	if err != nil {
		return nil, err
	}
	if s.Knowledge.Watch && !opts.DisableWatch {
		watchCtx, cancel := context.WithCancel(context.Background())
		a.cancel = cancel
		if err := a.Knowledge.Watch(watchCtx); err != nil {
			log.WithError(err).Warn("knowledge base hot reload disabled", nil)
		}
	}

	a.Cache, err = openCache(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Cache.Close)

	var archive finance.Archiver
	if s.Database.URL != "" && !opts.DisableArchive {
		pool, err := store.OpenPool(ctx, s.Database.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })

		runs := store.NewRunArchive(pool)
		if err := runs.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		archive = runs
		log.Info("run archive enabled", nil)
	}

	res := resolver.New(a.Agents, prompts, s.LLM.Timeout, log)
	a.Service = finance.NewService(res, a.Knowledge, a.Cache, archive, log)
	built = true
	return a, nil
}

func openCache(ctx context.Context, s *config.Settings, opts Options) (store.Store, error) {
	if opts.ForceMemoryCache || s.Cache.Backend != config.CacheRedis {
		return store.NewMemoryStore(), nil
	}
	rs, err := store.DialRedis(ctx, s.Redis.Address, s.Redis.Password, s.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open redis cache: %w", err)
	}
	return rs, nil
}

// Close stops the watcher and releases stores in reverse order of opening.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

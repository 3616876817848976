package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	hjson "github.com/hjson/hjson-go/v4"

	"strategic_finance/pkg/core/logger"
	"strategic_finance/pkg/core/metrics"
)

const debounceInterval = 100 * time.Millisecond

// Base serves the current Rules and swaps them in place on reload.
type Base struct {
	path string
	log  logger.Logger

	mu      sync.RWMutex
	rules   Rules
	present bool
}

// Open reads the knowledge base at path. A missing file is not an error: the
// base starts empty and Rules falls back to DefaultRules.
func Open(path string, log logger.Logger) (*Base, error) {
	b := &Base{
		path: path,
		log:  log.With(map[string]interface{}{"component": "knowledge", "path": path}),
	}
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// Static wraps fixed rules, for callers without a file.
func Static(rules Rules) *Base {
	return &Base{rules: rules, present: true, log: logger.NewNoOpLogger()}
}

// Rules returns the loaded rules, or DefaultRules when the file is absent or
// defines no business units.
func (b *Base) Rules() Rules {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.present || b.rules.Empty() {
		return DefaultRules()
	}
	return b.rules
}

// Reload re-reads the file. On a parse error the previous rules stay active.
func (b *Base) Reload() error {
	rules, present, err := readFile(b.path)
	if err != nil {
		metrics.KnowledgeReloads.WithLabelValues("error").Inc()
		return err
	}

	b.mu.Lock()
	b.rules = rules
	b.present = present
	b.mu.Unlock()

	metrics.KnowledgeReloads.WithLabelValues("ok").Inc()
	b.log.Info("knowledge base loaded", map[string]interface{}{
		"present":         present,
		"business_units":  len(rules.BusinessUnits),
		"revenue_drivers": len(rules.RevenueDrivers),
	})
	return nil
}

func readFile(path string) (Rules, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Rules{}, false, nil
	}
	if err != nil {
		return Rules{}, false, fmt.Errorf("failed to read knowledge base %s: %w", path, err)
	}

	var file File
	if err := hjson.Unmarshal(data, &file); err != nil {
		return Rules{}, false, fmt.Errorf("failed to parse knowledge base %s: %w", path, err)
	}
	return file.SaaSCompany, true, nil
}

// Watch reloads the rules whenever the file is written, created or removed,
// until ctx is cancelled. It watches the parent directory so editors that
// replace the file by rename are picked up.
func (b *Base) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(b.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go b.watchLoop(ctx, watcher)
	return nil
}

func (b *Base) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(b.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceInterval, func() {
				if err := b.Reload(); err != nil {
					b.log.WithError(err).Warn("knowledge base reload failed; keeping previous rules", nil)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			b.log.WithError(err).Warn("knowledge base watcher error", nil)

		case <-ctx.Done():
			return
		}
	}
}

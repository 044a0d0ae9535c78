package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the configuration when its YAML file changes. A reload
// that fails to parse or validate is logged and the current settings stay.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	mu       sync.RWMutex
	current  *Config
	onChange []func(prev, next *Config)

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches path, starting from the already loaded current config.
func NewWatcher(path string, current *Config, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors and config management replace the file by rename, which drops a
	// watch on the file itself, so watch the directory.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &Watcher{
		path:     path,
		watcher:  fw,
		logger:   logger,
		debounce: 100 * time.Millisecond,
		current:  current,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// OnChange registers fn to run after every successful reload. Register
// before Start.
func (w *Watcher) OnChange(fn func(prev, next *Config)) {
	w.onChange = append(w.onChange, fn)
}

// Current returns the most recently loaded configuration
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start begins watching in a background goroutine
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("Configuration watcher started", zap.String("path", w.path))
}

// Stop stops watching and waits for the loop to exit
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		<-w.done
		w.logger.Info("Configuration watcher stopped")
	})
}

func (w *Watcher) watchLoop() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	w.logger.Info("Configuration file changed, reloading", zap.String("path", w.path))

	next, err := LoadFrom(w.path)
	if err != nil {
		w.logger.Error("Invalid configuration, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	prev := w.current
	w.current = next
	w.mu.Unlock()

	for _, fn := range w.onChange {
		fn(prev, next)
	}

	w.logger.Info("Configuration reloaded successfully")
}

// RestartRequired lists the settings that differ between prev and next and
// only take effect when the process starts.
func RestartRequired(prev, next *Config) []string {
	var keys []string
	add := func(key string, changed bool) {
		if changed {
			keys = append(keys, key)
		}
	}

	add("server_address", prev.ServerAddress != next.ServerAddress)
	add("environment", prev.Environment != next.Environment)
	add("github_token", prev.GitHubToken != next.GitHubToken)
	add("github_api_url", prev.GitHubAPIURL != next.GitHubAPIURL)
	add("api_timeout", prev.APITimeout != next.APITimeout)
	add("max_retries", prev.MaxRetries != next.MaxRetries)
	add("enable_retries", prev.EnableRetries != next.EnableRetries)
	add("cache_duration", prev.CacheDuration != next.CacheDuration)
	add("mock_cache_duration", prev.MockCacheDuration != next.MockCacheDuration)
	add("cache_backend", prev.CacheBackend != next.CacheBackend)
	add("cache_dir", prev.CacheDir != next.CacheDir)
	add("cache_table", prev.CacheTable != next.CacheTable)
	add("aws_region", prev.AWSRegion != next.AWSRegion)
	add("calendar_timezone", prev.CalendarTimezone != next.CalendarTimezone)
	add("rate_limit_per_minute", (prev.RateLimitPerMinute == 0) != (next.RateLimitPerMinute == 0))
	add("enable_metrics", prev.EnableMetrics != next.EnableMetrics)
	add("enable_tracing", prev.EnableTracing != next.EnableTracing)
	add("otlp_endpoint", prev.OTLPEndpoint != next.OTLPEndpoint)

	return keys
}

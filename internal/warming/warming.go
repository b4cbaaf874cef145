package warming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cf_bridge/internal/config"
	"cf_bridge/internal/model"

	"github.com/sirupsen/logrus"
)

// ContentSource lists a site's content URLs for warming. The CMS side
// implements this; homepage and manual URLs come from settings.
type ContentSource interface {
	RecentContentURLs(ctx context.Context, siteID string, limit int) ([]string, error)
}

// SettingsSource reads a site's plugin settings
type SettingsSource interface {
	Get(siteID string) (*model.PluginSettings, error)
}

// Result summarizes one warming run
type Result struct {
	SiteID    string        `json:"site_id"`
	Requested int           `json:"requested"`
	Warmed    int           `json:"warmed"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
	Truncated bool          `json:"truncated"` // budget ran out before the list did
}

// ErrAlreadyRunning is returned when a site's warming run is still active
var ErrAlreadyRunning = errors.New("warming already running for this site")

// Warmer issues sequential GET requests against a site's key URLs so
// the first real visitor after a purge hits a warm cache. One run per
// site at a time; runs are paced and time-boxed.
type Warmer struct {
	content  ContentSource
	settings SettingsSource
	client   *http.Client
	cfg      config.WarmingConfig
	log      *logrus.Entry

	mu      sync.Mutex
	running map[string]bool
}

// New creates a warmer
func New(content ContentSource, settings SettingsSource, cfg config.WarmingConfig) *Warmer {
	if cfg.RecentCount <= 0 {
		cfg.RecentCount = 10
	}
	if cfg.DelayMs <= 0 {
		cfg.DelayMs = 500
	}
	if cfg.RequestTimeoutSec <= 0 {
		cfg.RequestTimeoutSec = 10
	}
	if cfg.BudgetSec <= 0 {
		cfg.BudgetSec = 300
	}
	return &Warmer{
		content:  content,
		settings: settings,
		client: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		},
		cfg:     cfg,
		log:     logrus.WithField("component", "warming"),
		running: make(map[string]bool),
	}
}

// Trigger starts a detached warming run for a site. It returns as soon
// as the run is launched; progress lands in the log.
func (w *Warmer) Trigger(siteID, siteURL string) error {
	if !w.cfg.Enabled {
		return errors.New("cache warming is disabled")
	}

	settings, err := w.settings.Get(siteID)
	if err != nil {
		return err
	}
	if !settings.WarmingEnabled {
		return errors.New("cache warming is disabled for this site")
	}

	w.mu.Lock()
	if w.running[siteID] {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running[siteID] = true
	w.mu.Unlock()

	go func() {
		defer func() {
			w.mu.Lock()
			delete(w.running, siteID)
			w.mu.Unlock()
		}()
		result := w.run(siteID, siteURL, settings)
		w.log.WithFields(logrus.Fields{
			"site_id":   result.SiteID,
			"requested": result.Requested,
			"warmed":    result.Warmed,
			"failed":    result.Failed,
			"duration":  result.Duration.Round(time.Millisecond).String(),
			"truncated": result.Truncated,
		}).Info("Warming run finished")
	}()
	return nil
}

// Running reports whether a run is active for the site
func (w *Warmer) Running(siteID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running[siteID]
}

// run walks the URL list sequentially with a fixed delay between
// requests, stopping when the budget expires.
func (w *Warmer) run(siteID, siteURL string, settings *model.PluginSettings) *Result {
	start := time.Now()
	budget := time.Duration(w.cfg.BudgetSec) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	urls := w.buildURLList(ctx, siteID, siteURL, settings)
	result := &Result{SiteID: siteID, Requested: len(urls)}

	delay := time.Duration(w.cfg.DelayMs) * time.Millisecond
	for i, u := range urls {
		if ctx.Err() != nil {
			result.Truncated = true
			break
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				result.Truncated = true
			case <-time.After(delay):
			}
			if result.Truncated {
				break
			}
		}

		if err := w.fetch(ctx, u); err != nil {
			result.Failed++
			w.log.WithError(err).WithFields(logrus.Fields{
				"site_id": siteID,
				"url":     u,
			}).Warn("Warming request failed")
		} else {
			result.Warmed++
		}
	}

	result.Duration = time.Since(start)
	return result
}

// buildURLList assembles homepage, recent content and manual URLs,
// deduplicated in that order.
func (w *Warmer) buildURLList(ctx context.Context, siteID, siteURL string, settings *model.PluginSettings) []string {
	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	add(siteURL)

	if w.content != nil {
		recent, err := w.content.RecentContentURLs(ctx, siteID, w.cfg.RecentCount)
		if err != nil {
			w.log.WithError(err).WithField("site_id", siteID).Warn("Failed to list recent content")
		}
		for _, u := range recent {
			add(u)
		}
	}

	if len(settings.WarmingManualURLs) > 0 {
		var manual []string
		if err := json.Unmarshal(settings.WarmingManualURLs, &manual); err == nil {
			for _, u := range manual {
				add(u)
			}
		}
	}
	return urls
}

func (w *Warmer) fetch(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "cf-bridge-warmer/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("origin returned %d", resp.StatusCode)
	}
	return nil
}

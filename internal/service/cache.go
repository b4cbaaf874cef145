package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// urlBatchSize is Cloudflare's per-call limit for purge-by-URL
const urlBatchSize = 30

// CacheService issues cache purges and keeps the purge audit log
type CacheService struct {
	db       *gorm.DB
	clients  ClientProvider
	rdb      *redis.Client
	notifier Notifier
	log      *logrus.Entry
}

// NewCacheService creates a cache service. rdb and notifier may be nil.
func NewCacheService(db *gorm.DB, clients ClientProvider, rdb *redis.Client, notifier Notifier) *CacheService {
	return &CacheService{
		db:       db,
		clients:  clients,
		rdb:      rdb,
		notifier: notifier,
		log:      logrus.WithField("component", "cache"),
	}
}

// PurgeAll purges the entire zone cache
func (s *CacheService) PurgeAll(ctx context.Context, siteID string, trigger model.PurgeTrigger) error {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}

	_, err = client.PurgeEverything(ctx)
	s.record(siteID, model.PurgeTypeAll, nil, trigger, err)
	if err != nil {
		return mapClientError(s.clients, siteID, err)
	}
	return nil
}

// BatchOutcome is the result of one purge-by-URL API call
type BatchOutcome struct {
	Batch int    `json:"batch"`
	URLs  int    `json:"urls"`
	Error string `json:"error,omitempty"`
}

// PurgeURLs purges individual URLs, splitting the list into batches of
// at most 30 per API call. A batch failure does not stop later batches.
// On any failure the returned error carries the full per-batch outcome
// list plus succeeded/failed counts in its details, and the single
// audit row reflects the aggregate.
func (s *CacheService) PurgeURLs(ctx context.Context, siteID string, urls []string, trigger model.PurgeTrigger) error {
	if len(urls) == 0 {
		return httpx.ErrValidation("urls must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}

	var (
		outcomes  []BatchOutcome
		firstErr  error
		succeeded int
		failed    int
	)
	for i, batch := range urlBatches(urls) {
		outcome := BatchOutcome{Batch: i + 1, URLs: len(batch)}
		if _, err := client.PurgeFiles(ctx, batch); err != nil {
			outcome.Error = err.Error()
			failed++
			if firstErr == nil {
				firstErr = err
			}
		} else {
			succeeded++
		}
		outcomes = append(outcomes, outcome)
	}

	var aggErr error
	if failed > 0 {
		var parts []string
		for _, o := range outcomes {
			if o.Error != "" {
				parts = append(parts, fmt.Sprintf("batch %d (%d urls): %s", o.Batch, o.URLs, o.Error))
			}
		}
		aggErr = fmt.Errorf("%s", strings.Join(parts, "; "))
	}
	s.record(siteID, model.PurgeTypeURLs, urls, trigger, aggErr)

	if firstErr != nil {
		appErr := mapClientError(s.clients, siteID, firstErr)
		if appErr.Details == nil {
			appErr.Details = map[string]any{}
		}
		appErr.Details["batches"] = outcomes
		appErr.Details["succeeded_batches"] = succeeded
		appErr.Details["failed_batches"] = failed
		return appErr
	}
	return nil
}

// PurgeTags purges by cache tag. Tag purge is plan-gated; a plan
// restriction from Cloudflare is surfaced to the caller verbatim.
func (s *CacheService) PurgeTags(ctx context.Context, siteID string, tags []string, trigger model.PurgeTrigger) error {
	if len(tags) == 0 {
		return httpx.ErrValidation("tags must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}

	_, err = client.PurgeTags(ctx, tags)
	s.record(siteID, model.PurgeTypeTags, tags, trigger, err)
	if err != nil {
		return mapClientError(s.clients, siteID, err)
	}
	return nil
}

// PurgePrefixes purges by URL prefix. Plan-gated like tag purge.
func (s *CacheService) PurgePrefixes(ctx context.Context, siteID string, prefixes []string, trigger model.PurgeTrigger) error {
	if len(prefixes) == 0 {
		return httpx.ErrValidation("prefixes must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}

	_, err = client.PurgePrefixes(ctx, prefixes)
	s.record(siteID, model.PurgeTypePrefix, prefixes, trigger, err)
	if err != nil {
		return mapClientError(s.clients, siteID, err)
	}
	return nil
}

// urlBatches splits a URL list into chunks of at most urlBatchSize
func urlBatches(urls []string) [][]string {
	var batches [][]string
	for start := 0; start < len(urls); start += urlBatchSize {
		end := start + urlBatchSize
		if end > len(urls) {
			end = len(urls)
		}
		batches = append(batches, urls[start:end])
	}
	return batches
}

// record appends one audit row per purge attempt, success or failure.
// Audit failures are logged but never surfaced; losing a log line must
// not fail the purge itself.
func (s *CacheService) record(siteID string, purgeType model.PurgeType, targets []string, trigger model.PurgeTrigger, purgeErr error) {
	event := model.PurgeEvent{
		SiteID:    siteID,
		PurgeType: purgeType,
		Trigger:   trigger,
		Success:   purgeErr == nil,
	}
	if purgeErr != nil {
		event.ErrorDetail = purgeErr.Error()
	}
	if targets != nil {
		if raw, err := json.Marshal(targets); err == nil {
			event.Targets = datatypes.JSON(raw)
		}
	}

	if err := s.db.Create(&event).Error; err != nil {
		s.log.WithError(err).WithField("site_id", siteID).Error("Failed to record purge event")
	}

	s.bumpCounter(siteID, purgeErr == nil)

	if s.notifier != nil {
		s.notifier.Publish("cache", "purge", event)
	}
}

// bumpCounter keeps cheap per-day purge counters in Redis for dashboards
func (s *CacheService) bumpCounter(siteID string, success bool) {
	if s.rdb == nil {
		return
	}
	outcome := "ok"
	if !success {
		outcome = "fail"
	}
	key := fmt.Sprintf("purge:count:%s:%s:%s", siteID, time.Now().Format("2006-01-02"), outcome)
	ctx := context.Background()
	if err := s.rdb.Incr(ctx, key).Err(); err != nil {
		return
	}
	s.rdb.Expire(ctx, key, 48*time.Hour)
}

// PurgeStats summarizes recent purge activity for a site
type PurgeStats struct {
	Total     int64            `json:"total"`
	Succeeded int64            `json:"succeeded"`
	Failed    int64            `json:"failed"`
	ByType    map[string]int64 `json:"by_type"`
	ByTrigger map[string]int64 `json:"by_trigger"`
}

// Stats aggregates the purge audit log over the last N days
func (s *CacheService) Stats(siteID string, days int) (*PurgeStats, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	stats := &PurgeStats{
		ByType:    make(map[string]int64),
		ByTrigger: make(map[string]int64),
	}

	base := s.db.Model(&model.PurgeEvent{}).
		Where("site_id = ? AND created_at >= ?", siteID, cutoff)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, httpx.ErrDatabase("failed to aggregate purge events", err)
	}
	if err := base.Session(&gorm.Session{}).Where("success = ?", true).Count(&stats.Succeeded).Error; err != nil {
		return nil, httpx.ErrDatabase("failed to aggregate purge events", err)
	}
	stats.Failed = stats.Total - stats.Succeeded

	type bucket struct {
		Key   string
		Count int64
	}
	var byType []bucket
	if err := base.Session(&gorm.Session{}).
		Select("purge_type as `key`, count(*) as count").
		Group("purge_type").Scan(&byType).Error; err != nil {
		return nil, httpx.ErrDatabase("failed to aggregate purge events", err)
	}
	for _, b := range byType {
		stats.ByType[b.Key] = b.Count
	}

	var byTrigger []bucket
	if err := base.Session(&gorm.Session{}).
		Select("trigger_source as `key`, count(*) as count").
		Group("trigger_source").Scan(&byTrigger).Error; err != nil {
		return nil, httpx.ErrDatabase("failed to aggregate purge events", err)
	}
	for _, b := range byTrigger {
		stats.ByTrigger[b.Key] = b.Count
	}

	return stats, nil
}

// History returns the most recent purge events for a site
func (s *CacheService) History(siteID string, limit int) ([]model.PurgeEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var events []model.PurgeEvent
	err := s.db.Where("site_id = ?", siteID).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, httpx.ErrDatabase("failed to load purge history", err)
	}
	return events, nil
}

package service

import (
	"context"
	"time"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsService queries zone analytics and keeps daily snapshots
type AnalyticsService struct {
	db      *gorm.DB
	clients ClientProvider
	log     *logrus.Entry
}

// NewAnalyticsService creates an analytics service
func NewAnalyticsService(db *gorm.DB, clients ClientProvider) *AnalyticsService {
	return &AnalyticsService{
		db:      db,
		clients: clients,
		log:     logrus.WithField("component", "analytics"),
	}
}

// Dashboard fetches the live analytics dashboard for a time range
func (s *AnalyticsService) Dashboard(ctx context.Context, siteID string, since, until time.Time) (*cloudflare.AnalyticsDashboard, error) {
	if !until.After(since) {
		return nil, httpx.ErrValidation("until must be after since")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var dash *cloudflare.AnalyticsDashboard
	err = retryRead(ctx, func() error {
		dash, err = client.GetAnalyticsDashboard(ctx, since, until)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	return dash, nil
}

// Snapshot records one day's totals. Re-running for the same day
// overwrites the existing row, so the snapshot job is idempotent.
func (s *AnalyticsService) Snapshot(ctx context.Context, siteID string, day time.Time) (*model.AnalyticsSnapshot, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	dash, err := s.Dashboard(ctx, siteID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	row := &model.AnalyticsSnapshot{
		SiteID:            siteID,
		Day:               dayStart,
		Requests:          dash.Totals.Requests.All,
		CachedRequests:    dash.Totals.Requests.Cached,
		UncachedRequests:  dash.Totals.Requests.Uncached,
		Bandwidth:         dash.Totals.Bandwidth.All,
		CachedBandwidth:   dash.Totals.Bandwidth.Cached,
		UncachedBandwidth: dash.Totals.Bandwidth.Uncached,
		Threats:           dash.Totals.Threats.All,
		Pageviews:         dash.Totals.Pageviews.All,
		Uniques:           dash.Totals.Uniques.All,
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "site_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"requests", "cached_requests", "uncached_requests",
			"bandwidth", "cached_bandwidth", "uncached_bandwidth",
			"threats", "pageviews", "uniques",
		}),
	}).Create(row).Error
	if err != nil {
		return nil, httpx.ErrDatabase("failed to store analytics snapshot", err)
	}
	return row, nil
}

// History returns stored snapshots, newest first
func (s *AnalyticsService) History(siteID string, days int) ([]model.AnalyticsSnapshot, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	var rows []model.AnalyticsSnapshot
	err := s.db.Where("site_id = ? AND day >= ?", siteID, cutoff).
		Order("day DESC").
		Find(&rows).Error
	if err != nil {
		return nil, httpx.ErrDatabase("failed to load analytics history", err)
	}
	return rows, nil
}

// Prune drops snapshots older than the site's retention window
func (s *AnalyticsService) Prune(siteID string, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.Where("site_id = ? AND day < ?", siteID, cutoff).
		Delete(&model.AnalyticsSnapshot{})
	if result.Error != nil {
		return 0, httpx.ErrDatabase("failed to prune analytics snapshots", result.Error)
	}
	if result.RowsAffected > 0 {
		s.log.WithFields(logrus.Fields{
			"site_id": siteID,
			"pruned":  result.RowsAffected,
		}).Info("Pruned old analytics snapshots")
	}
	return result.RowsAffected, nil
}

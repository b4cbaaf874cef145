package service

import (
	"context"
	"encoding/json"
	"time"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PageRulesService manages page rules. Action values are treated as
// opaque JSON end to end so action kinds this service has never heard
// of still round-trip correctly.
type PageRulesService struct {
	db      *gorm.DB
	clients ClientProvider
	log     *logrus.Entry
}

// NewPageRulesService creates a page rules service
func NewPageRulesService(db *gorm.DB, clients ClientProvider) *PageRulesService {
	return &PageRulesService{
		db:      db,
		clients: clients,
		log:     logrus.WithField("component", "pagerules"),
	}
}

// PageRuleInput is the create/update payload for a page rule
type PageRuleInput struct {
	URL      string                      `json:"url" binding:"required"`
	Actions  []cloudflare.PageRuleAction `json:"actions" binding:"required"`
	Priority *int                        `json:"priority"`
	Status   string                      `json:"status"`
}

// Validate checks the payload shape
func (in *PageRuleInput) Validate() error {
	if in.URL == "" {
		return httpx.ErrValidation("url pattern must not be empty")
	}
	if len(in.Actions) == 0 {
		return httpx.ErrValidation("at least one action is required")
	}
	for _, a := range in.Actions {
		if a.ID == "" {
			return httpx.ErrValidation("every action needs an id")
		}
	}
	if in.Status != "" && in.Status != "active" && in.Status != "disabled" {
		return httpx.ErrValidation("status must be 'active' or 'disabled'")
	}
	return nil
}

func (in *PageRuleInput) toParams() cloudflare.PageRuleParams {
	return cloudflare.PageRuleParams{
		Targets: []cloudflare.PageRuleTarget{{
			Target:     "url",
			Constraint: cloudflare.PageRuleConstraint{Operator: "matches", Value: in.URL},
		}},
		Actions:  in.Actions,
		Priority: in.Priority,
		Status:   in.Status,
	}
}

// List returns the local mirror of page rules
func (s *PageRulesService) List(siteID string) ([]model.PageRule, error) {
	var rules []model.PageRule
	err := s.db.Where("site_id = ?", siteID).Order("priority, id").Find(&rules).Error
	if err != nil {
		return nil, httpx.ErrDatabase("failed to load page rules", err)
	}
	return rules, nil
}

// Sync replaces the page rule mirror from upstream
func (s *PageRulesService) Sync(ctx context.Context, siteID string) ([]model.PageRule, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var upstream []cloudflare.PageRule
	err = retryRead(ctx, func() error {
		upstream, err = client.ListPageRules(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	rows := make([]model.PageRule, 0, len(upstream))
	for i := range upstream {
		rows = append(rows, *pageRuleMirrorRow(siteID, &upstream[i]))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", siteID).Delete(&model.PageRule{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, httpx.ErrDatabase("failed to replace page rule mirror", err)
	}
	return rows, nil
}

// Create creates the rule upstream then mirrors it
func (s *PageRulesService) Create(ctx context.Context, siteID string, in PageRuleInput) (*model.PageRule, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	created, err := client.CreatePageRule(ctx, in.toParams())
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	row := pageRuleMirrorRow(siteID, created)
	if err := s.db.Create(row).Error; err != nil {
		s.log.WithError(err).WithField("site_id", siteID).Error("Upstream create succeeded but mirror write failed")
	}
	return row, nil
}

// Update updates upstream then refreshes the mirror row
func (s *PageRulesService) Update(ctx context.Context, siteID, ruleID string, in PageRuleInput) (*model.PageRule, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	updated, err := client.UpdatePageRule(ctx, ruleID, in.toParams())
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	row := pageRuleMirrorRow(siteID, updated)
	err = s.db.Model(&model.PageRule{}).
		Where("site_id = ? AND cloudflare_id = ?", siteID, ruleID).
		Updates(map[string]interface{}{
			"targets":   row.Targets,
			"actions":   row.Actions,
			"priority":  row.Priority,
			"status":    row.Status,
			"synced_at": row.SyncedAt,
		}).Error
	if err != nil {
		s.db.Model(&model.PageRule{}).
			Where("site_id = ? AND cloudflare_id = ?", siteID, ruleID).
			Update("synced_at", nil)
	}
	return row, nil
}

// Delete removes the rule upstream, then drops the mirror row
func (s *PageRulesService) Delete(ctx context.Context, siteID, ruleID string) error {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if _, err := client.DeletePageRule(ctx, ruleID); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}

	if err := s.db.Where("site_id = ? AND cloudflare_id = ?", siteID, ruleID).
		Delete(&model.PageRule{}).Error; err != nil {
		return httpx.ErrDatabase("failed to delete mirrored rule", err)
	}
	return nil
}

func pageRuleMirrorRow(siteID string, r *cloudflare.PageRule) *model.PageRule {
	now := time.Now()
	row := &model.PageRule{
		SiteID:       siteID,
		CloudflareID: r.ID,
		Priority:     r.Priority,
		Status:       r.Status,
		SyncedAt:     &now,
	}
	if raw, err := json.Marshal(r.Targets); err == nil {
		row.Targets = datatypes.JSON(raw)
	}
	if raw, err := json.Marshal(r.Actions); err == nil {
		row.Actions = datatypes.JSON(raw)
	}
	return row
}

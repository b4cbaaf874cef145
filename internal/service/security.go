package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var securityLevels = map[string]bool{
	"off":             true,
	"essentially_off": true,
	"low":             true,
	"medium":          true,
	"high":            true,
	"under_attack":    true,
}

var ipAccessModes = map[string]bool{
	"block":             true,
	"challenge":         true,
	"whitelist":         true,
	"js_challenge":      true,
	"managed_challenge": true,
}

// SecurityService manages the zone's security level, firewall rules,
// IP access rules, WAF packages and the firewall activity log.
type SecurityService struct {
	db      *gorm.DB
	clients ClientProvider
	log     *logrus.Entry
}

// NewSecurityService creates a security service
func NewSecurityService(db *gorm.DB, clients ClientProvider) *SecurityService {
	return &SecurityService{
		db:      db,
		clients: clients,
		log:     logrus.WithField("component", "security"),
	}
}

// GetSecurityLevel returns the zone's current security level
func (s *SecurityService) GetSecurityLevel(ctx context.Context, siteID string) (string, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return "", MapError(err)
	}

	var setting *cloudflare.ZoneSetting
	err = retryRead(ctx, func() error {
		setting, err = client.GetSecurityLevel(ctx)
		return err
	})
	if err != nil {
		return "", mapClientError(s.clients, siteID, err)
	}

	var level string
	if err := json.Unmarshal(setting.Value, &level); err != nil {
		return "", httpx.ErrAPI("unexpected security level payload", err)
	}
	return level, nil
}

// SetSecurityLevel updates the zone's security level
func (s *SecurityService) SetSecurityLevel(ctx context.Context, siteID, level string) error {
	if !securityLevels[level] {
		return httpx.ErrValidation(fmt.Sprintf("unknown security level '%s'", level))
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if _, err := client.SetSecurityLevel(ctx, level); err != nil {
		return mapClientError(s.clients, siteID, err)
	}
	return nil
}

// SetUnderAttack toggles under-attack mode. Turning it off restores the
// medium level rather than guessing the previous one.
func (s *SecurityService) SetUnderAttack(ctx context.Context, siteID string, enabled bool) error {
	level := "under_attack"
	if !enabled {
		level = "medium"
	}
	return s.SetSecurityLevel(ctx, siteID, level)
}

// FirewallRuleInput is the create/update payload for a firewall rule
type FirewallRuleInput struct {
	Action      string `json:"action" binding:"required"`
	Expression  string `json:"expression" binding:"required"`
	Description string `json:"description"`
	Paused      bool   `json:"paused"`
	Priority    *int   `json:"priority"`
}

// Validate rejects obviously broken rules before the API sees them
func (in *FirewallRuleInput) Validate() error {
	if in.Expression == "" {
		return httpx.ErrValidation("firewall expression must not be empty")
	}
	if in.Action == "" {
		return httpx.ErrValidation("firewall action must not be empty")
	}
	return nil
}

func (in *FirewallRuleInput) toParams() cloudflare.FirewallRuleParams {
	return cloudflare.FirewallRuleParams{
		Action:      in.Action,
		Filter:      cloudflare.FirewallFilter{Expression: in.Expression, Description: in.Description},
		Description: in.Description,
		Paused:      in.Paused,
		Priority:    in.Priority,
	}
}

// ListFirewallRules returns the local mirror of firewall rules
func (s *SecurityService) ListFirewallRules(siteID string) ([]model.FirewallRule, error) {
	var rules []model.FirewallRule
	err := s.db.Where("site_id = ?", siteID).Order("id").Find(&rules).Error
	if err != nil {
		return nil, httpx.ErrDatabase("failed to load firewall rules", err)
	}
	return rules, nil
}

// SyncFirewallRules replaces the firewall rule mirror from upstream
func (s *SecurityService) SyncFirewallRules(ctx context.Context, siteID string) ([]model.FirewallRule, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var upstream []cloudflare.FirewallRule
	err = retryRead(ctx, func() error {
		upstream, err = client.ListFirewallRules(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	rows := make([]model.FirewallRule, 0, len(upstream))
	for i := range upstream {
		rows = append(rows, *firewallMirrorRow(siteID, &upstream[i]))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", siteID).Delete(&model.FirewallRule{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, httpx.ErrDatabase("failed to replace firewall rule mirror", err)
	}
	return rows, nil
}

// CreateFirewallRule creates the rule upstream then mirrors it
func (s *SecurityService) CreateFirewallRule(ctx context.Context, siteID string, in FirewallRuleInput) (*model.FirewallRule, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	created, err := client.CreateFirewallRule(ctx, in.toParams())
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	row := firewallMirrorRow(siteID, created)
	if err := s.db.Create(row).Error; err != nil {
		s.log.WithError(err).WithField("site_id", siteID).Error("Upstream create succeeded but mirror write failed")
	}
	return row, nil
}

// UpdateFirewallRule updates upstream then refreshes the mirror row
func (s *SecurityService) UpdateFirewallRule(ctx context.Context, siteID, ruleID string, in FirewallRuleInput) (*model.FirewallRule, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	updated, err := client.UpdateFirewallRule(ctx, ruleID, in.toParams())
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	row := firewallMirrorRow(siteID, updated)
	err = s.db.Model(&model.FirewallRule{}).
		Where("site_id = ? AND cloudflare_id = ?", siteID, ruleID).
		Updates(map[string]interface{}{
			"action":      row.Action,
			"expression":  row.Expression,
			"description": row.Description,
			"paused":      row.Paused,
			"priority":    row.Priority,
			"synced_at":   row.SyncedAt,
		}).Error
	if err != nil {
		s.db.Model(&model.FirewallRule{}).
			Where("site_id = ? AND cloudflare_id = ?", siteID, ruleID).
			Update("synced_at", nil)
	}
	return row, nil
}

// DeleteFirewallRule deletes upstream, then drops the mirror row
func (s *SecurityService) DeleteFirewallRule(ctx context.Context, siteID, ruleID string) error {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}

	if _, err := client.DeleteFirewallRule(ctx, ruleID); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}

	if err := s.db.Where("site_id = ? AND cloudflare_id = ?", siteID, ruleID).
		Delete(&model.FirewallRule{}).Error; err != nil {
		return httpx.ErrDatabase("failed to delete mirrored rule", err)
	}
	return nil
}

// IPAccessRuleInput is the create payload for an IP access rule
type IPAccessRuleInput struct {
	Mode  string `json:"mode" binding:"required"`
	Value string `json:"value" binding:"required"`
	Notes string `json:"notes"`
}

// Validate checks the mode and classifies the target as ip or ip_range
func (in *IPAccessRuleInput) Validate() (target string, err error) {
	if !ipAccessModes[in.Mode] {
		return "", httpx.ErrValidation(fmt.Sprintf("unknown access rule mode '%s'", in.Mode))
	}
	if net.ParseIP(in.Value) != nil {
		return "ip", nil
	}
	if _, _, err := net.ParseCIDR(in.Value); err == nil {
		return "ip_range", nil
	}
	return "", httpx.ErrValidation("value must be an IP address or CIDR range")
}

// ListIPAccessRules returns the local mirror of IP access rules
func (s *SecurityService) ListIPAccessRules(siteID string) ([]model.IPAccessRule, error) {
	var rules []model.IPAccessRule
	err := s.db.Where("site_id = ?", siteID).Order("id").Find(&rules).Error
	if err != nil {
		return nil, httpx.ErrDatabase("failed to load IP access rules", err)
	}
	return rules, nil
}

// CreateIPAccessRule creates the rule upstream then mirrors it
func (s *SecurityService) CreateIPAccessRule(ctx context.Context, siteID string, in IPAccessRuleInput) (*model.IPAccessRule, error) {
	target, err := in.Validate()
	if err != nil {
		return nil, err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	created, err := client.CreateIPAccessRule(ctx, cloudflare.IPAccessRuleParams{
		Mode:          in.Mode,
		Configuration: cloudflare.IPConfiguration{Target: target, Value: in.Value},
		Notes:         in.Notes,
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	now := time.Now()
	row := &model.IPAccessRule{
		SiteID:       siteID,
		CloudflareID: created.ID,
		Mode:         created.Mode,
		Target:       created.Configuration.Target,
		Value:        created.Configuration.Value,
		Notes:        created.Notes,
		SyncedAt:     &now,
	}
	if err := s.db.Create(row).Error; err != nil {
		s.log.WithError(err).WithField("site_id", siteID).Error("Upstream create succeeded but mirror write failed")
	}
	return row, nil
}

// DeleteIPAccessRule deletes upstream, then drops the mirror row
func (s *SecurityService) DeleteIPAccessRule(ctx context.Context, siteID, ruleID string) error {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}

	if _, err := client.DeleteIPAccessRule(ctx, ruleID); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}

	if err := s.db.Where("site_id = ? AND cloudflare_id = ?", siteID, ruleID).
		Delete(&model.IPAccessRule{}).Error; err != nil {
		return httpx.ErrDatabase("failed to delete mirrored rule", err)
	}
	return nil
}

// ListWAFPackages lists the zone's WAF packages (legacy WAF)
func (s *SecurityService) ListWAFPackages(ctx context.Context, siteID string) ([]cloudflare.WAFPackage, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var packages []cloudflare.WAFPackage
	err = retryRead(ctx, func() error {
		packages, err = client.ListWAFPackages(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	return packages, nil
}

// SetWAFRuleMode toggles a single WAF rule within a package
func (s *SecurityService) SetWAFRuleMode(ctx context.Context, siteID, packageID, ruleID, mode string) (*cloudflare.WAFRule, error) {
	if mode != "on" && mode != "off" && mode != "default" &&
		mode != "disable" && mode != "simulate" && mode != "block" && mode != "challenge" {
		return nil, httpx.ErrValidation(fmt.Sprintf("unknown WAF rule mode '%s'", mode))
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	rule, err := client.UpdateWAFRuleMode(ctx, packageID, ruleID, mode)
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	return rule, nil
}

// FetchSecurityEvents pulls recent firewall activity from Cloudflare
// and snapshots it locally. The snapshot is append-only and deduped by
// wiping the site's rows inside the window first.
func (s *SecurityService) FetchSecurityEvents(ctx context.Context, siteID string, limit int) ([]model.SecurityEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var upstream []cloudflare.SecurityEvent
	err = retryRead(ctx, func() error {
		upstream, err = client.ListSecurityEvents(ctx, limit)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	rows := make([]model.SecurityEvent, 0, len(upstream))
	for _, e := range upstream {
		rows = append(rows, model.SecurityEvent{
			SiteID:     siteID,
			Action:     e.Action,
			ClientIP:   e.ClientIP,
			Country:    e.Country,
			RuleID:     e.RuleID,
			UserAgent:  e.UserAgent,
			URI:        e.ClientURI,
			OccurredAt: e.OccurredAt,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", siteID).Delete(&model.SecurityEvent{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, httpx.ErrDatabase("failed to snapshot security events", err)
	}
	return rows, nil
}

func firewallMirrorRow(siteID string, r *cloudflare.FirewallRule) *model.FirewallRule {
	now := time.Now()
	return &model.FirewallRule{
		SiteID:       siteID,
		CloudflareID: r.ID,
		Action:       r.Action,
		Expression:   r.Filter.Expression,
		Description:  r.Description,
		Paused:       r.Paused,
		Priority:     r.Priority,
		SyncedAt:     &now,
	}
}

package service

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"
	"time"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var hostnameRe = regexp.MustCompile(`^(\*\.)?([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.?$`)

// DNSService manages DNS records: Cloudflare is authoritative, the
// local table is a mirror that is refreshed after every mutation.
type DNSService struct {
	db      *gorm.DB
	clients ClientProvider
	log     *logrus.Entry
}

// NewDNSService creates a DNS service
func NewDNSService(db *gorm.DB, clients ClientProvider) *DNSService {
	return &DNSService{
		db:      db,
		clients: clients,
		log:     logrus.WithField("component", "dns"),
	}
}

// DNSRecordInput is the caller-facing create/update payload
type DNSRecordInput struct {
	Type     string `json:"type" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Content  string `json:"content" binding:"required"`
	TTL      int    `json:"ttl"`
	Proxied  bool   `json:"proxied"`
	Priority *int   `json:"priority"`
}

// Validate checks the payload before it ever reaches the API
func (in *DNSRecordInput) Validate() error {
	switch model.DNSRecordType(in.Type) {
	case model.DNSRecordTypeA:
		ip := net.ParseIP(in.Content)
		if ip == nil || ip.To4() == nil {
			return httpx.ErrValidation("A record content must be a valid IPv4 address")
		}
	case model.DNSRecordTypeAAAA:
		ip := net.ParseIP(in.Content)
		if ip == nil || ip.To4() != nil {
			return httpx.ErrValidation("AAAA record content must be a valid IPv6 address")
		}
	case model.DNSRecordTypeCNAME, model.DNSRecordTypeNS:
		if !hostnameRe.MatchString(in.Content) {
			return httpx.ErrValidation(fmt.Sprintf("%s record content must be a valid hostname", in.Type))
		}
	case model.DNSRecordTypeMX:
		if in.Priority == nil {
			return httpx.ErrValidation("MX record requires a priority")
		}
		if !hostnameRe.MatchString(in.Content) {
			return httpx.ErrValidation("MX record content must be a valid hostname")
		}
	case model.DNSRecordTypeTXT, model.DNSRecordTypeSRV:
		if in.Content == "" {
			return httpx.ErrValidation("record content must not be empty")
		}
	default:
		return httpx.ErrValidation(fmt.Sprintf("unsupported record type '%s'", in.Type))
	}

	if in.Name == "" {
		return httpx.ErrValidation("record name must not be empty")
	}
	// TTL 1 means "automatic" on Cloudflare
	if in.TTL != 0 && in.TTL != 1 && (in.TTL < 60 || in.TTL > 86400) {
		return httpx.ErrValidation("ttl must be 1 (automatic) or between 60 and 86400")
	}
	return nil
}

func (in *DNSRecordInput) toParams() cloudflare.DNSRecordParams {
	ttl := in.TTL
	if ttl == 0 {
		ttl = 1
	}
	proxied := in.Proxied
	return cloudflare.DNSRecordParams{
		Type:     in.Type,
		Name:     in.Name,
		Content:  in.Content,
		TTL:      ttl,
		Proxied:  &proxied,
		Priority: in.Priority,
	}
}

// List returns the local mirror for a site. Rows with a nil SyncedAt
// are stale and pending the next Sync.
func (s *DNSService) List(siteID string) ([]model.DNSRecord, error) {
	var records []model.DNSRecord
	err := s.db.Where("site_id = ?", siteID).
		Order("name, type, content").
		Find(&records).Error
	if err != nil {
		return nil, httpx.ErrDatabase("failed to load DNS records", err)
	}
	return records, nil
}

// Create creates the record upstream first, then mirrors it locally.
// A mirror write failure never undoes the upstream create.
func (s *DNSService) Create(ctx context.Context, siteID string, in DNSRecordInput) (*model.DNSRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	created, err := client.CreateDNSRecord(ctx, in.toParams())
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	row := s.mirrorRow(siteID, created)
	if err := s.db.Create(row).Error; err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"site_id":   siteID,
			"record_id": created.ID,
		}).Error("Upstream create succeeded but mirror write failed")
	}
	return row, nil
}

// Update updates upstream, then refreshes the mirror row. If the mirror
// write fails the row is marked stale instead of left wrong.
func (s *DNSService) Update(ctx context.Context, siteID, recordID string, in DNSRecordInput) (*model.DNSRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	updated, err := client.UpdateDNSRecord(ctx, recordID, in.toParams())
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	row := s.mirrorRow(siteID, updated)
	err = s.db.Model(&model.DNSRecord{}).
		Where("site_id = ? AND cloudflare_id = ?", siteID, recordID).
		Updates(map[string]interface{}{
			"type":      row.Type,
			"name":      row.Name,
			"content":   row.Content,
			"proxied":   row.Proxied,
			"ttl":       row.TTL,
			"priority":  row.Priority,
			"synced_at": row.SyncedAt,
		}).Error
	if err != nil {
		s.markStale(siteID, recordID)
		// The caller's view must match the mirror, which is now stale.
		row.SyncedAt = nil
	}
	return row, nil
}

// Delete removes the record upstream and only then drops the mirror
// row. An upstream not-found means the record is already gone, which
// still warrants the local delete.
func (s *DNSService) Delete(ctx context.Context, siteID, recordID string) error {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}

	if _, err := client.DeleteDNSRecord(ctx, recordID); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}

	if err := s.db.Where("site_id = ? AND cloudflare_id = ?", siteID, recordID).
		Delete(&model.DNSRecord{}).Error; err != nil {
		return httpx.ErrDatabase("failed to delete mirrored record", err)
	}
	return nil
}

// Sync replaces the mirror with the upstream record list in one
// transaction, so readers never observe a half-synced table.
func (s *DNSService) Sync(ctx context.Context, siteID string) ([]model.DNSRecord, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	upstream, err := client.ListDNSRecords(ctx)
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	rows := make([]model.DNSRecord, 0, len(upstream))
	for i := range upstream {
		rows = append(rows, *s.mirrorRow(siteID, &upstream[i]))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", siteID).Delete(&model.DNSRecord{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, httpx.ErrDatabase("failed to replace DNS mirror", err)
	}

	s.log.WithFields(logrus.Fields{"site_id": siteID, "records": len(rows)}).Info("DNS mirror synced")
	return rows, nil
}

// ExportZone renders the mirror as a BIND zone file. Output is ordered
// by name, type, content so repeated exports of the same data are
// byte-identical.
func (s *DNSService) ExportZone(siteID, zoneName string) (string, error) {
	records, err := s.List(siteID)
	if err != nil {
		return "", err
	}
	return renderZoneFile(zoneName, records), nil
}

// renderZoneFile renders records in BIND syntax. Input order does not
// matter; records are sorted before rendering.
func renderZoneFile(zoneName string, records []model.DNSRecord) string {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		if records[i].Type != records[j].Type {
			return records[i].Type < records[j].Type
		}
		return records[i].Content < records[j].Content
	})

	var b strings.Builder
	fmt.Fprintf(&b, "$ORIGIN %s.\n", strings.TrimSuffix(zoneName, "."))
	for _, r := range records {
		ttl := r.TTL
		if ttl <= 1 {
			ttl = 300
		}
		content := r.Content
		switch r.Type {
		case model.DNSRecordTypeTXT:
			content = fmt.Sprintf("%q", content)
		case model.DNSRecordTypeCNAME, model.DNSRecordTypeMX, model.DNSRecordTypeNS:
			if !strings.HasSuffix(content, ".") {
				content += "."
			}
		}
		if r.Type == model.DNSRecordTypeMX && r.Priority != nil {
			fmt.Fprintf(&b, "%s\t%d\tIN\t%s\t%d %s\n", r.Name, ttl, r.Type, *r.Priority, content)
		} else {
			fmt.Fprintf(&b, "%s\t%d\tIN\t%s\t%s\n", r.Name, ttl, r.Type, content)
		}
	}
	return b.String()
}

func (s *DNSService) mirrorRow(siteID string, r *cloudflare.DNSRecord) *model.DNSRecord {
	now := time.Now()
	return &model.DNSRecord{
		SiteID:       siteID,
		CloudflareID: r.ID,
		Type:         model.DNSRecordType(r.Type),
		Name:         r.Name,
		Content:      r.Content,
		Proxied:      r.Proxied,
		TTL:          r.TTL,
		Priority:     r.Priority,
		SyncedAt:     &now,
	}
}

func (s *DNSService) markStale(siteID, recordID string) {
	err := s.db.Model(&model.DNSRecord{}).
		Where("site_id = ? AND cloudflare_id = ?", siteID, recordID).
		Update("synced_at", nil).Error
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"site_id":   siteID,
			"record_id": recordID,
		}).Error("Failed to mark mirror row stale")
	}
}

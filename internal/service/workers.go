package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var workerNameRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// WorkersService manages Worker scripts, routes and KV namespaces
type WorkersService struct {
	db      *gorm.DB
	clients ClientProvider
	log     *logrus.Entry
}

// NewWorkersService creates a workers service
func NewWorkersService(db *gorm.DB, clients ClientProvider) *WorkersService {
	return &WorkersService{
		db:      db,
		clients: clients,
		log:     logrus.WithField("component", "workers"),
	}
}

// ListScripts fetches deployed scripts and refreshes the mirror
func (s *WorkersService) ListScripts(ctx context.Context, siteID string) ([]model.Worker, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var scripts []cloudflare.WorkerScript
	err = retryRead(ctx, func() error {
		scripts, err = client.ListWorkers(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	now := time.Now()
	rows := make([]model.Worker, 0, len(scripts))
	for _, sc := range scripts {
		rows = append(rows, model.Worker{
			SiteID:     siteID,
			Name:       sc.ID,
			ETag:       sc.ETag,
			UsageModel: sc.UsageModel,
			SyncedAt:   &now,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", siteID).Delete(&model.Worker{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, httpx.ErrDatabase("failed to refresh worker mirror", err)
	}
	return rows, nil
}

// GetScript fetches a script's source
func (s *WorkersService) GetScript(ctx context.Context, siteID, name string) (string, error) {
	if !workerNameRe.MatchString(name) {
		return "", httpx.ErrValidation("invalid worker script name")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return "", MapError(err)
	}

	var source string
	err = retryRead(ctx, func() error {
		source, err = client.GetWorkerScript(ctx, name)
		return err
	})
	if err != nil {
		return "", mapClientError(s.clients, siteID, err)
	}
	return source, nil
}

// DeployScript uploads a script and mirrors the deployment
func (s *WorkersService) DeployScript(ctx context.Context, siteID, name, source string) (*model.Worker, error) {
	if !workerNameRe.MatchString(name) {
		return nil, httpx.ErrValidation("worker script name must be 1-63 chars of lowercase letters, digits and hyphens")
	}
	if source == "" {
		return nil, httpx.ErrValidation("worker script source must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}
	if err := client.UploadWorkerScript(ctx, name, source); err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	now := time.Now()
	row := &model.Worker{SiteID: siteID, Name: name, SyncedAt: &now}
	err = s.db.Where("site_id = ? AND name = ?", siteID, name).
		Assign(map[string]interface{}{"synced_at": &now}).
		FirstOrCreate(row).Error
	if err != nil {
		s.log.WithError(err).WithField("site_id", siteID).Error("Upstream deploy succeeded but mirror write failed")
	}
	return row, nil
}

// DeployTemplate deploys one of the built-in script templates
func (s *WorkersService) DeployTemplate(ctx context.Context, siteID, name, template string) (*model.Worker, error) {
	source, ok := WorkerTemplates[template]
	if !ok {
		return nil, httpx.ErrValidation(fmt.Sprintf("unknown worker template '%s'", template))
	}
	return s.DeployScript(ctx, siteID, name, source)
}

// ListTemplates returns the available template names, sorted
func (s *WorkersService) ListTemplates() []string {
	names := make([]string, 0, len(WorkerTemplates))
	for name := range WorkerTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteScript removes a script upstream, then drops the mirror row
func (s *WorkersService) DeleteScript(ctx context.Context, siteID, name string) error {
	if !workerNameRe.MatchString(name) {
		return httpx.ErrValidation("invalid worker script name")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if err := client.DeleteWorker(ctx, name); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}

	if err := s.db.Where("site_id = ? AND name = ?", siteID, name).
		Delete(&model.Worker{}).Error; err != nil {
		return httpx.ErrDatabase("failed to delete mirrored worker", err)
	}
	return nil
}

// ListRoutes fetches worker routes and refreshes the mirror
func (s *WorkersService) ListRoutes(ctx context.Context, siteID string) ([]model.WorkerRoute, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var routes []cloudflare.WorkerRoute
	err = retryRead(ctx, func() error {
		routes, err = client.ListWorkerRoutes(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	now := time.Now()
	rows := make([]model.WorkerRoute, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, model.WorkerRoute{
			SiteID:       siteID,
			CloudflareID: r.ID,
			Pattern:      r.Pattern,
			Script:       r.Script,
			SyncedAt:     &now,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", siteID).Delete(&model.WorkerRoute{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, httpx.ErrDatabase("failed to refresh route mirror", err)
	}
	return rows, nil
}

// CreateRoute binds a URL pattern to a deployed script
func (s *WorkersService) CreateRoute(ctx context.Context, siteID, pattern, script string) (*model.WorkerRoute, error) {
	if pattern == "" {
		return nil, httpx.ErrValidation("route pattern must not be empty")
	}
	if script != "" && !workerNameRe.MatchString(script) {
		return nil, httpx.ErrValidation("invalid worker script name")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	created, err := client.CreateWorkerRoute(ctx, pattern, script)
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	now := time.Now()
	row := &model.WorkerRoute{
		SiteID:       siteID,
		CloudflareID: created.ID,
		Pattern:      pattern,
		Script:       script,
		SyncedAt:     &now,
	}
	if err := s.db.Create(row).Error; err != nil {
		s.log.WithError(err).WithField("site_id", siteID).Error("Upstream create succeeded but mirror write failed")
	}
	return row, nil
}

// DeleteRoute removes a route upstream, then drops the mirror row
func (s *WorkersService) DeleteRoute(ctx context.Context, siteID, routeID string) error {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if _, err := client.DeleteWorkerRoute(ctx, routeID); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}

	if err := s.db.Where("site_id = ? AND cloudflare_id = ?", siteID, routeID).
		Delete(&model.WorkerRoute{}).Error; err != nil {
		return httpx.ErrDatabase("failed to delete mirrored route", err)
	}
	return nil
}

// ListKVNamespaces fetches KV namespaces and refreshes the mirror
func (s *WorkersService) ListKVNamespaces(ctx context.Context, siteID string) ([]model.KVNamespace, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var namespaces []cloudflare.KVNamespace
	err = retryRead(ctx, func() error {
		namespaces, err = client.ListKVNamespaces(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	now := time.Now()
	rows := make([]model.KVNamespace, 0, len(namespaces))
	for _, ns := range namespaces {
		rows = append(rows, model.KVNamespace{
			SiteID:       siteID,
			CloudflareID: ns.ID,
			Title:        ns.Title,
			SyncedAt:     &now,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", siteID).Delete(&model.KVNamespace{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, httpx.ErrDatabase("failed to refresh KV namespace mirror", err)
	}
	return rows, nil
}

// CreateKVNamespace creates a namespace upstream then mirrors it
func (s *WorkersService) CreateKVNamespace(ctx context.Context, siteID, title string) (*model.KVNamespace, error) {
	if title == "" {
		return nil, httpx.ErrValidation("namespace title must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	created, err := client.CreateKVNamespace(ctx, title)
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	now := time.Now()
	row := &model.KVNamespace{
		SiteID:       siteID,
		CloudflareID: created.ID,
		Title:        created.Title,
		SyncedAt:     &now,
	}
	if err := s.db.Create(row).Error; err != nil {
		s.log.WithError(err).WithField("site_id", siteID).Error("Upstream create succeeded but mirror write failed")
	}
	return row, nil
}

// DeleteKVNamespace removes a namespace upstream, then the mirror row
func (s *WorkersService) DeleteKVNamespace(ctx context.Context, siteID, namespaceID string) error {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if err := client.DeleteKVNamespace(ctx, namespaceID); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}

	if err := s.db.Where("site_id = ? AND cloudflare_id = ?", siteID, namespaceID).
		Delete(&model.KVNamespace{}).Error; err != nil {
		return httpx.ErrDatabase("failed to delete mirrored namespace", err)
	}
	return nil
}

// ListKVKeys lists keys in a namespace. Keys are not mirrored; the
// listing is always live.
func (s *WorkersService) ListKVKeys(ctx context.Context, siteID, namespaceID string) ([]cloudflare.KVKey, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var keys []cloudflare.KVKey
	err = retryRead(ctx, func() error {
		keys, err = client.ListKVKeys(ctx, namespaceID)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	return keys, nil
}

// ReadKVValue reads one value from a namespace
func (s *WorkersService) ReadKVValue(ctx context.Context, siteID, namespaceID, key string) (string, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return "", MapError(err)
	}

	var value string
	err = retryRead(ctx, func() error {
		value, err = client.ReadKVValue(ctx, namespaceID, key)
		return err
	})
	if err != nil {
		return "", mapClientError(s.clients, siteID, err)
	}
	return value, nil
}

// WriteKVValue writes one value into a namespace
func (s *WorkersService) WriteKVValue(ctx context.Context, siteID, namespaceID, key, value string) error {
	if key == "" {
		return httpx.ErrValidation("key must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if err := client.WriteKVValue(ctx, namespaceID, key, value); err != nil {
		return mapClientError(s.clients, siteID, err)
	}
	return nil
}

// DeleteKVValue deletes one key from a namespace
func (s *WorkersService) DeleteKVValue(ctx context.Context, siteID, namespaceID, key string) error {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if err := client.DeleteKVValue(ctx, namespaceID, key); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}
	return nil
}

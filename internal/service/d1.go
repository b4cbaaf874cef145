package service

import (
	"context"
	"regexp"
	"strings"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"

	"github.com/sirupsen/logrus"
)

var d1NameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-_]{0,62}$`)

// D1Service manages D1 serverless databases. D1 state lives entirely
// inside Cloudflare, so there is no local mirror.
type D1Service struct {
	clients ClientProvider
	log     *logrus.Entry
}

// NewD1Service creates a D1 service
func NewD1Service(clients ClientProvider) *D1Service {
	return &D1Service{
		clients: clients,
		log:     logrus.WithField("component", "d1"),
	}
}

// ValidateDatabaseName enforces D1 naming: lowercase letters, digits,
// hyphens and underscores, at most 63 chars, no leading separator.
func ValidateDatabaseName(name string) error {
	if !d1NameRe.MatchString(name) {
		return httpx.ErrValidation("database name must be 1-63 chars of lowercase letters, digits, hyphens and underscores")
	}
	return nil
}

// List returns the account's D1 databases
func (s *D1Service) List(ctx context.Context, siteID string) ([]cloudflare.D1Database, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var databases []cloudflare.D1Database
	err = retryRead(ctx, func() error {
		databases, err = client.ListD1Databases(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	return databases, nil
}

// Get returns one database by UUID. The API has no single-database
// lookup on this path, so the listing is filtered.
func (s *D1Service) Get(ctx context.Context, siteID, databaseID string) (*cloudflare.D1Database, error) {
	databases, err := s.List(ctx, siteID)
	if err != nil {
		return nil, err
	}
	for i := range databases {
		if databases[i].UUID == databaseID {
			return &databases[i], nil
		}
	}
	return nil, httpx.ErrNotFound("database not found")
}

// Create creates a D1 database
func (s *D1Service) Create(ctx context.Context, siteID, name string) (*cloudflare.D1Database, error) {
	if err := ValidateDatabaseName(name); err != nil {
		return nil, err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	database, err := client.CreateD1Database(ctx, name)
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	s.log.WithFields(logrus.Fields{"site_id": siteID, "database": name}).Info("D1 database created")
	return database, nil
}

// Delete deletes a D1 database
func (s *D1Service) Delete(ctx context.Context, siteID, databaseID string) error {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if err := client.DeleteD1Database(ctx, databaseID); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}
	return nil
}

// Query runs one SQL statement against a database
func (s *D1Service) Query(ctx context.Context, siteID, databaseID, sql string) ([]cloudflare.D1QueryResult, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, httpx.ErrValidation("sql must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	results, err := client.QueryD1(ctx, databaseID, sql)
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	return results, nil
}

// ListTables lists a database's user tables via sqlite_master
func (s *D1Service) ListTables(ctx context.Context, siteID, databaseID string) ([]string, error) {
	const sql = "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' AND name NOT LIKE '_cf_%' ORDER BY name"
	results, err := s.Query(ctx, siteID, databaseID, sql)
	if err != nil {
		return nil, err
	}

	var tables []string
	for _, res := range results {
		for _, row := range res.Results {
			if name, ok := row["name"].(string); ok {
				tables = append(tables, name)
			}
		}
	}
	return tables, nil
}

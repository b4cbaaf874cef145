package service

import (
	"context"
	"regexp"
	"time"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var r2BucketNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

// R2Service manages R2 buckets with a local mirror
type R2Service struct {
	db      *gorm.DB
	clients ClientProvider
	log     *logrus.Entry
}

// NewR2Service creates an R2 service
func NewR2Service(db *gorm.DB, clients ClientProvider) *R2Service {
	return &R2Service{
		db:      db,
		clients: clients,
		log:     logrus.WithField("component", "r2"),
	}
}

// ValidateBucketName enforces R2 naming: 3-63 chars, lowercase letters,
// digits and hyphens, no leading or trailing hyphen.
func ValidateBucketName(name string) error {
	if !r2BucketNameRe.MatchString(name) {
		return httpx.ErrValidation("bucket name must be 3-63 chars of lowercase letters, digits and hyphens")
	}
	return nil
}

// maxObjectKeyLen matches the S3/R2 key length limit
const maxObjectKeyLen = 1024

// ValidateObjectKey enforces R2 key limits: non-empty, at most 1024
// bytes, no leading slash.
func ValidateObjectKey(key string) error {
	if key == "" {
		return httpx.ErrValidation("object key must not be empty")
	}
	if len(key) > maxObjectKeyLen {
		return httpx.ErrValidation("object key must be at most 1024 bytes")
	}
	if key[0] == '/' {
		return httpx.ErrValidation("object key must not start with '/'")
	}
	return nil
}

// ListBuckets fetches the account's buckets and refreshes the mirror
func (s *R2Service) ListBuckets(ctx context.Context, siteID string) ([]model.R2Bucket, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var buckets []cloudflare.R2Bucket
	err = retryRead(ctx, func() error {
		buckets, err = client.ListR2Buckets(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	now := time.Now()
	rows := make([]model.R2Bucket, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, model.R2Bucket{
			SiteID:   siteID,
			Name:     b.Name,
			Location: b.Location,
			SyncedAt: &now,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", siteID).Delete(&model.R2Bucket{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, httpx.ErrDatabase("failed to refresh bucket mirror", err)
	}
	return rows, nil
}

// CreateBucket creates a bucket upstream then mirrors it
func (s *R2Service) CreateBucket(ctx context.Context, siteID, name string) (*model.R2Bucket, error) {
	if err := ValidateBucketName(name); err != nil {
		return nil, err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	created, err := client.CreateR2Bucket(ctx, name)
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	now := time.Now()
	row := &model.R2Bucket{
		SiteID:   siteID,
		Name:     created.Name,
		Location: created.Location,
		SyncedAt: &now,
	}
	if err := s.db.Create(row).Error; err != nil {
		s.log.WithError(err).WithField("site_id", siteID).Error("Upstream create succeeded but mirror write failed")
	}
	return row, nil
}

// DeleteBucket removes a bucket upstream, then drops the mirror row.
// Cloudflare rejects deletion of non-empty buckets; that error passes
// through untouched.
func (s *R2Service) DeleteBucket(ctx context.Context, siteID, name string) error {
	if err := ValidateBucketName(name); err != nil {
		return err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if err := client.DeleteR2Bucket(ctx, name); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}

	if err := s.db.Where("site_id = ? AND name = ?", siteID, name).
		Delete(&model.R2Bucket{}).Error; err != nil {
		return httpx.ErrDatabase("failed to delete mirrored bucket", err)
	}
	return nil
}

// ListObjects lists a bucket's objects, optionally under a key prefix.
// Object listings are always live; objects change too often to mirror.
func (s *R2Service) ListObjects(ctx context.Context, siteID, bucket, prefix string) ([]cloudflare.R2Object, error) {
	if err := ValidateBucketName(bucket); err != nil {
		return nil, err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var objects []cloudflare.R2Object
	err = retryRead(ctx, func() error {
		objects, err = client.ListR2Objects(ctx, bucket, prefix)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	return objects, nil
}

// UploadObject stores one object in a bucket. Uploads go through the
// single-call endpoint; bodies above the handler's size cap are rejected
// before reaching here.
func (s *R2Service) UploadObject(ctx context.Context, siteID, bucket, key, contentType string, body []byte) error {
	if err := ValidateBucketName(bucket); err != nil {
		return err
	}
	if err := ValidateObjectKey(key); err != nil {
		return err
	}
	if len(body) == 0 {
		return httpx.ErrValidation("object body must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if err := client.PutR2Object(ctx, bucket, key, contentType, body); err != nil {
		return mapClientError(s.clients, siteID, err)
	}

	s.log.WithFields(logrus.Fields{
		"site_id": siteID,
		"bucket":  bucket,
		"key":     key,
		"size":    len(body),
	}).Info("R2 object uploaded")
	return nil
}

// DeleteObject removes one object from a bucket. An upstream not-found
// means the object is already gone.
func (s *R2Service) DeleteObject(ctx context.Context, siteID, bucket, key string) error {
	if err := ValidateBucketName(bucket); err != nil {
		return err
	}
	if err := ValidateObjectKey(key); err != nil {
		return err
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if err := client.DeleteR2Object(ctx, bucket, key); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}
	return nil
}
